// Package domain define os tipos da cotação diária e o contrato de busca da
// série temporal no provedor externo, além dos erros tipados que separam
// falha do provedor (UpstreamError) de payload malformado (ParseError).
package domain
