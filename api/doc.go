// Package api contém os handlers HTTP do serviço: cadastro (signup),
// consulta de cotação (stock-info) e o redirect da raiz.
//
// Os handlers só traduzem HTTP <-> casos de uso: toda regra vive em
// users/application e stocks/application. Erros tipados dos domínios são
// convertidos aqui para status + corpo JSON {"error": ...}; nenhum erro
// derruba o processo.
package api
