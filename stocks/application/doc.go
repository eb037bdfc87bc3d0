// Package application contém o caso de uso de cotação: busca a série diária
// e calcula a variação entre os dois fechamentos mais recentes.
package application
