// Package application contém o caso de uso de cadastro: validação do payload
// e delegação ao diretório de usuários. Não conhece net/http.
package application
