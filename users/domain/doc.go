// Package domain define o modelo de usuário, a validação de cadastro e o
// contrato de diretório (persistência) usado pelos handlers.
//
// Sem dependência de net/http nem de banco: implementações concretas vivem
// em users/infra.
package domain
