// Package infra contém as implementações concretas do diretório de usuários:
// Postgres (produção) e memória (testes/desenvolvimento).
package infra
