package domain

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// User é um usuário cadastrado. Imutável depois do cadastro.
type User struct {
	ID       string
	Name     string
	LastName string
	Email    string
	APIKey   string
}

var (
	// ErrDuplicateEmail indica que o e-mail já está cadastrado.
	ErrDuplicateEmail = errors.New("email address already registered")
	// ErrNotFound indica que nenhum usuário corresponde à busca.
	ErrNotFound = errors.New("user not found")
)

// Directory é o contrato de persistência de usuários.
//
// Register gera id e api_key e devolve o usuário criado; e-mail repetido
// resulta em ErrDuplicateEmail. FindByAPIKey devolve ErrNotFound quando a
// chave não corresponde a nenhum usuário.
type Directory interface {
	Register(ctx context.Context, name, lastName, email string) (User, error)
	FindByAPIKey(ctx context.Context, apiKey string) (User, error)
}

// NewAPIKey gera um token opaco URL-safe de 16 bytes aleatórios.
func NewAPIKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
