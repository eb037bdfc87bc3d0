package infra

import (
	"context"
	"sync"

	"stock-market-service/users/domain"

	"github.com/google/uuid"
)

// MemoryDirectory é uma implementação em memória de domain.Directory.
// Útil para testes e desenvolvimento; nada sobrevive ao processo.
type MemoryDirectory struct {
	mu       sync.Mutex
	byEmail  map[string]domain.User
	byAPIKey map[string]domain.User
}

var _ domain.Directory = (*MemoryDirectory)(nil)

func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byEmail:  make(map[string]domain.User),
		byAPIKey: make(map[string]domain.User),
	}
}

func (d *MemoryDirectory) Register(_ context.Context, name, lastName, email string) (domain.User, error) {
	apiKey, err := domain.NewAPIKey()
	if err != nil {
		return domain.User{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byEmail[email]; exists {
		return domain.User{}, domain.ErrDuplicateEmail
	}

	u := domain.User{
		ID:       uuid.NewString(),
		Name:     name,
		LastName: lastName,
		Email:    email,
		APIKey:   apiKey,
	}
	d.byEmail[email] = u
	d.byAPIKey[apiKey] = u
	return u, nil
}

func (d *MemoryDirectory) FindByAPIKey(_ context.Context, apiKey string) (domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.byAPIKey[apiKey]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

// Len devolve o número de usuários cadastrados (apoio a testes).
func (d *MemoryDirectory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.byEmail)
}
