package application

import (
	"context"

	"stock-market-service/users/domain"
)

// SignupService valida o payload e registra o usuário no diretório.
type SignupService struct {
	Directory domain.Directory
}

// Signup devolve o usuário criado (com api_key recém-gerada).
//
// Erros possíveis: *domain.ValidationError (payload inválido, diretório nunca
// é chamado), domain.ErrDuplicateEmail, ou erro de infraestrutura.
func (s SignupService) Signup(ctx context.Context, data domain.SignupData) (domain.User, error) {
	if fields := data.Validate(); len(fields) > 0 {
		return domain.User{}, &domain.ValidationError{Fields: fields}
	}
	return s.Directory.Register(ctx, data.Name, data.LastName, data.Email)
}
