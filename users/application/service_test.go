package application

import (
	"context"
	"errors"
	"testing"

	"stock-market-service/users/domain"
	"stock-market-service/users/infra"
)

type countingDirectory struct {
	domain.Directory
	registers int
}

func (d *countingDirectory) Register(ctx context.Context, name, lastName, email string) (domain.User, error) {
	d.registers++
	return d.Directory.Register(ctx, name, lastName, email)
}

func TestSignupService_InvalidPayloadNeverHitsDirectory(t *testing.T) {
	dir := &countingDirectory{Directory: infra.NewMemoryDirectory()}
	svc := SignupService{Directory: dir}

	_, err := svc.Signup(context.Background(), domain.SignupData{Name: "Ana", LastName: "Souza", Email: "nope"})

	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if dir.registers != 0 {
		t.Fatalf("expected directory to never be called, got %d calls", dir.registers)
	}
}

func TestSignupService_RegistersAndReturnsAPIKey(t *testing.T) {
	svc := SignupService{Directory: infra.NewMemoryDirectory()}

	u, err := svc.Signup(context.Background(), domain.SignupData{Name: "Ana", LastName: "Souza", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u.APIKey == "" {
		t.Fatalf("expected generated api key")
	}
	if u.ID == "" {
		t.Fatalf("expected generated id")
	}
}

func TestSignupService_DuplicateEmailKeepsSingleRecord(t *testing.T) {
	dir := infra.NewMemoryDirectory()
	svc := SignupService{Directory: dir}

	data := domain.SignupData{Name: "Ana", LastName: "Souza", Email: "ana@example.com"}
	if _, err := svc.Signup(context.Background(), data); err != nil {
		t.Fatalf("unexpected error on first signup: %v", err)
	}

	_, err := svc.Signup(context.Background(), data)
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if dir.Len() != 1 {
		t.Fatalf("expected a single retained user, got %d", dir.Len())
	}
}
