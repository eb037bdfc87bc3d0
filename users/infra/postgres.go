package infra

import (
	"context"
	"database/sql"
	"errors"

	"stock-market-service/users/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PostgresDirectory implementa domain.Directory sobre database/sql + lib/pq.
type PostgresDirectory struct {
	db *sql.DB
}

var _ domain.Directory = (*PostgresDirectory)(nil)

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

// EnsureSchema cria a tabela de usuários se ainda não existir.
// Chamado uma vez no boot do processo.
func (d *PostgresDirectory) EnsureSchema(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id        TEXT PRIMARY KEY,
			name      VARCHAR(80)  NOT NULL,
			last_name VARCHAR(80)  NOT NULL,
			email     VARCHAR(254) NOT NULL UNIQUE,
			api_key   VARCHAR(120) NOT NULL UNIQUE
		)
	`)
	return err
}

func (d *PostgresDirectory) Register(ctx context.Context, name, lastName, email string) (domain.User, error) {
	apiKey, err := domain.NewAPIKey()
	if err != nil {
		return domain.User{}, err
	}

	u := domain.User{
		ID:       uuid.NewString(),
		Name:     name,
		LastName: lastName,
		Email:    email,
		APIKey:   apiKey,
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO users (id, name, last_name, email, api_key)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Name, u.LastName, u.Email, u.APIKey)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.User{}, domain.ErrDuplicateEmail
		}
		return domain.User{}, err
	}
	return u, nil
}

func (d *PostgresDirectory) FindByAPIKey(ctx context.Context, apiKey string) (domain.User, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, name, last_name, email, api_key
		FROM users
		WHERE api_key = $1
	`, apiKey)

	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.LastName, &u.Email, &u.APIKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
