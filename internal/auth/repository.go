package auth

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/folio/pkg/query"
	"github.com/JaimeStill/folio/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "credentials", "c").
	Project("token", "Token").
	Project("contact", "Contact").
	Project("enabled", "Enabled").
	Project("write_enabled", "WriteEnabled").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt"}

var credentialErrors = repository.Errors{
	NotFound:  ErrCredentialNotFound,
	Duplicate: ErrDuplicate,
}

// Repository manages credential records. It satisfies Store.
type Repository interface {
	Store
	List(ctx context.Context) ([]Credential, error)
	Create(ctx context.Context, cmd CreateCommand) (*Credential, error)
	SetEnabled(ctx context.Context, token string, enabled bool) error
	SetWriteEnabled(ctx context.Context, token string, enabled bool) error
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRepository creates a PostgreSQL credential repository.
func NewRepository(db *sql.DB, logger *slog.Logger) Repository {
	return &repo{
		db:     db,
		logger: logger.With("system", "credentials"),
	}
}

func (r *repo) Find(ctx context.Context, token string) (*Credential, error) {
	q, args := query.NewBuilder(projection).BuildSingle("Token", token)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCredential)
	if err != nil {
		return nil, repository.MapError(err, credentialErrors)
	}
	return &c, nil
}

func (r *repo) List(ctx context.Context) ([]Credential, error) {
	q, args := query.NewBuilder(projection, defaultSort).Build()

	creds, err := repository.QueryMany(ctx, r.db, q, args, scanCredential)
	if err != nil {
		return nil, fmt.Errorf("query credentials: %w", err)
	}
	return creds, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Credential, error) {
	token := cmd.Token
	if token == "" {
		token = uuid.NewString()
	}

	q := `
		INSERT INTO credentials(token, contact, enabled, write_enabled)
		VALUES ($1, $2, TRUE, $3)
		RETURNING token, contact, enabled, write_enabled, created_at`

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Credential, error) {
		return repository.QueryOne(ctx, tx, q, []any{token, cmd.Contact, cmd.WriteEnabled}, scanCredential)
	})
	if err != nil {
		return nil, repository.MapError(err, credentialErrors)
	}

	r.logger.Info("credential created", "contact", c.Contact, "write_enabled", c.WriteEnabled)
	return &c, nil
}

func (r *repo) SetEnabled(ctx context.Context, token string, enabled bool) error {
	return r.set(ctx, "UPDATE credentials SET enabled = $2 WHERE token = $1", token, enabled)
}

func (r *repo) SetWriteEnabled(ctx context.Context, token string, enabled bool) error {
	return r.set(ctx, "UPDATE credentials SET write_enabled = $2 WHERE token = $1", token, enabled)
}

func (r *repo) set(ctx context.Context, stmt, token string, value bool) error {
	if err := repository.ExecExpectOne(ctx, r.db, stmt, token, value); err != nil {
		return repository.MapError(err, credentialErrors)
	}
	return nil
}

func scanCredential(s repository.Scanner) (Credential, error) {
	var c Credential
	err := s.Scan(
		&c.Token,
		&c.Contact,
		&c.Enabled,
		&c.WriteEnabled,
		&c.CreatedAt,
	)
	return c, err
}
