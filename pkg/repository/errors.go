package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Errors names the domain errors MapError translates to. Nil fields leave
// the matching database error unchanged.
type Errors struct {
	NotFound   error
	Duplicate  error
	ForeignKey error
}

// MapError translates sql.ErrNoRows and PostgreSQL unique (23505) and
// foreign key (23503) violations to domain errors.
func MapError(err error, domain Errors) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && domain.NotFound != nil {
		return domain.NotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == pgUniqueViolation && domain.Duplicate != nil:
			return domain.Duplicate
		case pgErr.Code == pgForeignKeyViolation && domain.ForeignKey != nil:
			return domain.ForeignKey
		}
	}

	return err
}
