package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

// MapError converts a missing row into notFound and a unique violation into
// duplicate, naming the violated constraint when PostgreSQL reports one.
// Anything else is returned as is.
func MapError(err, notFound, duplicate error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if pgErr.ConstraintName == "" {
		return duplicate
	}
	return fmt.Errorf("%w: %s", duplicate, pgErr.ConstraintName)
}
