package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes Errors.Map understands.
const (
	codeUniqueViolation = "23505"
	codeCheckViolation  = "23514"
	codeNotNull         = "23502"
	codeForeignKey      = "23503"
)

// Errors names the domain errors a repository reports for driver failures.
// A nil field leaves that class of failure unmapped.
type Errors struct {
	NotFound  error
	Duplicate error
	Invalid   error
}

// Map translates err: sql.ErrNoRows becomes NotFound, a unique violation
// becomes Duplicate, and check, not-null or foreign key violations become
// Invalid. Constraint violations keep the constraint name in the message.
// Anything else is returned unchanged.
func (e Errors) Map(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && e.NotFound != nil {
		return e.NotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case codeUniqueViolation:
		if e.Duplicate != nil {
			return constraint(e.Duplicate, pgErr)
		}
	case codeCheckViolation, codeNotNull, codeForeignKey:
		if e.Invalid != nil {
			return constraint(e.Invalid, pgErr)
		}
	}
	return err
}

func constraint(sentinel error, pgErr *pgconn.PgError) error {
	if pgErr.ConstraintName == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, pgErr.ConstraintName)
}
