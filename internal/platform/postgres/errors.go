package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Errors returned by MapError.
var (
	// ErrSchemaMissing means a table is absent; run "server migrate up".
	ErrSchemaMissing = errors.New("database schema missing, run migrations")

	// ErrUnavailable means the database could not serve the request.
	ErrUnavailable = errors.New("database unavailable")

	// ErrConstraint means a write violated a table constraint.
	ErrConstraint = errors.New("database constraint violated")
)

// PostgreSQL error codes
const (
	undefinedTableCode     = "42P01"
	checkViolationCode     = "23514"
	notNullViolationCode   = "23502"
	adminShutdownCode      = "57P01"
	cannotConnectNowCode   = "57P03"
	tooManyConnectionsCode = "53300"
)

// MapError classifies a database error, wrapping the original so that
// errors.Is works against both the category and the driver error.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgErr.Code == undefinedTableCode:
			return fmt.Errorf("%w: %w", ErrSchemaMissing, err)
		case pgErr.Code == checkViolationCode, pgErr.Code == notNullViolationCode:
			return fmt.Errorf("%w (%s): %w", ErrConstraint, pgErr.ConstraintName, err)
		case pgErr.Code == adminShutdownCode,
			pgErr.Code == cannotConnectNowCode,
			pgErr.Code == tooManyConnectionsCode,
			len(pgErr.Code) == 5 && pgErr.Code[:2] == "08":
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return err
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}
