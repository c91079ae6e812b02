package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	t.Parallel()

	plain := errors.New("boom")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"undefined table", &pgconn.PgError{Code: "42P01", Message: `relation "usage_counter" does not exist`}, ErrSchemaMissing},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "usage_counter_id_check"}, ErrConstraint},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "day"}, ErrConstraint},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, ErrUnavailable},
		{"connection exception class", &pgconn.PgError{Code: "08006"}, ErrUnavailable},
		{"wrapped", fmt.Errorf("failed to consume usage: %w", &pgconn.PgError{Code: "53300"}), ErrUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := MapError(tc.err)
			if tc.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tc.want)
			assert.ErrorIs(t, got, tc.err, "original error is preserved")
		})
	}

	t.Run("unmapped errors pass through", func(t *testing.T) {
		assert.Same(t, plain, MapError(plain))
		unique := &pgconn.PgError{Code: "23505"}
		assert.Equal(t, error(unique), MapError(unique))
	})
}
