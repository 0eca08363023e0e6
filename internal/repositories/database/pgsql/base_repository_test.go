package pgsql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestUniqueViolation(t *testing.T) {
	t.Run("unique violation surfaces the constraint name", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23505", ConstraintName: receiptConstraint}
		constraint, ok := uniqueViolation(fmt.Errorf("insert transaction: %w", pgErr))
		assert.True(t, ok)
		assert.Equal(t, receiptConstraint, constraint)
	})

	t.Run("other SQL states are not unique violations", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "23503", ConstraintName: "transaction_line_items_transaction_id_fkey"}
		_, ok := uniqueViolation(pgErr)
		assert.False(t, ok)
	})

	t.Run("non-pg errors are not unique violations", func(t *testing.T) {
		_, ok := uniqueViolation(errors.New("connection reset"))
		assert.False(t, ok)
	})
}
