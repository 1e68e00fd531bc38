package docstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	t.Run("no filters", func(t *testing.T) {
		sql, args := buildQuery("budgets", nil)
		assert.Equal(t, `SELECT doc FROM documents WHERE collection = $1 ORDER BY id`, sql)
		assert.Equal(t, []any{"budgets"}, args)
	})

	t.Run("equality filter", func(t *testing.T) {
		sql, args := buildQuery("budgets", []Filter{Eq("user_id", "user-1")})
		assert.Equal(t, `SELECT doc FROM documents WHERE collection = $1 AND doc->>'user_id' = $2 ORDER BY id`, sql)
		assert.Equal(t, []any{"budgets", "user-1"}, args)
	})

	t.Run("range filters stack", func(t *testing.T) {
		sql, args := buildQuery("transactions", []Filter{
			Eq("account_id", "acc-1"),
			Gte("date", "2024-03-01T00:00:00Z"),
			Lt("date", "2024-04-01T00:00:00Z"),
		})
		assert.Equal(t,
			`SELECT doc FROM documents WHERE collection = $1`+
				` AND doc->>'account_id' = $2`+
				` AND doc->>'date' >= $3`+
				` AND doc->>'date' < $4`+
				` ORDER BY id`,
			sql)
		assert.Len(t, args, 4)
	})

	t.Run("inclusive upper bound", func(t *testing.T) {
		sql, args := buildQuery("recurring_transactions", []Filter{
			Lte("next_due_date", "2024-03-15T00:00:00Z"),
		})
		assert.Equal(t,
			`SELECT doc FROM documents WHERE collection = $1 AND doc->>'next_due_date' <= $2 ORDER BY id`,
			sql)
		assert.Equal(t, []any{"recurring_transactions", "2024-03-15T00:00:00Z"}, args)
	})

	t.Run("field names are sanitized", func(t *testing.T) {
		sql, _ := buildQuery("users", []Filter{Eq("name'; DROP TABLE documents; --", "x")})
		assert.NotContains(t, sql, "DROP")
		assert.NotContains(t, sql, ";")
		assert.NotContains(t, sql, "--")
	})
}

func TestSafeIdent(t *testing.T) {
	assert.Equal(t, "user_id", safeIdent("user_id"))
	assert.Equal(t, "next_due_date", safeIdent("next_due_date'--"))
	assert.Equal(t, "", safeIdent(`"';`))
}

func TestNewID(t *testing.T) {
	id := NewID()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, parsed.String())
	assert.NotEqual(t, id, NewID())
}

func TestIsUniqueViolation(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "documents_pkey"`}
	assert.True(t, isUniqueViolation(pgErr))
	assert.True(t, isUniqueViolation(fmt.Errorf("create document: %w", pgErr)))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	// The code must come from the driver error, not from message text.
	assert.False(t, isUniqueViolation(errors.New("ERROR: duplicate key (SQLSTATE 23505)")))
	assert.False(t, isUniqueViolation(nil))
}

func TestTxCommitHooks(t *testing.T) {
	t.Run("hooks run in registration order", func(t *testing.T) {
		tx := &Tx{}
		var order []int
		tx.OnCommit(func() { order = append(order, 1) })
		tx.OnCommit(func() { order = append(order, 2) })
		tx.runCommitHooks()
		assert.Equal(t, []int{1, 2}, order)
	})

	t.Run("no hooks is a no-op", func(t *testing.T) {
		tx := &Tx{}
		assert.NotPanics(t, func() { tx.runCommitHooks() })
	})
}
