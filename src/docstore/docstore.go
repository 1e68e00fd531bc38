// Package docstore is a small document store on top of Postgres. Every entity
// kind lives in its own logical collection inside one documents table; bodies
// are JSONB, identifiers are generated strings, and foreign keys are plain
// string fields inside the document. Referential integrity is enforced by the
// callers, not the database.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lidiamcfreitas/budget-api/src/apperr"
)

// Store wraps an injected connection pool. Lifecycle is owned by main, not by
// any package-level state.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so every document
// operation can run standalone or inside a transaction.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunTx executes fn inside a single database transaction. All reads through
// the Tx lock the rows they touch, so paired balance updates either commit
// together or not at all. Hooks registered with OnCommit run only after the
// transaction has committed.
func (s *Store) RunTx(ctx context.Context, fn func(tx *Tx) error) error {
	pgtx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer pgtx.Rollback(ctx)

	tx := &Tx{tx: pgtx}
	if err := fn(tx); err != nil {
		return err
	}
	if err := pgtx.Commit(ctx); err != nil {
		return err
	}
	tx.runCommitHooks()
	return nil
}

// Tx exposes the same document operations bound to an open transaction.
type Tx struct {
	tx       pgx.Tx
	onCommit []func()
}

// OnCommit registers fn to run after the transaction commits. A rolled-back
// transaction never runs its hooks, so side effects such as cache
// invalidation cannot observe state that was never committed.
func (t *Tx) OnCommit(fn func()) {
	t.onCommit = append(t.onCommit, fn)
}

func (t *Tx) runCommitHooks() {
	for _, fn := range t.onCommit {
		fn()
	}
}

type Op string

const (
	OpEq  Op = "="
	OpGte Op = ">="
	OpLt  Op = "<"
	OpLte Op = "<="
)

// Filter matches a top-level document field. Values are compared as text;
// timestamps stored in RFC 3339 UTC order correctly under that comparison.
type Filter struct {
	Field string
	Op    Op
	Value string
}

func Eq(field, value string) Filter  { return Filter{Field: field, Op: OpEq, Value: value} }
func Gte(field, value string) Filter { return Filter{Field: field, Op: OpGte, Value: value} }
func Lt(field, value string) Filter  { return Filter{Field: field, Op: OpLt, Value: value} }
func Lte(field, value string) Filter { return Filter{Field: field, Op: OpLte, Value: value} }

// Collection is a typed view over one collection name.
type Collection[T any] struct {
	store *Store
	name  string
}

func NewCollection[T any](store *Store, name string) Collection[T] {
	return Collection[T]{store: store, name: name}
}

func (c Collection[T]) Name() string { return c.name }

// NewID generates a document identifier.
func NewID() string { return uuid.NewString() }

// Create inserts doc under id. A duplicate id surfaces as Conflict.
func (c Collection[T]) Create(ctx context.Context, id string, doc T) error {
	return createDoc(ctx, c.store.pool, c.name, id, doc)
}

func (c Collection[T]) CreateTx(ctx context.Context, tx *Tx, id string, doc T) error {
	return createDoc(ctx, tx.tx, c.name, id, doc)
}

// Get returns the document or a NotFound error; absence is never a nil, nil.
func (c Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	return getDoc[T](ctx, c.store.pool, c.name, id, false)
}

// GetTx reads the document inside tx with a row lock.
func (c Collection[T]) GetTx(ctx context.Context, tx *Tx, id string) (*T, error) {
	return getDoc[T](ctx, tx.tx, c.name, id, true)
}

// Query returns all documents matching every filter.
func (c Collection[T]) Query(ctx context.Context, filters ...Filter) ([]T, error) {
	return queryDocs[T](ctx, c.store.pool, c.name, filters)
}

// Update overwrites the document under id, failing with NotFound if absent.
func (c Collection[T]) Update(ctx context.Context, id string, doc T) error {
	return updateDoc(ctx, c.store.pool, c.name, id, doc)
}

func (c Collection[T]) UpdateTx(ctx context.Context, tx *Tx, id string, doc T) error {
	return updateDoc(ctx, tx.tx, c.name, id, doc)
}

// Set writes the document under id unconditionally (insert or replace).
func (c Collection[T]) Set(ctx context.Context, id string, doc T) error {
	return setDoc(ctx, c.store.pool, c.name, id, doc)
}

func (c Collection[T]) SetTx(ctx context.Context, tx *Tx, id string, doc T) error {
	return setDoc(ctx, tx.tx, c.name, id, doc)
}

func (c Collection[T]) Delete(ctx context.Context, id string) error {
	return deleteDoc(ctx, c.store.pool, c.name, id)
}

func (c Collection[T]) DeleteTx(ctx context.Context, tx *Tx, id string) error {
	return deleteDoc(ctx, tx.tx, c.name, id)
}

func createDoc[T any](ctx context.Context, q pgxQuerier, collection, id string, doc T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", collection, err)
	}
	_, err = q.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)`,
		collection, id, body,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("%s %s already exists", collection, id)
		}
		return fmt.Errorf("insert %s document: %w", collection, err)
	}
	return nil
}

func getDoc[T any](ctx context.Context, q pgxQuerier, collection, id string, lock bool) (*T, error) {
	query := `SELECT doc FROM documents WHERE collection = $1 AND id = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	var body []byte
	err := q.QueryRow(ctx, query, collection, id).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("%s %s not found", collection, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s document: %w", collection, err)
	}
	var doc T
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s document: %w", collection, err)
	}
	return &doc, nil
}

func queryDocs[T any](ctx context.Context, q pgxQuerier, collection string, filters []Filter) ([]T, error) {
	query, args := buildQuery(collection, filters)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s documents: %w", collection, err)
	}
	defer rows.Close()

	var docs []T
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal(body, &doc); err != nil {
			return nil, fmt.Errorf("unmarshal %s document: %w", collection, err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func updateDoc[T any](ctx context.Context, q pgxQuerier, collection, id string, doc T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", collection, err)
	}
	tag, err := q.Exec(ctx,
		`UPDATE documents SET doc = $3 WHERE collection = $1 AND id = $2`,
		collection, id, body,
	)
	if err != nil {
		return fmt.Errorf("update %s document: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("%s %s not found", collection, id)
	}
	return nil
}

func setDoc[T any](ctx context.Context, q pgxQuerier, collection, id string, doc T) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s document: %w", collection, err)
	}
	_, err = q.Exec(ctx,
		`INSERT INTO documents (collection, id, doc) VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id) DO UPDATE SET doc = EXCLUDED.doc`,
		collection, id, body,
	)
	if err != nil {
		return fmt.Errorf("set %s document: %w", collection, err)
	}
	return nil
}

func deleteDoc(ctx context.Context, q pgxQuerier, collection, id string) error {
	tag, err := q.Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("delete %s document: %w", collection, err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("%s %s not found", collection, id)
	}
	return nil
}

// buildQuery renders the SELECT for a filtered collection scan. Field names
// come from Go code, never from request input, so interpolating them after a
// strict identifier check is safe; values always go through placeholders.
func buildQuery(collection string, filters []Filter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT doc FROM documents WHERE collection = $1`)
	args := []any{collection}
	for _, f := range filters {
		args = append(args, f.Value)
		fmt.Fprintf(&sb, ` AND doc->>'%s' %s $%d`, safeIdent(f.Field), f.Op, len(args))
	}
	sb.WriteString(` ORDER BY id`)
	return sb.String(), args
}

func safeIdent(field string) string {
	var sb strings.Builder
	for _, r := range field {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// Postgres unique_violation, per Appendix A of the Postgres manual.
const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
