// Package postgres implements the generic document store on PostgreSQL.
//
// Documents live as JSONB rows in a single table keyed by (collection, id).
// Equality filters use JSONB containment; ordering and limits across other
// fields are deliberately not offered, matching the store contract callers
// must assume.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NexabitAI/mock-interviews-ai/internal/domain"
)

// PgxPool is a minimal subset of pgxpool used by the store for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists documents in PostgreSQL.
type Store struct{ Pool PgxPool }

// NewStore constructs a Store with the given pool.
func NewStore(p PgxPool) *Store { return &Store{Pool: p} }

// EnsureSchema creates the documents table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, id)
	)`
	if _, err := s.Pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("op=docstore.ensure_schema: %w", err)
	}
	return nil
}

// Add stores doc under a fresh id and returns it.
func (s *Store) Add(ctx context.Context, collection string, doc map[string]any) (string, error) {
	tracer := otel.Tracer("docstore.postgres")
	ctx, span := tracer.Start(ctx, "docstore.Add")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.collection", collection),
	)
	id := uuid.New().String()
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("op=docstore.add: %w", err)
	}
	q := `INSERT INTO documents (collection, id, doc, created_at) VALUES ($1,$2,$3,$4)`
	if _, err := s.Pool.Exec(ctx, q, collection, id, b, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=docstore.add: %w", err)
	}
	return id, nil
}

// Get returns the document or domain.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (map[string]any, error) {
	tracer := otel.Tracer("docstore.postgres")
	ctx, span := tracer.Start(ctx, "docstore.Get")
	defer span.End()
	span.SetAttributes(attribute.String("db.collection", collection))
	var b []byte
	q := `SELECT doc FROM documents WHERE collection=$1 AND id=$2`
	if err := s.Pool.QueryRow(ctx, q, collection, id).Scan(&b); err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("op=docstore.get: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("op=docstore.get: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("op=docstore.get: %w", err)
	}
	return doc, nil
}

// Set fully replaces the document at id, creating it if absent.
func (s *Store) Set(ctx context.Context, collection, id string, doc map[string]any) error {
	tracer := otel.Tracer("docstore.postgres")
	ctx, span := tracer.Start(ctx, "docstore.Set")
	defer span.End()
	span.SetAttributes(attribute.String("db.collection", collection))
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("op=docstore.set: %w", err)
	}
	q := `INSERT INTO documents (collection, id, doc, created_at) VALUES ($1,$2,$3,$4)
	ON CONFLICT (collection, id) DO UPDATE SET doc=EXCLUDED.doc`
	if _, err := s.Pool.Exec(ctx, q, collection, id, b, time.Now().UTC()); err != nil {
		return fmt.Errorf("op=docstore.set: %w", err)
	}
	return nil
}

// Update merges fields into an existing document via JSONB concatenation.
func (s *Store) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	tracer := otel.Tracer("docstore.postgres")
	ctx, span := tracer.Start(ctx, "docstore.Update")
	defer span.End()
	span.SetAttributes(attribute.String("db.collection", collection))
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("op=docstore.update: %w", err)
	}
	q := `UPDATE documents SET doc = doc || $3::jsonb WHERE collection=$1 AND id=$2`
	tag, err := s.Pool.Exec(ctx, q, collection, id, b)
	if err != nil {
		return fmt.Errorf("op=docstore.update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("op=docstore.update: %w", domain.ErrNotFound)
	}
	return nil
}

// Query returns documents whose fields equal every filter value, using JSONB
// containment. limit <= 0 means no limit.
func (s *Store) Query(ctx context.Context, collection string, filters map[string]any, limit int) ([]domain.Document, error) {
	tracer := otel.Tracer("docstore.postgres")
	ctx, span := tracer.Start(ctx, "docstore.Query")
	defer span.End()
	span.SetAttributes(attribute.String("db.collection", collection))
	fb, err := json.Marshal(filters)
	if err != nil {
		return nil, fmt.Errorf("op=docstore.query: %w", err)
	}
	q := `SELECT id, doc FROM documents WHERE collection=$1 AND doc @> $2::jsonb`
	args := []any{collection, fb}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := s.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=docstore.query: %w", err)
	}
	defer rows.Close()
	var out []domain.Document
	for rows.Next() {
		var id string
		var b []byte
		if err := rows.Scan(&id, &b); err != nil {
			return nil, fmt.Errorf("op=docstore.query: %w", err)
		}
		var doc map[string]any
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("op=docstore.query: %w", err)
		}
		out = append(out, domain.Document{ID: id, Data: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=docstore.query: %w", err)
	}
	return out, nil
}
