package mirror

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("mirror: document not found")

// Store keeps raw PokeAPI documents in the documents table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

type Document struct {
	Key       string
	Body      []byte
	FetchedAt time.Time
}

func (s *Store) Put(ctx context.Context, key string, body []byte) error {
	return s.PutMany(ctx, []Document{{Key: key, Body: body}})
}

// PutMany upserts docs in one transaction. A zero FetchedAt means now.
func (s *Store) PutMany(ctx context.Context, docs []Document) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO documents (path, body, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
		  body = excluded.body,
		  fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, d := range docs {
		at := d.FetchedAt
		if at.IsZero() {
			at = now
		}
		if _, err := stmt.ExecContext(ctx, d.Key, string(d.Body), at); err != nil {
			return fmt.Errorf("exec upsert for %s: %w", d.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (Document, error) {
	var (
		body string
		at   time.Time
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM documents WHERE path = ?`, key,
	).Scan(&body, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get %s: %w", key, err)
	}
	return Document{Key: key, Body: []byte(body), FetchedAt: at}, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
