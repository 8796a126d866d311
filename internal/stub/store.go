// Package stub implements the fault-injecting development backend. It
// serves the same routes and error payloads as the real admin API so the
// client's retry and classification paths can be exercised locally.
package stub

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("record not found")

// Store persists resources as JSON documents keyed by (resource, id).
// One schema serves every collection, which is all a fixture store needs.
type Store struct {
	db *sql.DB
}

// NewStore creates a Store over an opened, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// List returns all documents of a resource ordered by id.
func (s *Store) List(ctx context.Context, resource string) ([]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM records WHERE resource = ? ORDER BY id`, resource)
	if err != nil {
		return nil, fmt.Errorf("stub: list %s: %w", resource, err)
	}
	defer rows.Close()

	docs := make([]json.RawMessage, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("stub: scan %s: %w", resource, err)
		}
		docs = append(docs, json.RawMessage(data))
	}
	return docs, rows.Err()
}

// Get returns one document by id.
func (s *Store) Get(ctx context.Context, resource string, id int64) (json.RawMessage, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM records WHERE resource = ? AND id = ?`, resource, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stub: get %s/%d: %w", resource, id, err)
	}
	return json.RawMessage(data), nil
}

// Insert stores doc under the next free id and returns the stored document.
func (s *Store) Insert(ctx context.Context, resource string, doc map[string]any) (json.RawMessage, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("stub: begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var id int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(id), 0) + 1 FROM records WHERE resource = ?`, resource).Scan(&id); err != nil {
		return nil, fmt.Errorf("stub: next id for %s: %w", resource, err)
	}

	doc["id"] = id
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("stub: encode %s: %w", resource, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO records (resource, id, data) VALUES (?, ?, ?)`, resource, id, data); err != nil {
		return nil, fmt.Errorf("stub: insert %s: %w", resource, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("stub: commit insert: %w", err)
	}
	return json.RawMessage(data), nil
}

// Update replaces the document with the given id and returns it.
func (s *Store) Update(ctx context.Context, resource string, id int64, doc map[string]any) (json.RawMessage, error) {
	doc["id"] = id
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("stub: encode %s: %w", resource, err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE records SET data = ? WHERE resource = ? AND id = ?`, data, resource, id)
	if err != nil {
		return nil, fmt.Errorf("stub: update %s/%d: %w", resource, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("stub: update %s/%d: %w", resource, id, err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return json.RawMessage(data), nil
}

// Delete removes the document with the given id.
func (s *Store) Delete(ctx context.Context, resource string, id int64) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE resource = ? AND id = ?`, resource, id)
	if err != nil {
		return fmt.Errorf("stub: delete %s/%d: %w", resource, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("stub: delete %s/%d: %w", resource, id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
