// Package pgblob stores blobs in the resume_blobs table.
package pgblob

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"resume-matcher/internal/shared/storage/blob"
)

// Store persists blobs as bytea rows. Locators are row UUIDs.
type Store struct {
	DB *sql.DB
}

// New returns a Postgres-backed blob store.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

func (s *Store) Put(ctx context.Context, r io.Reader, suggestedName string, meta blob.Meta) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	id := uuid.NewString()
	_, err = s.DB.ExecContext(ctx, `
INSERT INTO resume_blobs (id, owner_id, file_name, content_type, size_bytes, data)
VALUES ($1, $2, $3, $4, $5, $6)
`, id, meta.OwnerID, suggestedName, meta.ContentType, int64(len(data)), data)
	if err != nil {
		return "", fmt.Errorf("insert blob: %w", err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	if _, err := uuid.Parse(locator); err != nil {
		return nil, blob.ErrNotFound
	}
	var data []byte
	err := s.DB.QueryRowContext(ctx, `SELECT data FROM resume_blobs WHERE id = $1`, locator).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, blob.ErrNotFound
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *Store) Delete(ctx context.Context, locator string) error {
	if _, err := uuid.Parse(locator); err != nil {
		return blob.ErrNotFound
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM resume_blobs WHERE id = $1`, locator)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return blob.ErrNotFound
	}
	return nil
}

var _ blob.Store = (*Store)(nil)
