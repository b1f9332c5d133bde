package resumes

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const resumeColumns = `id, user_id, original_name, mime_type, file_size, blob_locator, extracted_text, is_active, processing_time_ms, page_count, file_type, created_at, updated_at`

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, res Resume) error {
	const query = `
INSERT INTO resumes (
    id,
    user_id,
    original_name,
    mime_type,
    file_size,
    blob_locator,
    extracted_text,
    is_active,
    processing_time_ms,
    page_count,
    file_type,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	var pageCount sql.NullInt32
	if res.PageCount != nil {
		pageCount = sql.NullInt32{Int32: int32(*res.PageCount), Valid: true}
	}
	updatedAt := res.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = res.CreatedAt
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		res.ID,
		res.UserID,
		res.OriginalName,
		res.MimeType,
		res.FileSize,
		res.BlobLocator,
		res.ExtractedText,
		res.Active,
		res.ProcessingTime.Milliseconds(),
		pageCount,
		res.FileType,
		res.CreatedAt,
		updatedAt,
	)
	return err
}

// GetActive returns an active resume owned by userID.
func (r *PGRepo) GetActive(ctx context.Context, userID, id string) (Resume, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Resume{}, ErrNotFound
	}
	query := `SELECT ` + resumeColumns + `
FROM resumes
WHERE id = $1 AND user_id = $2 AND is_active`
	res, err := scanResume(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return res, nil
}

// ListActive returns the user's active resumes, newest first.
func (r *PGRepo) ListActive(ctx context.Context, userID string) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + `
FROM resumes
WHERE user_id = $1 AND is_active
ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

// ListAllActive returns every active resume, newest first.
func (r *PGRepo) ListAllActive(ctx context.Context) ([]Resume, error) {
	query := `SELECT ` + resumeColumns + `
FROM resumes
WHERE is_active
ORDER BY created_at DESC`
	return r.list(ctx, query)
}

// Deactivate soft-deletes a resume owned by userID.
func (r *PGRepo) Deactivate(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	const query = `
UPDATE resumes
SET is_active = FALSE,
    updated_at = CASE WHEN is_active THEN $3 ELSE updated_at END
WHERE id = $1 AND user_id = $2`
	result, err := r.DB.ExecContext(ctx, query, id, userID, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLocator rewrites the blob locator of a resume.
func (r *PGRepo) UpdateLocator(ctx context.Context, id, locator string) error {
	const query = `UPDATE resumes SET blob_locator = $2, updated_at = $3 WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id, locator, time.Now().UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) list(ctx context.Context, query string, args ...any) ([]Resume, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		res, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var res Resume
	var processingMS int64
	var pageCount sql.NullInt32
	err := row.Scan(
		&res.ID,
		&res.UserID,
		&res.OriginalName,
		&res.MimeType,
		&res.FileSize,
		&res.BlobLocator,
		&res.ExtractedText,
		&res.Active,
		&processingMS,
		&pageCount,
		&res.FileType,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return Resume{}, err
	}
	res.ProcessingTime = time.Duration(processingMS) * time.Millisecond
	if pageCount.Valid {
		n := int(pageCount.Int32)
		res.PageCount = &n
	}
	return res, nil
}

var _ Repo = (*PGRepo)(nil)
