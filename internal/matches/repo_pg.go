package matches

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PGRepo implements Repo using Postgres. List fields are stored as jsonb.
type PGRepo struct {
	DB *sql.DB
}

const matchSelect = `
SELECT m.id, m.user_id, m.resume_id, COALESCE(r.original_name, ''), m.job_description, m.score, m.summary,
       m.strengths, m.improvements, m.missing_skills, m.processing_time_ms, m.estimated_cost,
       m.input_tokens, m.output_tokens, m.provider, m.model, m.retry_count, m.created_at
FROM matches m
LEFT JOIN resumes r ON r.id = m.resume_id`

func (r *PGRepo) Create(ctx context.Context, m Match) error {
	const query = `
INSERT INTO matches (
    id,
    user_id,
    resume_id,
    job_description,
    score,
    summary,
    strengths,
    improvements,
    missing_skills,
    processing_time_ms,
    estimated_cost,
    input_tokens,
    output_tokens,
    provider,
    model,
    retry_count,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`

	strengths, err := encodeList(m.Strengths)
	if err != nil {
		return err
	}
	improvements, err := encodeList(m.Improvements)
	if err != nil {
		return err
	}
	missing, err := encodeList(m.MissingSkills)
	if err != nil {
		return err
	}

	_, err = r.DB.ExecContext(
		ctx,
		query,
		m.ID,
		m.UserID,
		m.ResumeID,
		m.JobDescription,
		m.Score,
		m.Summary,
		strengths,
		improvements,
		missing,
		m.Metadata.ProcessingTime.Milliseconds(),
		m.Metadata.EstimatedCost,
		m.Metadata.InputTokens,
		m.Metadata.OutputTokens,
		m.Metadata.Provider,
		m.Metadata.Model,
		m.Metadata.RetryCount,
		m.CreatedAt,
	)
	return err
}

func (r *PGRepo) Get(ctx context.Context, userID, id string) (Match, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Match{}, ErrNotFound
	}
	query := matchSelect + `
WHERE m.id = $1 AND m.user_id = $2`
	m, err := scanMatch(r.DB.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Match{}, ErrNotFound
		}
		return Match{}, err
	}
	return m, nil
}

func (r *PGRepo) List(ctx context.Context, userID string) ([]Match, error) {
	query := matchSelect + `
WHERE m.user_id = $1
ORDER BY m.created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (Match, error) {
	var (
		m                                  Match
		strengths, improvements, missing   []byte
		processingMS                       int64
		inputTokens, outputTokens, retries int64
		createdAt                          time.Time
	)
	if err := row.Scan(
		&m.ID,
		&m.UserID,
		&m.ResumeID,
		&m.ResumeName,
		&m.JobDescription,
		&m.Score,
		&m.Summary,
		&strengths,
		&improvements,
		&missing,
		&processingMS,
		&m.Metadata.EstimatedCost,
		&inputTokens,
		&outputTokens,
		&m.Metadata.Provider,
		&m.Metadata.Model,
		&retries,
		&createdAt,
	); err != nil {
		return Match{}, err
	}

	var err error
	if m.Strengths, err = decodeList(strengths); err != nil {
		return Match{}, fmt.Errorf("decode strengths: %w", err)
	}
	if m.Improvements, err = decodeList(improvements); err != nil {
		return Match{}, fmt.Errorf("decode improvements: %w", err)
	}
	if m.MissingSkills, err = decodeList(missing); err != nil {
		return Match{}, fmt.Errorf("decode missing_skills: %w", err)
	}
	m.Metadata.ProcessingTime = time.Duration(processingMS) * time.Millisecond
	m.Metadata.InputTokens = int(inputTokens)
	m.Metadata.OutputTokens = int(outputTokens)
	m.Metadata.RetryCount = int(retries)
	m.CreatedAt = createdAt.UTC()
	return m, nil
}

func encodeList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	return json.Marshal(list)
}

func decodeList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}
