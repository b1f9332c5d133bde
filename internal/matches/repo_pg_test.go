package matches

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

const (
	testMatchID  = "7c1d2e3f-4a5b-4c6d-8e9f-0a1b2c3d4e5f"
	testResumeID = "0b6f7f0e-5d8e-4c52-9d55-5a4c1e0f7a10"
	testUserID   = "5f3c9a3e-2f0b-4a51-8c1e-6d2b7e9a4c21"
)

var matchCols = []string{
	"id", "user_id", "resume_id", "original_name", "job_description", "score", "summary",
	"strengths", "improvements", "missing_skills", "processing_time_ms", "estimated_cost",
	"input_tokens", "output_tokens", "provider", "model", "retry_count", "created_at",
}

func TestPGRepoCreateEncodesLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	m := Match{
		ID:             testMatchID,
		UserID:         testUserID,
		ResumeID:       testResumeID,
		JobDescription: "Backend engineer",
		Score:          80,
		Summary:        "ok",
		Strengths:      []string{"Go"},
		Metadata: Metadata{
			ProcessingTime: 1500 * time.Millisecond,
			EstimatedCost:  0.006,
			InputTokens:    1000,
			OutputTokens:   200,
			Provider:       "anthropic",
			Model:          "claude",
		},
		CreatedAt: now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO matches")).
		WithArgs(testMatchID, testUserID, testResumeID, "Backend engineer", float64(80), "ok",
			[]byte(`["Go"]`), []byte(`[]`), []byte(`[]`), int64(1500), 0.006, 1000, 200, "anthropic", "claude", 0, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Create(context.Background(), m); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM matches m")).
		WithArgs(testMatchID, testUserID).
		WillReturnRows(sqlmock.NewRows(matchCols).AddRow(
			testMatchID, testUserID, testResumeID, "jane.pdf", "desc", 72.0, "fine",
			[]byte(`["a","b"]`), []byte(`["c"]`), nil, int64(900), 0.004, int64(800), int64(100),
			"openai", "gpt", int64(0), now,
		))
	mock.ExpectQuery(regexp.QuoteMeta("FROM matches m")).
		WithArgs(testMatchID, "other").
		WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	m, err := repo.Get(context.Background(), testUserID, testMatchID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m.ResumeName != "jane.pdf" || len(m.Strengths) != 2 || len(m.Improvements) != 1 {
		t.Fatalf("unexpected match: %+v", m)
	}
	if m.MissingSkills == nil || len(m.MissingSkills) != 0 {
		t.Fatalf("expected empty missing skills, got %#v", m.MissingSkills)
	}
	if m.Metadata.ProcessingTime != 900*time.Millisecond || m.Metadata.InputTokens != 800 {
		t.Fatalf("unexpected metadata: %+v", m.Metadata)
	}

	if _, err := repo.Get(context.Background(), "other", testMatchID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Get(context.Background(), testUserID, "not-a-uuid"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for malformed id, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoListNewestFirst(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY m.created_at DESC")).
		WithArgs(testUserID).
		WillReturnRows(sqlmock.NewRows(matchCols).
			AddRow(testMatchID, testUserID, testResumeID, "", "desc", 50.0, "s", []byte(`["x"]`), []byte(`[]`), []byte(`[]`), int64(1), 0.0, int64(0), int64(0), "", "", int64(0), now))

	repo := &PGRepo{DB: db}
	list, err := repo.List(context.Background(), testUserID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].ID != testMatchID {
		t.Fatalf("unexpected list: %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
