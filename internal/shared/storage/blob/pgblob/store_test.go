package pgblob

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"resume-matcher/internal/shared/storage/blob"
)

const blobID = "8d0f6a3e-4c1b-4f7e-9a61-0c7f1f9e2b11"

func TestPutInsertsRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO resume_blobs")).
		WithArgs(sqlmock.AnyArg(), "user-1", "cv.pdf", "application/pdf", int64(4), []byte("%PDF")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	loc, err := New(db).Put(context.Background(), strings.NewReader("%PDF"), "cv.pdf", blob.Meta{OwnerID: "user-1", ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if len(loc) != 36 {
		t.Fatalf("expected uuid locator, got %q", loc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM resume_blobs WHERE id = $1")).
		WithArgs(blobID).
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow([]byte("hello")))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT data FROM resume_blobs WHERE id = $1")).
		WithArgs(blobID).
		WillReturnError(sql.ErrNoRows)

	s := New(db)
	rc, err := s.Get(context.Background(), blobID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	if string(body) != "hello" {
		t.Fatalf("unexpected body %q", body)
	}
	if _, err := s.Get(context.Background(), blobID); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Get(context.Background(), "owner/file.pdf"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign locator, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDelete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resume_blobs WHERE id = $1")).
		WithArgs(blobID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM resume_blobs WHERE id = $1")).
		WithArgs(blobID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	s := New(db)
	if err := s.Delete(context.Background(), blobID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := s.Delete(context.Background(), blobID); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
