package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resume-matcher/internal/shared/storage/blob"
	"resume-matcher/internal/shared/util"
)

func TestPutGetDelete(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()

	loc, err := s.Put(ctx, strings.NewReader("%PDF-1.4 body"), "cv.pdf", blob.Meta{OwnerID: "user-1", ContentType: "application/pdf"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(loc, util.HashUserKey("user-1")+"/") {
		t.Fatalf("expected owner-hashed locator, got %q", loc)
	}
	if !strings.HasSuffix(loc, "_cv.pdf") {
		t.Fatalf("expected sanitized name suffix, got %q", loc)
	}

	rc, err := s.Get(ctx, loc)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, []byte("%PDF-1.4 body")) {
		t.Fatalf("unexpected content %q", got)
	}

	if err := s.Delete(ctx, loc); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, loc); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, loc); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestPutLeavesNoPartialFiles(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)

	loc, err := s.Put(context.Background(), strings.NewReader("x"), "a.docx", blob.Meta{OwnerID: "u"})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	entries, err := os.ReadDir(filepath.Join(dir, filepath.Dir(loc)))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".part") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestLocatorsOutsideRootAreNotFound(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "outside")
	if err := os.MkdirAll(outside, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	secret := filepath.Join(outside, "secret.pdf")
	if err := os.WriteFile(secret, []byte("secret"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s := New(filepath.Join(root, "store"))

	for _, loc := range []string{
		"../outside/secret.pdf",
		"..",
		secret,
		"/opt/app/server/uploads/u1_cv.pdf",
		`..\outside\secret.pdf`,
	} {
		if _, err := s.Get(context.Background(), loc); !errors.Is(err, blob.ErrNotFound) {
			t.Fatalf("Get(%q): expected ErrNotFound, got %v", loc, err)
		}
		if err := s.Delete(context.Background(), loc); !errors.Is(err, blob.ErrNotFound) {
			t.Fatalf("Delete(%q): expected ErrNotFound, got %v", loc, err)
		}
	}
	if _, err := os.Stat(secret); err != nil {
		t.Fatalf("file outside the store was touched: %v", err)
	}
	if _, err := s.Put(context.Background(), strings.NewReader("x"), "../x.pdf", blob.Meta{OwnerID: "u"}); err == nil {
		t.Fatalf("expected sanitize error")
	}
}

func TestForeignLocatorIsNotFound(t *testing.T) {
	s := New(t.TempDir())
	if _, err := s.Get(context.Background(), "inline:AAAA"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
