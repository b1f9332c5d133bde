package bootstrap

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/storage/blob"
)

func TestReadStoreResolvesLegacyLocators(t *testing.T) {
	legacyDir := t.TempDir()
	const name = "1699999999999-cv.pdf"
	if err := os.WriteFile(filepath.Join(legacyDir, name), []byte("%PDF-legacy"), 0o644); err != nil {
		t.Fatalf("write legacy file: %v", err)
	}

	store, err := ReadStore(context.Background(), config.Config{
		Env:              "dev",
		BlobStoreType:    "local",
		LocalStoreDir:    t.TempDir(),
		LegacyUploadsDir: legacyDir,
	}, nil)
	if err != nil {
		t.Fatalf("ReadStore: %v", err)
	}

	for _, loc := range []string{
		"uploads/" + name,
		"/opt/app/server/uploads/" + name,
		`C:\app\server\uploads\` + name,
		"../../uploads/" + name,
	} {
		rc, err := store.Get(context.Background(), loc)
		if err != nil {
			t.Fatalf("Get(%q): %v", loc, err)
		}
		data, _ := io.ReadAll(rc)
		rc.Close()
		if string(data) != "%PDF-legacy" {
			t.Fatalf("Get(%q): unexpected content %q", loc, data)
		}
	}

	if _, err := store.Get(context.Background(), "/opt/app/server/uploads/absent.pdf"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a file missing everywhere, got %v", err)
	}
}
