package local

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resume-matcher/internal/shared/storage/blob"
	"resume-matcher/internal/shared/util"
)

// Store keeps blobs on the local filesystem. Locators are paths relative to baseDir.
type Store struct {
	baseDir string
}

// New creates a local blob store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Put writes r under the owner's hashed directory with a random prefix. The
// file is written to a temp name, synced, then renamed into place.
func (s *Store) Put(ctx context.Context, r io.Reader, suggestedName string, meta blob.Meta) (string, error) {
	sanitizedName, err := util.SanitizeFileName(suggestedName)
	if err != nil {
		return "", fmt.Errorf("sanitize file name: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ownerKey := util.HashUserKey(meta.OwnerID)
	finalName := fmt.Sprintf("%s_%s", randomID(), sanitizedName)

	dirPath := filepath.Join(s.baseDir, ownerKey)
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	fullPath := filepath.Join(dirPath, finalName)
	tmpPath := fullPath + ".part"
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write body: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("sync: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("rename: %w", err)
	}

	return filepath.ToSlash(filepath.Join(ownerKey, finalName)), nil
}

// Get opens a stored blob for reading.
func (s *Store) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fullPath, err := s.resolve(locator)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, blob.ErrNotFound
		}
		return nil, err
	}
	return f, nil
}

// Delete removes a stored blob.
func (s *Store) Delete(ctx context.Context, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := s.resolve(locator)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return blob.ErrNotFound
		}
		return err
	}
	return nil
}

// resolve maps a locator to a path under baseDir. Locators from other
// backends, absolute paths and paths escaping baseDir are never opened and
// report ErrNotFound so a fallback chain can continue.
func (s *Store) resolve(locator string) (string, error) {
	if locator == "" || strings.Contains(locator, ":") {
		return "", blob.ErrNotFound
	}
	slashed := filepath.FromSlash(strings.ReplaceAll(locator, "\\", "/"))
	if filepath.IsAbs(slashed) || strings.HasPrefix(slashed, string(filepath.Separator)) {
		return "", blob.ErrNotFound
	}
	clean := filepath.Clean(slashed)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", blob.ErrNotFound
	}
	return filepath.Join(s.baseDir, clean), nil
}

func randomID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}

var _ blob.Store = (*Store)(nil)
