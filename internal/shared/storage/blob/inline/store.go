// Package inline encodes blobs directly into their locator. It suits small
// deployments where resume files are tiny and a separate store is overkill.
package inline

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"resume-matcher/internal/shared/storage/blob"
)

// Prefix marks an inline locator.
const Prefix = "inline:"

// Store is stateless; Delete has nothing to remove.
type Store struct{}

func New() Store { return Store{} }

func (Store) Put(ctx context.Context, r io.Reader, _ string, _ blob.Meta) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return Prefix + base64.StdEncoding.EncodeToString(data), nil
}

func (Store) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	encoded, ok := strings.CutPrefix(locator, Prefix)
	if !ok {
		return nil, blob.ErrNotFound
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode inline blob: %w", err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (Store) Delete(_ context.Context, locator string) error {
	if !strings.HasPrefix(locator, Prefix) {
		return blob.ErrNotFound
	}
	return nil
}

var _ blob.Store = Store{}
