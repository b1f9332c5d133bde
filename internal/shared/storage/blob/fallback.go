package blob

import (
	"context"
	"errors"
	"io"
)

// Fallback resolves reads through a secondary store when the primary has no
// object for a locator. Writes and deletes only touch the primary.
type Fallback struct {
	Primary   Store
	Secondary Store
	// Rewrite maps a primary locator onto the secondary's namespace.
	Rewrite func(locator string) string
}

// WithFallback wraps primary. A nil secondary returns primary unchanged.
func WithFallback(primary, secondary Store, rewrite func(string) string) Store {
	if secondary == nil {
		return primary
	}
	if rewrite == nil {
		rewrite = func(l string) string { return l }
	}
	return &Fallback{Primary: primary, Secondary: secondary, Rewrite: rewrite}
}

func (f *Fallback) Put(ctx context.Context, r io.Reader, suggestedName string, meta Meta) (string, error) {
	return f.Primary.Put(ctx, r, suggestedName, meta)
}

func (f *Fallback) Get(ctx context.Context, locator string) (io.ReadCloser, error) {
	rc, err := f.Primary.Get(ctx, locator)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return rc, err
	}
	alt := f.Rewrite(locator)
	if alt == "" {
		return nil, ErrNotFound
	}
	rc, err = f.Secondary.Get(ctx, alt)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rc, nil
}

func (f *Fallback) Delete(ctx context.Context, locator string) error {
	return f.Primary.Delete(ctx, locator)
}
