package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Resume // id -> resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Resume)}
}

func (r *MemoryRepo) Create(ctx context.Context, res Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[res.ID] = res
	return nil
}

func (r *MemoryRepo) GetActive(ctx context.Context, userID, id string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[id]
	if !ok || res.UserID != userID || !res.Active {
		return Resume{}, ErrNotFound
	}
	return res, nil
}

func (r *MemoryRepo) ListActive(ctx context.Context, userID string) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Resume, 0)
	for _, res := range r.data {
		if res.UserID == userID && res.Active {
			out = append(out, res)
		}
	}
	r.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) Deactivate(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok || res.UserID != userID {
		return ErrNotFound
	}
	if res.Active {
		res.Active = false
		res.UpdatedAt = time.Now().UTC()
		r.data[id] = res
	}
	return nil
}

func (r *MemoryRepo) ListAllActive(ctx context.Context) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Resume, 0, len(r.data))
	for _, res := range r.data {
		if res.Active {
			out = append(out, res)
		}
	}
	r.mu.RUnlock()
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepo) UpdateLocator(ctx context.Context, id, locator string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	res.BlobLocator = locator
	res.UpdatedAt = time.Now().UTC()
	r.data[id] = res
	return nil
}

// Count returns the number of stored records, active or not.
func (r *MemoryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}

// Raw returns a record regardless of owner or active flag.
func (r *MemoryRepo) Raw(id string) (Resume, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[id]
	return res, ok
}

func sortNewestFirst(list []Resume) {
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}
