package matches

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Match
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Match)}
}

func (r *MemoryRepo) Create(ctx context.Context, m Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[m.ID] = m
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, userID, id string) (Match, error) {
	if err := ctx.Err(); err != nil {
		return Match{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.data[id]
	if !ok || m.UserID != userID {
		return Match{}, ErrNotFound
	}
	return m, nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string) ([]Match, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Match, 0)
	for _, m := range r.data {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Count returns the number of stored matches.
func (r *MemoryRepo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
