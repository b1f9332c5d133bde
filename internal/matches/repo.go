package matches

import "context"

// Repo persists matches. Matches are immutable once created.
type Repo interface {
	Create(ctx context.Context, m Match) error
	Get(ctx context.Context, userID, id string) (Match, error)
	List(ctx context.Context, userID string) ([]Match, error)
}
