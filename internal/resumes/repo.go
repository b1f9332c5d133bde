package resumes

import "context"

// Repo persists resume records. Lookups scoped by user only return active resumes.
type Repo interface {
	Create(ctx context.Context, r Resume) error
	GetActive(ctx context.Context, userID, id string) (Resume, error)
	ListActive(ctx context.Context, userID string) ([]Resume, error)
	// Deactivate soft-deletes a resume. Repeated calls succeed; ErrNotFound
	// only when the user owns no such resume.
	Deactivate(ctx context.Context, userID, id string) error
	ListAllActive(ctx context.Context) ([]Resume, error)
	UpdateLocator(ctx context.Context, id, locator string) error
}
