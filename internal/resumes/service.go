package resumes

import (
	"context"
	"errors"
	"fmt"
	"io"

	"resume-matcher/internal/shared/storage/blob"
)

// Service contains resume operations. Every method is scoped to userID.
type Service struct {
	Repo     Repo
	Store    blob.Store
	Pipeline *Pipeline
}

// NewService constructs a Service.
func NewService(repo Repo, store blob.Store, pipeline *Pipeline) *Service {
	return &Service{Repo: repo, Store: store, Pipeline: pipeline}
}

// Upload ingests a new resume.
func (s *Service) Upload(ctx context.Context, userID string, up Upload) (Resume, error) {
	if userID == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Pipeline.Ingest(ctx, userID, up)
}

// List returns the user's active resumes, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	return s.Repo.ListActive(ctx, userID)
}

// Get returns one active resume owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Resume, error) {
	if userID == "" || id == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetActive(ctx, userID, id)
}

// Open returns the resume and a reader over its original bytes. A blob missing
// from every store resolves to ErrNotFound.
func (s *Service) Open(ctx context.Context, userID, id string) (Resume, io.ReadCloser, error) {
	res, err := s.Get(ctx, userID, id)
	if err != nil {
		return Resume{}, nil, err
	}
	rc, err := s.Store.Get(ctx, res.BlobLocator)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return Resume{}, nil, ErrNotFound
		}
		return Resume{}, nil, fmt.Errorf("%w: open blob: %v", ErrStorage, err)
	}
	return res, rc, nil
}

// Delete soft-deletes a resume. Deleting an already deleted resume succeeds.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return ErrNotFound
	}
	return s.Repo.Deactivate(ctx, userID, id)
}
