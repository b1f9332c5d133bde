package blob

import (
	"context"
	"errors"
	"time"

	"resume-matcher/internal/shared/telemetry"
)

const cleanupTimeout = 10 * time.Second

// FailureRecorder counts cleanup failures.
type FailureRecorder interface {
	RecordCleanupFailure()
}

// CleanupBestEffort deletes locator and never reports failure to the caller. It runs on a
// context detached from ctx's cancellation so an aborted request still removes
// its blob. A missing blob counts as cleaned.
func CleanupBestEffort(ctx context.Context, store Store, locator string, rec FailureRecorder) {
	if store == nil || locator == "" {
		return
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	err := store.Delete(cctx, locator)
	if err == nil || errors.Is(err, ErrNotFound) {
		return
	}
	if rec != nil {
		rec.RecordCleanupFailure()
	}
	telemetry.Error("blob.cleanup.failed", map[string]any{
		"locator": redactLocator(locator),
		"err":     err.Error(),
	})
}

func redactLocator(locator string) string {
	const max = 96
	if len(locator) > max {
		return locator[:max] + "..."
	}
	return locator
}
