package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"path"
	"strings"

	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/storage/blob"
	"resume-matcher/internal/shared/storage/blob/inline"
	"resume-matcher/internal/shared/storage/blob/local"
	"resume-matcher/internal/shared/storage/blob/pgblob"
	s3store "resume-matcher/internal/shared/storage/blob/s3"
	"resume-matcher/internal/shared/telemetry"
)

// ReadStore returns the configured backend wrapped with read fallbacks for
// inline locators and, when configured, the legacy uploads directory.
func ReadStore(ctx context.Context, cfg config.Config, sqlDB *sql.DB) (blob.Store, error) {
	primary, err := PrimaryStore(ctx, cfg, sqlDB)
	if err != nil {
		return nil, err
	}
	return withLegacyFallbacks(primary, cfg.LegacyUploadsDir), nil
}

// PrimaryStore builds the backend selected by BLOB_STORE.
func PrimaryStore(ctx context.Context, cfg config.Config, sqlDB *sql.DB) (blob.Store, error) {
	switch cfg.BlobStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, errors.New("BLOB_STORE=s3 requires S3_BUCKET")
		}
		store, err := s3store.New(ctx, s3store.Options{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretKey,
			KMSKeyID:        cfg.SSEKMSKeyID,
		})
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		if sqlDB == nil {
			if !cfg.IsDevLike() {
				return nil, errors.New("BLOB_STORE=postgres requires DATABASE_URL")
			}
			telemetry.Warn("bootstrap.blob.local", map[string]any{"reason": "postgres store without database"})
			return local.New(cfg.LocalStoreDir), nil
		}
		return pgblob.New(sqlDB), nil
	case "inline":
		return inline.New(), nil
	default:
		return local.New(cfg.LocalStoreDir), nil
	}
}

func withLegacyFallbacks(primary blob.Store, legacyDir string) blob.Store {
	store := primary
	if _, isInline := primary.(inline.Store); !isInline {
		store = blob.WithFallback(store, inline.New(), nil)
	}
	if strings.TrimSpace(legacyDir) != "" {
		store = blob.WithFallback(store, local.New(legacyDir), legacyLocator)
	}
	return store
}

// legacyLocator maps an old upload path such as "uploads/123-cv.pdf" onto
// a file name inside the legacy directory.
func legacyLocator(locator string) string {
	if strings.HasPrefix(locator, inline.Prefix) {
		return ""
	}
	base := path.Base(strings.ReplaceAll(locator, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return base
}
