package main

// Move resume blobs into the configured backend:
//   go run ./cmd/blobmigrate --dry-run
//   go run ./cmd/blobmigrate

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"resume-matcher/internal/bootstrap"
	"resume-matcher/internal/resumes"
	"resume-matcher/internal/shared/config"
	"resume-matcher/internal/shared/storage/blob"
	"resume-matcher/internal/shared/storage/blob/local"
	"resume-matcher/internal/shared/storage/db"
	"resume-matcher/internal/shared/telemetry"
)

type report struct {
	Scanned  int
	Migrated int
	Skipped  int
	Missing  int
	Failed   int
}

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would move without writing")
	sourceDir := flag.String("source-dir", "", "local store directory to read from (defaults to LOCAL_STORE_DIR when BLOB_STORE is not local)")
	flag.Parse()

	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	target, err := bootstrap.PrimaryStore(ctx, cfg, sqlDB)
	if err != nil {
		log.Printf("failed to build target store: %v", err)
		os.Exit(1)
	}
	source, err := bootstrap.ReadStore(ctx, cfg, sqlDB)
	if err != nil {
		log.Printf("failed to build source store: %v", err)
		os.Exit(1)
	}

	if dir := *sourceDir; dir != "" || cfg.BlobStoreType != "local" {
		if dir == "" {
			dir = cfg.LocalStoreDir
		}
		source = blob.WithFallback(source, local.New(dir), nil)
	}

	rep, err := migrateBlobs(ctx, &resumes.PGRepo{DB: sqlDB}, source, target, *dryRun)
	fmt.Printf("scanned=%d migrated=%d skipped=%d missing=%d failed=%d dry_run=%v\n",
		rep.Scanned, rep.Migrated, rep.Skipped, rep.Missing, rep.Failed, *dryRun)
	if err != nil {
		log.Printf("migration aborted: %v", err)
		os.Exit(1)
	}
	if rep.Failed > 0 {
		os.Exit(1)
	}
}

// migrateBlobs copies every active resume's blob that target cannot already
// serve into target and rewrites the stored locator.
func migrateBlobs(ctx context.Context, repo resumes.Repo, source, target blob.Store, dryRun bool) (report, error) {
	var rep report
	list, err := repo.ListAllActive(ctx)
	if err != nil {
		return rep, err
	}

	for _, res := range list {
		rep.Scanned++
		fields := map[string]any{"resume_id": res.ID, "dry_run": dryRun}

		if rc, err := target.Get(ctx, res.BlobLocator); err == nil {
			rc.Close()
			rep.Skipped++
			continue
		} else if !errors.Is(err, blob.ErrNotFound) {
			rep.Failed++
			fields["err"] = err.Error()
			telemetry.Error("blobmigrate.target_read_failed", fields)
			continue
		}

		data, err := readAll(ctx, source, res.BlobLocator)
		if err != nil {
			if errors.Is(err, blob.ErrNotFound) {
				rep.Missing++
				telemetry.Warn("blobmigrate.missing", fields)
				continue
			}
			rep.Failed++
			fields["err"] = err.Error()
			telemetry.Error("blobmigrate.read_failed", fields)
			continue
		}

		if dryRun {
			rep.Migrated++
			fields["size"] = len(data)
			telemetry.Info("blobmigrate.would_migrate", fields)
			continue
		}

		locator, err := target.Put(ctx, bytes.NewReader(data), res.OriginalName, blob.Meta{
			OwnerID:     res.UserID,
			ContentType: res.MimeType,
			Size:        int64(len(data)),
		})
		if err != nil {
			rep.Failed++
			fields["err"] = err.Error()
			telemetry.Error("blobmigrate.write_failed", fields)
			continue
		}
		if err := repo.UpdateLocator(ctx, res.ID, locator); err != nil {
			blob.CleanupBestEffort(ctx, target, locator, nil)
			rep.Failed++
			fields["err"] = err.Error()
			telemetry.Error("blobmigrate.update_failed", fields)
			continue
		}
		rep.Migrated++
		telemetry.Info("blobmigrate.migrated", fields)
	}
	return rep, nil
}

func readAll(ctx context.Context, store blob.Store, locator string) ([]byte, error) {
	rc, err := store.Get(ctx, locator)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
