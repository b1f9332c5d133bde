package resumes

import "time"

// Resume is an ingested resume owned by a user. ExtractedText is never empty
// for a persisted record.
type Resume struct {
	ID             string
	UserID         string
	OriginalName   string
	MimeType       string
	FileSize       int64
	BlobLocator    string
	ExtractedText  string
	Active         bool
	ProcessingTime time.Duration
	PageCount      *int
	FileType       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
