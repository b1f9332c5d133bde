package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-matcher/internal/classifier"
	"resume-matcher/internal/events"
	"resume-matcher/internal/extract"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/storage/blob"
	"resume-matcher/internal/shared/telemetry"
)

// MaxUploadSize is the largest accepted resume file.
const MaxUploadSize int64 = 10 << 20

// State is an ingestion stage.
type State string

const (
	StateUploaded      State = "uploaded"
	StateBlobStored    State = "blob_stored"
	StateTextExtracted State = "text_extracted"
	StateClassified    State = "classified"
	StatePersisted     State = "persisted"
	StateAborted       State = "aborted"
)

var allowedTypes = map[string]string{
	extract.MimePDF:  "pdf",
	extract.MimeDOC:  "doc",
	extract.MimeDOCX: "docx",
}

var typesByExt = map[string]string{
	".pdf":  extract.MimePDF,
	".doc":  extract.MimeDOC,
	".docx": extract.MimeDOCX,
}

// Extractor turns file bytes into text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, contentType string) (extract.Result, error)
}

// Classifier accepts or rejects extracted text.
type Classifier interface {
	Classify(text string) classifier.Verdict
}

// Upload is one incoming file.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Pipeline runs uploads through store, extract, classify and persist. Any
// failure after the blob is stored deletes the blob before returning.
type Pipeline struct {
	Store      blob.Store
	Repo       Repo
	Extractor  Extractor
	Classifier Classifier
	Events     events.Publisher
	Metrics    *metrics.Collector

	now   func() time.Time
	newID func() string
}

// NewPipeline wires a pipeline.
func NewPipeline(store blob.Store, repo Repo, ex Extractor, cl Classifier, pub events.Publisher, m *metrics.Collector) *Pipeline {
	return &Pipeline{
		Store:      store,
		Repo:       repo,
		Extractor:  ex,
		Classifier: cl,
		Events:     pub,
		Metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

type ingestRun struct {
	userID  string
	state   State
	locator string
}

func (r *ingestRun) advance(next State, fields map[string]any) {
	if fields == nil {
		fields = map[string]any{}
	}
	fields["user_id"] = r.userID
	fields["status_transition"] = string(r.state) + "->" + string(next)
	telemetry.Info("resume.ingest", fields)
	r.state = next
}

// Ingest validates the upload, then walks it through the ingestion states.
// The request context's values are kept but its cancellation is not: a
// client that disconnects mid-upload still gets a finished or cleaned-up run.
func (p *Pipeline) Ingest(ctx context.Context, userID string, up Upload) (res Resume, err error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	run := &ingestRun{userID: userID, state: StateUploaded}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: panic during %s: %v", ErrStorage, run.state, rec)
		}
		if err == nil {
			p.Metrics.RecordIngest("persisted", time.Since(start))
			return
		}
		if run.locator != "" {
			blob.CleanupBestEffort(ctx, p.Store, run.locator, p.Metrics)
		}
		run.advance(StateAborted, map[string]any{"err": err.Error()})
		p.Metrics.RecordIngest(outcomeOf(err), time.Since(start))
		res = Resume{}
	}()

	contentType, fileType, data, err := p.validate(up)
	if err != nil {
		return Resume{}, err
	}

	locator, err := p.Store.Put(ctx, bytes.NewReader(data), up.Filename, blob.Meta{
		OwnerID:     userID,
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		return Resume{}, fmt.Errorf("%w: store blob: %v", ErrStorage, err)
	}
	run.locator = locator
	run.advance(StateBlobStored, map[string]any{"size": len(data)})

	extracted, err := p.Extractor.Extract(ctx, data, contentType)
	if err != nil {
		return Resume{}, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	run.advance(StateTextExtracted, map[string]any{"text_length": len(extracted.Text)})

	verdict := p.Classifier.Classify(extracted.Text)
	if !verdict.Accepted {
		return Resume{}, &RejectionError{Rule: verdict.Rule, Reason: verdict.Reason}
	}
	run.advance(StateClassified, nil)

	now := p.now()
	resume := Resume{
		ID:             p.newID(),
		UserID:         userID,
		OriginalName:   up.Filename,
		MimeType:       contentType,
		FileSize:       int64(len(data)),
		BlobLocator:    locator,
		ExtractedText:  extracted.Text,
		Active:         true,
		ProcessingTime: extracted.Duration,
		PageCount:      extracted.PageCount,
		FileType:       fileType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.Repo.Create(ctx, resume); err != nil {
		return Resume{}, fmt.Errorf("%w: persist resume: %v", ErrStorage, err)
	}
	run.advance(StatePersisted, map[string]any{"resume_id": resume.ID})

	events.Emit(ctx, p.Events, events.ResumeIngested, map[string]any{
		"resumeId":  resume.ID,
		"userId":    userID,
		"fileType":  fileType,
		"fileSize":  resume.FileSize,
		"pageCount": resume.PageCount,
		"createdAt": resume.CreatedAt,
	})
	return resume, nil
}

// validate runs every pre-storage check and reads the body.
func (p *Pipeline) validate(up Upload) (contentType, fileType string, data []byte, err error) {
	if strings.TrimSpace(up.Filename) == "" || up.Body == nil {
		return "", "", nil, &ValidationError{Message: MsgNoFile}
	}
	if up.Size > MaxUploadSize {
		return "", "", nil, &ValidationError{Message: MsgFileTooLarge}
	}
	contentType, fileType, ok := resolveContentType(up.ContentType, up.Filename)
	if !ok {
		return "", "", nil, &ValidationError{Message: MsgFileType}
	}

	data, err = io.ReadAll(io.LimitReader(up.Body, MaxUploadSize+1))
	if err != nil {
		return "", "", nil, fmt.Errorf("%w: read upload: %v", ErrStorage, err)
	}
	if int64(len(data)) > MaxUploadSize {
		return "", "", nil, &ValidationError{Message: MsgFileTooLarge}
	}
	if len(data) == 0 {
		return "", "", nil, &ValidationError{Message: MsgNoFile}
	}
	return contentType, fileType, data, nil
}

// resolveContentType checks the declared type against the allow-list. Generic
// binary types fall back to the file extension.
func resolveContentType(declared, filename string) (string, string, bool) {
	ct := strings.ToLower(strings.TrimSpace(strings.Split(declared, ";")[0]))
	if ft, ok := allowedTypes[ct]; ok {
		return ct, ft, true
	}
	switch ct {
	case "", "application/octet-stream", "application/zip":
		if byExt, ok := typesByExt[strings.ToLower(filepath.Ext(filename))]; ok {
			return byExt, allowedTypes[byExt], true
		}
	}
	return "", "", false
}

func outcomeOf(err error) string {
	var rej *RejectionError
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid"
	case errors.Is(err, ErrExtraction):
		return "extraction_failed"
	case errors.As(err, &rej):
		return "rejected"
	default:
		return "failed"
	}
}
