package resumes

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrExtraction   = errors.New("extraction failed")
	ErrStorage      = errors.New("storage failure")
)

// Upload validation messages.
const (
	MsgNoFile          = "No file uploaded."
	MsgFileTooLarge    = "File too large. Maximum size is 10MB."
	MsgFileType        = "Only PDF, DOC, and DOCX files are allowed"
	MsgExtractionError = "Unable to parse resume content. Please ensure it's a valid PDF or DOCX file."
)

// ValidationError carries a user-facing message for a rejected upload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }

// RejectionError reports the classifier rule that rejected the upload.
type RejectionError struct {
	Rule   string
	Reason string
}

func (e *RejectionError) Error() string { return e.Reason }
