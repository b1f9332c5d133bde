package matches

import "errors"

var (
	ErrNotFound     = errors.New("match not found")
	ErrInvalidInput = errors.New("invalid input")
	// ErrResumeNotFound means the referenced resume is missing, inactive or
	// owned by someone else.
	ErrResumeNotFound = errors.New("resume not found")
	ErrAnalysis       = errors.New("analysis failed")
)

const (
	MsgRequired       = "Both resumeId and jobDescription are required"
	MsgTooShort       = "Job description too short. Please provide a detailed job description."
	MsgTooLong        = "Job description too long. Please keep it under 10,000 characters."
	MsgResumeNotFound = "Resume not found or you do not have access to it"
	MsgAnalysisFailed = "Failed to analyze resume match. Please try again."
	MsgMatchNotFound  = "Match not found"
)

// ValidationError carries a user-facing message for a rejected request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidInput }
