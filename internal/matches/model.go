package matches

import "time"

// Metadata captures cost and timing around the analyzer call.
type Metadata struct {
	ProcessingTime time.Duration
	EstimatedCost  float64
	InputTokens    int
	OutputTokens   int
	Provider       string
	Model          string
	RetryCount     int
}

// Match is one scored comparison of a resume against a job description.
type Match struct {
	ID             string
	UserID         string
	ResumeID       string
	ResumeName     string
	JobDescription string
	Score          float64
	Summary        string
	Strengths      []string
	Improvements   []string
	MissingSkills  []string
	Metadata       Metadata
	CreatedAt      time.Time
}
