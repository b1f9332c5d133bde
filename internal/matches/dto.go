package matches

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const jobPreviewLength = 150

// ResumeRef identifies the resume a match was computed from.
type ResumeRef struct {
	ID           string `json:"id"`
	OriginalName string `json:"originalName"`
}

// DetailResponse is the full public projection of a match.
type DetailResponse struct {
	ID             string    `json:"id"`
	MatchScore     float64   `json:"matchScore"`
	Summary        string    `json:"summary"`
	Strengths      []string  `json:"strengths"`
	Improvements   []string  `json:"improvements"`
	MissingSkills  []string  `json:"missingSkills"`
	JobDescription string    `json:"jobDescription,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Resume         ResumeRef `json:"resume"`
}

// SummaryResponse is one entry of the match history.
type SummaryResponse struct {
	ID                    string    `json:"id"`
	MatchScore            float64   `json:"matchScore"`
	Summary               string    `json:"summary"`
	JobDescriptionPreview string    `json:"jobDescriptionPreview"`
	CreatedAt             time.Time `json:"createdAt"`
	Resume                ResumeRef `json:"resume"`
}

// MetadataResponse reports cost and timing of a create call.
type MetadataResponse struct {
	ProcessingTime string `json:"processingTime"`
	EstimatedCost  string `json:"estimatedCost"`
	TokensUsed     int    `json:"tokensUsed"`
}

type createRequest struct {
	ResumeID       string `json:"resumeId"`
	JobDescription string `json:"jobDescription"`
}

func toDetail(m Match, withJobDescription bool) DetailResponse {
	out := DetailResponse{
		ID:            m.ID,
		MatchScore:    m.Score,
		Summary:       m.Summary,
		Strengths:     nonNil(m.Strengths),
		Improvements:  nonNil(m.Improvements),
		MissingSkills: nonNil(m.MissingSkills),
		CreatedAt:     m.CreatedAt,
		Resume:        ResumeRef{ID: m.ResumeID, OriginalName: m.ResumeName},
	}
	if withJobDescription {
		out.JobDescription = m.JobDescription
	}
	return out
}

func toSummary(m Match) SummaryResponse {
	return SummaryResponse{
		ID:                    m.ID,
		MatchScore:            m.Score,
		Summary:               m.Summary,
		JobDescriptionPreview: jobPreview(m.JobDescription),
		CreatedAt:             m.CreatedAt,
		Resume:                ResumeRef{ID: m.ResumeID, OriginalName: m.ResumeName},
	}
}

func toMetadata(md Metadata) MetadataResponse {
	return MetadataResponse{
		ProcessingTime: fmt.Sprintf("%dms", md.ProcessingTime.Milliseconds()),
		EstimatedCost:  fmt.Sprintf("$%.6f", md.EstimatedCost),
		TokensUsed:     md.InputTokens + md.OutputTokens,
	}
}

func jobPreview(text string) string {
	if utf8.RuneCountInString(text) <= jobPreviewLength {
		return text
	}
	return string([]rune(text)[:jobPreviewLength]) + "..."
}
