package resumes

import (
	"time"
	"unicode/utf8"
)

const previewLength = 200

// SummaryResponse is the upload and list representation of a resume.
type SummaryResponse struct {
	ID             string    `json:"id"`
	OriginalName   string    `json:"originalName"`
	FileSize       int64     `json:"fileSize"`
	ProcessingTime int64     `json:"processingTime"`
	UploadDate     time.Time `json:"uploadDate"`
	PageCount      *int      `json:"pageCount,omitempty"`
}

// DetailResponse adds a text preview to the summary.
type DetailResponse struct {
	SummaryResponse
	TextLength int    `json:"textLength"`
	Preview    string `json:"preview"`
}

// TextResponse carries the full extracted text.
type TextResponse struct {
	ID            string `json:"id"`
	OriginalName  string `json:"originalName"`
	ExtractedText string `json:"extractedText"`
}

func toSummary(r Resume) SummaryResponse {
	return SummaryResponse{
		ID:             r.ID,
		OriginalName:   r.OriginalName,
		FileSize:       r.FileSize,
		ProcessingTime: r.ProcessingTime.Milliseconds(),
		UploadDate:     r.CreatedAt,
		PageCount:      r.PageCount,
	}
}

func toDetail(r Resume) DetailResponse {
	return DetailResponse{
		SummaryResponse: toSummary(r),
		TextLength:      utf8.RuneCountInString(r.ExtractedText),
		Preview:         preview(r.ExtractedText, previewLength),
	}
}

func preview(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}
