package matches

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/events"
	"resume-matcher/internal/resumes"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

// Job description bounds, in characters.
const (
	MinJobDescriptionLength = 50
	MaxJobDescriptionLength = 10000
)

// ResumeSource looks up an active resume owned by a user.
type ResumeSource interface {
	GetActive(ctx context.Context, userID, id string) (resumes.Resume, error)
}

// Service orchestrates match creation and serves match history.
type Service struct {
	Repo     Repo
	Resumes  ResumeSource
	Analyzer analyzer.Analyzer
	Events   events.Publisher
	Metrics  *metrics.Collector

	now   func() time.Time
	newID func() string
}

func NewService(repo Repo, src ResumeSource, an analyzer.Analyzer, pub events.Publisher, m *metrics.Collector) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{
		Repo:     repo,
		Resumes:  src,
		Analyzer: an,
		Events:   pub,
		Metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// Create scores a resume against a job description and persists the result.
// Validation happens before any analyzer call.
func (s *Service) Create(ctx context.Context, userID, resumeID, jobDescription string) (Match, error) {
	if err := validateRequest(resumeID, jobDescription); err != nil {
		return Match{}, err
	}

	res, err := s.Resumes.GetActive(ctx, userID, resumeID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			return Match{}, ErrResumeNotFound
		}
		return Match{}, err
	}

	start := time.Now()
	result, err := s.Analyzer.Analyze(ctx, res.ExtractedText, jobDescription)
	elapsed := time.Since(start)
	if err != nil {
		s.Metrics.RecordMatch("failed", elapsed)
		telemetry.Error("match.analysis.failed", map[string]any{
			"user_id":     userID,
			"resume_id":   resumeID,
			"duration_ms": elapsed.Milliseconds(),
			"err":         err.Error(),
		})
		return Match{}, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}

	m := Match{
		ID:             s.newID(),
		UserID:         userID,
		ResumeID:       res.ID,
		ResumeName:     res.OriginalName,
		JobDescription: jobDescription,
		Score:          ClampScore(result.Score),
		Summary:        result.Summary,
		Strengths:      nonNil(result.Strengths),
		Improvements:   nonNil(result.Improvements),
		MissingSkills:  nonNil(result.MissingSkills),
		Metadata: Metadata{
			ProcessingTime: elapsed,
			EstimatedCost:  analyzer.EstimateCost(result.Usage),
			InputTokens:    result.Usage.InputTokens,
			OutputTokens:   result.Usage.OutputTokens,
			Provider:       result.Provider,
			Model:          result.Model,
			RetryCount:     0,
		},
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		s.Metrics.RecordMatch("failed", elapsed)
		return Match{}, fmt.Errorf("persist match: %w", err)
	}

	s.Metrics.RecordMatch("completed", elapsed)
	s.Metrics.RecordTokens(result.Usage.InputTokens, result.Usage.OutputTokens)
	telemetry.Info("match.created", map[string]any{
		"user_id":     userID,
		"match_id":    m.ID,
		"resume_id":   m.ResumeID,
		"score":       m.Score,
		"raw_score":   result.Score,
		"duration_ms": elapsed.Milliseconds(),
	})
	events.Emit(ctx, s.Events, events.MatchCreated, map[string]any{
		"matchId":  m.ID,
		"userId":   userID,
		"resumeId": m.ResumeID,
		"score":    m.Score,
	})
	return m, nil
}

// List returns the user's matches, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Match, error) {
	return s.Repo.List(ctx, userID)
}

// Get returns one match owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (Match, error) {
	if userID == "" || id == "" {
		return Match{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func validateRequest(resumeID, jobDescription string) error {
	if strings.TrimSpace(resumeID) == "" || strings.TrimSpace(jobDescription) == "" {
		return &ValidationError{Message: MsgRequired}
	}
	n := utf8.RuneCountInString(jobDescription)
	if n < MinJobDescriptionLength {
		return &ValidationError{Message: MsgTooShort}
	}
	if n > MaxJobDescriptionLength {
		return &ValidationError{Message: MsgTooLong}
	}
	return nil
}

// ClampScore bounds a score to [0, 100]. NaN maps to 0.
func ClampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 100:
		return 100
	default:
		return score
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
