// Package analyzer scores a resume against a job description through an
// external language model. Providers return raw completions; the Adapter owns
// prompt construction and turns completions into validated results.
package analyzer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resume-matcher/internal/shared/telemetry"
)

var (
	// ErrProvider wraps transport and API failures from a provider.
	ErrProvider = errors.New("analyzer provider failed")
	// ErrInvalidOutput means the completion was not a usable analysis.
	ErrInvalidOutput = errors.New("analyzer returned invalid output")
	// ErrNotConfigured is returned by the placeholder provider.
	ErrNotConfigured = errors.New("analyzer provider not configured")
)

// Usage is the token consumption of one analysis.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Result is a validated analysis. Score is as returned by the model and may
// fall outside 0..100.
type Result struct {
	Score         float64
	Summary       string
	Strengths     []string
	Improvements  []string
	MissingSkills []string
	Usage         Usage
	Provider      string
	Model         string
}

// Analyzer is the black-box contract the match orchestrator depends on.
type Analyzer interface {
	Analyze(ctx context.Context, resumeText, jobDescription string) (Result, error)
}

// Completion is a provider's raw answer.
type Completion struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// Provider sends one prompt to a model.
type Provider interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
	Name() string
	Model() string
}

// Adapter implements Analyzer on top of a Provider.
type Adapter struct {
	provider Provider
}

// New wraps provider with prompt building and output validation.
func New(provider Provider) *Adapter {
	return &Adapter{provider: provider}
}

// Analyze runs one completion and validates its JSON.
func (a *Adapter) Analyze(ctx context.Context, resumeText, jobDescription string) (Result, error) {
	start := time.Now()
	completion, err := a.provider.Complete(ctx, BuildPrompt(resumeText, jobDescription))
	if err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return Result{}, err
		}
		return Result{}, fmt.Errorf("%w: %s: %v", ErrProvider, a.provider.Name(), err)
	}

	res, err := ParseResult(completion.Text)
	if err != nil {
		telemetry.Warn("analyzer.invalid_output", map[string]any{
			"provider": a.provider.Name(),
			"model":    a.provider.Model(),
			"err":      err.Error(),
		})
		return Result{}, err
	}
	res.Usage = Usage{InputTokens: completion.InputTokens, OutputTokens: completion.OutputTokens}
	res.Provider = a.provider.Name()
	res.Model = a.provider.Model()

	telemetry.Info("analyzer.complete", map[string]any{
		"provider":      res.Provider,
		"model":         res.Model,
		"input_tokens":  res.Usage.InputTokens,
		"output_tokens": res.Usage.OutputTokens,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return res, nil
}

// EstimateCost returns the USD cost of a call at $3 per million input tokens
// and $15 per million output tokens.
func EstimateCost(u Usage) float64 {
	return float64(u.InputTokens*3+u.OutputTokens*15) / 1_000_000
}
