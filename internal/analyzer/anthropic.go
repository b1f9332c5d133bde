package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-5"
	anthropicVersion      = "2023-06-01"
	maxOutputTokens       = 1500
)

// anthropicURL is a var so tests can point it at a local server.
var anthropicURL = "https://api.anthropic.com"

// Anthropic calls the Messages API.
type Anthropic struct {
	client *resty.Client
	model  string
}

// NewAnthropic builds a provider for the given key and model.
func NewAnthropic(apiKey, model string, timeout time.Duration) (*Anthropic, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is required")
	}
	if model == "" {
		model = defaultAnthropicModel
	}
	client := resty.New().
		SetBaseURL(anthropicURL).
		SetTimeout(timeout).
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", anthropicVersion).
		SetHeader("Content-Type", "application/json")
	return &Anthropic{client: client, model: model}, nil
}

func (a *Anthropic) Name() string  { return "anthropic" }
func (a *Anthropic) Model() string { return a.model }

func (a *Anthropic) Complete(ctx context.Context, prompt string) (Completion, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":       a.model,
			"max_tokens":  maxOutputTokens,
			"temperature": 0.7,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post("/v1/messages")
	if err != nil {
		return Completion{}, err
	}
	body := resp.String()
	if resp.IsError() {
		return Completion{}, fmt.Errorf("status %d: %s", resp.StatusCode(), apiErrorMessage(body))
	}

	text := gjson.Get(body, "content.0.text").String()
	if text == "" {
		return Completion{}, errors.New("empty completion")
	}
	return Completion{
		Text:         text,
		InputTokens:  int(gjson.Get(body, "usage.input_tokens").Int()),
		OutputTokens: int(gjson.Get(body, "usage.output_tokens").Int()),
	}, nil
}

func apiErrorMessage(body string) string {
	if msg := gjson.Get(body, "error.message").String(); msg != "" {
		return msg
	}
	if len(body) > 200 {
		return body[:200]
	}
	return body
}
