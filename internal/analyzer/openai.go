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

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAI calls an OpenAI-compatible chat completions endpoint. The base URL
// may point at a gateway such as OpenRouter.
type OpenAI struct {
	client *resty.Client
	model  string
}

func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")
	return &OpenAI{client: client, model: model}, nil
}

func (o *OpenAI) Name() string  { return "openai" }
func (o *OpenAI) Model() string { return o.model }

func (o *OpenAI) Complete(ctx context.Context, prompt string) (Completion, error) {
	resp, err := o.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"model":       o.model,
			"max_tokens":  maxOutputTokens,
			"temperature": 0.7,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}).
		Post("/chat/completions")
	if err != nil {
		return Completion{}, err
	}
	body := resp.String()
	if resp.IsError() {
		return Completion{}, fmt.Errorf("status %d: %s", resp.StatusCode(), apiErrorMessage(body))
	}

	text := gjson.Get(body, "choices.0.message.content").String()
	if text == "" {
		return Completion{}, errors.New("empty completion")
	}
	return Completion{
		Text:         text,
		InputTokens:  int(gjson.Get(body, "usage.prompt_tokens").Int()),
		OutputTokens: int(gjson.Get(body, "usage.completion_tokens").Int()),
	}, nil
}
