package analyzer

import "context"

// Placeholder is used when no provider is configured. Every call fails.
type Placeholder struct{}

func (Placeholder) Name() string  { return "placeholder" }
func (Placeholder) Model() string { return "" }

func (Placeholder) Complete(context.Context, string) (Completion, error) {
	return Completion{}, ErrNotConfigured
}
