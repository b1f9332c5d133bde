package analyzer

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// CleanJSON strips markdown code fences around a model answer.
func CleanJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "```") {
		s = strings.ReplaceAll(s, "```json", "")
		s = strings.ReplaceAll(s, "```JSON", "")
		s = strings.ReplaceAll(s, "```", "")
		s = strings.TrimSpace(s)
	}
	if gjson.Valid(s) {
		return s
	}
	// Leading or trailing prose around a single object.
	if start, end := strings.Index(s, "{"), strings.LastIndex(s, "}"); start >= 0 && end > start {
		if inner := s[start : end+1]; gjson.Valid(inner) {
			return inner
		}
	}
	return s
}

// ParseResult validates a completion. Score must be numeric (0 included),
// summary non-empty and strengths a non-empty list. Improvements and missing
// skills default to empty lists.
func ParseResult(raw string) (Result, error) {
	text := CleanJSON(raw)
	if !gjson.Valid(text) {
		return Result{}, fmt.Errorf("%w: not valid JSON", ErrInvalidOutput)
	}
	root := gjson.Parse(text)
	if !root.IsObject() {
		return Result{}, fmt.Errorf("%w: expected a JSON object", ErrInvalidOutput)
	}

	scoreField := root.Get("matchScore")
	if !scoreField.Exists() {
		scoreField = root.Get("score")
	}
	score, ok := numeric(scoreField)
	if !ok {
		return Result{}, fmt.Errorf("%w: missing or non-numeric matchScore", ErrInvalidOutput)
	}

	summary := root.Get("summary")
	if summary.Type != gjson.String || strings.TrimSpace(summary.String()) == "" {
		return Result{}, fmt.Errorf("%w: missing summary", ErrInvalidOutput)
	}

	strengths := stringList(root.Get("strengths"))
	if len(strengths) == 0 {
		return Result{}, fmt.Errorf("%w: missing or empty strengths", ErrInvalidOutput)
	}

	return Result{
		Score:         score,
		Summary:       strings.TrimSpace(summary.String()),
		Strengths:     strengths,
		Improvements:  stringList(root.Get("improvements")),
		MissingSkills: stringList(root.Get("missingSkills")),
	}, nil
}

func numeric(v gjson.Result) (float64, bool) {
	switch v.Type {
	case gjson.Number:
		return v.Float(), true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// stringList returns the non-empty string items of an array, or an empty
// slice when v is absent or not an array.
func stringList(v gjson.Result) []string {
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(item.Str); s != "" {
			out = append(out, s)
		}
	}
	return out
}
