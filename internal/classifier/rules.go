package classifier

import (
	"encoding/json"
	"fmt"
	"os"
)

// RuleSet holds the tunable data behind the classification rules. Phrase and
// keyword matching is case-insensitive substring matching.
type RuleSet struct {
	MinLength         int      `json:"minLength"`
	MaxLength         int      `json:"maxLength"`
	JobPostingPhrases []string `json:"jobPostingPhrases"`
	NonResumePhrases  []string `json:"nonResumePhrases"`
	ContactKeywords   []string `json:"contactKeywords"`
	PhonePattern      string   `json:"phonePattern"`
	WorkKeywords      []string `json:"workKeywords"`
	EducationKeywords []string `json:"educationKeywords"`
}

// DefaultRuleSet returns the built-in rule data.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		MinLength: 100,
		MaxLength: 50000,
		JobPostingPhrases: []string{
			"we are seeking",
			"we are looking for",
			"join our team",
			"the ideal candidate",
			"key responsibilities:",
			"years of experience required",
			"apply now",
			"send your resume",
			"salary range:",
			"compensation:",
			"equal opportunity employer",
		},
		NonResumePhrases: []string{
			"in conclusion",
			"to conclude",
			"this essay",
			"this paper argues",
			"thesis statement:",
			"abstract:",
			"methodology:",
			"works cited:",
			"bibliography:",
		},
		ContactKeywords: []string{"@", "phone", "linkedin", "github"},
		PhonePattern:    `\d{3}[-.\s]\d{3}[-.\s]\d{4}`,
		WorkKeywords: []string{
			"experience",
			"employment",
			"work history",
			"intern",
			"developer",
			"engineer",
			"projects",
			"portfolio",
		},
		EducationKeywords: []string{
			"education",
			"degree",
			"university",
			"college",
			"bachelor",
			"master",
			"skills",
			"technologies",
			"programming",
		},
	}
}

// LoadRuleSet reads a JSON rule file. Fields absent from the file keep their
// default values.
func LoadRuleSet(path string) (RuleSet, error) {
	rs := DefaultRuleSet()
	if path == "" {
		return rs, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rule set: %w", err)
	}
	if err := json.Unmarshal(raw, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("decode rule set %s: %w", path, err)
	}
	if rs.MinLength < 0 || (rs.MaxLength > 0 && rs.MaxLength < rs.MinLength) {
		return RuleSet{}, fmt.Errorf("rule set %s: invalid length bounds %d..%d", path, rs.MinLength, rs.MaxLength)
	}
	return rs, nil
}
