// Package classifier decides whether extracted text plausibly is a resume.
package classifier

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule names, in evaluation order.
const (
	RuleEmpty           = "empty"
	RuleTooShort        = "too_short"
	RuleTooLong         = "too_long"
	RuleJobPosting      = "job_posting"
	RuleNonResume       = "non_resume"
	RuleContact         = "contact"
	RuleWorkHistory     = "work_history"
	RuleEducationSkills = "education_skills"
)

// Verdict is the outcome of classifying one text. Rule and Reason are set only on rejection.
type Verdict struct {
	Accepted bool
	Rule     string
	Reason   string
}

// Rule rejects text when Reject returns true. lower is the lowercased text.
type Rule struct {
	Name   string
	Reason string
	Reject func(text, lower string) bool
}

// Classifier evaluates an ordered rule list; the first rejecting rule wins.
type Classifier struct {
	rules []Rule
}

// New compiles a rule set into a classifier.
func New(rs RuleSet) (*Classifier, error) {
	var phone *regexp.Regexp
	if rs.PhonePattern != "" {
		re, err := regexp.Compile(rs.PhonePattern)
		if err != nil {
			return nil, fmt.Errorf("compile phone pattern: %w", err)
		}
		phone = re
	}
	return &Classifier{rules: buildRules(rs, phone)}, nil
}

// NewWithRules builds a classifier from an explicit rule list.
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns the evaluation order.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify runs every rule in order.
func (c *Classifier) Classify(text string) Verdict {
	lower := strings.ToLower(text)
	for _, r := range c.rules {
		if r.Reject(text, lower) {
			return Verdict{Rule: r.Name, Reason: r.Reason}
		}
	}
	return Verdict{Accepted: true}
}

func buildRules(rs RuleSet, phone *regexp.Regexp) []Rule {
	lowerAll := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, s := range in {
			if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	jobPhrases := lowerAll(rs.JobPostingPhrases)
	essayPhrases := lowerAll(rs.NonResumePhrases)
	contact := lowerAll(rs.ContactKeywords)
	work := lowerAll(rs.WorkKeywords)
	education := lowerAll(rs.EducationKeywords)

	rules := []Rule{
		{
			Name:   RuleEmpty,
			Reason: "No text content could be extracted from the file.",
			Reject: func(text, _ string) bool { return strings.TrimSpace(text) == "" },
		},
		{
			Name:   RuleTooShort,
			Reason: "Resume content appears too short. Please upload a complete resume.",
			Reject: func(text, _ string) bool {
				return utf8.RuneCountInString(strings.TrimSpace(text)) < rs.MinLength
			},
		},
	}
	if rs.MaxLength > 0 {
		rules = append(rules, Rule{
			Name:   RuleTooLong,
			Reason: "Resume content is too long. Please upload a standard resume document.",
			Reject: func(text, _ string) bool { return utf8.RuneCountInString(text) > rs.MaxLength },
		})
	}
	return append(rules,
		Rule{
			Name:   RuleJobPosting,
			Reason: "This appears to be a job description, not a resume. Please upload your resume instead.",
			Reject: func(_, lower string) bool { return containsAny(lower, jobPhrases) },
		},
		Rule{
			Name:   RuleNonResume,
			Reason: "This appears to be an essay, report, or other document type. Please upload a resume.",
			Reject: func(_, lower string) bool { return containsAny(lower, essayPhrases) },
		},
		Rule{
			Name:   RuleContact,
			Reason: "Resume is missing contact information (email, phone, or profile links).",
			Reject: func(text, lower string) bool {
				if containsAny(lower, contact) {
					return false
				}
				return phone == nil || !phone.MatchString(text)
			},
		},
		Rule{
			Name:   RuleWorkHistory,
			Reason: "Resume is missing work experience or projects.",
			Reject: func(_, lower string) bool { return !containsAny(lower, work) },
		},
		Rule{
			Name:   RuleEducationSkills,
			Reason: "Resume is missing education or skills information.",
			Reject: func(_, lower string) bool { return !containsAny(lower, education) },
		},
	)
}

func containsAny(lower string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}
