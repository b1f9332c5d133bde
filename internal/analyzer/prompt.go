package analyzer

import (
	_ "embed"
	"strings"
)

//go:embed prompts/match_v1.txt
var matchPromptV1 string

// BuildPrompt fills the match prompt template.
func BuildPrompt(resumeText, jobDescription string) string {
	replacer := strings.NewReplacer(
		"{{RESUME}}", strings.TrimSpace(resumeText),
		"{{JOB_DESCRIPTION}}", strings.TrimSpace(jobDescription),
	)
	return replacer.Replace(matchPromptV1)
}
