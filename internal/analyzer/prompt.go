package analyzer

import (
	_ "embed"
	"strings"
	"text/template"
)

//go:embed prompts/resume_analysis.tmpl
var promptSource string

var promptTemplate = template.Must(template.New("resume_analysis").Parse(promptSource))

// BuildPrompt renders the analysis prompt. The job description section is
// present only when req.JobText is non-empty.
func BuildPrompt(req *AnalysisRequest) (string, error) {
	var sb strings.Builder
	if err := promptTemplate.Execute(&sb, req); err != nil {
		return "", err
	}
	return sb.String(), nil
}
