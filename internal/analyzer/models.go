package analyzer

// AnalysisRequest is the decoded body of POST /analyze. JobText is empty when
// the field was absent or null.
type AnalysisRequest struct {
	ResumeText string `json:"resumeText"`
	JobText    string `json:"jobText,omitempty"`
}

type AnalysisResponse struct {
	Feedback string `json:"feedback"`
}

// requestSchema only constrains types. Blank resumeText is rejected by the
// service so the rule holds for every caller.
const requestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["resumeText"],
	"properties": {
		"resumeText": {"type": "string"},
		"jobText": {"type": ["string", "null"]}
	}
}`
