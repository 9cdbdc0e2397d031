package model

// Probability is the qualitative likelihood tier of a root cause.
type Probability string

const (
	ProbabilityProbable   Probability = "Probable"
	ProbabilityPossible   Probability = "Possible"
	ProbabilityOccasional Probability = "Occasionnelle"
)

// RootCause is a single hypothesised cause with supporting verbatims.
type RootCause struct {
	Description string      `json:"description"`
	Probability Probability `json:"probability"`
	Evidence    []string    `json:"evidence"`
}

// RootCauseCategory groups causes under an Ishikawa branch.
type RootCauseCategory struct {
	Name   string      `json:"name"`
	Causes []RootCause `json:"causes"`
}

// RootCauseAnalysis is the full "why is this happening" breakdown for one problem.
type RootCauseAnalysis struct {
	Problem    string              `json:"problem"`
	Categories []RootCauseCategory `json:"categories"`
	Summary    string              `json:"summary"`
}

// ThemeAnalysis is a pre-aggregated theme with its verbatims, as fed to
// root cause analysis.
type ThemeAnalysis struct {
	Name      string    `json:"name"`
	Count     int       `json:"count"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Verbatims []string  `json:"verbatims,omitempty"`
}
