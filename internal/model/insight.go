package model

import (
	"bytes"
	"encoding/json"
)

// Insight is the already-summarised output of the optional enrichment
// collaborator. Every field may be absent; consumers must default each one.
type Insight struct {
	Summary         *InsightSummary  `json:"summary,omitempty"`
	AverageRating   *float64         `json:"average_rating,omitempty"`
	TotalReviews    *int             `json:"total_reviews,omitempty"`
	PositivePct     *float64         `json:"positive_pct,omitempty"`
	NeutralPct      *float64         `json:"neutral_pct,omitempty"`
	NegativePct     *float64         `json:"negative_pct,omitempty"`
	TopIssues       []InsightItem    `json:"top_issues,omitempty"`
	TopPraises      []InsightItem    `json:"top_praises,omitempty"`
	Themes          []InsightTheme   `json:"themes,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

// InsightItem is a named issue or praise with its mention count.
type InsightItem struct {
	Theme    string   `json:"theme"`
	Count    int      `json:"count"`
	Examples []string `json:"examples,omitempty"`
}

// InsightTheme is a scored theme supplied by the collaborator.
type InsightTheme struct {
	Name      string    `json:"name"`
	Score     float64   `json:"score"`
	Count     int       `json:"count"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
}

// InsightSummary is the free-form summary. Collaborators return either a
// plain string or an object; both decode here.
type InsightSummary struct {
	Text       string   `json:"text,omitempty"`
	Overview   string   `json:"overview,omitempty"`
	Strengths  []string `json:"strengths,omitempty"`
	Weaknesses []string `json:"weaknesses,omitempty"`
}

// Headline returns the best single sentence the summary offers.
func (s *InsightSummary) Headline() string {
	if s == nil {
		return ""
	}
	if s.Text != "" {
		return s.Text
	}
	return s.Overview
}

// UnmarshalJSON accepts a string or an object.
func (s *InsightSummary) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*s = InsightSummary{Text: text}
		return nil
	}
	type plain InsightSummary
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = InsightSummary(p)
	return nil
}

// Recommendation is a suggested action. A bare string decodes into Action.
type Recommendation struct {
	Action   string `json:"action"`
	Priority string `json:"priority,omitempty"`
	Impact   string `json:"impact,omitempty"`
}

// UnmarshalJSON accepts a string or an object.
func (r *Recommendation) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*r = Recommendation{Action: text}
		return nil
	}
	type plain Recommendation
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = Recommendation(p)
	return nil
}
