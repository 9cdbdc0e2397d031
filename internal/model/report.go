package model

// Trend is the direction of recent ratings against older ones.
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// AnalysisReport is the report-ready structure produced for one business.
// It is recomputed in full on every run.
type AnalysisReport struct {
	Overview        Overview           `json:"overview"`
	History         []HistoryPoint     `json:"history"`
	Sentiment       SentimentBreakdown `json:"sentiment"`
	ParetoIssues    []ParetoItem       `json:"pareto_issues"`
	ParetoStrengths []ParetoItem       `json:"pareto_strengths"`
	Themes          []ThemeScore       `json:"themes"`
	Qualitative     Qualitative        `json:"qualitative"`
	Diagnostic      Diagnostic         `json:"diagnostic"`
}

// Overview holds the headline KPIs.
type Overview struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
	PositivePct   int     `json:"positive_pct"`
	NeutralPct    int     `json:"neutral_pct"`
	NegativePct   int     `json:"negative_pct"`
	Trend         Trend   `json:"trend"`
	TrendValue    float64 `json:"trend_value"`
}

// HistoryPoint is one calendar month of ratings.
type HistoryPoint struct {
	Month         string  `json:"month"`
	AverageRating float64 `json:"average_rating"`
	Count         int     `json:"count"`
}

// SentimentBreakdown counts reviews per sentiment. The three counts always
// sum to the number of reviews.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Total returns the number of reviews tallied.
func (s SentimentBreakdown) Total() int {
	return s.Positive + s.Neutral + s.Negative
}

// ParetoItem is a ranked issue or strength.
type ParetoItem struct {
	Name       string   `json:"name"`
	Count      int      `json:"count"`
	Percentage float64  `json:"percentage"`
	Examples   []string `json:"examples,omitempty"`
}

// ThemeScore is a theme with a 0..1 satisfaction score.
type ThemeScore struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
	Count int     `json:"count"`
}

// Qualitative holds keyword and verbatim material.
type Qualitative struct {
	TopKeywords  []KeywordCount `json:"top_keywords"`
	KeyVerbatims []Verbatim     `json:"key_verbatims"`
}

// Verbatim is a selected, possibly truncated, review excerpt.
type Verbatim struct {
	Text        string    `json:"text"`
	Rating      int       `json:"rating"`
	Sentiment   Sentiment `json:"sentiment"`
	PublishedAt string    `json:"published_at,omitempty"`
}

// Diagnostic is the narrative part of the report.
type Diagnostic struct {
	Summary         string   `json:"summary"`
	TopStrengths    []string `json:"top_strengths"`
	TopWeaknesses   []string `json:"top_weaknesses"`
	Recommendations []string `json:"recommendations"`
}
