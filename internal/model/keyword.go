package model

// KeywordMode selects which keyword bundles an aggregation computes.
type KeywordMode string

const (
	KeywordModeFrequency KeywordMode = "frequency"
	KeywordModeSentiment KeywordMode = "sentiment"
	KeywordModeTheme     KeywordMode = "theme"
)

// KeywordCount is one aggregated keyword. Sentiment and Theme hold the
// dominant class observed for the word.
type KeywordCount struct {
	Word      string    `json:"word"`
	Count     int       `json:"count"`
	Sentiment Sentiment `json:"sentiment,omitempty"`
	Theme     Theme     `json:"theme,omitempty"`
}

// SentimentKeywords splits keywords by dominant sentiment.
type SentimentKeywords struct {
	Positive []KeywordCount `json:"positive"`
	Neutral  []KeywordCount `json:"neutral"`
	Negative []KeywordCount `json:"negative"`
}

// All returns the three buckets concatenated in reporting order.
func (s SentimentKeywords) All() []KeywordCount {
	out := make([]KeywordCount, 0, len(s.Positive)+len(s.Neutral)+len(s.Negative))
	out = append(out, s.Positive...)
	out = append(out, s.Neutral...)
	return append(out, s.Negative...)
}

// KeywordAggregation is the corpus-wide keyword output. Bundles not requested
// by the mode are nil.
type KeywordAggregation struct {
	Mode        KeywordMode              `json:"mode"`
	BySentiment *SentimentKeywords       `json:"by_sentiment,omitempty"`
	ByTheme     map[Theme][]KeywordCount `json:"by_theme,omitempty"`
	ByFrequency []KeywordCount           `json:"by_frequency,omitempty"`
}
