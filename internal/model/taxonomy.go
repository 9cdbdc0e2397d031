package model

// Sentiment is the canonical sentiment derived from a rating.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// AllSentiments lists sentiments in reporting order.
var AllSentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

// Theme is a canonical review theme.
type Theme string

const (
	ThemeService  Theme = "SERVICE"
	ThemeCuisine  Theme = "CUISINE"
	ThemeAmbiance Theme = "AMBIANCE"
	ThemePrix     Theme = "PRIX"
)

// AllThemes lists canonical themes in precedence order.
var AllThemes = []Theme{ThemeService, ThemeCuisine, ThemeAmbiance, ThemePrix}

// BusinessType is the closed set of business categories the classifier emits.
type BusinessType string

const (
	BusinessRestaurant       BusinessType = "restaurant"
	BusinessSalonCoiffure    BusinessType = "salon_coiffure"
	BusinessSalleSport       BusinessType = "salle_sport"
	BusinessSerrurier        BusinessType = "serrurier"
	BusinessRetailChaussures BusinessType = "retail_chaussures"
	BusinessInstitutBeaute   BusinessType = "institut_beaute"
	BusinessAutre            BusinessType = "autre"
)

// AllBusinessTypes lists every business type, autre last.
var AllBusinessTypes = []BusinessType{
	BusinessRestaurant,
	BusinessSalonCoiffure,
	BusinessSalleSport,
	BusinessSerrurier,
	BusinessRetailChaussures,
	BusinessInstitutBeaute,
	BusinessAutre,
}

// ClassificationSource records which signal produced a classification.
type ClassificationSource string

const (
	SourcePlaces   ClassificationSource = "places"
	SourceKeywords ClassificationSource = "keywords"
	SourceManual   ClassificationSource = "manual"
)

// BusinessTypeCandidate is one scored business type.
type BusinessTypeCandidate struct {
	Type       BusinessType `json:"type"`
	Confidence int          `json:"confidence"`
}

// Classification is the result of business type detection. Candidates holds
// at most three entries.
type Classification struct {
	Type       BusinessType            `json:"type"`
	Confidence int                     `json:"confidence"`
	Candidates []BusinessTypeCandidate `json:"candidates"`
	Source     ClassificationSource    `json:"source"`
}
