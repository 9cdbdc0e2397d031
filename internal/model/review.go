package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Review is a single customer review as handed over by the review store.
// The pipeline never mutates a Review.
type Review struct {
	ID          string        `json:"id,omitempty"`
	Text        string        `json:"text"`
	Rating      RatingValue   `json:"rating"`
	PublishedAt string        `json:"published_at,omitempty"`
	Themes      []ReviewTheme `json:"themes,omitempty"`
}

// ReviewTheme is a structured theme tag attached to a review by its source.
type ReviewTheme struct {
	Name string `json:"name"`
}

// publishedLayouts lists the date formats accepted for PublishedAt, tried in order.
var publishedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
}

// PublishedTime parses PublishedAt. Returns false when the date is missing
// or in none of the accepted layouts.
func (r Review) PublishedTime() (time.Time, bool) {
	return ParseDate(r.PublishedAt)
}

// ParseDate parses a review date string using the accepted layouts.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// RatingValue is a rating as received from a source: a number, a numeric
// string ("4"), or an enum word ("FOUR"). The zero value means no rating.
type RatingValue struct {
	Number *float64
	Text   *string
}

// NumericRating builds a RatingValue from a number.
func NumericRating(n float64) RatingValue {
	return RatingValue{Number: &n}
}

// TextRating builds a RatingValue from a string.
func TextRating(s string) RatingValue {
	return RatingValue{Text: &s}
}

// IsZero reports whether no rating was supplied.
func (v RatingValue) IsZero() bool {
	return v.Number == nil && v.Text == nil
}

// String renders the raw rating for logging.
func (v RatingValue) String() string {
	switch {
	case v.Number != nil:
		return strconv.FormatFloat(*v.Number, 'f', -1, 64)
	case v.Text != nil:
		return strconv.Quote(*v.Text)
	default:
		return "null"
	}
}

// UnmarshalJSON accepts a JSON number, a JSON string, or null. Any other
// JSON type decodes to the zero value so that malformed rows still load.
func (v *RatingValue) UnmarshalJSON(data []byte) error {
	*v = RatingValue{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		v.Text = &s
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return nil
		}
		v.Number = &n
	}
	return nil
}

// MarshalJSON writes the rating back in its original shape. Non-finite
// numbers have no JSON form and are written as strings.
func (v RatingValue) MarshalJSON() ([]byte, error) {
	switch {
	case v.Number != nil && (math.IsNaN(*v.Number) || math.IsInf(*v.Number, 0)):
		return json.Marshal(v.String())
	case v.Number != nil:
		return json.Marshal(*v.Number)
	case v.Text != nil:
		return json.Marshal(*v.Text)
	default:
		return []byte("null"), nil
	}
}
