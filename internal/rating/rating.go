// Package rating normalises heterogeneous review ratings and maps them to
// canonical sentiment.
package rating

import (
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/review-insights/internal/model"
)

// Default is the rating assigned when the input cannot be interpreted.
const Default = 3

// enumRatings maps enum-word ratings (as emitted by place providers) to values.
var enumRatings = map[string]int{
	"ONE":   1,
	"TWO":   2,
	"THREE": 3,
	"FOUR":  4,
	"FIVE":  5,
}

// Normalize maps any RatingValue to an integer in [1,5]. Numbers are rounded
// and clamped. Strings are matched against the enum words, then parsed as an
// integer that must already be in range. Everything else falls back to
// Default with a warning.
func Normalize(v model.RatingValue) int {
	if v.Number != nil {
		n := *v.Number
		if math.IsNaN(n) {
			return fallback(v)
		}
		// Clamp before converting so huge or infinite values cannot overflow int.
		return int(math.Max(1, math.Min(5, math.Round(n))))
	}
	if v.Text != nil {
		s := strings.ToUpper(strings.TrimSpace(*v.Text))
		if r, ok := enumRatings[s]; ok {
			return r
		}
		if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= 5 {
			return n
		}
	}
	return fallback(v)
}

// Sentiment maps a normalised rating to canonical sentiment.
func Sentiment(r int) model.Sentiment {
	switch {
	case r <= 2:
		return model.SentimentNegative
	case r == 3:
		return model.SentimentNeutral
	default:
		return model.SentimentPositive
	}
}

// SentimentOf normalises v and returns its sentiment.
func SentimentOf(v model.RatingValue) model.Sentiment {
	return Sentiment(Normalize(v))
}

func fallback(v model.RatingValue) int {
	zap.L().Warn("rating: unrecognized value, using default",
		zap.Stringer("raw", v),
		zap.Int("default", Default),
	)
	return Default
}
