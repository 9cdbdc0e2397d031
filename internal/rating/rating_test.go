package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/review-insights/internal/model"
)

func TestNormalize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input model.RatingValue
		want  int
	}{
		{"int", model.NumericRating(4), 4},
		{"round up", model.NumericRating(3.5), 4},
		{"round down", model.NumericRating(2.4), 2},
		{"clamp high", model.NumericRating(9), 5},
		{"clamp low", model.NumericRating(-2), 1},
		{"zero clamps", model.NumericRating(0), 1},
		{"enum upper", model.TextRating("FIVE"), 5},
		{"enum lower padded", model.TextRating("  two "), 2},
		{"numeric string", model.TextRating("1"), 1},
		{"numeric string out of range", model.TextRating("7"), Default},
		{"numeric string zero", model.TextRating("0"), Default},
		{"garbage", model.TextRating("excellent"), Default},
		{"empty string", model.TextRating(""), Default},
		{"decimal string", model.TextRating("4.5"), Default},
		{"null", model.RatingValue{}, Default},
		{"nan", model.NumericRating(math.NaN()), Default},
		{"huge positive", model.NumericRating(1e19), 5},
		{"huge negative", model.NumericRating(-1e19), 1},
		{"max float", model.NumericRating(9e300), 5},
		{"positive infinity", model.NumericRating(math.Inf(1)), 5},
		{"negative infinity", model.NumericRating(math.Inf(-1)), 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestNormalize_EquivalentRepresentations(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 3, Normalize(model.TextRating("THREE")))
	assert.Equal(t, 3, Normalize(model.TextRating("3")))
	assert.Equal(t, 3, Normalize(model.NumericRating(3)))
}

func TestNormalize_AlwaysInRange(t *testing.T) {
	t.Parallel()
	inputs := []model.RatingValue{
		model.NumericRating(math.Inf(1)),
		model.NumericRating(-1e9),
		model.NumericRating(1e9),
		model.TextRating("SIX"),
		model.TextRating("-3"),
	}
	for _, in := range inputs {
		r := Normalize(in)
		assert.GreaterOrEqual(t, r, 1, in.String())
		assert.LessOrEqual(t, r, 5, in.String())
	}
}

func TestSentiment(t *testing.T) {
	t.Parallel()
	assert.Equal(t, model.SentimentNegative, Sentiment(1))
	assert.Equal(t, model.SentimentNegative, Sentiment(2))
	assert.Equal(t, model.SentimentNeutral, Sentiment(3))
	assert.Equal(t, model.SentimentPositive, Sentiment(4))
	assert.Equal(t, model.SentimentPositive, Sentiment(5))
}

func TestSentimentOf_AllRepresentations(t *testing.T) {
	t.Parallel()
	words := []string{"ONE", "TWO", "THREE", "FOUR", "FIVE"}
	want := []model.Sentiment{
		model.SentimentNegative, model.SentimentNegative, model.SentimentNeutral,
		model.SentimentPositive, model.SentimentPositive,
	}
	for i := range words {
		r := float64(i + 1)
		assert.Equal(t, want[i], SentimentOf(model.NumericRating(r)))
		assert.Equal(t, want[i], SentimentOf(model.TextRating(words[i])))
		assert.Equal(t, want[i], SentimentOf(model.TextRating(string(rune('1'+i)))))
	}
}
