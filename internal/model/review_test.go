package model

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatingValue_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantNum  *float64
		wantText *string
	}{
		{"number", `4`, ptr(4.0), nil},
		{"float", `3.6`, ptr(3.6), nil},
		{"numeric string", `"5"`, nil, ptr("5")},
		{"enum word", `"FOUR"`, nil, ptr("FOUR")},
		{"null", `null`, nil, nil},
		{"bool tolerated", `true`, nil, nil},
		{"object tolerated", `{"v":1}`, nil, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var v RatingValue
			require.NoError(t, json.Unmarshal([]byte(tc.input), &v))
			assert.Equal(t, tc.wantNum, v.Number)
			assert.Equal(t, tc.wantText, v.Text)
		})
	}
}

func TestRatingValue_MarshalRoundTripShape(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(NumericRating(2))
	require.NoError(t, err)
	assert.JSONEq(t, `2`, string(b))

	b, err = json.Marshal(TextRating("TWO"))
	require.NoError(t, err)
	assert.JSONEq(t, `"TWO"`, string(b))

	b, err = json.Marshal(RatingValue{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

func TestRatingValue_MarshalNonFinite(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(NumericRating(math.NaN()))
	require.NoError(t, err)
	assert.Equal(t, `"NaN"`, string(b))

	b, err = json.Marshal(NumericRating(math.Inf(1)))
	require.NoError(t, err)
	assert.Equal(t, `"+Inf"`, string(b))

	b, err = json.Marshal(NumericRating(math.Inf(-1)))
	require.NoError(t, err)
	assert.Equal(t, `"-Inf"`, string(b))
}

func TestReview_DecodeMixedRows(t *testing.T) {
	t.Parallel()
	raw := `[
		{"text":"Super","rating":"FIVE","published_at":"2024-03-02T10:00:00Z","themes":[{"name":"Service"}]},
		{"text":null,"rating":2},
		{"text":"Bof","rating":"3","published_at":"not a date"}
	]`
	var reviews []Review
	require.NoError(t, json.Unmarshal([]byte(raw), &reviews))
	require.Len(t, reviews, 3)

	assert.Equal(t, "Super", reviews[0].Text)
	assert.Equal(t, "Service", reviews[0].Themes[0].Name)
	_, ok := reviews[0].PublishedTime()
	assert.True(t, ok)

	assert.Empty(t, reviews[1].Text)
	_, ok = reviews[1].PublishedTime()
	assert.False(t, ok)

	_, ok = reviews[2].PublishedTime()
	assert.False(t, ok)
}

func TestParseDate_Layouts(t *testing.T) {
	t.Parallel()
	for _, in := range []string{"2024-01-15", "15/01/2024", "2024-01-15 08:30:00", "2024-01-15T08:30:00Z"} {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, 2024, got.Year())
		assert.Equal(t, 15, got.Day())
	}
}

func TestInsight_DecodeLooseShapes(t *testing.T) {
	t.Parallel()
	raw := `{
		"summary": "Clients globalement satisfaits",
		"top_issues": [{"theme":"Attente","count":12}],
		"recommendations": ["Renforcer l'équipe", {"action":"Revoir la carte","priority":"high"}]
	}`
	var in Insight
	require.NoError(t, json.Unmarshal([]byte(raw), &in))
	assert.Equal(t, "Clients globalement satisfaits", in.Summary.Headline())
	require.Len(t, in.Recommendations, 2)
	assert.Equal(t, "Renforcer l'équipe", in.Recommendations[0].Action)
	assert.Equal(t, "high", in.Recommendations[1].Priority)

	var obj Insight
	require.NoError(t, json.Unmarshal([]byte(`{"summary":{"overview":"Bon rapport qualité prix","strengths":["accueil"]}}`), &obj))
	assert.Equal(t, "Bon rapport qualité prix", obj.Summary.Headline())
	assert.Equal(t, []string{"accueil"}, obj.Summary.Strengths)

	var nilSummary *InsightSummary
	assert.Empty(t, nilSummary.Headline())
}

func ptr[T any](v T) *T { return &v }
