package store

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/sells-group/review-insights/internal/model"
)

// reviewRow is the column form of a review.
type reviewRow struct {
	ReviewID    string
	Position    int
	Text        string
	Rating      []byte
	PublishedAt string
	Themes      []byte
}

var reviewColumns = []string{"business_id", "review_id", "position", "text", "rating", "published_at", "themes"}

// encodeReviews assigns a fresh id to reviews that arrive without one.
func encodeReviews(reviews []model.Review) ([]reviewRow, error) {
	rows := make([]reviewRow, 0, len(reviews))
	for i, r := range reviews {
		rating, err := json.Marshal(r.Rating)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal rating")
		}
		themes, err := json.Marshal(r.Themes)
		if err != nil {
			return nil, eris.Wrap(err, "store: marshal themes")
		}
		id := strings.TrimSpace(r.ID)
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, reviewRow{
			ReviewID:    id,
			Position:    i,
			Text:        r.Text,
			Rating:      rating,
			PublishedAt: r.PublishedAt,
			Themes:      themes,
		})
	}
	return rows, nil
}

func (r reviewRow) values(businessID string) []any {
	return []any{businessID, r.ReviewID, r.Position, r.Text, string(r.Rating), r.PublishedAt, string(r.Themes)}
}

func decodeReview(id, text string, rating []byte, publishedAt string, themes []byte) (model.Review, error) {
	r := model.Review{ID: id, Text: text, PublishedAt: publishedAt}
	if len(rating) > 0 {
		if err := json.Unmarshal(rating, &r.Rating); err != nil {
			return r, eris.Wrap(err, "store: unmarshal rating")
		}
	}
	if len(themes) > 0 && string(themes) != "null" {
		if err := json.Unmarshal(themes, &r.Themes); err != nil {
			return r, eris.Wrap(err, "store: unmarshal themes")
		}
	}
	return r, nil
}

func encodeTypes(types []string) ([]byte, error) {
	if types == nil {
		types = []string{}
	}
	b, err := json.Marshal(types)
	return b, eris.Wrap(err, "store: marshal types")
}

func decodeTypes(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var types []string
	if err := json.Unmarshal(raw, &types); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal types")
	}
	if len(types) == 0 {
		return nil, nil
	}
	return types, nil
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
