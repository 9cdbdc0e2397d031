package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/review-insights/internal/keyword"
	"github.com/sells-group/review-insights/internal/model"
	"github.com/sells-group/review-insights/internal/rating"
)

const reviewExcerptRunes = 500

const systemPrompt = `Tu es un analyste de l'expérience client pour des commerces de proximité.
À partir des avis fournis, réponds UNIQUEMENT avec un objet JSON de la forme :
{
  "summary": {"text": "une phrase de synthèse", "strengths": ["..."], "weaknesses": ["..."]},
  "average_rating": 4.2,
  "total_reviews": 120,
  "positive_pct": 70, "neutral_pct": 10, "negative_pct": 20,
  "top_issues": [{"theme": "Temps d'attente", "count": 12, "examples": ["citation courte"]}],
  "top_praises": [{"theme": "Accueil", "count": 30, "examples": ["citation courte"]}],
  "themes": [{"name": "Service", "score": 0.6, "count": 40, "sentiment": "neutral"}],
  "recommendations": [{"action": "action concrète", "priority": "haute", "impact": "effet attendu"}]
}
Les scores de thème vont de 0 à 1. Les compteurs sont des nombres d'avis.
Classe top_issues et top_praises du plus fréquent au moins fréquent.
Cite les clients mot pour mot dans examples. N'invente aucun chiffre.`

// userPrompt lists up to limit reviews, one per line.
func userPrompt(b model.Business, reviews []model.Review, limit int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Établissement : %s\n", displayName(b))
	if len(b.Types) > 0 {
		fmt.Fprintf(&sb, "Catégories : %s\n", strings.Join(b.Types, ", "))
	}
	fmt.Fprintf(&sb, "Nombre total d'avis : %d\n", len(reviews))
	if len(reviews) > limit {
		fmt.Fprintf(&sb, "Échantillon : les %d premiers avis\n", limit)
		reviews = reviews[:limit]
	}
	sb.WriteString("\nAvis :\n")
	for i, r := range reviews {
		text := keyword.OriginalSegment(r.Text)
		if text == "" {
			text = "(sans commentaire)"
		}
		text = strings.Join(strings.Fields(text), " ")
		if runes := []rune(text); len(runes) > reviewExcerptRunes {
			text = string(runes[:reviewExcerptRunes]) + "..."
		}
		date := ""
		if t, ok := r.PublishedTime(); ok {
			date = " " + t.Format("2006-01-02")
		}
		fmt.Fprintf(&sb, "%d. [%d/5%s] %s\n", i+1, rating.Normalize(r.Rating), date, text)
	}
	return sb.String()
}

func displayName(b model.Business) string {
	if b.Name != "" {
		return b.Name
	}
	return b.ID
}
