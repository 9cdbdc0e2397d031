// Package theme resolves human-written theme labels and free text to
// canonical review themes.
package theme

import (
	"strings"

	"github.com/sells-group/review-insights/internal/model"
)

// labelThemes maps common theme labels (lower-cased, trimmed) directly to a
// canonical theme.
var labelThemes = map[string]model.Theme{
	"service":               model.ThemeService,
	"service / attente":     model.ThemeService,
	"service/attente":       model.ThemeService,
	"accueil":               model.ThemeService,
	"personnel":             model.ThemeService,
	"temps d'attente":       model.ThemeService,
	"cuisine":               model.ThemeCuisine,
	"nourriture":            model.ThemeCuisine,
	"qualité des plats":     model.ThemeCuisine,
	"qualite des plats":     model.ThemeCuisine,
	"food":                  model.ThemeCuisine,
	"ambiance":              model.ThemeAmbiance,
	"cadre":                 model.ThemeAmbiance,
	"atmosphère":            model.ThemeAmbiance,
	"atmosphere":            model.ThemeAmbiance,
	"prix":                  model.ThemePrix,
	"tarifs":                model.ThemePrix,
	"rapport qualité/prix":  model.ThemePrix,
	"rapport qualité-prix":  model.ThemePrix,
	"rapport qualite/prix":  model.ThemePrix,
	"rapport qualité prix":  model.ThemePrix,
	"qualité/prix":          model.ThemePrix,
	"qualité-prix":          model.ThemePrix,
	"qualite-prix":          model.ThemePrix,
	"price":                 model.ThemePrix,
	"value":                 model.ThemePrix,
}

// synonym lists per theme. Matching is substring containment on lower-cased
// text, so entries must not be fragments of unrelated common words.
var synonyms = []struct {
	theme model.Theme
	words []string
}{
	{model.ThemeService, []string{
		"service", "serveur", "serveuse", "personnel", "accueil", "attente",
		"staff", "équipe", "aimable", "souriant", "waiter", "amabilité",
	}},
	{model.ThemeCuisine, []string{
		"cuisine", "plat", "repas", "nourriture", "goût", "saveur", "dessert",
		"entrée", "viande", "poisson", "menu", "chef", "délicieu", "food", "pizza",
	}},
	{model.ThemeAmbiance, []string{
		"ambiance", "décor", "cadre", "musique", "bruit", "bruyant", "atmosphère",
		"terrasse", "propre", "déco", "cosy", "chaleureu",
	}},
	{model.ThemePrix, []string{
		"prix", "tarif", "cher", "addition", "rapport qualité", "qualité-prix",
		"qualité/prix", "coût", "euros", "price", "abordable",
	}},
}

// MapLabel resolves a theme label. The fixed label table is tried first,
// then the synonym scan. Returns false when no theme applies.
func MapLabel(label string) (model.Theme, bool) {
	key := strings.ToLower(strings.TrimSpace(label))
	if key == "" {
		return "", false
	}
	if t, ok := labelThemes[key]; ok {
		return t, true
	}
	return MapText(key)
}

// MapText runs the synonym scan over free text. The first theme in
// precedence order with a matching synonym wins.
func MapText(text string) (model.Theme, bool) {
	lower := strings.ToLower(text)
	if strings.TrimSpace(lower) == "" {
		return "", false
	}
	for _, s := range synonyms {
		for _, w := range s.words {
			if strings.Contains(lower, w) {
				return s.theme, true
			}
		}
	}
	return "", false
}

// Resolve returns the canonical themes of a review: its explicit tags when
// present, otherwise the theme detected in its body. Duplicates are removed
// and order of first appearance kept.
func Resolve(r model.Review) []model.Theme {
	var out []model.Theme
	seen := make(map[model.Theme]bool)
	for _, tag := range r.Themes {
		if t, ok := MapLabel(tag.Name); ok && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	if len(r.Themes) > 0 {
		return out
	}
	if t, ok := MapText(r.Text); ok {
		out = append(out, t)
	}
	return out
}
