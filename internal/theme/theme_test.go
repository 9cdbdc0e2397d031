package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/review-insights/internal/model"
)

func TestMapLabel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		label string
		want  model.Theme
		ok    bool
	}{
		{"Service", model.ThemeService, true},
		{"service / attente", model.ThemeService, true},
		{"  ACCUEIL ", model.ThemeService, true},
		{"rapport qualité/prix", model.ThemePrix, true},
		{"qualité-prix", model.ThemePrix, true},
		{"Nourriture", model.ThemeCuisine, true},
		{"Ambiance", model.ThemeAmbiance, true},
		{"Qualité du service en salle", model.ThemeService, true},
		{"Desserts maison", model.ThemeCuisine, true},
		{"", "", false},
		{"parking", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			t.Parallel()
			got, ok := MapLabel(tc.label)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestMapText(t *testing.T) {
	t.Parallel()
	_, ok := MapText("")
	assert.False(t, ok)
	_, ok = MapText("random text")
	assert.False(t, ok)

	got, ok := MapText("Le serveur était adorable")
	assert.True(t, ok)
	assert.Equal(t, model.ThemeService, got)

	got, ok = MapText("Trop CHER pour ce que c'est")
	assert.True(t, ok)
	assert.Equal(t, model.ThemePrix, got)
}

func TestMapText_PrecedenceOrder(t *testing.T) {
	t.Parallel()
	// Both service and price words appear; service comes first in precedence.
	got, ok := MapText("prix corrects mais service lent")
	assert.True(t, ok)
	assert.Equal(t, model.ThemeService, got)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	explicit := model.Review{
		Text:   "Le décor est superbe",
		Themes: []model.ReviewTheme{{Name: "Service"}, {Name: "Prix"}, {Name: "service / attente"}, {Name: "parking"}},
	}
	assert.Equal(t, []model.Theme{model.ThemeService, model.ThemePrix}, Resolve(explicit))

	body := model.Review{Text: "Le décor est superbe"}
	assert.Equal(t, []model.Theme{model.ThemeAmbiance}, Resolve(body))

	assert.Empty(t, Resolve(model.Review{Text: "rien à dire"}))
	assert.Empty(t, Resolve(model.Review{}))
}
