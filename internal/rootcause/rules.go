package rootcause

import "github.com/sells-group/review-insights/internal/model"

// Category names of the Ishikawa breakdown, in output order.
const (
	CategoryWorkforce = "Main-d'œuvre"
	CategoryProcess   = "Processus"
	CategoryMethods   = "Méthodes"
	CategoryTools     = "Outils"
	CategoryContext   = "Contexte"
)

// lens is a problem family. It is enabled when the problem string contains
// one of its triggers and decides which evidence is relevant.
type lens struct {
	name       string
	triggers   []string
	themes     []model.Theme
	vocabulary []string
}

var lenses = []lens{
	{
		name:     "service",
		triggers: []string{"service", "attente", "attendre", "lent", "rapidité", "délai", "accueil", "personnel", "serveur"},
		themes:   []model.Theme{model.ThemeService},
		vocabulary: []string{
			"attente", "attendu", "attendre", "lent", "lenteur", "service", "serveur", "serveuse",
			"personnel", "débordé", "oubli", "commande", "long", "accueil", "équipe", "manque",
			"affluence", "monde", "minutes",
		},
	},
	{
		name:     "cuisine",
		triggers: []string{"cuisine", "plat", "nourriture", "goût", "repas", "qualité des plats"},
		themes:   []model.Theme{model.ThemeCuisine},
		vocabulary: []string{
			"plat", "froid", "cuisson", "goût", "fade", "salé", "cuisine", "portion", "frais",
			"surgelé", "chef", "réchauffé", "brûlé",
		},
	},
	{
		name:       "prix",
		triggers:   []string{"prix", "cher", "tarif", "addition", "qualité/prix", "qualité-prix"},
		themes:     []model.Theme{model.ThemePrix},
		vocabulary: []string{"prix", "cher", "tarif", "addition", "supplément", "portion", "rapport", "euros"},
	},
	{
		name:       "ambiance",
		triggers:   []string{"ambiance", "bruit", "propreté", "sale", "décor", "cadre"},
		themes:     []model.Theme{model.ThemeAmbiance},
		vocabulary: []string{"bruit", "bruyant", "sale", "propreté", "musique", "odeur", "chauffage", "toilettes", "décor"},
	},
}

// causeRule emits one cause when any pattern occurs in the category's evidence.
type causeRule struct {
	patterns    []string
	description string
	probability model.Probability
}

// category is an Ishikawa branch. Evidence belongs to the branch when it
// mentions a domain term; rules are then evaluated top to bottom.
type category struct {
	name     string
	domain   []string
	rules    []causeRule
	fallback string
}

var categories = []category{
	{
		name: CategoryWorkforce,
		domain: []string{
			"personnel", "serveur", "serveuse", "équipe", "staff", "employé", "vendeu",
			"coiffeu", "effectif", "manque de monde",
		},
		rules: []causeRule{
			{
				patterns:    []string{"manque", "peu de", "pas assez", "sous-effectif", "seul serveur", "seule serveuse", "débordé"},
				description: "Effectif insuffisant pour absorber la charge",
				probability: model.ProbabilityProbable,
			},
			{
				patterns:    []string{"formation", "inexpérim", "débutant", "stagiaire", "pas formé"},
				description: "Personnel insuffisamment formé",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"désagréable", "impoli", "arrogant", "méprisant", "accueil froid", "froideur"},
				description: "Attitude ou motivation du personnel",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"turnover", "jamais les mêmes", "change tout le temps"},
				description: "Rotation élevée du personnel",
				probability: model.ProbabilityOccasional,
			},
		},
		fallback: "Disponibilité ou organisation du personnel à examiner",
	},
	{
		name:   CategoryProcess,
		domain: []string{"attente", "attendu", "attendre", "lent", "lenteur", "commande", "servi", "délai", "minutes", "temps"},
		rules: []causeRule{
			{
				patterns:    []string{"pic d'affluence", "affluence", "bondé", "du monde", "plein", "rush", "complet"},
				description: "Pic d'affluence mal absorbé",
				probability: model.ProbabilityProbable,
			},
			{
				patterns:    []string{"oubli", "erreur", "trompé", "mauvaise commande"},
				description: "Prise de commande ou transmission en cuisine défaillante",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"réservation", "réservé"},
				description: "Gestion des réservations inadaptée",
				probability: model.ProbabilityOccasional,
			},
		},
		fallback: "Enchaînement des étapes du service trop lent",
	},
	{
		name:   CategoryMethods,
		domain: []string{"organisation", "organisé", "désorganis", "procédure", "ordre", "priorit"},
		rules: []causeRule{
			{
				patterns:    []string{"désorganis", "mal organisé", "pas organisé", "chaos", "bazar"},
				description: "Organisation du service peu structurée",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"ordre d'arrivée", "priorit", "passé devant", "avant nous"},
				description: "Ordre de prise en charge non respecté",
				probability: model.ProbabilityOccasional,
			},
		},
		fallback: "Méthodes de travail à formaliser",
	},
	{
		name: CategoryTools,
		domain: []string{
			"caisse", "terminal", "paiement", "carte bancaire", "carte bleue", "machine", "système",
			"logiciel", "tablette", "application", "borne", "équipement", "panne",
		},
		rules: []causeRule{
			{
				patterns:    []string{"caisse", "terminal", "paiement", "carte bancaire", "carte bleue"},
				description: "Encaissement lent ou moyens de paiement défaillants",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"panne", "cassé", "hors service"},
				description: "Équipement en panne",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"système", "logiciel", "tablette", "application", "borne"},
				description: "Outils de prise de commande inadaptés",
				probability: model.ProbabilityOccasional,
			},
		},
		fallback: "Outils et équipements à vérifier",
	},
	{
		name: CategoryContext,
		domain: []string{
			"week-end", "weekend", "samedi", "dimanche", "vendredi", "soir", "midi", "vacances",
			"travaux", "saison", "heure de", "heures",
		},
		rules: []causeRule{
			{
				patterns:    []string{"week-end", "weekend", "samedi", "dimanche", "vendredi soir"},
				description: "Fréquentation concentrée sur les fins de semaine",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"midi", "heure de pointe", "heures de pointe", "coup de feu"},
				description: "Créneaux de pointe sous-dimensionnés",
				probability: model.ProbabilityPossible,
			},
			{
				patterns:    []string{"travaux", "vacances", "saison"},
				description: "Facteurs saisonniers ou travaux à proximité",
				probability: model.ProbabilityOccasional,
			},
		},
		fallback: "Contexte de fréquentation à analyser",
	},
}
