package bizclass

import "github.com/sells-group/review-insights/internal/model"

// taxonomyTags maps place-provider category tags to business types. Order
// matters: when two types tie on score, the one whose first tag appears
// earlier here wins.
var taxonomyTags = []struct {
	tag string
	bt  model.BusinessType
}{
	{"restaurant", model.BusinessRestaurant},
	{"food", model.BusinessRestaurant},
	{"meal_takeaway", model.BusinessRestaurant},
	{"meal_delivery", model.BusinessRestaurant},
	{"cafe", model.BusinessRestaurant},
	{"bar", model.BusinessRestaurant},
	{"bakery", model.BusinessRestaurant},
	{"hair_care", model.BusinessSalonCoiffure},
	{"hair_salon", model.BusinessSalonCoiffure},
	{"barber_shop", model.BusinessSalonCoiffure},
	{"gym", model.BusinessSalleSport},
	{"fitness_center", model.BusinessSalleSport},
	{"sports_club", model.BusinessSalleSport},
	{"locksmith", model.BusinessSerrurier},
	{"shoe_store", model.BusinessRetailChaussures},
	{"beauty_salon", model.BusinessInstitutBeaute},
	{"spa", model.BusinessInstitutBeaute},
	{"nail_salon", model.BusinessInstitutBeaute},
}

// typeKeywords lists the lower-case keywords scored by the keyword signal,
// in the same order as model.AllBusinessTypes.
var typeKeywords = []struct {
	bt    model.BusinessType
	words []string
}{
	{model.BusinessRestaurant, []string{
		"restaurant", "resto", "brasserie", "bistrot", "cuisine", "plat", "menu",
		"serveur", "repas", "dîner", "déjeuner", "pizzeria",
	}},
	{model.BusinessSalonCoiffure, []string{
		"coiffure", "coiffeur", "coiffeuse", "coupe", "coloration", "brushing",
		"mèches", "barbier",
	}},
	{model.BusinessSalleSport, []string{
		"salle de sport", "musculation", "fitness", "coach", "cardio",
		"vestiaire", "crossfit", "gym",
	}},
	{model.BusinessSerrurier, []string{
		"serrurier", "serrurerie", "serrure", "dépannage", "porte blindée",
		"cylindre", "ouverture de porte",
	}},
	{model.BusinessRetailChaussures, []string{
		"chaussure", "basket", "sneakers", "pointure", "bottine", "sandale",
		"escarpin",
	}},
	{model.BusinessInstitutBeaute, []string{
		"institut", "esthéticienne", "épilation", "manucure", "massage",
		"beauté", "soin du visage", "ongles",
	}},
}
