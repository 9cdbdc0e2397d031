package keyword

// stopwords are dropped after tokenising. Tokens shorter than four runes are
// already discarded, so only longer function words are listed.
var stopwords = map[string]struct{}{
	// French
	"avec": {}, "dans": {}, "pour": {}, "mais": {}, "sont": {}, "était": {}, "etait": {},
	"être": {}, "etre": {}, "avoir": {}, "nous": {}, "vous": {}, "elle": {}, "elles": {},
	"leur": {}, "leurs": {}, "cette": {}, "cela": {}, "celle": {}, "celui": {}, "ceux": {},
	"comme": {}, "aussi": {}, "très": {}, "tres": {}, "trop": {}, "plus": {}, "moins": {},
	"tout": {}, "tous": {}, "toute": {}, "toutes": {}, "encore": {}, "même": {}, "meme": {},
	"alors": {}, "donc": {}, "puis": {}, "quand": {}, "avait": {}, "avons": {}, "avez": {},
	"fait": {}, "faire": {}, "sans": {}, "sous": {}, "chez": {}, "entre": {}, "depuis": {},
	"votre": {}, "notre": {}, "quelques": {}, "quelque": {}, "peut": {}, "bien": {},
	"ensuite": {}, "vraiment": {}, "assez": {}, "beaucoup": {}, "jamais": {}, "rien": {},
	"lors": {}, "dont": {}, "ainsi": {}, "après": {}, "apres": {}, "avant": {}, "voilà": {},
	"voila": {}, "fois": {}, "chose": {}, "suis": {}, "sommes": {}, "êtes": {}, "étaient": {},
	"serait": {}, "seront": {}, "aurait": {},
	// English
	"with": {}, "this": {}, "that": {}, "they": {}, "them": {}, "their": {}, "there": {},
	"were": {}, "have": {}, "been": {}, "from": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "about": {}, "very": {}, "really": {}, "just": {}, "also": {}, "what": {},
	"when": {}, "which": {}, "your": {}, "than": {}, "then": {}, "some": {}, "into": {},
	"only": {}, "over": {}, "more": {}, "much": {}, "because": {}, "here": {},
}

// IsStopword reports whether a lower-cased token is filtered out.
func IsStopword(token string) bool {
	_, ok := stopwords[token]
	return ok
}
