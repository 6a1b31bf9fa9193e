package analyzer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/linkmesh-ai/linkmesh/pkg/types"
)

// Lexicon holds the curated domain vocabulary, one term set per entity
// type, with a compiled matcher per set.
type Lexicon struct {
	sets     map[string][]string
	patterns map[string]*regexp.Regexp
}

// typeOrder fixes the iteration order so extraction output is deterministic.
var typeOrder = []string{
	types.ENTITY_TYPE_GARMENT,
	types.ENTITY_TYPE_BRAND,
	types.ENTITY_TYPE_STYLE,
	types.ENTITY_TYPE_MATERIAL,
	types.ENTITY_TYPE_BODY_SHAPE,
	types.ENTITY_TYPE_COLOR_SEASON,
	types.ENTITY_TYPE_SEASONAL,
}

func NewLexicon(sets map[string][]string) *Lexicon {
	l := &Lexicon{
		sets:     make(map[string][]string, len(sets)),
		patterns: make(map[string]*regexp.Regexp, len(sets)),
	}
	for entityType, terms := range sets {
		normalized := make([]string, 0, len(terms))
		for _, term := range terms {
			normalized = append(normalized, strings.ToLower(strings.TrimSpace(term)))
		}
		l.sets[entityType] = normalized
		l.patterns[entityType] = compilePattern(normalized)
	}
	return l
}

// compilePattern builds one case-insensitive word-boundary alternation,
// longest terms first so multi-word terms win over their fragments.
func compilePattern(terms []string) *regexp.Regexp {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.Slice(sorted, func(i, j int) bool {
		if len(sorted[i]) != len(sorted[j]) {
			return len(sorted[i]) > len(sorted[j])
		}
		return sorted[i] < sorted[j]
	})

	escaped := make([]string, 0, len(sorted))
	for _, term := range sorted {
		escaped = append(escaped, regexp.QuoteMeta(term))
	}
	return regexp.MustCompile(`(?i)\b(` + strings.Join(escaped, "|") + `)\b`)
}

func (l *Lexicon) Types() []string {
	result := make([]string, 0, len(typeOrder))
	for _, t := range typeOrder {
		if _, ok := l.sets[t]; ok {
			result = append(result, t)
		}
	}
	return result
}

func (l *Lexicon) Pattern(entityType string) *regexp.Regexp {
	return l.patterns[entityType]
}

func (l *Lexicon) Terms(entityType string) []string {
	return l.sets[entityType]
}

// ContainsTerm reports whether phrase contains any term of the given type.
func (l *Lexicon) ContainsTerm(entityType, phrase string) bool {
	lower := strings.ToLower(phrase)
	for _, term := range l.sets[entityType] {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// TypeOf returns the first entity type whose term set matches phrase,
// checked in the fixed type order.
func (l *Lexicon) TypeOf(phrase string) (string, bool) {
	for _, t := range l.Types() {
		if l.ContainsTerm(t, phrase) {
			return t, true
		}
	}
	return "", false
}

// DefaultLexicon returns the menswear vocabulary the extractor ships with.
func DefaultLexicon() *Lexicon {
	return NewLexicon(map[string][]string{
		types.ENTITY_TYPE_GARMENT: {
			// Tops
			"oxford shirt", "dress shirt", "button-down", "polo shirt", "t-shirt", "tee",
			"henley", "sweater", "jumper", "cardigan", "pullover", "sweatshirt", "hoodie",
			"tank top", "vest", "waistcoat", "blazer", "sport coat", "suit jacket", "dinner jacket",
			// Bottoms
			"trousers", "pants", "chinos", "khakis", "jeans", "denim", "corduroys", "joggers",
			"sweatpants", "shorts", "bermudas", "swim shorts",
			// Outerwear
			"coat", "overcoat", "topcoat", "trench coat", "raincoat", "mac", "parka", "anorak",
			"windbreaker", "peacoat", "duffle coat", "leather jacket", "bomber jacket",
			"harrington jacket", "field jacket", "safari jacket", "gilet", "puffer vest",
			// Footwear
			"oxford shoes", "derby shoes", "brogues", "loafers", "penny loafers", "boat shoes",
			"deck shoes", "driving shoes", "monk straps", "chelsea boots", "desert boots", "chukka boots",
			"wingtips", "moccasins", "sneakers", "trainers", "sandals", "espadrilles", "slippers",
			// Accessories
			"necktie", "tie", "bow tie", "pocket square", "cufflinks", "tie bar", "tie clip",
			"belt", "suspenders", "braces", "watch", "scarf", "gloves", "hat", "cap", "beanie",
			"sunglasses", "wallet", "briefcase", "messenger bag", "backpack", "umbrella", "socks",
			// Full outfits
			"suit", "tuxedo", "dinner suit", "three-piece suit", "two-piece suit", "ensemble",
			"outfit", "look", "attire",
		},
		types.ENTITY_TYPE_BRAND: {
			"ralph lauren", "polo ralph lauren", "brooks brothers", "j.press", "drakes",
			"barbour", "burberry", "lacoste", "hugo boss", "vineyard vines", "j.crew",
			"sperry", "loro piana", "brunello cucinelli", "zegna", "tom ford", "gucci",
			"prada", "louis vuitton", "hermes", "armani", "versace", "charles tyrwhitt",
			"thomas pink", "hackett london", "turnbull & asser", "brioni",
			"lululemon", "l.l.bean", "bean boots", "duck boots", "patagonia", "north face",
			"orvis", "filson", "pendleton", "woolrich", "hunter boots", "belstaff",
			"gant", "johnston & murphy", "allen edmonds", "tricker's", "crockett & jones",
			"church's", "alden", "new balance", "keds", "sebago", "sperrys", "quoddy",
			"uniqlo", "h&m", "zara", "massimo dutti", "mango", "topman", "cos", "arket",
			"gap", "banana republic", "old navy", "express", "asos", "everlane", "reiss",
			"sandro", "maje", "club monaco", "suitsupply",
		},
		types.ENTITY_TYPE_STYLE: {
			"old money", "ivy league", "preppy", "trad", "traditional", "conservative",
			"classic", "timeless", "heritage", "vintage", "retro", "smart", "formal",
			"business casual", "casual", "smart casual", "business formal", "black tie",
			"white tie", "cocktail attire", "evening wear",
			"american traditional", "british", "italian", "french", "scandinavian",
			"japanese", "korean", "nautical", "coastal", "country", "rural", "urban",
			"ivy style", "british countryside", "english country", "scottish highland",
			"italian sprezzatura", "parisian", "riviera", "mediterranean", "alpine",
			"cape cod", "nantucket", "hamptons", "upper east side", "roppongi hills",
			"sloane ranger", "kensington", "chelsea", "mayfair",
			"minimalist", "capsule wardrobe", "streetwear", "athleisure", "techwear",
			"workwear", "utility", "avant-garde", "contemporary", "modern", "clean-cut",
			"sharp", "polished", "refined", "new money", "luxury", "high-end",
		},
		types.ENTITY_TYPE_MATERIAL: {
			"cotton", "pima cotton", "sea island cotton", "egyptian cotton", "supima",
			"wool", "merino wool", "lambswool", "shetland wool", "cashmere", "tweed",
			"houndstooth", "herringbone", "linen", "flax", "silk", "mohair", "alpaca",
			"camel hair", "vicuña", "leather", "suede", "nubuck", "calfskin", "cordovan",
			"sheepskin", "deerskin", "pigskin", "sharkskin", "alligator", "crocodile",
			"polyester", "nylon", "acrylic", "rayon", "viscose", "tencel", "lycra",
			"spandex", "elastane", "gore-tex", "performance fabric", "tech fabric",
			"microfiber", "fleece", "down", "goose down", "duck down", "synthetic down",
			"oxford cloth", "broadcloth", "poplin", "twill", "pinpoint", "chambray",
			"seersucker", "corduroy", "madras", "flannel", "gabardine", "canvas",
			"velvet", "velour", "waxed", "weatherproof", "waterproof", "breathable",
		},
		types.ENTITY_TYPE_BODY_SHAPE: {
			"triangle body shape", "triangle shape", "pear shape", "inverted triangle",
			"inverted triangle body shape", "v-shape", "athletic", "athletic build",
			"rectangle", "rectangle body shape", "straight", "oval", "oval body shape",
			"round", "apple shape", "apple body shape", "trapezoid", "trapezoid body shape",
			"broad shoulders", "narrow shoulders", "muscular chest", "muscular build",
			"slim waist", "narrow waist", "wide waist", "full waist", "slim hips",
			"narrow hips", "wide hips", "full hips", "short legs", "long legs",
			"slim legs", "muscular legs", "long torso", "short torso",
		},
		types.ENTITY_TYPE_COLOR_SEASON: {
			"navy", "navy blue", "blue", "light blue", "sky blue", "cobalt blue", "royal blue",
			"white", "off-white", "cream", "ivory", "eggshell", "grey", "gray", "charcoal",
			"silver", "black", "red", "burgundy", "maroon", "green", "olive", "forest green",
			"khaki", "beige", "tan", "brown", "chocolate brown", "camel", "pink", "purple",
			"lavender", "orange", "coral", "yellow", "gold", "mustard",
			"spring colours", "summer colours", "autumn colours", "winter colours",
			"warm colours", "cool colours", "clear colours", "muted colours", "deep colours",
			"light colours", "dark colours", "bright colours", "soft colours", "neutral colours",
			"earthy colours", "pastel colours", "jewel tones", "monochrome", "tonal",
			"true spring", "light spring", "bright spring", "warm spring",
			"true summer", "light summer", "soft summer", "cool summer",
			"true autumn", "soft autumn", "deep autumn", "warm autumn",
			"true winter", "deep winter", "clear winter", "cool winter",
			"old money colours", "heritage colours", "traditional colours", "preppy colours",
			"ivy league colours", "collegiate colours", "nautical colours",
		},
		types.ENTITY_TYPE_SEASONAL: {
			"spring", "summer", "autumn", "fall", "winter", "seasonal", "year-round",
			"trans-seasonal", "resort", "vacation", "holiday",
			"warm weather", "cold weather", "hot weather", "cool weather", "rainy",
			"wet weather", "sunny", "windy", "humid", "dry", "temperate",
			"beach", "skiing", "winter sports", "summer sports", "outdoor",
			"indoor", "layering", "temperature regulation", "weather-appropriate",
		},
	})
}
