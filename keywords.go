package craftscore

// KeywordCategory groups sustainability keywords sharing one weight.
type KeywordCategory struct {
	Name     string
	Keywords []string
	Weight   int
}

// Keyword category names.
const (
	CategoryHigh     = "high_score"
	CategoryMedium   = "medium_score"
	CategoryLow      = "low_score"
	CategoryNegative = "negative"
)

// SustainableKeywords is scanned in order; the order fixes the order of
// reported keywords and reasons. Treat it as read-only.
var SustainableKeywords = []KeywordCategory{
	{
		Name: CategoryHigh,
		Keywords: []string{
			"handmade", "hand-made", "hand made", "organic", "recycled", "upcycled",
			"natural", "eco-friendly", "eco friendly", "biodegradable", "sustainable",
			"bamboo", "jute", "cotton", "clay", "ceramic", "pottery", "wood", "wooden",
			"artisan", "heritage", "traditional", "handcrafted", "hand-crafted",
			"eco", "green", "earth-friendly", "environmentally friendly",
		},
		Weight: 10,
	},
	{
		Name: CategoryMedium,
		Keywords: []string{
			"reusable", "plant-based", "non-toxic", "renewable", "ethical",
			"fair-trade", "fair trade", "local", "locally made", "artisanal",
			"craft", "crafted", "homemade", "home-made", "natural fiber",
			"natural fibre", "biodegradable", "compostable", "vintage",
			"repurposed", "reclaimed", "salvaged",
		},
		Weight: 7,
	},
	{
		Name: CategoryLow,
		Keywords: []string{
			"handwoven", "hand-woven", "hand woven", "textile", "fabric",
			"metal", "brass", "copper", "bronze", "terracotta", "terra-cotta",
			"stone", "marble", "leather", "silk", "wool", "linen",
		},
		Weight: 4,
	},
	{
		Name: CategoryNegative,
		Keywords: []string{
			"plastic", "synthetic", "chemical", "mass-produced", "factory-made",
			"polyester", "acrylic", "nylon", "artificial",
		},
		Weight: -8,
	},
}
