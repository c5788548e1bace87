package craftscore

// BadgeInfo is the user-facing label for a score. All fields are empty and
// Level is "none" below the lowest breakpoint.
type BadgeInfo struct {
	Emoji string `json:"emoji"`
	Text  string `json:"text"`
	Color string `json:"color"`
	Level string `json:"level"`
}

type badgeStep struct {
	min   float64
	badge BadgeInfo
}

var noBadge = BadgeInfo{Level: "none"}

var aiBadges = []badgeStep{
	{70, BadgeInfo{Emoji: "🤖", Text: "AI Generated", Color: "#ff6b6b", Level: "high"}},
	{50, BadgeInfo{Emoji: "⚠️", Text: "Likely AI Enhanced", Color: "#ffa500", Level: "medium"}},
	{30, BadgeInfo{Emoji: "❓", Text: "Possibly AI", Color: "#ffd700", Level: "low"}},
}

var sustainabilityBadges = []badgeStep{
	{80, BadgeInfo{Emoji: "🌿", Text: "Highly Sustainable", Color: "#28a745", Level: "high"}},
	{60, BadgeInfo{Emoji: "🌱", Text: "Sustainable Product", Color: "#5cb85c", Level: "medium"}},
	{40, BadgeInfo{Emoji: "♻️", Text: "Eco-Conscious", Color: "#5bc0de", Level: "low"}},
}

// AIBadge maps an AI-detection confidence score to its badge.
func AIBadge(score float64) BadgeInfo { return lookupBadge(aiBadges, score) }

// SustainabilityBadge maps a sustainability score to its badge.
func SustainabilityBadge(score float64) BadgeInfo {
	return lookupBadge(sustainabilityBadges, score)
}

func lookupBadge(steps []badgeStep, score float64) BadgeInfo {
	for _, s := range steps {
		if score >= s.min {
			return s.badge
		}
	}
	return noBadge
}
