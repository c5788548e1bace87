package craftscore

import (
	"fmt"
	"log/slog"
	"strings"
)

const (
	// TextWeight and ImageWeight split the sustainability verdict.
	TextWeight  = 0.7
	ImageWeight = 0.3

	// SustainableThreshold is the final score at which a product is sustainable.
	SustainableThreshold = 60.0

	// BaselineImageScore stands in for the image signal until a visual
	// sustainability model exists.
	BaselineImageScore = 55.0

	textScoreBaseline = 30.0
	textScoreCeiling  = 150.0
	marketplaceScore  = 50.0

	maxTextReasons    = 5
	maxVerdictReasons = 6
	maxVerdictKeyword = 10
)

// MethodArtisanBaseline tags the constant image sustainability estimate.
const MethodArtisanBaseline = "heuristic_artisan_base"

// TextAnalysis is the keyword scan of a product's text.
type TextAnalysis struct {
	Score         float64  `json:"score"`
	KeywordsFound []string `json:"keywords_found"`
	Reasons       []string `json:"reasons"`
}

// ImageAnalysis is the image half of the sustainability verdict.
type ImageAnalysis struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Method     string  `json:"method"`
}

// SustainabilityVerdict is the combined sustainability classification.
type SustainabilityVerdict struct {
	IsSustainable bool     `json:"is_sustainable"`
	Score         float64  `json:"score"`
	TextScore     float64  `json:"text_score"`
	ImageScore    float64  `json:"image_score"`
	Reasons       []string `json:"reasons"`
	KeywordsFound []string `json:"keywords_found"`
}

// AnalyzeTextSustainability scores text against SustainableKeywords. Every
// occurrence of a keyword counts; each keyword is reported once.
func AnalyzeTextSustainability(text string) TextAnalysis {
	if text == "" {
		return TextAnalysis{KeywordsFound: []string{}, Reasons: []string{}}
	}

	lower := strings.ToLower(text)
	total := 0
	found := []string{}
	seen := make(map[string]struct{})
	reasons := []string{}

	for _, cat := range SustainableKeywords {
		for _, kw := range cat.Keywords {
			n := strings.Count(lower, kw)
			if n == 0 {
				continue
			}
			total += n * cat.Weight
			if _, dup := seen[kw]; !dup {
				seen[kw] = struct{}{}
				found = append(found, kw)
			}

			switch {
			case cat.Name == CategoryHigh:
				reasons = append(reasons, fmt.Sprintf("Contains '%s' - strong sustainability indicator", kw))
			case cat.Name == CategoryMedium:
				reasons = append(reasons, fmt.Sprintf("Uses '%s' material/method", kw))
			case cat.Weight < 0:
				reasons = append(reasons, fmt.Sprintf("Contains '%s' - may not be sustainable", kw))
			}
		}
	}

	score := clamp(float64(total)/textScoreCeiling*100+textScoreBaseline, 0, 100)
	if len(reasons) > maxTextReasons {
		reasons = reasons[:maxTextReasons]
	}
	return TextAnalysis{Score: round2(score), KeywordsFound: found, Reasons: reasons}
}

// AnalyzeImageSustainability returns the fixed artisan-marketplace
// baseline. The image is not inspected.
func AnalyzeImageSustainability(ref string) ImageAnalysis {
	return ImageAnalysis{Score: BaselineImageScore, Confidence: 0.6, Method: MethodArtisanBaseline}
}

// ClassifyProductSustainability combines the text and image estimates for
// a listing. ref may be empty.
func ClassifyProductSustainability(title, description, ref string) SustainabilityVerdict {
	text := AnalyzeTextSustainability(joinNonEmpty(title, description))

	imageScore := BaselineImageScore
	if strings.TrimSpace(ref) != "" {
		imageScore = AnalyzeImageSustainability(ref).Score
	}

	final := text.Score*TextWeight + imageScore*ImageWeight
	sustainable := final >= SustainableThreshold

	var reasons []string
	if sustainable {
		reasons = append(reasons, "✓ Classified as sustainable handcrafted product")
		if len(text.KeywordsFound) > 0 {
			top := text.KeywordsFound[:min(3, len(text.KeywordsFound))]
			reasons = append(reasons, "✓ Sustainable materials/methods detected: "+strings.Join(top, ", "))
		}
	} else {
		reasons = append(reasons, "Product may not meet sustainability criteria")
	}
	reasons = append(reasons, text.Reasons...)
	if final >= marketplaceScore {
		reasons = append(reasons, "Handcrafted artisan product from Clyst marketplace")
	}
	if len(reasons) > maxVerdictReasons {
		reasons = reasons[:maxVerdictReasons]
	}

	keywords := text.KeywordsFound
	if len(keywords) > maxVerdictKeyword {
		keywords = keywords[:maxVerdictKeyword]
	}

	slog.Debug("craftscore: sustainability", "score", round2(final), "keywords", len(text.KeywordsFound))
	return SustainabilityVerdict{
		IsSustainable: sustainable,
		Score:         round2(final),
		TextScore:     round2(text.Score),
		ImageScore:    round2(imageScore),
		Reasons:       reasons,
		KeywordsFound: keywords,
	}
}

func joinNonEmpty(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + " " + b
	}
}
