package craftscore

import (
	"math"
	"strings"
)

// CheckURLPatterns scores a URL against the AI service and filename pattern
// lists. It performs no I/O.
func CheckURLPatterns(imageURL string) DetectionResult {
	if imageURL == "" {
		return stub(MethodURLCheck)
	}

	lower := strings.ToLower(imageURL)
	var details []string

	for _, p := range aiServiceRes {
		if p.re.MatchString(lower) {
			details = append(details, "URL contains AI service pattern: "+p.src)
		}
	}
	for _, p := range aiFilenameRes {
		if p.re.MatchString(lower) {
			details = append(details, "Filename contains AI indicator: "+p.src)
		}
	}

	if len(details) == 0 {
		return stub(MethodURLCheck)
	}

	return DetectionResult{
		Detected: true,
		Score:    math.Min(95, float64(len(details))*30+50),
		Method:   MethodURLPattern,
		Details:  details,
	}
}
