package craftscore

import (
	"fmt"
	"unicode/utf8"
)

// Method tags reported in DetectionResult.Method.
const (
	MethodURLPattern   = "url_pattern_analysis"
	MethodURLCheck     = "url_check"
	MethodMetadata     = "metadata_analysis"
	MethodMetadataScan = "metadata_check"
	MethodVisual       = "visual_pattern_analysis"
	MethodVisualCheck  = "visual_check"
	MethodPixel        = "pixel_level_analysis"
	MethodPixelCheck   = "pixel_check"
	MethodNoImage      = "no_image"
)

// DetectionResult is the output of a single extractor.
type DetectionResult struct {
	Detected bool     `json:"detected"`
	Score    float64  `json:"score"` // 0..100
	Method   string   `json:"method"`
	Details  []string `json:"details"`
}

// subScore is the output of one pixel-level sub-analysis. Detection is only
// decided after aggregation.
type subScore struct {
	score   float64
	details []string
}

func (s *subScore) add(points float64, format string, args ...any) {
	s.score += points
	s.details = append(s.details, fmt.Sprintf(format, args...))
}

// stub returns the zero-score result used when an extractor cannot run.
func stub(method string, details ...string) DetectionResult {
	if details == nil {
		details = []string{}
	}
	return DetectionResult{Method: method, Details: details}
}

// unavailable is the null-object result for a missing capability.
func unavailable(method string, missing Capability, what string) DetectionResult {
	return stub(method, fmt.Sprintf("%s not available - %s skipped", missing, what))
}

// guard runs fn and converts a panic into a zero-score result so that one
// failing extractor never stops the others.
func (c *Config) guard(tag, method string, fn func() DetectionResult) (res DetectionResult) {
	defer func() {
		if r := recover(); r != nil {
			c.onRecovered(tag, r)
			res = stub(method, truncate(fmt.Sprintf("%s failed: %v", tag, r), 80))
		}
	}()
	return fn()
}

// guardSub is guard for pixel-level sub-analyses.
func (c *Config) guardSub(tag string, fn func() subScore) (res subScore) {
	defer func() {
		if r := recover(); r != nil {
			c.onRecovered(tag, r)
			res = subScore{details: []string{truncate(fmt.Sprintf("%s failed: %v", tag, r), 80)}}
		}
	}()
	return fn()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// missingCaps returns the capabilities in want that have is lacking.
func missingCaps(have, want Capability) Capability {
	return want &^ have
}
