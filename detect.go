package craftscore

import (
	"context"
	"log/slog"
	"strings"
)

// Fusion weights for the AI-image verdict. They sum to 1.
const (
	WeightURL      = 0.25
	WeightMetadata = 0.20
	WeightVisual   = 0.15
	WeightPixel    = 0.40
)

const (
	// AIThreshold is the combined score at which an image is flagged.
	AIThreshold = 40.0

	// URLShortCircuit is the URL score that settles the verdict on its own.
	URLShortCircuit = 80.0
)

// Band is a qualitative confidence bucket.
type Band string

const (
	BandHigh     Band = "high"
	BandMedium   Band = "medium"
	BandLow      Band = "low"
	BandUnlikely Band = "unlikely"
)

// ConfidenceBandFor maps a score to its band. Lower bounds are inclusive.
func ConfidenceBandFor(score float64) Band {
	switch {
	case score >= 70:
		return BandHigh
	case score >= 50:
		return BandMedium
	case score >= 30:
		return BandLow
	default:
		return BandUnlikely
	}
}

// Signals are the four extractor results fed to Fuse.
type Signals struct {
	URL      DetectionResult
	Metadata DetectionResult
	Visual   DetectionResult
	Pixel    DetectionResult
}

// SignalScores is the per-extractor score breakdown of a fused verdict.
type SignalScores struct {
	URL      float64 `json:"url_score"`
	Metadata float64 `json:"metadata_score"`
	Visual   float64 `json:"visual_score"`
	Pixel    float64 `json:"pixel_score"`
}

// VerdictDetails explains a Verdict. Only the fields relevant to the path
// taken are set. A fused verdict always carries all four analysis lists,
// empty ones included; nil lists are left out.
type VerdictDetails struct {
	Message          string        `json:"message,omitempty"`
	ConfidenceLevel  Band          `json:"confidence_level,omitempty"`
	PrimaryIndicator string        `json:"primary_indicator,omitempty"`
	URLAnalysis      []string      `json:"url_analysis,omitzero"`
	MetadataAnalysis []string      `json:"metadata_analysis,omitzero"`
	VisualAnalysis   []string      `json:"visual_analysis,omitzero"`
	PixelAnalysis    []string      `json:"pixel_analysis,omitzero"`
	Scores           *SignalScores `json:"scores,omitempty"`
	Fingerprint      string        `json:"fingerprint,omitempty"`
}

// Verdict is the combined AI-image detection result.
type Verdict struct {
	IsAIGenerated   bool           `json:"is_ai_generated"`
	ConfidenceScore float64        `json:"confidence_score"` // 0..100, two decimals
	DetectionMethod string         `json:"detection_method"`
	Details         VerdictDetails `json:"details"`
}

// DetectAIImage runs DetectAIImage on the shared default Config.
func DetectAIImage(ctx context.Context, ref string) Verdict {
	return std.DetectAIImage(ctx, ref)
}

// DetectAIImage estimates whether the image at ref (URL or local path) is
// AI-generated. It never fails: missing capabilities, fetch errors and
// extractor panics only zero the affected signal.
func (c *Config) DetectAIImage(ctx context.Context, ref string) Verdict {
	c.defaults()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Verdict{
			DetectionMethod: MethodNoImage,
			Details:         VerdictDetails{Message: "No image URL provided"},
		}
	}

	urlResult := CheckURLPatterns(ref)
	if urlResult.Detected && urlResult.Score >= URLShortCircuit {
		return c.report(ref, Verdict{
			IsAIGenerated:   true,
			ConfidenceScore: urlResult.Score,
			DetectionMethod: urlResult.Method,
			Details: VerdictDetails{
				URLAnalysis:      urlResult.Details,
				ConfidenceLevel:  BandHigh,
				PrimaryIndicator: "AI service URL detected",
			},
		})
	}

	sig := Signals{URL: urlResult}
	var fingerprint string

	caps := c.capabilities()
	if !caps.Has(CapDecode) {
		missing := missingCaps(caps, CapDecode)
		sig.Metadata = unavailable(MethodMetadataScan, missing, "metadata analysis")
		sig.Visual = unavailable(MethodVisualCheck, missingCaps(caps, CapDecode|CapNumeric), "visual analysis")
		sig.Pixel = unavailable(MethodPixelCheck, missingCaps(caps, CapDecode|CapNumeric), "pixel-level analysis")
	} else if src, err := c.Acquire(ctx, ref); err != nil {
		slog.Debug("craftscore: image acquisition failed", "ref", ref, "error", err.Error())
		sig.Metadata = fetchFailed(MethodMetadataScan, err)
		sig.Visual = fetchFailed(MethodVisualCheck, err)
		sig.Pixel = fetchFailed(MethodPixelCheck, err)
	} else {
		sig.Metadata = c.guard("metadata", MethodMetadataScan, func() DetectionResult { return c.metadataSignal(src) })

		sig.Visual = c.guard("visual", MethodVisualCheck, func() DetectionResult { return c.visualSignal(src.Image) })

		var p planes
		prepared := c.guard("raster", MethodPixelCheck, func() DetectionResult {
			p = c.analysisPlanes(src)
			return DetectionResult{}
		})
		if p.analysis == nil {
			sig.Pixel = prepared
		} else {
			sig.Pixel = c.guard("pixel", MethodPixelCheck, func() DetectionResult { return c.pixelSignal(p) })
		}
		fingerprint = c.fingerprint(src)
	}

	v := Fuse(sig)
	v.Details.Fingerprint = fingerprint
	return c.report(ref, v)
}

func (c *Config) report(ref string, v Verdict) Verdict {
	slog.Debug("craftscore: ai detection", "ref", ref, "score", v.ConfidenceScore, "method", v.DetectionMethod)
	if c.OnDetection != nil {
		c.OnDetection(DetectionEvent{
			Reference: ref,
			Score:     v.ConfidenceScore,
			Positive:  v.IsAIGenerated,
			Method:    v.DetectionMethod,
		})
	}
	return v
}

// Fuse combines extractor results into a verdict with the fixed weights.
// It does not short-circuit; DetectAIImage handles that before fusing.
func Fuse(sig Signals) Verdict {
	combined := sig.URL.Score*WeightURL +
		sig.Metadata.Score*WeightMetadata +
		sig.Visual.Score*WeightVisual +
		sig.Pixel.Score*WeightPixel

	var methods []string
	if sig.URL.Detected {
		methods = append(methods, "URL patterns")
	}
	if sig.Metadata.Detected {
		methods = append(methods, "metadata")
	}
	switch {
	case sig.Pixel.Detected:
		methods = append(methods, "pixel-level analysis")
	case sig.Visual.Detected:
		methods = append(methods, "visual patterns")
	}
	method := "heuristic analysis"
	if len(methods) > 0 {
		method = strings.Join(methods, ", ")
	}

	return Verdict{
		IsAIGenerated:   combined >= AIThreshold,
		ConfidenceScore: round2(combined),
		DetectionMethod: method,
		Details: VerdictDetails{
			ConfidenceLevel:  ConfidenceBandFor(combined),
			URLAnalysis:      nonNil(sig.URL.Details),
			MetadataAnalysis: nonNil(sig.Metadata.Details),
			VisualAnalysis:   nonNil(sig.Visual.Details),
			PixelAnalysis:    nonNil(sig.Pixel.Details),
			Scores: &SignalScores{
				URL:      sig.URL.Score,
				Metadata: sig.Metadata.Score,
				Visual:   sig.Visual.Score,
				Pixel:    sig.Pixel.Score,
			},
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
