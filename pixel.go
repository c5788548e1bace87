package craftscore

import (
	"context"
	"math"
)

// pixelScale turns the summed sub-analysis points into the 0..100 signal.
const pixelScale = 0.7

// AnalyzePixelLevelFeatures acquires ref and runs the noise, color, edge,
// frequency and GAN-fingerprint analyses.
func (c *Config) AnalyzePixelLevelFeatures(ctx context.Context, ref string) DetectionResult {
	if missing := missingCaps(c.capabilities(), CapDecode|CapNumeric); missing != 0 {
		return unavailable(MethodPixelCheck, missing, "pixel-level analysis")
	}
	src, err := c.Acquire(ctx, ref)
	if err != nil {
		return fetchFailed(MethodPixelCheck, err)
	}
	return c.guard("pixel", MethodPixelCheck, func() DetectionResult {
		return c.pixelSignal(c.analysisPlanes(src))
	})
}

// planes are the rasters shared by the visual and pixel-level signals.
type planes struct {
	analysis *raster // bounded to MaxAnalysisDimension
	small    *raster // bounded to MaxSpectrumDimension
}

func (c *Config) analysisPlanes(src *Source) planes {
	c.defaults()
	analysisImg := boundedImage(src.Image, c.MaxAnalysisDimension)
	return planes{
		analysis: newRasterFromImage(analysisImg),
		small:    newRasterFromImage(boundedImage(analysisImg, c.MaxSpectrumDimension)),
	}
}

func (c *Config) pixelSignal(p planes) DetectionResult {
	caps := c.capabilities()
	if missing := missingCaps(caps, CapDecode|CapNumeric); missing != 0 {
		return unavailable(MethodPixelCheck, missing, "pixel-level analysis")
	}

	rs := p.analysis
	parts := []subScore{
		c.guardSub("noise analysis", func() subScore { return analyzeNoise(rs, caps) }),
		c.guardSub("color analysis", func() subScore { return analyzeColor(rs) }),
		c.guardSub("edge analysis", func() subScore {
			if !caps.Has(CapEdges) {
				return subScore{details: []string{"edge detection not available - edge analysis skipped"}}
			}
			return analyzeEdges(rs)
		}),
		c.guardSub("frequency analysis", func() subScore {
			if !caps.Has(CapFFT) {
				return subScore{details: []string{"FFT not available - frequency analysis skipped"}}
			}
			return analyzeFrequency(p.small)
		}),
		c.guardSub("GAN fingerprint analysis", func() subScore { return analyzeGANFingerprint(rs, p.small, caps) }),
	}

	var total float64
	details := []string{}
	for _, part := range parts {
		total += part.score
		details = append(details, part.details...)
	}

	score := round2(math.Min(100, total*pixelScale))
	if score >= 35 {
		return DetectionResult{Detected: true, Score: score, Method: MethodPixel, Details: details}
	}
	return DetectionResult{Score: score, Method: MethodPixelCheck, Details: details}
}
