package craftscore

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat"
)

const (
	checkerboard2Threshold = 12.0
	checkerboard4Threshold = 18.0
	patchSize              = 32
	patchSamples           = 20
	maxPatchVarOfVar       = 2e6
	minBilateralResidual   = 1.0
	bilateralRadius        = 2
	bilateralSigmaSpace    = 2.0
	bilateralSigmaRange    = 25.0
)

// patchSeed fixes the patch sampler so repeated calls give identical scores.
const patchSeed = 0x5eed

// analyzeGANFingerprint looks for artifacts left by generative upsampling:
// checkerboarding, locally inconsistent texture, blob-like smoothness and
// uniform saturation.
func analyzeGANFingerprint(rs *raster, bilateralPlane *raster, caps Capability) subScore {
	var s subScore

	d2 := meanAbsDiff(rs.gray, boxBlur(rs.gray, rs.w, rs.h, 2))
	if d2 > checkerboard2Threshold {
		s.add(10, "Checkerboard artifacts at 2x2 scale (mean difference %.1f)", d2)
	}
	d4 := meanAbsDiff(rs.gray, boxBlur(rs.gray, rs.w, rs.h, 4))
	if d4 > checkerboard4Threshold {
		s.add(10, "Checkerboard artifacts at 4x4 scale (mean difference %.1f)", d4)
	}

	if vv, ok := patchVarianceSpread(rs); ok && vv > maxPatchVarOfVar {
		s.add(15, "Locally inconsistent texture across sampled patches (variance of variances %.0f)", vv)
	}

	if caps.Has(CapEdges) && bilateralPlane != nil {
		bp := bilateralPlane
		filtered := bilateral(bp.gray, bp.w, bp.h, bilateralRadius, bilateralSigmaSpace, bilateralSigmaRange)
		if res := meanAbsDiff(bp.gray, filtered); res < minBilateralResidual {
			s.add(15, "Unnaturally smooth blob regions (bilateral residual %.2f)", res)
		}
	} else {
		s.details = append(s.details, "edge filters not available - bilateral residual check skipped")
	}

	sat := make([]float64, len(rs.gray))
	for i := range sat {
		_, sv, _ := rgbToHSV(rs.r[i], rs.g[i], rs.b[i])
		sat[i] = sv * 255
	}
	mean, std := meanStd(sat)
	switch {
	case mean > 180 && std < 30:
		s.add(10, "Unnaturally uniform high saturation (mean %.0f, std %.1f)", mean, std)
	case mean < 20 && std < 10:
		s.add(10, "Unnaturally uniform low saturation (mean %.0f, std %.1f)", mean, std)
	}
	return s
}

// patchVarianceSpread samples patchSamples tiles of patchSize x patchSize
// and returns the variance of their variances.
func patchVarianceSpread(rs *raster) (float64, bool) {
	if rs.w < patchSize || rs.h < patchSize {
		return 0, false
	}
	rng := rand.New(rand.NewPCG(patchSeed, patchSeed))
	vars := make([]float64, 0, patchSamples)
	patch := make([]float64, 0, patchSize*patchSize)
	for range patchSamples {
		x0 := rng.IntN(rs.w - patchSize + 1)
		y0 := rng.IntN(rs.h - patchSize + 1)
		patch = patch[:0]
		for y := y0; y < y0+patchSize; y++ {
			patch = append(patch, rs.gray[y*rs.w+x0:y*rs.w+x0+patchSize]...)
		}
		vars = append(vars, popVariance(patch))
	}
	return popVariance(vars), true
}

func meanStd(x []float64) (mean, std float64) {
	if len(x) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(x, nil)
}
