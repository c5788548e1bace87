package craftscore

import (
	"math"
)

const (
	noiseBlockSize       = 8
	noiseUniformVarOfVar = 50.0
	noiseLowResponseMean = 5.0
	noiseLowResponseStd  = 8.0
)

// analyzeNoise looks for an unnaturally uniform noise texture: real sensors
// leave block-to-block variation that generators tend to smooth away.
func analyzeNoise(rs *raster, caps Capability) subScore {
	var s subScore

	blockVars := blockVariances(rs.gray, rs.w, rs.h, noiseBlockSize)
	if len(blockVars) > 1 {
		if vv := popVariance(blockVars); vv < noiseUniformVarOfVar {
			s.add(25, "Noise pattern unusually uniform across blocks (variance of variances %.1f)", vv)
		}
	}

	if !caps.Has(CapEdges) {
		s.details = append(s.details, "edge filters not available - high-pass noise check skipped")
		return s
	}

	resp := laplacian(rs.gray, rs.w, rs.h)
	if len(resp) == 0 {
		return s
	}
	var absSum float64
	for _, v := range resp {
		absSum += math.Abs(v)
	}
	if mean := absSum / float64(len(resp)); mean < noiseLowResponseMean {
		s.add(20, "Very low high-frequency noise response (%.2f), image looks over-smoothed", mean)
	}
	if std := popStdDev(resp); std < noiseLowResponseStd {
		s.add(15, "High-pass response unusually consistent (std %.2f)", std)
	}
	return s
}

// blockVariances tiles a plane into size x size blocks (partial edge blocks
// are dropped) and returns the variance of each.
func blockVariances(plane []float64, w, h, size int) []float64 {
	var out []float64
	block := make([]float64, 0, size*size)
	for by := 0; by+size <= h; by += size {
		for bx := 0; bx+size <= w; bx += size {
			block = block[:0]
			for y := by; y < by+size; y++ {
				block = append(block, plane[y*w+bx:y*w+bx+size]...)
			}
			out = append(out, popVariance(block))
		}
	}
	return out
}
