package craftscore

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	colorPeakFactor     = 3.0
	colorMaxPeaks       = 20
	colorMaxEmptyBins   = 100
	colorLowGlobalStd   = 40.0
	colorSampleSize     = 10000
	colorMinCorrelation = 0.1
)

var channelNames = [3]string{"red", "green", "blue"}

// analyzeColor inspects per-channel histograms, global color spread and
// red/green channel coupling.
func analyzeColor(rs *raster) subScore {
	var s subScore
	n := len(rs.gray)
	if n == 0 {
		return s
	}

	all := make([]float64, 0, 3*n)
	for i, ch := range rs.channels() {
		all = append(all, ch...)

		var hist [256]int
		for _, v := range ch {
			hist[int(clamp(v, 0, 255))]++
		}
		mean := float64(n) / 256
		peaks, empty := 0, 0
		for _, c := range hist {
			if float64(c) > colorPeakFactor*mean {
				peaks++
			}
			if c == 0 {
				empty++
			}
		}
		if peaks > colorMaxPeaks {
			s.add(5, "Unnatural peaks in %s histogram (%d bins)", channelNames[i], peaks)
		}
		if empty > colorMaxEmptyBins {
			s.add(5, "Quantization gaps in %s histogram (%d empty bins)", channelNames[i], empty)
		}
	}

	if std := popStdDev(all); std < colorLowGlobalStd {
		s.add(15, "Low overall color variation (std %.1f)", std)
	}

	rSample, gSample := strideSample(rs.r, colorSampleSize), strideSample(rs.g, colorSampleSize)
	if len(rSample) > 2 {
		// Constant channels give NaN and are skipped.
		if r := stat.Correlation(rSample, gSample, nil); !math.IsNaN(r) && math.Abs(r) < colorMinCorrelation {
			s.add(10, "Unusual independence between red and green channels (r=%.3f)", r)
		}
	}
	return s
}

// strideSample picks at most limit evenly spaced values from x. The choice
// is deterministic so repeated calls score identically.
func strideSample(x []float64, limit int) []float64 {
	if len(x) <= limit {
		return x
	}
	out := make([]float64, limit)
	step := float64(len(x)) / float64(limit)
	for i := range out {
		out[i] = x[int(float64(i)*step)]
	}
	return out
}
