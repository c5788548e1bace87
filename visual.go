package craftscore

import (
	"context"
	"image"
	"math"

	"gonum.org/v1/gonum/stat"
)

// AnalyzeVisualPatterns acquires ref and scores basic image statistics:
// smoothness, mirror symmetry and color uniformity.
func (c *Config) AnalyzeVisualPatterns(ctx context.Context, ref string) DetectionResult {
	if missing := missingCaps(c.capabilities(), CapDecode|CapNumeric); missing != 0 {
		return unavailable(MethodVisualCheck, missing, "visual analysis")
	}
	src, err := c.Acquire(ctx, ref)
	if err != nil {
		return fetchFailed(MethodVisualCheck, err)
	}
	return c.guard("visual", MethodVisualCheck, func() DetectionResult {
		return c.visualSignal(src.Image)
	})
}

// visualSignal scores img at its source resolution.
func (c *Config) visualSignal(img image.Image) DetectionResult {
	if missing := missingCaps(c.capabilities(), CapDecode|CapNumeric); missing != 0 {
		return unavailable(MethodVisualCheck, missing, "visual analysis")
	}

	st := scanVisualStats(img)

	details := []string{}
	var score float64

	var stds [3]float64
	for i, v := range st.variance {
		stds[i] = math.Sqrt(v)
	}
	avgVariance := (st.variance[0] + st.variance[1] + st.variance[2]) / 3

	if avgVariance < 500 {
		details = append(details, "Image appears unnaturally smooth (low variance)")
		score += 20
	}
	if avgVariance > 5000 {
		details = append(details, "Image has unusual high variance pattern")
		score += 15
	}

	// Halves only line up when the width splits evenly.
	if st.w == st.h && st.w%2 == 0 && st.w > 0 {
		if st.mirrorDiff < 10 {
			details = append(details, "Image shows unusual perfect symmetry")
			score += 25
		}
	}

	if stds[0] < 30 && stds[1] < 30 && stds[2] < 30 {
		details = append(details, "Unusually uniform color distribution")
		score += 15
	}

	if score >= 35 {
		return DetectionResult{Detected: true, Score: score, Method: MethodVisual, Details: details}
	}
	return DetectionResult{Score: score, Method: MethodVisualCheck, Details: details}
}

// visualStats are whole-image channel statistics.
type visualStats struct {
	w, h     int
	variance [3]float64 // population variance of R, G, B

	// mirrorDiff is the mean absolute difference between the left half and
	// the horizontally flipped right half, over all three channels. It is
	// only computed for even widths.
	mirrorDiff float64
}

// scanVisualStats walks img one row at a time, so memory stays at a few
// rows regardless of the pixel count. Row moments are merged with the
// pairwise update of Chan et al.
func scanVisualStats(img image.Image) visualStats {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	st := visualStats{w: w, h: h}
	if w == 0 || h == 0 {
		return st
	}

	var rows [3][]float64
	for i := range rows {
		rows[i] = make([]float64, w)
	}
	var mean, m2 [3]float64
	var n float64
	var mirrorSum float64
	half := w / 2

	rowN := float64(w)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, y).RGBA()
			rows[0][x], rows[1][x], rows[2][x] = float64(r>>8), float64(g>>8), float64(bl>>8)
		}
		total := n + rowN
		for i, row := range rows {
			rm, rv := stat.PopMeanVariance(row, nil)
			delta := rm - mean[i]
			m2[i] += rv*rowN + delta*delta*n*rowN/total
			mean[i] += delta * rowN / total
			if w%2 == 0 {
				for x := 0; x < half; x++ {
					mirrorSum += math.Abs(row[x] - row[w-1-x])
				}
			}
		}
		n = total
	}

	for i := range st.variance {
		st.variance[i] = m2[i] / n
	}
	if w%2 == 0 {
		st.mirrorDiff = mirrorSum / float64(3*half*h)
	}
	return st
}
