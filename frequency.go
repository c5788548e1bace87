package craftscore

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	maxProfileJaggedness = 0.5
	maxEnergyRatio       = 6.0
	minEnergyRatio       = 1.5
	maxAxisVarianceRatio = 3.0
	minSpectrumSide      = 16
)

// analyzeFrequency inspects the centered log-magnitude spectrum for
// periodic upsampling traces and skewed energy distributions.
func analyzeFrequency(rs *raster) subScore {
	var s subScore
	if rs.w < minSpectrumSide || rs.h < minSpectrumSide {
		s.details = append(s.details, "Image too small for frequency analysis")
		return s
	}

	spectrum := logSpectrum(rs.gray, rs.w, rs.h)
	w, h := rs.w, rs.h
	cx, cy := w/2, h/2

	profile := radialProfile(spectrum, w, h)
	if outer := profile[len(profile)/2:]; len(outer) > 2 {
		diffs := make([]float64, len(outer)-1)
		for i := range diffs {
			diffs[i] = outer[i+1] - outer[i]
		}
		if j := popStdDev(diffs); j > maxProfileJaggedness {
			s.add(20, "Periodic patterns detected in frequency spectrum (jaggedness %.2f)", j)
		}
	}

	low, corner := bandEnergy(spectrum, w, h)
	switch {
	case corner <= 1e-9 && low > 0:
		s.add(15, "Unusual frequency energy distribution (no high-frequency energy)")
	case corner > 1e-9:
		if ratio := low / corner; ratio > maxEnergyRatio || ratio < minEnergyRatio {
			s.add(15, "Unusual frequency energy distribution (low/high ratio %.2f)", ratio)
		}
	}

	row := spectrum[cy*w : cy*w+w]
	col := make([]float64, h)
	for y := 0; y < h; y++ {
		col[y] = spectrum[y*w+cx]
	}
	if total := popVariance(spectrum); total > 0 {
		axis := math.Max(popVariance(row), popVariance(col))
		if axis/total > maxAxisVarianceRatio {
			s.add(15, "Grid artifacts along spectrum axes (axis/total variance %.2f)", axis/total)
		}
	}
	return s
}

// logSpectrum returns log(1+|F|) of the 2-D DFT of plane, shifted so the
// zero frequency sits at (w/2, h/2).
func logSpectrum(plane []float64, w, h int) []float64 {
	data := make([]complex128, w*h)
	for i, v := range plane {
		data[i] = complex(v, 0)
	}

	rowFFT := fourier.NewCmplxFFT(w)
	rowBuf := make([]complex128, w)
	for y := 0; y < h; y++ {
		row := data[y*w : y*w+w]
		rowFFT.Coefficients(rowBuf, row)
		copy(row, rowBuf)
	}

	colFFT := fourier.NewCmplxFFT(h)
	col := make([]complex128, h)
	colBuf := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			col[y] = data[y*w+x]
		}
		colFFT.Coefficients(colBuf, col)
		for y := 0; y < h; y++ {
			data[y*w+x] = colBuf[y]
		}
	}

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		sy := (y + h/2) % h
		for x := 0; x < w; x++ {
			sx := (x + w/2) % w
			out[sy*w+sx] = math.Log1p(cmplx.Abs(data[y*w+x]))
		}
	}
	return out
}

// radialProfile averages the spectrum over integer distances from the
// center, up to half the shorter side.
func radialProfile(spectrum []float64, w, h int) []float64 {
	cx, cy := w/2, h/2
	maxR := min(w, h) / 2
	sums := make([]float64, maxR)
	counts := make([]int, maxR)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r := int(math.Hypot(float64(x-cx), float64(y-cy)))
			if r < maxR {
				sums[r] += spectrum[y*w+x]
				counts[r]++
			}
		}
	}
	for i := range sums {
		if counts[i] > 0 {
			sums[i] /= float64(counts[i])
		}
	}
	return sums
}

// bandEnergy returns the mean spectrum value inside the central low-frequency
// disc and across the four corner blocks.
func bandEnergy(spectrum []float64, w, h int) (low, corner float64) {
	cx, cy := w/2, h/2
	lowR := float64(min(w, h)) / 8
	k := max(1, min(w, h)/8)

	var lowSum, cornerSum float64
	var lowN, cornerN int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := spectrum[y*w+x]
			if math.Hypot(float64(x-cx), float64(y-cy)) < lowR {
				lowSum += v
				lowN++
			}
			inX := x < k || x >= w-k
			inY := y < k || y >= h-k
			if inX && inY {
				cornerSum += v
				cornerN++
			}
		}
	}
	if lowN > 0 {
		low = lowSum / float64(lowN)
	}
	if cornerN > 0 {
		corner = cornerSum / float64(cornerN)
	}
	return low, corner
}
