package craftscore

import (
	"image"
	"math"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/stat"
)

// raster is a planar float64 view of an image. Channel values are 0..255.
type raster struct {
	w, h    int
	r, g, b []float64
	gray    []float64
}

// newRasterFromImage converts img to planar RGB plus ITU-R 601 luma.
func newRasterFromImage(img image.Image) *raster {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	n := w * h
	rs := &raster{
		w:    w,
		h:    h,
		r:    make([]float64, n),
		g:    make([]float64, n),
		b:    make([]float64, n),
		gray: make([]float64, n),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			rf, gf, bf := float64(r>>8), float64(g>>8), float64(b>>8)
			rs.r[i], rs.g[i], rs.b[i] = rf, gf, bf
			rs.gray[i] = 0.299*rf + 0.587*gf + 0.114*bf
			i++
		}
	}
	return rs
}

// channels returns the three color planes in R, G, B order.
func (rs *raster) channels() [3][]float64 {
	return [3][]float64{rs.r, rs.g, rs.b}
}

// boundedImage downscales img so that neither side exceeds maxDim.
// Smaller images are returned unchanged.
func boundedImage(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}
	scale := float64(maxDim) / float64(max(w, h))
	nw := max(1, int(math.Round(float64(w)*scale)))
	nh := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// laplacian applies the 4-neighbour kernel [0 1 0; 1 -4 1; 0 1 0] to the
// interior of a w x h plane.
func laplacian(plane []float64, w, h int) []float64 {
	if w < 3 || h < 3 {
		return nil
	}
	out := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := y*w + x
			out = append(out, plane[i-w]+plane[i+w]+plane[i-1]+plane[i+1]-4*plane[i])
		}
	}
	return out
}

// sobelMagnitude returns the gradient magnitude of the interior pixels.
func sobelMagnitude(plane []float64, w, h int) []float64 {
	if w < 3 || h < 3 {
		return nil
	}
	out := make([]float64, 0, (w-2)*(h-2))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			at := func(dx, dy int) float64 { return plane[(y+dy)*w+x+dx] }
			gx := -at(-1, -1) + at(1, -1) - 2*at(-1, 0) + 2*at(1, 0) - at(-1, 1) + at(1, 1)
			gy := -at(-1, -1) - 2*at(0, -1) - at(1, -1) + at(-1, 1) + 2*at(0, 1) + at(1, 1)
			out = append(out, math.Hypot(gx, gy))
		}
	}
	return out
}

// boxBlur averages each pixel over a k x k window anchored at the pixel,
// clamping at the borders.
func boxBlur(plane []float64, w, h, k int) []float64 {
	out := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			var n int
			for dy := 0; dy < k; dy++ {
				yy := min(y+dy, h-1)
				for dx := 0; dx < k; dx++ {
					xx := min(x+dx, w-1)
					sum += plane[yy*w+xx]
					n++
				}
			}
			out[y*w+x] = sum / float64(n)
		}
	}
	return out
}

// bilateral applies an edge-preserving bilateral filter with a square
// window of the given radius.
func bilateral(plane []float64, w, h, radius int, sigmaSpace, sigmaRange float64) []float64 {
	spatial := make([]float64, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*(2*radius+1)+dx+radius] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}
	rangeDen := 2 * sigmaRange * sigmaRange

	out := make([]float64, len(plane))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := plane[y*w+x]
			var sum, norm float64
			for dy := -radius; dy <= radius; dy++ {
				yy := y + dy
				if yy < 0 || yy >= h {
					continue
				}
				for dx := -radius; dx <= radius; dx++ {
					xx := x + dx
					if xx < 0 || xx >= w {
						continue
					}
					v := plane[yy*w+xx]
					diff := v - center
					wt := spatial[(dy+radius)*(2*radius+1)+dx+radius] * math.Exp(-diff*diff/rangeDen)
					sum += wt * v
					norm += wt
				}
			}
			out[y*w+x] = sum / norm
		}
	}
	return out
}

// meanAbsDiff returns mean(|a[i] - b[i]|).
func meanAbsDiff(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum / float64(len(a))
}

// popVariance is the population variance (numpy's default ddof=0).
func popVariance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	_, v := stat.PopMeanVariance(x, nil)
	return v
}

// popStdDev is the population standard deviation.
func popStdDev(x []float64) float64 {
	return math.Sqrt(popVariance(x))
}

// rgbToHSV converts 0..255 RGB into hue (degrees), saturation and value (0..1).
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	hi := math.Max(math.Max(r, g), b)
	lo := math.Min(math.Min(r, g), b)
	delta := hi - lo

	v = hi / 255
	if hi == 0 {
		s = 0
	} else {
		s = delta / hi
	}

	if delta == 0 {
		return 0, s, v
	}
	switch hi {
	case r:
		h = (g - b) / delta
	case g:
		h = 2 + (b-r)/delta
	default:
		h = 4 + (r-g)/delta
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h, s, v
}

// round2 rounds to two decimals.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
