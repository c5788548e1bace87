package craftscore

import (
	"context"
	"image/color"
	"math"
	"reflect"
	"strings"
	"testing"
)

var gray128 = color.RGBA{R: 128, G: 128, B: 128, A: 255}

func hasDetail(details []string, substr string) bool {
	for _, d := range details {
		if strings.Contains(d, substr) {
			return true
		}
	}
	return false
}

func TestVisualSignal_FlatSquare(t *testing.T) {
	t.Parallel()
	c := New()
	res := c.visualSignal(solidImage(64, 64, gray128))

	// low variance 20 + symmetry 25 + uniform color 15
	if res.Score != 60 {
		t.Errorf("Score = %v, want 60 (details %v)", res.Score, res.Details)
	}
	if !res.Detected || res.Method != MethodVisual {
		t.Errorf("Detected = %v, Method = %q, want true %q", res.Detected, res.Method, MethodVisual)
	}
	if !hasDetail(res.Details, "perfect symmetry") {
		t.Errorf("details %v missing symmetry", res.Details)
	}
}

func TestVisualSignal_OddWidthSkipsSymmetry(t *testing.T) {
	t.Parallel()
	c := New()
	res := c.visualSignal(solidImage(63, 63, gray128))
	if res.Score != 35 {
		t.Errorf("Score = %v, want 35 (details %v)", res.Score, res.Details)
	}
	if hasDetail(res.Details, "symmetry") {
		t.Errorf("odd width should not report symmetry: %v", res.Details)
	}
}

func TestVisualSignal_Noise(t *testing.T) {
	t.Parallel()
	c := New()
	res := c.visualSignal(noiseImage(128, 96, 7))
	if res.Score != 15 {
		t.Errorf("Score = %v, want 15 (details %v)", res.Score, res.Details)
	}
	if res.Detected || res.Method != MethodVisualCheck {
		t.Errorf("Detected = %v, Method = %q, want false %q", res.Detected, res.Method, MethodVisualCheck)
	}
}

func TestAnalyzeVisualPatterns_SourceResolution(t *testing.T) {
	t.Parallel()
	path := writePNG(t, noiseImage(200, 200, 9))

	// Resampling noise down to 32px would average the variance away.
	c := &Config{MaxAnalysisDimension: 32, MaxSpectrumDimension: 16}
	res := c.AnalyzeVisualPatterns(context.Background(), path)
	if res.Score != 15 || !hasDetail(res.Details, "unusual high variance") {
		t.Errorf("AnalyzeVisualPatterns = %+v, want high-variance 15", res)
	}
}

func TestScanVisualStats(t *testing.T) {
	t.Parallel()
	img := gradientImage(64, 48)
	st := scanVisualStats(img)

	rs := newRasterFromImage(img)
	for i, ch := range rs.channels() {
		if want := popVariance(ch); math.Abs(st.variance[i]-want) > 1e-6 {
			t.Errorf("variance[%d] = %v, want %v", i, st.variance[i], want)
		}
	}
	if st.mirrorDiff <= 0 {
		t.Errorf("mirrorDiff = %v, want > 0 for a horizontal gradient", st.mirrorDiff)
	}

	flat := scanVisualStats(solidImage(8, 8, gray128))
	if flat.variance != [3]float64{} || flat.mirrorDiff != 0 {
		t.Errorf("flat stats = %+v, want zero", flat)
	}
}

func TestAnalyzeNoise_Flat(t *testing.T) {
	t.Parallel()
	rs := newRasterFromImage(solidImage(32, 32, gray128))

	if got := analyzeNoise(rs, CapAll); got.score != 60 {
		t.Errorf("score = %v, want 60 (details %v)", got.score, got.details)
	}

	got := analyzeNoise(rs, CapAll&^CapEdges)
	if got.score != 25 {
		t.Errorf("score without edges = %v, want 25", got.score)
	}
	if !hasDetail(got.details, "not available") {
		t.Errorf("details %v missing skip note", got.details)
	}
}

func TestBlockVariances_DropsPartialBlocks(t *testing.T) {
	t.Parallel()
	plane := make([]float64, 20*17)
	if got := len(blockVariances(plane, 20, 17, 8)); got != 4 {
		t.Errorf("blocks = %d, want 4", got)
	}
}

func TestAnalyzeColor_Flat(t *testing.T) {
	t.Parallel()
	got := analyzeColor(newRasterFromImage(solidImage(32, 32, gray128)))
	// 3 x empty bins 5 + low global std 15; correlation is NaN and skipped
	if got.score != 30 {
		t.Errorf("score = %v, want 30 (details %v)", got.score, got.details)
	}
}

func TestStrideSample(t *testing.T) {
	t.Parallel()
	x := make([]float64, 100)
	for i := range x {
		x[i] = float64(i)
	}
	got := strideSample(x, 10)
	if len(got) != 10 || got[0] != 0 || got[9] != 90 {
		t.Errorf("strideSample = %v", got)
	}
	if got := strideSample(x[:5], 10); len(got) != 5 {
		t.Errorf("short input should be returned whole, got %d values", len(got))
	}
}

func TestAnalyzeEdges_Flat(t *testing.T) {
	t.Parallel()
	got := analyzeEdges(newRasterFromImage(solidImage(32, 32, gray128)))
	// few edges 10 + blurred 10
	if got.score != 20 {
		t.Errorf("score = %v, want 20 (details %v)", got.score, got.details)
	}
}

func TestAnalyzeEdges_Noise(t *testing.T) {
	t.Parallel()
	got := analyzeEdges(newRasterFromImage(noiseImage(64, 64, 3)))
	if !hasDetail(got.details, "unusually sharp") {
		t.Errorf("random noise should read as over-sharp: %v", got.details)
	}
	if hasDetail(got.details, "Very few edges") {
		t.Errorf("random noise has plenty of edges: %v", got.details)
	}
}

func TestAnalyzeFrequency_TooSmall(t *testing.T) {
	t.Parallel()
	got := analyzeFrequency(newRasterFromImage(solidImage(8, 8, gray128)))
	if got.score != 0 || !hasDetail(got.details, "too small") {
		t.Errorf("got %+v, want zero score with size note", got)
	}
}

func TestAnalyzeFrequency_FlatHasNoHighFrequencies(t *testing.T) {
	t.Parallel()
	got := analyzeFrequency(newRasterFromImage(solidImage(32, 32, gray128)))
	if !hasDetail(got.details, "no high-frequency energy") {
		t.Errorf("details %v missing energy note", got.details)
	}
}

func TestRadialProfile_Length(t *testing.T) {
	t.Parallel()
	if got := len(radialProfile(make([]float64, 40*30), 40, 30)); got != 15 {
		t.Errorf("profile length = %d, want 15", got)
	}
}

func TestAnalyzeGANFingerprint_Flat(t *testing.T) {
	t.Parallel()
	rs := newRasterFromImage(solidImage(64, 64, gray128))

	// bilateral residual 15 + uniform low saturation 10
	if got := analyzeGANFingerprint(rs, rs, CapAll); got.score != 25 {
		t.Errorf("score = %v, want 25 (details %v)", got.score, got.details)
	}
	got := analyzeGANFingerprint(rs, rs, CapAll&^CapEdges)
	if got.score != 10 || !hasDetail(got.details, "not available") {
		t.Errorf("without edges got %+v, want 10 with skip note", got)
	}
}

func TestPatchVarianceSpread(t *testing.T) {
	t.Parallel()
	if _, ok := patchVarianceSpread(newRasterFromImage(solidImage(16, 16, gray128))); ok {
		t.Error("raster smaller than a patch should not be sampled")
	}
	rs := newRasterFromImage(noiseImage(96, 96, 11))
	a, _ := patchVarianceSpread(rs)
	b, _ := patchVarianceSpread(rs)
	if a != b {
		t.Errorf("patch sampling not deterministic: %v != %v", a, b)
	}
}

func TestPixelSignal_Flat(t *testing.T) {
	t.Parallel()
	rs := newRasterFromImage(solidImage(64, 64, gray128))
	res := New().pixelSignal(planes{analysis: rs, small: rs})
	if !res.Detected || res.Method != MethodPixel {
		t.Errorf("Detected = %v, Method = %q, want true %q", res.Detected, res.Method, MethodPixel)
	}
	if res.Score < 35 || res.Score > 100 {
		t.Errorf("Score = %v, want within [35, 100]", res.Score)
	}
}

func TestPixelSignal_Deterministic(t *testing.T) {
	t.Parallel()
	c := New()
	src := &Source{Image: noiseImage(200, 150, 5)}
	a := c.pixelSignal(c.analysisPlanes(src))
	b := c.pixelSignal(c.analysisPlanes(src))
	if !reflect.DeepEqual(a, b) {
		t.Errorf("pixelSignal not deterministic:\n%+v\n%+v", a, b)
	}
}

func TestPixelSignal_MissingCapabilities(t *testing.T) {
	t.Parallel()
	rs := newRasterFromImage(solidImage(32, 32, gray128))
	p := planes{analysis: rs, small: rs}

	res := (&Config{Disabled: CapFFT | CapEdges}).pixelSignal(p)
	if !hasDetail(res.Details, "FFT not available") || !hasDetail(res.Details, "edge detection not available") {
		t.Errorf("details %v missing skip notes", res.Details)
	}

	res = (&Config{Disabled: CapNumeric}).pixelSignal(p)
	if res.Score != 0 || res.Detected {
		t.Errorf("without numeric got %+v, want zero stub", res)
	}
	if !hasDetail(res.Details, "numeric not available - pixel-level analysis skipped") {
		t.Errorf("details = %v", res.Details)
	}
}
