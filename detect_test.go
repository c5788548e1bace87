package craftscore

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

// noNetwork fails the test if any request is made.
func noNetwork(t *testing.T) *http.Client {
	return &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		t.Errorf("unexpected fetch of %s", r.URL)
		return nil, errors.New("network disabled")
	})}
}

func TestDetectAIImage_EmptyReference(t *testing.T) {
	t.Parallel()
	cfg := &Config{HTTPClient: noNetwork(t)}
	for _, ref := range []string{"", "   "} {
		v := cfg.DetectAIImage(context.Background(), ref)
		if v.IsAIGenerated || v.ConfidenceScore != 0 || v.DetectionMethod != MethodNoImage {
			t.Errorf("DetectAIImage(%q) = %+v, want no_image", ref, v)
		}
		if v.Details.Message != "No image URL provided" {
			t.Errorf("Message = %q", v.Details.Message)
		}
	}
}

func TestDetectAIImage_URLShortCircuit(t *testing.T) {
	t.Parallel()
	var events int
	cfg := &Config{
		HTTPClient:  noNetwork(t),
		OnDetection: func(DetectionEvent) { events++ },
	}
	v := cfg.DetectAIImage(context.Background(), "https://cdn.midjourney.com/grid/basket.png")

	if !v.IsAIGenerated || v.ConfidenceScore != 95 || v.DetectionMethod != MethodURLPattern {
		t.Errorf("verdict = %+v, want AI at 95 via %s", v, MethodURLPattern)
	}
	if v.Details.ConfidenceLevel != BandHigh || v.Details.PrimaryIndicator != "AI service URL detected" {
		t.Errorf("details = %+v", v.Details)
	}
	if len(v.Details.URLAnalysis) != 2 || v.Details.Scores != nil {
		t.Errorf("short circuit should carry only URL analysis, got %+v", v.Details)
	}
	if events != 1 {
		t.Errorf("OnDetection calls = %d, want 1", events)
	}
}

func TestDetectAIImage_DisabledDecodeSkipsFetch(t *testing.T) {
	t.Parallel()
	cfg := &Config{HTTPClient: noNetwork(t), Disabled: CapDecode | CapNumeric}
	v := cfg.DetectAIImage(context.Background(), "https://example.com/photos/basket.jpg")

	s := v.Details.Scores
	want := round2(s.URL*WeightURL + s.Metadata*WeightMetadata)
	if v.ConfidenceScore != want || v.ConfidenceScore != 0 {
		t.Errorf("ConfidenceScore = %v, want %v", v.ConfidenceScore, want)
	}
	if v.DetectionMethod != "heuristic analysis" {
		t.Errorf("DetectionMethod = %q", v.DetectionMethod)
	}
	if !hasDetail(v.Details.MetadataAnalysis, "decode not available - metadata analysis skipped") {
		t.Errorf("metadata details = %v", v.Details.MetadataAnalysis)
	}
	if !hasDetail(v.Details.PixelAnalysis, "decode,numeric not available - pixel-level analysis skipped") {
		t.Errorf("pixel details = %v", v.Details.PixelAnalysis)
	}
}

func TestDetectAIImage_NumericDisabledKeepsMetadata(t *testing.T) {
	t.Parallel()
	path := writePNG(t, gradientImage(512, 512))
	cfg := &Config{Disabled: CapNumeric}
	v := cfg.DetectAIImage(context.Background(), path)

	s := v.Details.Scores
	if s == nil {
		t.Fatal("Scores missing")
	}
	if s.Metadata != 60 || s.Visual != 0 || s.Pixel != 0 {
		t.Errorf("scores = %+v, want metadata 60 and zero visual/pixel", s)
	}
	if want := round2(s.URL*WeightURL + s.Metadata*WeightMetadata); v.ConfidenceScore != want || want < 12 {
		t.Errorf("ConfidenceScore = %v, want %v", v.ConfidenceScore, want)
	}
	if !hasDetail(v.Details.VisualAnalysis, "numeric not available - visual analysis skipped") ||
		!hasDetail(v.Details.PixelAnalysis, "numeric not available - pixel-level analysis skipped") {
		t.Errorf("visual %v, pixel %v: want numeric stubs", v.Details.VisualAnalysis, v.Details.PixelAnalysis)
	}
	if v.Details.Fingerprint == "" {
		t.Error("fingerprint needs only decode")
	}
}

func TestDetectAIImage_FetchFailureDegrades(t *testing.T) {
	t.Parallel()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.NotFound(w, nil)
	}))
	defer srv.Close()

	cfg := &Config{HTTPClient: srv.Client()}
	v := cfg.DetectAIImage(context.Background(), srv.URL+"/basket.jpg")

	if hits.Load() != 1 {
		t.Errorf("fetches = %d, want exactly 1", hits.Load())
	}
	if v.IsAIGenerated || v.ConfidenceScore != 0 {
		t.Errorf("verdict = %+v, want zero score", v)
	}
	for name, details := range map[string][]string{
		"metadata": v.Details.MetadataAnalysis,
		"visual":   v.Details.VisualAnalysis,
		"pixel":    v.Details.PixelAnalysis,
	} {
		if !hasDetail(details, "Failed to acquire image") || !hasDetail(details, "404") {
			t.Errorf("%s details = %v, want fetch failure", name, details)
		}
	}
}

func TestDetectAIImage_SingleFetchAndIdempotent(t *testing.T) {
	t.Parallel()
	body := encodePNG(t, gradientImage(512, 512))
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	cfg := &Config{HTTPClient: srv.Client()}
	first := cfg.DetectAIImage(context.Background(), srv.URL+"/listing.png")
	second := cfg.DetectAIImage(context.Background(), srv.URL+"/listing.png")

	if hits.Load() != 2 {
		t.Errorf("fetches = %d, want one per call", hits.Load())
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated detection differs:\n%+v\n%+v", first, second)
	}
}

func TestDetectAIImage_LocalPNG(t *testing.T) {
	t.Parallel()
	path := writePNG(t, gradientImage(512, 512))

	var got DetectionEvent
	cfg := &Config{OnDetection: func(e DetectionEvent) { got = e }}
	v := cfg.DetectAIImage(context.Background(), path)

	s := v.Details.Scores
	if s == nil {
		t.Fatal("Scores missing")
	}
	// no camera 25 + AI canvas size 20 + square generator side 15
	if s.Metadata != 60 {
		t.Errorf("metadata score = %v, want 60 (%v)", s.Metadata, v.Details.MetadataAnalysis)
	}
	if !strings.Contains(v.DetectionMethod, "metadata") {
		t.Errorf("DetectionMethod = %q, want metadata listed", v.DetectionMethod)
	}
	want := round2(s.URL*WeightURL + s.Metadata*WeightMetadata + s.Visual*WeightVisual + s.Pixel*WeightPixel)
	if math.Abs(v.ConfidenceScore-want) > 0.01 {
		t.Errorf("ConfidenceScore = %v, want %v", v.ConfidenceScore, want)
	}
	if v.Details.Fingerprint == "" {
		t.Error("Fingerprint missing")
	}
	if got.Reference != path || got.Score != v.ConfidenceScore {
		t.Errorf("event = %+v", got)
	}
}

func TestDetectAIImage_PanicIsContained(t *testing.T) {
	t.Parallel()
	var tags []string
	cfg := &Config{OnPanic: func(tag string, _ any) { tags = append(tags, tag) }}

	res := cfg.guard("visual", MethodVisualCheck, func() DetectionResult { panic("boom") })
	if res.Score != 0 || res.Method != MethodVisualCheck || !hasDetail(res.Details, "visual failed: boom") {
		t.Errorf("guard result = %+v", res)
	}
	sub := cfg.guardSub("edge analysis", func() subScore { panic("bad kernel") })
	if sub.score != 0 || !hasDetail(sub.details, "edge analysis failed") {
		t.Errorf("guardSub result = %+v", sub)
	}
	if !reflect.DeepEqual(tags, []string{"visual", "edge analysis"}) {
		t.Errorf("OnPanic tags = %v", tags)
	}
}

func TestFuse(t *testing.T) {
	t.Parallel()

	sig := func(score float64, detected bool) DetectionResult {
		return DetectionResult{Score: score, Detected: detected, Details: []string{}}
	}
	tests := []struct {
		name   string
		in     Signals
		score  float64
		ai     bool
		method string
		band   Band
	}{
		{
			name:   "all zero",
			in:     Signals{},
			method: "heuristic analysis",
			band:   BandUnlikely,
		},
		{
			name:   "pixel wins label over visual",
			in:     Signals{Visual: sig(60, true), Pixel: sig(70, true)},
			score:  37,
			method: "pixel-level analysis",
			band:   BandLow,
		},
		{
			name:   "visual labelled when pixel quiet",
			in:     Signals{Metadata: sig(60, true), Visual: sig(60, true), Pixel: sig(20, false)},
			score:  29,
			method: "metadata, visual patterns",
			band:   BandUnlikely,
		},
		{
			name:   "threshold reached",
			in:     Signals{URL: sig(0, false), Metadata: sig(60, true), Visual: sig(40, true), Pixel: sig(55, true)},
			score:  40,
			ai:     true,
			method: "metadata, pixel-level analysis",
			band:   BandLow,
		},
		{
			name:   "every signal",
			in:     Signals{URL: sig(70, true), Metadata: sig(90, true), Visual: sig(60, true), Pixel: sig(100, true)},
			score:  84.5,
			ai:     true,
			method: "URL patterns, metadata, pixel-level analysis",
			band:   BandHigh,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := Fuse(tt.in)
			if math.Abs(v.ConfidenceScore-tt.score) > 1e-9 {
				t.Errorf("ConfidenceScore = %v, want %v", v.ConfidenceScore, tt.score)
			}
			if v.IsAIGenerated != tt.ai {
				t.Errorf("IsAIGenerated = %v, want %v", v.IsAIGenerated, tt.ai)
			}
			if v.DetectionMethod != tt.method {
				t.Errorf("DetectionMethod = %q, want %q", v.DetectionMethod, tt.method)
			}
			if v.Details.ConfidenceLevel != tt.band {
				t.Errorf("ConfidenceLevel = %q, want %q", v.Details.ConfidenceLevel, tt.band)
			}
		})
	}
}

func TestFuse_WeightsSumToOne(t *testing.T) {
	t.Parallel()
	if sum := WeightURL + WeightMetadata + WeightVisual + WeightPixel; math.Abs(sum-1) > 1e-12 {
		t.Errorf("weights sum to %v", sum)
	}
	all := DetectionResult{Score: 100}
	if v := Fuse(Signals{URL: all, Metadata: all, Visual: all, Pixel: all}); v.ConfidenceScore != 100 {
		t.Errorf("all-100 signals fuse to %v", v.ConfidenceScore)
	}
}

func TestConfidenceBandFor(t *testing.T) {
	t.Parallel()
	tests := []struct {
		score float64
		want  Band
	}{
		{100, BandHigh},
		{70, BandHigh},
		{69.99, BandMedium},
		{50, BandMedium},
		{49.99, BandLow},
		{30, BandLow},
		{29.99, BandUnlikely},
		{0, BandUnlikely},
	}
	for _, tt := range tests {
		if got := ConfidenceBandFor(tt.score); got != tt.want {
			t.Errorf("ConfidenceBandFor(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestVerdict_JSONShape(t *testing.T) {
	t.Parallel()

	fused, err := json.Marshal(Fuse(Signals{}))
	if err != nil {
		t.Fatalf("marshal fused: %v", err)
	}
	for _, key := range []string{`"url_analysis":[]`, `"metadata_analysis":[]`, `"visual_analysis":[]`, `"pixel_analysis":[]`, `"scores":{`} {
		if !strings.Contains(string(fused), key) {
			t.Errorf("fused verdict %s missing %s", fused, key)
		}
	}

	empty, err := json.Marshal((&Config{}).DetectAIImage(context.Background(), ""))
	if err != nil {
		t.Fatalf("marshal no_image: %v", err)
	}
	want := `{"is_ai_generated":false,"confidence_score":0,"detection_method":"no_image","details":{"message":"No image URL provided"}}`
	if string(empty) != want {
		t.Errorf("no_image verdict = %s, want %s", empty, want)
	}
}
