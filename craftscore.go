// Package craftscore scores marketplace listings with cheap heuristics:
// the likelihood that a product image is AI-generated, and the likelihood
// that a product is sustainable. Every signal degrades to a zero score
// instead of failing, so callers always get a verdict.
package craftscore

import (
	"net/http"
	"time"
)

const (
	// DefaultUserAgent is sent with every remote image fetch.
	DefaultUserAgent = "Mozilla/5.0"

	// DefaultFetchTimeout bounds a single image download.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxImageBytes caps the bytes read from a remote or local image.
	DefaultMaxImageBytes = 10 << 20

	// DefaultMaxPixels caps the decoded pixel count of an image.
	DefaultMaxPixels = 40_000_000

	// DefaultMaxAnalysisDimension bounds the image side used by the
	// pixel-level analyses. Visual statistics always use the full image.
	DefaultMaxAnalysisDimension = 1024

	// DefaultMaxSpectrumDimension bounds the image side fed to the FFT and
	// the bilateral filter.
	DefaultMaxSpectrumDimension = 256
)

// DetectionEvent is reported through Config.OnDetection after every
// AI-image detection of a non-empty reference.
type DetectionEvent struct {
	Reference string
	Score     float64
	Positive  bool
	Method    string
}

// Config holds all dependencies injected by the consumer.
type Config struct {
	HTTPClient    *http.Client  // optional: default http client (nil = http.DefaultClient)
	UserAgent     string        // default: DefaultUserAgent
	FetchTimeout  time.Duration // default: DefaultFetchTimeout
	MaxImageBytes int64         // default: DefaultMaxImageBytes
	MaxPixels     int           // default: DefaultMaxPixels, checked before decoding

	MaxAnalysisDimension int // default: DefaultMaxAnalysisDimension
	MaxSpectrumDimension int // default: DefaultMaxSpectrumDimension

	// Disabled turns capabilities off even when they were detected at
	// startup. Extractors that need a disabled capability return a
	// zero-score stub.
	Disabled Capability

	// Optional callbacks for metrics/logging.
	OnPanic     func(tag string, r any)
	OnDetection func(DetectionEvent)
}

// New returns a Config with every default applied.
func New() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// std backs the package-level helpers. Its defaults are applied once here,
// so later defaults() calls only read it.
var std = New()

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.MaxPixels <= 0 {
		c.MaxPixels = DefaultMaxPixels
	}
	if c.MaxAnalysisDimension <= 0 {
		c.MaxAnalysisDimension = DefaultMaxAnalysisDimension
	}
	if c.MaxSpectrumDimension <= 0 {
		c.MaxSpectrumDimension = DefaultMaxSpectrumDimension
	}
}

// onRecovered reports a recovered panic through OnPanic.
func (c *Config) onRecovered(tag string, r any) {
	if c.OnPanic != nil {
		c.OnPanic(tag, r)
	}
}
