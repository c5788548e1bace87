package craftscore

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"math"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Capability is a bit set of optional analysis capabilities.
type Capability uint8

const (
	CapDecode  Capability = 1 << iota // image decoding
	CapNumeric                        // array statistics
	CapFFT                            // frequency-domain transforms
	CapEdges                          // convolution / gradient filters

	CapAll = CapDecode | CapNumeric | CapFFT | CapEdges
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapDecode, "decode"},
	{CapNumeric, "numeric"},
	{CapFFT, "fft"},
	{CapEdges, "edges"},
}

// Has reports whether every capability in want is present in c.
func (c Capability) Has(want Capability) bool {
	return c&want == want
}

func (c Capability) String() string {
	var names []string
	for _, n := range capabilityNames {
		if c&n.cap != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// ParseCapabilities parses a comma-separated list such as "fft,edges".
// Unknown names are reported as the second return value.
func ParseCapabilities(s string) (Capability, []string) {
	var c Capability
	var unknown []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		found := false
		for _, n := range capabilityNames {
			if n.name == part {
				c |= n.cap
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, part)
		}
	}
	return c, unknown
}

// detected holds the capabilities found at process start. Never mutated.
var detected = probeCapabilities()

// Detected returns the capabilities found at process start.
func Detected() Capability { return detected }

// probeCapabilities exercises each backend once. A backend that panics or
// returns nonsense is left out of the set.
func probeCapabilities() Capability {
	var c Capability
	if probe("decode", probeDecode) {
		c |= CapDecode
	}
	if probe("numeric", probeNumeric) {
		c |= CapNumeric
	}
	if probe("fft", probeFFT) {
		c |= CapFFT
	}
	if probe("edges", probeEdges) {
		c |= CapEdges
	}
	if c != CapAll {
		slog.Warn("craftscore: running with reduced capabilities", "available", c.String())
	}
	return c
}

func probe(name string, fn func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("craftscore: capability probe panicked", "capability", name, "panic", r)
			ok = false
		}
	}()
	return fn()
}

func probeDecode() bool {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		return false
	}
	img, _, err := image.Decode(&buf)
	return err == nil && img.Bounds().Dx() == 1
}

func probeNumeric() bool {
	return stat.Mean([]float64{1, 2, 3}, nil) == 2
}

func probeFFT() bool {
	coeff := fourier.NewCmplxFFT(4).Coefficients(nil, []complex128{1, 1, 1, 1})
	return len(coeff) == 4 && real(coeff[0]) == 4
}

func probeEdges() bool {
	g := image.NewGray(image.Rect(0, 0, 3, 3))
	g.SetGray(1, 1, color.Gray{Y: 10})
	r := newRasterFromImage(g)
	resp := laplacian(r.gray, r.w, r.h)
	return len(resp) == 1 && math.Abs(resp[0]+40) < 1e-9
}

// capabilities returns the detected set minus anything the caller disabled.
func (c *Config) capabilities() Capability {
	return detected &^ c.Disabled
}
