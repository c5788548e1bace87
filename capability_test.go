package craftscore

import (
	"reflect"
	"testing"
)

func TestDetected_AllProbesPass(t *testing.T) {
	t.Parallel()
	if got := Detected(); got != CapAll {
		t.Errorf("Detected() = %s, want %s", got, CapAll)
	}
}

func TestParseCapabilities(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Capability
		unknown []string
	}{
		{"", 0, nil},
		{"fft", CapFFT, nil},
		{" FFT , edges,", CapFFT | CapEdges, nil},
		{"decode,numeric,fft,edges", CapAll, nil},
		{"edges,gpu", CapEdges, []string{"gpu"}},
	}
	for _, tt := range tests {
		got, unknown := ParseCapabilities(tt.in)
		if got != tt.want || !reflect.DeepEqual(unknown, tt.unknown) {
			t.Errorf("ParseCapabilities(%q) = %s, %v; want %s, %v", tt.in, got, unknown, tt.want, tt.unknown)
		}
	}
}

func TestCapabilityString(t *testing.T) {
	t.Parallel()
	if got := Capability(0).String(); got != "none" {
		t.Errorf("String() = %q, want none", got)
	}
	if got := (CapDecode | CapEdges).String(); got != "decode,edges" {
		t.Errorf("String() = %q, want decode,edges", got)
	}
}

func TestConfigCapabilities_Disabled(t *testing.T) {
	t.Parallel()
	c := &Config{Disabled: CapFFT}
	if caps := c.capabilities(); caps.Has(CapFFT) || !caps.Has(CapDecode|CapEdges) {
		t.Errorf("capabilities() = %s", caps)
	}
}
