package craftscore

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIsRemote(t *testing.T) {
	t.Parallel()
	tests := map[string]bool{
		"https://cdn.shop.test/a.png": true,
		"HTTP://cdn.shop.test/a.png":  true,
		"/var/uploads/a.png":          false,
		"file:///var/uploads/a.png":   false,
		"uploads/a.png":               false,
	}
	for ref, want := range tests {
		if got := IsRemote(ref); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", ref, got, want)
		}
	}
}

func TestAcquire_LocalFile(t *testing.T) {
	t.Parallel()
	path := writePNG(t, gradientImage(40, 30))
	c := New()

	for _, ref := range []string{path, "file://" + path} {
		src, err := c.Acquire(context.Background(), ref)
		if err != nil {
			t.Fatalf("Acquire(%q): %v", ref, err)
		}
		if src.Format != "png" || src.Width != 40 || src.Height != 30 || src.Image == nil {
			t.Errorf("Acquire(%q) = %s %dx%d", ref, src.Format, src.Width, src.Height)
		}
	}
}

func TestAcquire_Remote(t *testing.T) {
	t.Parallel()
	body := encodePNG(t, gradientImage(20, 10))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	src, err := (&Config{HTTPClient: srv.Client()}).Acquire(context.Background(), srv.URL+"/a.png")
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if src.Width != 20 || src.Height != 10 || len(src.Data) != len(body) {
		t.Errorf("Acquire = %dx%d with %d bytes", src.Width, src.Height, len(src.Data))
	}
}

func TestAcquire_Failures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(garbage, []byte("definitely not an image"), 0o600); err != nil {
		t.Fatal(err)
	}
	big := filepath.Join(dir, "big.png")
	if err := os.WriteFile(big, encodePNG(t, gradientImage(64, 64)), 0o600); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.png")
	if err := os.WriteFile(empty, nil, 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		ref  string
		kind FetchErrorKind
	}{
		{"blank", "  ", FetchEmpty},
		{"missing file", filepath.Join(dir, "missing.png"), FetchRead},
		{"empty file", empty, FetchEmpty},
		{"not an image", garbage, FetchDecode},
		{"over the byte limit", big, FetchLarge},
	}
	c := &Config{MaxImageBytes: 256}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Acquire(context.Background(), tt.ref)
			var fe *FetchError
			if !errors.As(err, &fe) || fe.Kind != tt.kind {
				t.Errorf("Acquire(%q) error = %v, want kind %q", tt.ref, err, tt.kind)
			}
		})
	}
}

func TestAcquire_RejectsOversizedCanvas(t *testing.T) {
	t.Parallel()
	// A flat 6000x6000 gray PNG compresses to a few kilobytes.
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 6000, 6000))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bomb.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	c := &Config{MaxPixels: 1_000_000}
	_, err := c.Acquire(context.Background(), path)
	var fe *FetchError
	if !errors.As(err, &fe) || fe.Kind != FetchDecode {
		t.Fatalf("Acquire error = %v, want decode FetchError", err)
	}
	if !strings.Contains(err.Error(), "6000x6000 exceeds 1000000 pixels") {
		t.Errorf("error = %q", err)
	}

	v := c.DetectAIImage(context.Background(), path)
	if v.Details.Scores == nil || v.Details.Scores.Pixel != 0 || !hasDetail(v.Details.PixelAnalysis, "Failed to acquire image") {
		t.Errorf("DetectAIImage = %+v, want fetch failure stub", v)
	}
}
