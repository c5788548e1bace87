package craftscore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Source is an acquired image: raw bytes for metadata parsing plus the
// decoded pixels. It is read-only once returned.
type Source struct {
	Ref    string
	Data   []byte
	Format string // decoder name: "jpeg", "png", "gif", "webp", "bmp", "tiff"
	Width  int
	Height int
	Image  image.Image
}

// IsRemote reports whether ref names an http(s) resource.
func IsRemote(ref string) bool {
	lower := strings.ToLower(strings.TrimSpace(ref))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Acquire resolves ref (remote URL or local path) and decodes it once.
func (c *Config) Acquire(ctx context.Context, ref string) (*Source, error) {
	c.defaults()

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, &FetchError{Kind: FetchEmpty, Ref: ref}
	}

	var data []byte
	if IsRemote(ref) {
		r, err := c.Download(ctx, ref, DownloadOpts{})
		if err != nil {
			return nil, err
		}
		data = r.Data
	} else {
		d, err := c.readLocal(ref)
		if err != nil {
			return nil, err
		}
		data = d
	}

	return decodeSource(ref, data, c.MaxPixels)
}

func (c *Config) readLocal(ref string) ([]byte, error) {
	path := strings.TrimPrefix(ref, "file://")
	f, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{Kind: FetchRead, Ref: ref, Err: err}
	}
	defer f.Close()

	return readBounded(f, ref, c.MaxImageBytes)
}

// decodeSource decodes dimensions and pixels from data. Images with more
// than maxPixels pixels are rejected before their pixels are decoded.
func decodeSource(ref string, data []byte, maxPixels int) (*Source, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{Kind: FetchDecode, Ref: ref, Err: err}
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, &FetchError{Kind: FetchDecode, Ref: ref, Err: errors.New("image has no pixels")}
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, &FetchError{Kind: FetchDecode, Ref: ref,
			Err: fmt.Errorf("%dx%d exceeds %d pixels", cfg.Width, cfg.Height, maxPixels)}
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{Kind: FetchDecode, Ref: ref, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, &FetchError{Kind: FetchDecode, Ref: ref, Err: errors.New("image has no pixels")}
	}
	return &Source{
		Ref:    ref,
		Data:   data,
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
		Image:  img,
	}, nil
}
