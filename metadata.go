package craftscore

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/bep/imagemeta"
)

// ImageMetadata holds the EXIF, IPTC and XMP fields relevant to provenance.
type ImageMetadata struct {
	Make     string
	Model    string
	Software string
	DateTime string

	// Text is every string-valued tag, lower-cased and newline-joined.
	Text string
}

// HasCamera reports whether any camera-identifying field is set.
func (m *ImageMetadata) HasCamera() bool {
	return m != nil && (m.Make != "" || m.Model != "" || m.Software != "" || m.DateTime != "")
}

// AIToolKeywords are substrings that indicate a generator when found
// (case-insensitive) in image metadata.
var AIToolKeywords = []string{
	"midjourney",
	"dall-e",
	"dalle",
	"stable diffusion",
	"stablediffusion",
	"dreamstudio",
	"ai generated",
	"synthetic",
	"gan",
	"diffusion model",
}

// CommonAISizes are canvas sizes typical of image generators. Matching is
// orientation-independent.
var CommonAISizes = [][2]int{
	{512, 512}, {768, 768}, {1024, 1024},
	{512, 768}, {768, 512}, {512, 1024}, {1024, 512},
	{640, 640}, {896, 896},
}

// cameraTags are the IFD0 tags whose presence marks a photo straight from
// a camera. imagemeta names tag 0x0132 (DateTime) ModifyDate.
var cameraTags = map[string]bool{
	"Make":       true,
	"Model":      true,
	"Software":   true,
	"ModifyDate": true,
}

var metaFormats = map[string]imagemeta.ImageFormat{
	"jpeg": imagemeta.JPEG,
	"png":  imagemeta.PNG,
	"tiff": imagemeta.TIFF,
	"webp": imagemeta.WebP,
}

// ExtractImageMetadata parses EXIF/IPTC/XMP metadata from raw image bytes of
// the given decoder format. Returns nil if the data is empty, the format
// carries no supported metadata, or nothing could be parsed.
func ExtractImageMetadata(data []byte, format string) *ImageMetadata {
	if len(data) == 0 {
		return nil
	}
	imgFormat, ok := metaFormats[format]
	if !ok {
		return nil
	}

	meta := &ImageMetadata{}
	var text []string

	// Tags handled before a decode error are kept.
	_, _ = imagemeta.Decode(imagemeta.Options{
		R:           bytes.NewReader(data),
		ImageFormat: imgFormat,
		Sources:     imagemeta.EXIF | imagemeta.IPTC | imagemeta.XMP,
		ShouldHandleTag: func(imagemeta.TagInfo) bool {
			return true
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			s := tagValueString(ti.Value)
			if s == "" {
				return nil
			}
			if ti.Source == imagemeta.EXIF && cameraTags[ti.Tag] {
				setCameraField(meta, ti.Tag, s)
			}
			text = append(text, strings.ToLower(s))
			return nil
		},
	})

	if len(text) == 0 {
		return nil
	}

	meta.Text = strings.Join(text, "\n")
	return meta
}

func setCameraField(meta *ImageMetadata, tag, v string) {
	switch tag {
	case "Make":
		meta.Make = v
	case "Model":
		meta.Model = v
	case "Software":
		meta.Software = v
	case "ModifyDate":
		meta.DateTime = v
	}
}

// tagValueString extracts a string from a tag value.
// XMP values may be string or []string (from altList/seqList).
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case []string:
		return strings.TrimSpace(strings.Join(val, " "))
	case []any:
		parts := make([]string, 0, len(val))
		for _, p := range val {
			if s, ok := p.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.TrimSpace(strings.Join(parts, " "))
	default:
		return ""
	}
}

func isCommonAISize(w, h int) bool {
	for _, s := range CommonAISizes {
		if (s[0] == w && s[1] == h) || (s[0] == h && s[1] == w) {
			return true
		}
	}
	return false
}

// AnalyzeImageMetadata acquires ref and scores its metadata.
func (c *Config) AnalyzeImageMetadata(ctx context.Context, ref string) DetectionResult {
	if missing := missingCaps(c.capabilities(), CapDecode); missing != 0 {
		return unavailable(MethodMetadataScan, missing, "metadata analysis")
	}
	src, err := c.Acquire(ctx, ref)
	if err != nil {
		return fetchFailed(MethodMetadataScan, err)
	}
	return c.guard("metadata", MethodMetadataScan, func() DetectionResult { return c.metadataSignal(src) })
}

func (c *Config) metadataSignal(src *Source) DetectionResult {
	if missing := missingCaps(c.capabilities(), CapDecode); missing != 0 {
		return unavailable(MethodMetadataScan, missing, "metadata analysis")
	}

	details := []string{}
	var score float64

	meta := ExtractImageMetadata(src.Data, src.Format)

	aiFound := false
	if meta != nil {
		for _, tool := range AIToolKeywords {
			if strings.Contains(meta.Text, tool) {
				details = append(details, "EXIF contains AI tool reference: "+tool)
				aiFound = true
			}
		}
	}

	if !meta.HasCamera() && (src.Format == "jpeg" || src.Format == "png") {
		details = append(details, "No camera metadata found (suspicious for photos)")
		score += 25
	}

	if isCommonAISize(src.Width, src.Height) {
		details = append(details, fmt.Sprintf("Image dimensions (%dx%d) common in AI generation", src.Width, src.Height))
		score += 20
	}

	if src.Width == src.Height && (src.Width == 512 || src.Width == 768 || src.Width == 1024) {
		score += 15
	}

	if aiFound {
		score = math.Min(90, score+50)
	}

	if score >= 30 {
		return DetectionResult{Detected: true, Score: score, Method: MethodMetadata, Details: details}
	}
	return DetectionResult{Score: score, Method: MethodMetadataScan, Details: details}
}

// fetchFailed is the zero-score result for an image that could not be acquired.
func fetchFailed(method string, err error) DetectionResult {
	return stub(method, truncate("Failed to acquire image: "+err.Error(), 120))
}
