package craftscore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DownloadOpts configures an image download.
type DownloadOpts struct {
	MaxBytes  int64         // max response body size (default: cfg.MaxImageBytes)
	Timeout   time.Duration // per-request timeout (default: cfg.FetchTimeout)
	UserAgent string        // override config user agent
}

// DownloadResult holds downloaded image data.
type DownloadResult struct {
	Data     []byte
	MIMEType string
}

// FetchErrorKind classifies why an image could not be acquired.
type FetchErrorKind string

const (
	FetchEmpty  FetchErrorKind = "empty"     // no reference or zero bytes
	FetchFailed FetchErrorKind = "fetch"     // request could not be made or completed
	FetchStatus FetchErrorKind = "status"    // non-200 response
	FetchRead   FetchErrorKind = "read"      // body or file could not be read
	FetchLarge  FetchErrorKind = "too large" // body or file exceeds the byte limit
	FetchDecode FetchErrorKind = "decode"    // bytes are not a supported image
)

// FetchError reports a failed acquisition. Extractors turn it into a zero
// score for their own signal only.
type FetchError struct {
	Kind       FetchErrorKind
	Ref        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == FetchStatus:
		return fmt.Sprintf("image fetch %s: unexpected status %d", e.Ref, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("image %s %s: %v", e.Kind, e.Ref, e.Err)
	default:
		return fmt.Sprintf("image %s %s", e.Kind, e.Ref)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsTimeout reports whether the fetch failed because its deadline passed.
func (e *FetchError) IsTimeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// Download fetches an image from url with a single GET. No retries are made.
func (c *Config) Download(ctx context.Context, url string, opts DownloadOpts) (*DownloadResult, error) {
	c.defaults()

	if opts.MaxBytes <= 0 {
		opts.MaxBytes = c.MaxImageBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = c.FetchTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = c.UserAgent
	}

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: FetchFailed, Ref: url, Err: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := c.HTTPClient.Do(req) //nolint:gosec // G107: URL is caller-supplied
	if err != nil {
		return nil, &FetchError{Kind: FetchFailed, Ref: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: FetchStatus, Ref: url, StatusCode: resp.StatusCode}
	}

	ct := resp.Header.Get("Content-Type")
	// Strip MIME parameters: "image/jpeg; charset=utf-8" → "image/jpeg"
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}

	data, err := readBounded(resp.Body, url, opts.MaxBytes)
	if err != nil {
		return nil, err
	}

	return &DownloadResult{Data: data, MIMEType: ct}, nil
}

// readBounded reads r fully, failing with FetchLarge if it holds more than
// maxBytes.
func readBounded(r io.Reader, ref string, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, &FetchError{Kind: FetchRead, Ref: ref, Err: err}
	}
	if int64(len(data)) > maxBytes {
		return nil, &FetchError{Kind: FetchLarge, Ref: ref, Err: fmt.Errorf("exceeds %d bytes", maxBytes)}
	}
	if len(data) == 0 {
		return nil, &FetchError{Kind: FetchEmpty, Ref: ref}
	}
	return data, nil
}
