package craftscore

import (
	"fmt"
	"log/slog"

	"github.com/corona10/goimagehash"
)

// SimilarFingerprintDistance is the largest Hamming distance at which two
// fingerprints are considered the same picture.
const SimilarFingerprintDistance = 10

// fingerprint returns the dHash of the decoded source in goimagehash string
// form. If hashing fails for any reason the fingerprint is left empty.
func (c *Config) fingerprint(src *Source) (fp string) {
	if src == nil || src.Image == nil {
		return ""
	}
	defer func() {
		if r := recover(); r != nil {
			c.onRecovered("fingerprint", r)
			fp = ""
		}
	}()
	hash, err := goimagehash.DifferenceHash(src.Image)
	if err != nil {
		slog.Debug("craftscore: fingerprint failed", "ref", src.Ref, "error", err.Error())
		return ""
	}
	return hash.ToString()
}

// FingerprintDistance returns the Hamming distance between two fingerprints
// reported in VerdictDetails.Fingerprint.
func FingerprintDistance(a, b string) (int, error) {
	ha, err := goimagehash.ImageHashFromString(a)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", a, err)
	}
	hb, err := goimagehash.ImageHashFromString(b)
	if err != nil {
		return 0, fmt.Errorf("parse fingerprint %q: %w", b, err)
	}
	return ha.Distance(hb)
}

// SimilarFingerprints reports whether two fingerprints are within
// SimilarFingerprintDistance of each other.
func SimilarFingerprints(a, b string) (bool, error) {
	d, err := FingerprintDistance(a, b)
	if err != nil {
		return false, err
	}
	return d <= SimilarFingerprintDistance, nil
}
