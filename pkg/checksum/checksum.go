package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
)

// IntegrityError indicates that a payload did not match its
// declared SHA256 checksum.
type IntegrityError struct {
	Label    string
	Expected string
	Computed string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum verification failed for %s: expected %s, got %s", e.Label, e.Expected, e.Computed)
}

// Verify compares the SHA256 hex digest of data against the expected
// value. The comparison is case-sensitive since repository metadata
// always publishes lowercase hex.
func Verify(ctx context.Context, data []byte, expected, label string) error {
	log := logr.FromContextOrDiscard(ctx)

	sum := sha256.Sum256(data)
	computed := hex.EncodeToString(sum[:])
	log.V(2).Info("calculated checksum", "file", label, "checksum", computed)

	if computed != expected {
		return &IntegrityError{Label: label, Expected: expected, Computed: computed}
	}
	return nil
}

// VerifyFile re-reads the file at path and compares its SHA256 hex
// digest against the expected value.
func VerifyFile(ctx context.Context, path, expected, label string) error {
	log := logr.FromContextOrDiscard(ctx)

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hashing file: %w", err)
	}
	computed := hex.EncodeToString(h.Sum(nil))
	log.V(2).Info("calculated checksum", "file", label, "checksum", computed)

	if computed != expected {
		return &IntegrityError{Label: label, Expected: expected, Computed: computed}
	}
	return nil
}
