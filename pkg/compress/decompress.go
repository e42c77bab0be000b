package compress

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// compression suffixes used by repository manifest locations
var suffixes = []string{".gz", ".xz", ".zst"}

// DecodeError indicates that a compressed payload could not
// be decoded.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decompressing %s stream: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decompress decodes the compressed manifest payload. The compression
// is selected from the location suffix. Locations without a known
// suffix are treated as gzip, which is the only format older
// repositories publish.
func Decompress(location string, data []byte) ([]byte, error) {
	switch filepath.Ext(location) {
	case ".xz":
		r, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Format: "xz", Err: err}
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, &DecodeError{Format: "xz", Err: err}
		}
		return out, nil
	case ".zst":
		r, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Format: "zstd", Err: err}
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, &DecodeError{Format: "zstd", Err: err}
		}
		return out, nil
	default:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, &DecodeError{Format: "gzip", Err: err}
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, &DecodeError{Format: "gzip", Err: err}
		}
		return out, nil
	}
}

// Strip removes the compression suffix from a manifest location so it
// can label the decompressed document.
func Strip(location string) string {
	for _, s := range suffixes {
		if strings.HasSuffix(location, s) {
			return strings.TrimSuffix(location, s)
		}
	}
	return location
}
