package limerepo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-logr/logr"
	"github.com/threatresponse/limefetch/pkg/checksum"
	"github.com/threatresponse/limefetch/pkg/gpg"
)

// fetchModule downloads the kernel module, verifies it, and returns
// the path it was written to. The checksum is computed by re-reading
// the written file so that write corruption is caught along with
// transport corruption.
func (r *Repository) fetchModule(ctx context.Context, module Module) (string, error) {
	log := logr.FromContextOrDiscard(ctx)

	filename := fmt.Sprintf("lime-%s-%s.ko", time.Now().UTC().Format("2006-01-02T15:04:05"), module.Version)
	dest := filepath.Join(r.OutputDir, filename)
	target := fmt.Sprintf("%s/%s", r.URL, module.Location)
	log.Info("downloading kernel module", "url", target, "file", dest)

	if err := r.download(ctx, target, dest); err != nil {
		return "", err
	}
	if err := checksum.VerifyFile(ctx, dest, module.Checksum, module.Location); err != nil {
		return "", err
	}

	// the signature companion is only published for some modules;
	// fetching it is pointless unless a verifier that actually
	// enforces signatures is installed
	_, advisory := r.Verifier.(gpg.Advisory)
	if r.GPGVerify && !advisory && module.Signature != "" {
		sig, err := r.get(ctx, fmt.Sprintf("%s/%s", r.URL, module.Signature))
		if err != nil {
			return "", err
		}
		data, err := os.ReadFile(filepath.Clean(dest))
		if err != nil {
			return "", fmt.Errorf("reading module: %w", err)
		}
		if err := r.Verifier.Verify(ctx, data, sig); err != nil {
			return "", fmt.Errorf("verifying module signature: %w", err)
		}
	}
	return dest, nil
}

// download streams target to dest. The file handle is closed on every
// exit path.
func (r *Repository) download(ctx context.Context, target, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("preparing request: %w", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{Path: target, Status: resp.StatusCode}
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("writing %s: %w", dest, err)
	}
	return nil
}
