package downloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/hashicorp/go-getter"
)

// Fetch downloads the configuration document at src to a temporary
// file and returns its path. src may be anything go-getter
// understands (http, s3, git, plain file paths).
func Fetch(ctx context.Context, src string) (string, error) {
	log := logr.FromContextOrDiscard(ctx)
	log.V(1).Info("downloading configuration", "src", src)

	dst := filepath.Join(os.TempDir(), fmt.Sprintf("%s-limefetch.yaml", uuid.NewString()))
	client := &getter.Client{
		Ctx:             ctx,
		Src:             src,
		Dst:             dst,
		Mode:            getter.ClientModeFile,
		DisableSymlinks: true,
	}
	if err := client.Get(); err != nil {
		log.Error(err, "failed to download configuration")
		return "", fmt.Errorf("downloading configuration: %w", err)
	}
	return dst, nil
}
