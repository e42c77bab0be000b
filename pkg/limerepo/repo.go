package limerepo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"
	"github.com/threatresponse/limefetch/pkg/gpg"
	"golang.org/x/exp/maps"
)

// Repository is a lime-compiler repository client.
// https://github.com/ThreatResponse/lime-compiler
type Repository struct {
	// URL is the repository base address, without a trailing slash.
	URL string
	// GPGVerify enables fetching of detached signatures alongside
	// the index and module. Signatures are handed to Verifier.
	GPGVerify bool
	// Client overrides http.DefaultClient when set.
	Client *http.Client
	// Verifier checks detached signatures. The default Advisory
	// verifier accepts everything; install a gpg.Keyring to enforce.
	Verifier gpg.Verifier
	// OutputDir is where downloaded modules are written. Defaults to
	// the working directory.
	OutputDir string
}

// New returns a client for the repository at url.
func New(url string, gpgVerify bool) *Repository {
	return &Repository{
		URL:       strings.TrimSuffix(url, "/"),
		GPGVerify: gpgVerify,
		Client:    http.DefaultClient,
		Verifier:  gpg.Advisory{},
		OutputDir: ".",
	}
}

// Fetch searches the repository for a kernel module matching
// kernelVersion within the manifest of the given type, downloads it,
// and returns the path it was written to. Every payload is verified
// against its declared checksum before it is used.
func (r *Repository) Fetch(ctx context.Context, kernelVersion, manifestType string) (string, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("repo", r.URL)

	index, err := r.getMetadata(ctx)
	if err != nil {
		return "", fmt.Errorf("resolving repository index: %w", err)
	}
	manifest, ok := index.Manifests[manifestType]
	if !ok {
		log.Info("manifest type not present in index", "type", manifestType, "available", maps.Keys(index.Manifests))
		return "", &ManifestTypeNotFoundError{Type: manifestType}
	}

	table, err := r.getManifest(ctx, manifest)
	if err != nil {
		return "", fmt.Errorf("resolving %s manifest: %w", manifestType, err)
	}
	module, ok := table[kernelVersion]
	if !ok {
		return "", &KernelModuleNotFoundError{KernelVersion: kernelVersion, Repository: r.URL}
	}
	log.V(1).Info("found module", "name", module.Name, "version", module.Version, "platform", module.Platform)

	return r.fetchModule(ctx, module)
}

// get performs a single blocking GET and returns the response body.
func (r *Repository) get(ctx context.Context, target string) ([]byte, error) {
	log := logr.FromContextOrDiscard(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("preparing request: %w", err)
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	log.V(2).Info("http request completed", "url", target, "code", resp.StatusCode)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Path: target, Status: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
