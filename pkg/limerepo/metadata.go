package limerepo

import (
	"context"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"github.com/threatresponse/limefetch/pkg/limerepo/repomd"
	"golang.org/x/exp/maps"
)

const (
	metadataDir  = "repodata"
	metadataFile = "repomd.xml"
)

// getMetadata fetches and parses the repository index. The index is
// the trust root: it carries the checksums everything downstream is
// verified against, but is not itself checksummed.
func (r *Repository) getMetadata(ctx context.Context) (*Index, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("repo", r.URL)
	log.V(1).Info("downloading repository metadata")

	target := fmt.Sprintf("%s/%s/%s", r.URL, metadataDir, metadataFile)
	body, err := r.get(ctx, target)
	if err != nil {
		return nil, err
	}

	if r.GPGVerify {
		sig, err := r.get(ctx, target+".sig")
		if err != nil {
			return nil, err
		}
		if err := r.Verifier.Verify(ctx, body, sig); err != nil {
			return nil, fmt.Errorf("verifying metadata signature: %w", err)
		}
	}

	index, err := ParseIndex(body)
	if err != nil {
		return nil, err
	}
	log.V(2).Info("parsed repository metadata", "revision", index.Revision, "manifests", maps.Keys(index.Manifests))
	return index, nil
}

// ParseIndex decodes a repomd.xml document into an Index. Manifests
// sharing a type overwrite one another; the last entry wins.
func ParseIndex(data []byte) (*Index, error) {
	var doc repomd.Metadata
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &MetadataParseError{Context: metadataFile, Err: err}
	}
	if doc.Revision == "" {
		return nil, &MetadataParseError{Context: metadataFile, Err: fmt.Errorf("missing revision")}
	}

	index := &Index{
		Revision:  doc.Revision,
		Manifests: make(map[string]Manifest, len(doc.Data)),
	}
	for _, d := range doc.Data {
		manifest, err := newManifest(d)
		if err != nil {
			return nil, &MetadataParseError{Context: metadataFile, Err: err}
		}
		index.Manifests[manifest.Type] = manifest
	}
	return index, nil
}

func newManifest(d repomd.Data) (Manifest, error) {
	switch {
	case d.Type == "":
		return Manifest{}, fmt.Errorf("data element missing type attribute")
	case d.Checksum.Value == "":
		return Manifest{}, fmt.Errorf("data element %q: missing checksum", d.Type)
	case d.OpenChecksum.Value == "":
		return Manifest{}, fmt.Errorf("data element %q: missing open-checksum", d.Type)
	case d.Location.Href == "":
		return Manifest{}, fmt.Errorf("data element %q: missing location", d.Type)
	case d.Timestamp == nil:
		return Manifest{}, fmt.Errorf("data element %q: missing timestamp", d.Type)
	case d.Size == nil:
		return Manifest{}, fmt.Errorf("data element %q: missing size", d.Type)
	case d.OpenSize == nil:
		return Manifest{}, fmt.Errorf("data element %q: missing open-size", d.Type)
	}
	return Manifest{
		Type:         d.Type,
		Checksum:     d.Checksum.Value,
		OpenChecksum: d.OpenChecksum.Value,
		Location:     d.Location.Href,
		Timestamp:    time.Unix(*d.Timestamp, 0).UTC(),
		Size:         *d.Size,
		OpenSize:     *d.OpenSize,
	}, nil
}
