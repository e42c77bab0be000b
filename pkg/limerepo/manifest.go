package limerepo

import (
	"context"
	"encoding/xml"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/threatresponse/limefetch/pkg/checksum"
	"github.com/threatresponse/limefetch/pkg/compress"
	"github.com/threatresponse/limefetch/pkg/limerepo/modulemd"
)

// getManifest fetches the manifest named by the index entry and
// parses it into a version-keyed table. The compressed payload is
// verified before it reaches the decoder, and the decompressed
// document is verified before it reaches the parser.
func (r *Repository) getManifest(ctx context.Context, manifest Manifest) (ModuleTable, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("manifest", manifest.Type)

	target := fmt.Sprintf("%s/%s", r.URL, manifest.Location)
	log.V(1).Info("downloading manifest", "url", target)
	raw, err := r.get(ctx, target)
	if err != nil {
		return nil, err
	}

	if err := checksum.Verify(ctx, raw, manifest.Checksum, manifest.Location); err != nil {
		return nil, err
	}
	doc, err := compress.Decompress(manifest.Location, raw)
	if err != nil {
		return nil, err
	}
	openLabel := compress.Strip(manifest.Location)
	if err := checksum.Verify(ctx, doc, manifest.OpenChecksum, openLabel); err != nil {
		return nil, err
	}

	table, err := ParseManifest(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", openLabel, err)
	}
	log.V(2).Info("parsed manifest", "modules", len(table))
	return table, nil
}

// ParseManifest decodes a module manifest document into a
// ModuleTable. Modules sharing a version overwrite one another; the
// last entry wins.
func ParseManifest(data []byte) (ModuleTable, error) {
	var doc modulemd.Modules
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &MetadataParseError{Context: "module manifest", Err: err}
	}

	table := make(ModuleTable, len(doc.Module))
	for _, m := range doc.Module {
		module, err := newModule(m)
		if err != nil {
			return nil, &MetadataParseError{Context: "module manifest", Err: err}
		}
		table[module.Version] = module
	}
	return table, nil
}

func newModule(m modulemd.Module) (Module, error) {
	switch {
	case m.Name == "":
		return Module{}, fmt.Errorf("module missing name")
	case m.Version == "":
		return Module{}, fmt.Errorf("module %q: missing version", m.Name)
	case m.Arch == "":
		return Module{}, fmt.Errorf("module %q: missing arch", m.Name)
	case m.Checksum.Value == "":
		return Module{}, fmt.Errorf("module %q: missing checksum", m.Name)
	case m.Location.Href == "":
		return Module{}, fmt.Errorf("module %q: missing location", m.Name)
	}
	return Module{
		Type:      m.Type,
		Name:      m.Name,
		Arch:      m.Arch,
		Checksum:  m.Checksum.Value,
		Version:   m.Version,
		Packager:  m.Packager,
		Location:  m.Location.Href,
		Signature: m.Signature.Href,
		Platform:  m.Platform,
	}, nil
}
