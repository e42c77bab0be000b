package limerepo

import "fmt"

// TransportError indicates a repository fetch returned a non-2xx
// status code.
type TransportError struct {
	Path   string
	Status int
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetching %s: unexpected response code: %d", e.Path, e.Status)
}

// MetadataParseError indicates a structurally invalid metadata
// document.
type MetadataParseError struct {
	Context string
	Err     error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("parsing %s: %v", e.Context, e.Err)
}

func (e *MetadataParseError) Unwrap() error {
	return e.Err
}

// ManifestTypeNotFoundError indicates the repository index does not
// list a manifest of the requested type.
type ManifestTypeNotFoundError struct {
	Type string
}

func (e *ManifestTypeNotFoundError) Error() string {
	return fmt.Sprintf("manifest type not found in repository index: %s", e.Type)
}

// KernelModuleNotFoundError indicates the manifest has no module
// built for the requested kernel version.
type KernelModuleNotFoundError struct {
	KernelVersion string
	Repository    string
}

func (e *KernelModuleNotFoundError) Error() string {
	return fmt.Sprintf("no module matching kernel %s in repository %s", e.KernelVersion, e.Repository)
}
