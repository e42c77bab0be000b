package limerepo

import "time"

// Index is the parsed repository index, keyed by manifest type.
// A fresh Index is resolved for every Fetch call; nothing is cached
// between calls.
type Index struct {
	Revision  string
	Manifests map[string]Manifest
}

// Manifest describes one compressed manifest document listed in the
// repository index. Checksum covers the compressed payload at
// Location, OpenChecksum covers the decompressed document.
type Manifest struct {
	Type         string
	Checksum     string
	OpenChecksum string
	Location     string
	Timestamp    time.Time
	Size         int64
	OpenSize     int64
}

// ModuleTable maps kernel versions to the module built for them.
// Duplicate versions in the source manifest overwrite earlier entries.
type ModuleTable map[string]Module

// Module describes one downloadable kernel module. Checksum covers
// the raw module bytes at Location.
type Module struct {
	Type      string
	Name      string
	Arch      string
	Checksum  string
	Version   string
	Packager  string
	Location  string
	Signature string
	Platform  string
}
