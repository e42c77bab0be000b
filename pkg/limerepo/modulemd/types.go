package modulemd

import "encoding/xml"

// Modules is the raw form of a kernel-module manifest document. The
// catch-all field tolerates the element naming differences between
// lime-compiler releases.
type Modules struct {
	XMLName xml.Name `xml:"modules"`
	Module  []Module `xml:",any"`
}

type Module struct {
	Type      string   `xml:"type,attr"`
	Name      string   `xml:"name"`
	Arch      string   `xml:"arch"`
	Checksum  Checksum `xml:"checksum"`
	Version   string   `xml:"version"`
	Packager  string   `xml:"packager"`
	Location  Location `xml:"location"`
	Signature Location `xml:"signature"`
	Platform  string   `xml:"platform"`
}

type Checksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type Location struct {
	Href string `xml:"href,attr"`
}
