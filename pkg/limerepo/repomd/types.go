package repomd

// Metadata is the raw form of a repomd.xml index document. The root
// element is not constrained: lime-compiler publishes the index under
// a <metadata> root rather than yum's <repomd>, and both must decode.
// The Data field is a slice so that documents carrying a single
// manifest and documents carrying many decode identically.
type Metadata struct {
	Revision string `xml:"revision"`
	Data     []Data `xml:"data"`
}

// Data describes one manifest entry. Timestamp, Size and OpenSize are
// pointers so that an absent element can be told apart from a
// legitimate zero.
type Data struct {
	Type         string   `xml:"type,attr"`
	Checksum     Checksum `xml:"checksum"`
	OpenChecksum Checksum `xml:"open-checksum"`
	Location     Location `xml:"location"`
	Timestamp    *int64   `xml:"timestamp"`
	Size         *int64   `xml:"size"`
	OpenSize     *int64   `xml:"open-size"`
}

type Checksum struct {
	Type  string `xml:"type,attr"`
	Value string `xml:",chardata"`
}

type Location struct {
	Href string `xml:"href,attr"`
}
