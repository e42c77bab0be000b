package limerepo

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/threatresponse/limefetch/pkg/checksum"
	"github.com/threatresponse/limefetch/pkg/compress"
)

const manifestDoc = `<modules>
  <module type="lime">
    <name>lime-4.4.0-1049-aws</name>
    <arch>x86_64</arch>
    <checksum type="sha256">c3c3c3</checksum>
    <version>4.4.0-1049-aws</version>
    <packager>tests@threatresponse.cloud</packager>
    <location href="modules/lime-4.4.0-1049-aws.ko"/>
    <signature href="modules/lime-4.4.0-1049-aws.ko.sig"/>
    <platform>ubuntu</platform>
  </module>
  <module type="lime">
    <name>lime-5.4.0-generic</name>
    <arch>x86_64</arch>
    <checksum type="sha256">d4d4d4</checksum>
    <version>5.4.0-generic</version>
    <packager>tests@threatresponse.cloud</packager>
    <location href="modules/lime-5.4.0-generic.ko"/>
    <signature href="modules/lime-5.4.0-generic.ko.sig"/>
    <platform>ubuntu</platform>
  </module>
</modules>`

func TestParseManifest(t *testing.T) {
	table, err := ParseManifest([]byte(manifestDoc))
	require.NoError(t, err)
	require.Len(t, table, 2)

	module, ok := table["4.4.0-1049-aws"]
	require.True(t, ok)
	assert.Equal(t, "lime", module.Type)
	assert.Equal(t, "lime-4.4.0-1049-aws", module.Name)
	assert.Equal(t, "x86_64", module.Arch)
	assert.Equal(t, "c3c3c3", module.Checksum)
	assert.Equal(t, "4.4.0-1049-aws", module.Version)
	assert.Equal(t, "tests@threatresponse.cloud", module.Packager)
	assert.Equal(t, "modules/lime-4.4.0-1049-aws.ko", module.Location)
	assert.Equal(t, "modules/lime-4.4.0-1049-aws.ko.sig", module.Signature)
	assert.Equal(t, "ubuntu", module.Platform)

	_, ok = table["5.5.0-generic"]
	assert.False(t, ok)
}

func TestParseManifest_DuplicateVersionLastWins(t *testing.T) {
	doc := `<modules>
  <module type="lime">
    <name>first</name>
    <arch>x86_64</arch>
    <checksum type="sha256">aaaa</checksum>
    <version>5.4.0-generic</version>
    <location href="modules/first.ko"/>
  </module>
  <module type="lime">
    <name>second</name>
    <arch>x86_64</arch>
    <checksum type="sha256">bbbb</checksum>
    <version>5.4.0-generic</version>
    <location href="modules/second.ko"/>
  </module>
</modules>`

	table, err := ParseManifest([]byte(doc))
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.Equal(t, "second", table["5.4.0-generic"].Name)
}

func TestParseManifest_Invalid(t *testing.T) {
	var cases = []struct {
		name string
		doc  string
	}{
		{
			"malformed xml",
			`<modules><module>`,
		},
		{
			"missing name",
			`<modules><module type="lime"><arch>x86_64</arch><checksum>a</checksum><version>5.4.0</version><location href="m.ko"/></module></modules>`,
		},
		{
			"missing version",
			`<modules><module type="lime"><name>lime</name><arch>x86_64</arch><checksum>a</checksum><location href="m.ko"/></module></modules>`,
		},
		{
			"missing checksum",
			`<modules><module type="lime"><name>lime</name><arch>x86_64</arch><version>5.4.0</version><location href="m.ko"/></module></modules>`,
		},
		{
			"missing location",
			`<modules><module type="lime"><name>lime</name><arch>x86_64</arch><checksum>a</checksum><version>5.4.0</version></module></modules>`,
		},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.doc))
			var parseErr *MetadataParseError
			assert.ErrorAs(t, err, &parseErr)
		})
	}
}

func TestGetManifest(t *testing.T) {
	ctx := testContext(t)

	compressed := gzipBytes(t, []byte(manifestDoc))
	manifest := Manifest{
		Type:         "primary",
		Checksum:     sha256Hex(compressed),
		OpenChecksum: sha256Hex([]byte(manifestDoc)),
		Location:     "repodata/primary.xml.gz",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repodata/primary.xml.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(compressed)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	repo := New(ts.URL, false)
	table, err := repo.getManifest(ctx, manifest)
	require.NoError(t, err)
	assert.Len(t, table, 2)
}

// a corrupted compressed payload must fail checksum verification
// before it ever reaches the decoder
func TestGetManifest_CorruptPayloadFailsBeforeDecode(t *testing.T) {
	ctx := testContext(t)

	// not even a valid gzip stream; only checksum verification can
	// reject it without a decode error
	garbage := []byte("garbage payload")
	manifest := Manifest{
		Type:         "primary",
		Checksum:     sha256Hex([]byte("the declared payload")),
		OpenChecksum: "unused",
		Location:     "repodata/primary.xml.gz",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repodata/primary.xml.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(garbage)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	repo := New(ts.URL, false)
	_, err := repo.getManifest(ctx, manifest)

	var integrityErr *checksum.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, "repodata/primary.xml.gz", integrityErr.Label)

	var decodeErr *compress.DecodeError
	assert.False(t, errors.As(err, &decodeErr))
}

// the decompressed document is labelled without its compression
// suffix when its checksum fails
func TestGetManifest_OpenChecksumMismatch(t *testing.T) {
	ctx := testContext(t)

	compressed := gzipBytes(t, []byte(manifestDoc))
	manifest := Manifest{
		Type:         "primary",
		Checksum:     sha256Hex(compressed),
		OpenChecksum: sha256Hex([]byte("a different document")),
		Location:     "repodata/primary.xml.gz",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/repodata/primary.xml.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(compressed)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	repo := New(ts.URL, false)
	_, err := repo.getManifest(ctx, manifest)

	var integrityErr *checksum.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, "repodata/primary.xml", integrityErr.Label)
}

func TestGetManifest_NotFound(t *testing.T) {
	ctx := testContext(t)

	ts := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(ts.Close)

	repo := New(ts.URL, false)
	_, err := repo.getManifest(ctx, Manifest{Location: "repodata/primary.xml.gz"})

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusNotFound, transportErr.Status)
	assert.Equal(t, fmt.Sprintf("%s/repodata/primary.xml.gz", ts.URL), transportErr.Path)
}
