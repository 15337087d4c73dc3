package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.txt"), "x")
	writeFile(t, filepath.Join(dir, "changed.txt"), "y")
	manifest := filepath.Join(dir, "set.md5")
	writeFile(t, manifest, digestOfX+"  ok.txt\n"+
		digestOfX+" *changed.txt\n"+
		"\n"+
		"not a checksum line\n"+
		digestOfX+"  gone.txt\n")

	hasher, err := NewHasher(RunConfig{Algorithm: algorithmForManifest(manifest)})
	require.NoError(t, err)
	report, err := VerifyManifest(manifest, dir, hasher)
	require.NoError(t, err)

	assert.Equal(t, []VerifyResult{
		{Label: "ok.txt", Status: VerifyOK},
		{Label: "changed.txt", Status: VerifyFailed},
		{Label: "gone.txt", Status: VerifyMissing},
	}, report.Results)
	assert.Equal(t, 2, report.Failures())

	var malformed *multierror.Error
	require.ErrorAs(t, report.Malformed, &malformed)
	assert.Len(t, malformed.Errors, 1)

	var out bytes.Buffer
	printVerifyReport(&out, report)
	assert.Equal(t, "ok.txt: OK\nchanged.txt: FAILED\ngone.txt: MISSING\n", out.String())
}

func TestVerifyManifestMissingManifest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := VerifyManifest(filepath.Join(dir, "none.md5"), dir, &fakeHasher{})
	var pathErr *PathError
	require.ErrorAs(t, err, &pathErr)
}

func TestAlgorithmForManifest(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "md5", algorithmForManifest("/out/data-set.md5"))
	assert.Equal(t, "sha256", algorithmForManifest("set_a_v1.SHA256"))
	assert.Equal(t, "", algorithmForManifest("manifest"))
}

func TestVerifyStatusString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "FAILED open or read", VerifyUnreadable.String())
	assert.Equal(t, "UNKNOWN", VerifyStatus(42).String())
}
