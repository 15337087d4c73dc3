package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNativeHasherDigests(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "x")

	testCases := []struct {
		algorithm string
		expected  string
	}{
		{"", digestOfX},
		{"MD5", digestOfX},
		{"sha1", "11f6ad8ec52a2984abaafd7c3b516503785c2072"},
		{"sha256", "2d711642b726b04401627ca9fbac32f5c8530fb1903cc4db02258717921a4881"},
		{"sha512", "a4abd4448c49562d828115d13a1fccea927f52b4d5459297f8b43e42da89238bc13626e43dcb38ddb082488927ec904fb42057443983e88585179d50551afe62"},
	}

	for _, tc := range testCases {
		hasher, err := NewHasher(RunConfig{Algorithm: tc.algorithm})
		require.NoError(t, err)
		digest, err := hasher.Hash(path)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, digest.Hex, "algorithm %q", tc.algorithm)
		assert.Equal(t, ModeText, digest.Mode)
	}
}

func TestNativeHasherExtraAlgorithms(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a.txt")
	writeFile(t, path, "x")

	for _, algorithm := range []string{"sm3", "blake3"} {
		hasher, err := NewHasher(RunConfig{Algorithm: algorithm, Binary: true})
		require.NoError(t, err)
		digest, err := hasher.Hash(path)
		require.NoError(t, err)
		assert.Len(t, digest.Hex, 64, algorithm)
		assert.Equal(t, ModeBinary, digest.Mode)

		again, err := hasher.Hash(path)
		require.NoError(t, err)
		assert.Equal(t, digest, again)
	}
}

func TestNewHasherRejectsUnknownAlgorithm(t *testing.T) {
	t.Parallel()

	_, err := NewHasher(RunConfig{Algorithm: "crc64"})
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	assert.Contains(t, usageErr.Error(), "sha256")

	_, err = NewHasher(RunConfig{DigestCommand: "definitely-not-a-digest-tool"})
	require.ErrorAs(t, err, &usageErr)
}

func TestNativeHasherMissingFile(t *testing.T) {
	t.Parallel()

	hasher, err := NewHasher(RunConfig{})
	require.NoError(t, err)
	_, err = hasher.Hash(filepath.Join(t.TempDir(), "missing.txt"))
	var unreadable *UnreadableFileError
	require.ErrorAs(t, err, &unreadable)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, isPerFileError(err))
}

func TestCommandHasher(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("md5sum"); err != nil {
		t.Skip("md5sum not installed")
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	writeFile(t, path, "x")

	text, err := NewHasher(RunConfig{DigestCommand: "md5sum"})
	require.NoError(t, err)
	digest, err := text.Hash(path)
	require.NoError(t, err)
	assert.Equal(t, Digest{Hex: digestOfX, Mode: ModeText}, digest)

	binary, err := NewHasher(RunConfig{DigestCommand: "md5sum", Binary: true})
	require.NoError(t, err)
	digest, err = binary.Hash(path)
	require.NoError(t, err)
	assert.Equal(t, Digest{Hex: digestOfX, Mode: ModeBinary}, digest)

	_, err = text.Hash(filepath.Join(dir, "missing.txt"))
	var unreadable *UnreadableFileError
	require.ErrorAs(t, err, &unreadable)
}
