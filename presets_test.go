package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresetsDefaults(t *testing.T) {
	t.Parallel()

	presets, path, err := loadPresets([]string{t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, path)
	exts, ok := presets.Lookup("Images")
	require.True(t, ok)
	assert.Contains(t, exts, "jpg")
}

func TestLoadPresetsFromFile(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	dir := t.TempDir()
	presetsPath := filepath.Join(dir, presetsFileName)
	writeFile(t, presetsPath, `
Scans:
  description: scanner output
  extensions: [".TIF", "pdf", ""]
`)

	presets, path, err := loadPresets([]string{empty, dir})
	require.NoError(t, err)
	assert.Equal(t, presetsPath, path)
	exts, ok := presets.Lookup("scans")
	require.True(t, ok)
	assert.Equal(t, []string{"tif", "pdf"}, exts)

	_, ok = presets.Lookup("images")
	assert.False(t, ok, "a presets file replaces the built-in presets")
}

func TestLoadPresetsInvalidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, presetsFileName), "scans: [unclosed")
	_, _, err := loadPresets([]string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error parsing presets file")
}
