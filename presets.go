package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const presetsFileName = "presets.yml"

// PresetInfo is one named group of extensions in presets.yml.
type PresetInfo struct {
	Description string   `yaml:"description"`
	Extensions  []string `yaml:"extensions"`
}

// Presets maps a lowercase preset name to its normalized extensions.
type Presets map[string][]string

// defaultPresets are used when no presets.yml is found.
var defaultPresets = map[string]PresetInfo{
	"images":    {Description: "raster images", Extensions: []string{"jpg", "jpeg", "png", "gif", "tif", "tiff", "bmp", "webp", "heic"}},
	"raw":       {Description: "camera raw files", Extensions: []string{"cr2", "cr3", "nef", "arw", "dng", "raf", "orf"}},
	"video":     {Description: "video containers", Extensions: []string{"mp4", "mkv", "mov", "avi", "m4v", "webm"}},
	"audio":     {Description: "audio files", Extensions: []string{"flac", "mp3", "wav", "ogg", "m4a", "aac"}},
	"documents": {Description: "office and text documents", Extensions: []string{"pdf", "doc", "docx", "odt", "txt", "md", "rtf"}},
	"archives":  {Description: "archives and disk images", Extensions: []string{"zip", "tar", "gz", "bz2", "xz", "7z", "iso"}},
}

// Lookup returns the extensions for a preset name, ignoring case.
func (p Presets) Lookup(name string) ([]string, bool) {
	exts, ok := p[strings.ToLower(strings.TrimSpace(name))]
	return exts, ok
}

// newPresets normalizes raw preset definitions: lowercase, no leading dot.
func newPresets(raw map[string]PresetInfo) Presets {
	presets := make(Presets, len(raw))
	for name, info := range raw {
		exts := make([]string, 0, len(info.Extensions))
		for _, ext := range info.Extensions {
			ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
			if ext != "" {
				exts = append(exts, ext)
			}
		}
		presets[strings.ToLower(name)] = exts
	}
	return presets
}

// loadPresets reads presets.yml from the config directory or the current
// directory. Without a file the built-in presets are returned.
func loadPresets(searchDirs []string) (Presets, string, error) {
	var presetsPath string
	for _, dir := range searchDirs {
		candidate := filepath.Join(dir, presetsFileName)
		if _, err := os.Stat(candidate); err == nil {
			presetsPath = candidate
			break
		}
	}
	if presetsPath == "" {
		return newPresets(defaultPresets), "", nil
	}

	data, err := os.ReadFile(presetsPath)
	if err != nil {
		return nil, presetsPath, fmt.Errorf("error reading presets file %s: %w", presetsPath, err)
	}
	var raw map[string]PresetInfo
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, presetsPath, fmt.Errorf("error parsing presets file %s: %w", presetsPath, err)
	}
	return newPresets(raw), presetsPath, nil
}

// presetSearchDirs lists where presets.yml is looked up, in order.
func presetSearchDirs() []string {
	var dirs []string
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appName))
	}
	return append(dirs, ".")
}
