package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ManifestWriter appends digest lines to manifest files. Each line goes
// straight to the file with no buffering, so an interrupted run leaves only
// complete lines behind.
type ManifestWriter struct {
	runStart time.Time

	// The last opened target is kept open: targets are written in discovery
	// order, so consecutive lines usually share a file.
	current     *os.File
	currentPath string

	lines map[string]int
	order []string
}

// NewManifestWriter returns a writer for a run that started at runStart.
func NewManifestWriter(runStart time.Time) *ManifestWriter {
	return &ManifestWriter{
		runStart: runStart,
		lines:    make(map[string]int),
	}
}

// Backup renames an existing file at target to
// "<name-without-ext>_<unixSecondsAtRunStart>.bak". It returns the backup
// path, or "" when there was nothing to back up.
func (w *ManifestWriter) Backup(target OutputTarget) (string, error) {
	if _, err := os.Lstat(target.Path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("checking manifest %s: %w", target.Path, err)
	}

	base := strings.TrimSuffix(target.Path, filepath.Ext(target.Path))
	stamp := w.runStart.Unix()
	backup := fmt.Sprintf("%s_%d.bak", base, stamp)
	for n := 1; fileExists(backup); n++ {
		backup = fmt.Sprintf("%s_%d_%d.bak", base, stamp, n)
	}
	if err := os.Rename(target.Path, backup); err != nil {
		return "", fmt.Errorf("backing up manifest %s: %w", target.Path, err)
	}
	return backup, nil
}

// Open makes target the current file, creating it if needed and appending
// otherwise. A target without Append starts empty the first time this run
// opens it; later opens in the same run always append. Opening the current
// target again is a no-op.
func (w *ManifestWriter) Open(target OutputTarget) error {
	if w.current != nil && w.currentPath == target.Path {
		return nil
	}
	if err := w.closeCurrent(); err != nil {
		return err
	}

	_, seen := w.lines[target.Path]
	flags := os.O_WRONLY | os.O_CREATE | os.O_APPEND
	if !target.Append && !seen {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(target.Path, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening manifest %s: %w", target.Path, err)
	}
	w.current = f
	w.currentPath = target.Path
	if !seen {
		w.lines[target.Path] = 0
		w.order = append(w.order, target.Path)
	}
	return nil
}

// Write appends line and a newline to target.
func (w *ManifestWriter) Write(target OutputTarget, line string) error {
	if err := w.Open(target); err != nil {
		return err
	}
	if _, err := w.current.WriteString(line + "\n"); err != nil {
		return fmt.Errorf("writing manifest %s: %w", target.Path, err)
	}
	w.lines[target.Path]++
	return nil
}

// Targets lists the manifests opened in this run, in first-use order.
func (w *ManifestWriter) Targets() []TargetSummary {
	out := make([]TargetSummary, 0, len(w.order))
	for _, path := range w.order {
		out = append(out, TargetSummary{Path: path, Lines: w.lines[path]})
	}
	return out
}

// Close releases the open manifest.
func (w *ManifestWriter) Close() error {
	return w.closeCurrent()
}

func (w *ManifestWriter) closeCurrent() error {
	if w.current == nil {
		return nil
	}
	err := w.current.Close()
	w.current = nil
	w.currentPath = ""
	if err != nil {
		return fmt.Errorf("closing manifest: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
