package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	gitignore "github.com/monochromegane/go-gitignore"
)

// DiscoverOptions controls which files Discover returns.
type DiscoverOptions struct {
	// Extensions lists lowercase extensions without the dot. Empty means all files.
	Extensions       []string
	RespectGitignore bool
	// Exclude drops individual paths, e.g. the manifest being written.
	Exclude func(path string) bool
	Logger  *log.Logger
}

// Discover walks root and returns every regular file that passes the filters,
// sorted by comparePaths. The walk is best effort: directories that cannot be
// read are skipped.
func Discover(root string, opts DiscoverOptions) ([]DiscoveredFile, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}

	// Only the .gitignore at the search root is honored.
	var ignoreMatcher gitignore.IgnoreMatcher
	if opts.RespectGitignore {
		gitIgnorePath := filepath.Join(root, ".gitignore")
		if _, err := os.Stat(gitIgnorePath); err == nil {
			matcher, err := gitignore.NewGitIgnore(gitIgnorePath)
			if err != nil {
				logger.Warn("could not parse .gitignore", "path", gitIgnorePath, "err", err)
			} else {
				ignoreMatcher = matcher
			}
		}
	}

	var files []DiscoveredFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		// Unreadable entries are skipped, not fatal.
		if err != nil {
			logger.Debug("skipping unreadable path", "path", path, "err", err)
			return nil
		}
		if path == root {
			return nil
		}

		isDir := d.IsDir()
		// The matcher relativizes against the .gitignore location itself.
		if ignoreMatcher != nil {
			if ignoreMatcher.Match(path, isDir) {
				if isDir {
					return fs.SkipDir
				}
				return nil
			}
		}
		// Keep regular files only; symlinks and devices are not followed.
		if isDir || !d.Type().IsRegular() {
			return nil
		}
		if !matchesExtension(d.Name(), opts.Extensions) {
			return nil
		}
		if opts.Exclude != nil && opts.Exclude(path) {
			return nil
		}

		files = append(files, DiscoveredFile{Path: path})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking directory %s: %w", root, err)
	}

	// WalkDir's lexical order is case-sensitive, so sort again.
	slices.SortFunc(files, func(a, b DiscoveredFile) int {
		return comparePaths(a.Path, b.Path)
	})
	return files, nil
}

// parseExtensionFilter splits a comma-separated filter into lowercase
// extensions, expanding preset names. "**" or an empty filter yields nil.
func parseExtensionFilter(filter string, presets Presets) []string {
	filter = strings.TrimSpace(filter)
	if filter == "" || filter == allExtensions {
		return nil
	}

	var exts []string
	for _, token := range strings.Split(filter, ",") {
		token = strings.TrimSpace(token)
		if token == allExtensions {
			return nil
		}
		if expanded, ok := presets.Lookup(token); ok {
			exts = append(exts, expanded...)
			continue
		}
		token = strings.ToLower(strings.TrimPrefix(token, "."))
		if token != "" {
			exts = append(exts, token)
		}
	}
	return exts
}

// matchesExtension reports whether name ends in "."+ext for any ext, ignoring case.
func matchesExtension(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, "."+ext) {
			return true
		}
	}
	return false
}

// comparePaths orders paths byte-wise with ASCII case folded. Paths that only
// differ in case fall back to plain byte order so the order stays total.
func comparePaths(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		ca, cb := foldByte(a[i]), foldByte(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return strings.Compare(a, b)
}

func foldByte(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}
