package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ResolvePaths canonicalizes the search and save paths and checks that both
// are usable directories. Symlinks and relative components are resolved
// against the filesystem, not lexically.
func ResolvePaths(searchPath, savePath string) (string, string, error) {
	if searchPath == "" {
		return "", "", &UsageError{Msg: "a search path is required"}
	}
	if savePath == "" {
		savePath = "."
	}

	search, err := resolveDir(searchPath, "search path")
	if err != nil {
		return "", "", err
	}
	save, err := resolveDir(savePath, "save path")
	if err != nil {
		return "", "", err
	}
	if err := checkWritable(save); err != nil {
		return "", "", &PathError{Path: save, Reason: "save path is not writable", Err: err}
	}
	return search, save, nil
}

// resolveDir returns the canonical absolute form of a directory path.
func resolveDir(path, what string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &PathError{Path: path, Reason: fmt.Sprintf("cannot make %s absolute", what), Err: err}
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", &PathError{Path: path, Reason: what + " does not exist"}
		}
		return "", &PathError{Path: path, Reason: "cannot resolve " + what, Err: err}
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", &PathError{Path: path, Reason: "cannot stat " + what, Err: err}
	}
	if !info.IsDir() {
		return "", &UsageError{Msg: fmt.Sprintf("%s %s is a file, expected a directory", what, path)}
	}
	return real, nil
}
