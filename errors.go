package main

import (
	"errors"
	"fmt"
)

// Exit codes returned by the CLI.
const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

// UsageError reports bad invocation arguments, including a plain file given
// where a directory is required. Nothing on disk has been touched.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// PathError reports a search or save path that is missing or unusable.
type PathError struct {
	Path   string
	Reason string
	Err    error
}

func (e *PathError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Reason)
}

func (e *PathError) Unwrap() error { return e.Err }

// NamingError reports a file that cannot be mapped to a manifest name. It
// aborts the run; manifests already written stay on disk.
type NamingError struct {
	Path   string
	Reason string
}

func (e *NamingError) Error() string {
	return fmt.Sprintf("cannot name manifest for %s: %s", e.Path, e.Reason)
}

// FormatError reports a digest line that is neither text nor binary mode.
type FormatError struct {
	Line   string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed checksum line %q: %s", e.Line, e.Reason)
}

// UnreadableFileError reports a discovered file that could not be opened.
// The file is skipped and the run continues.
type UnreadableFileError struct {
	Path string
	Err  error
}

func (e *UnreadableFileError) Error() string {
	return fmt.Sprintf("skipping unreadable file %s: %v", e.Path, e.Err)
}

func (e *UnreadableFileError) Unwrap() error { return e.Err }

// exitCode maps an error returned by a command to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return exitUsage
	}
	return exitFatal
}

// isPerFileError reports whether err only affects a single file and the run
// should carry on.
func isPerFileError(err error) bool {
	var unreadable *UnreadableFileError
	var format *FormatError
	return errors.As(err, &unreadable) || errors.As(err, &format)
}
