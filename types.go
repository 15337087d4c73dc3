package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// allExtensions is the extension filter sentinel that disables filtering.
const allExtensions = "**"

// OutputMode selects how discovered files are grouped into manifest files.
type OutputMode int

const (
	// ModeAggregate writes every digest into one manifest named after the search path.
	ModeAggregate OutputMode = iota
	// ModePerDirectory writes one manifest per (grandparent, parent) directory pair.
	ModePerDirectory
	// ModePerFile writes one manifest per containing directory, named by its flattened path.
	ModePerFile
)

func (m OutputMode) String() string {
	switch m {
	case ModeAggregate:
		return "aggregate"
	case ModePerDirectory:
		return "directory"
	case ModePerFile:
		return "file"
	default:
		return "unknown"
	}
}

// ParseOutputMode accepts the names used on the command line and in config files.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "aggregate", "all":
		return ModeAggregate, nil
	case "directory", "dir", "per-directory":
		return ModePerDirectory, nil
	case "file", "per-file":
		return ModePerFile, nil
	}
	return 0, &UsageError{Msg: fmt.Sprintf("unknown output mode %q (want aggregate, directory or file)", s)}
}

// DigestMode mirrors the text/binary marker written by md5sum-style tools.
type DigestMode int

const (
	ModeText DigestMode = iota
	ModeBinary
)

func (m DigestMode) String() string {
	if m == ModeBinary {
		return "binary"
	}
	return "text"
}

// RunConfig is the resolved input for one engine run. It is not modified once
// the engine starts.
type RunConfig struct {
	SearchPath      string
	SavePath        string
	ExtensionFilter string // "**" or empty for all files, otherwise comma-separated extensions
	Tag             string
	Mode            OutputMode

	Algorithm        string // also used as the manifest file extension
	Binary           bool
	Threads          int
	RespectGitignore bool
	AllowMerge       bool   // let unrelated directories share a target
	DigestCommand    string // external digest tool; empty means hash natively
}

// DiscoveredFile is a regular file found under the search path.
type DiscoveredFile struct {
	Path string // absolute
}

// ParentName returns the basename of the directory holding the file.
func (f DiscoveredFile) ParentName() string {
	return segmentName(filepath.Dir(f.Path))
}

// GrandparentName returns the basename of the parent's parent directory, or
// "" when the parent sits directly under the filesystem root.
func (f DiscoveredFile) GrandparentName() string {
	return segmentName(filepath.Dir(filepath.Dir(f.Path)))
}

func segmentName(dir string) string {
	base := filepath.Base(dir)
	if base == string(filepath.Separator) || base == "." {
		return ""
	}
	return base
}

// OutputTarget is a manifest file that digest lines are appended to.
type OutputTarget struct {
	Path   string
	Append bool
}

// ChecksumEntry is one manifest line. Label is always a basename.
type ChecksumEntry struct {
	Digest string
	Mode   DigestMode
	Label  string
}

// RunState tracks where the engine is in a run.
type RunState int

const (
	StateIdle RunState = iota
	StateResolving
	StateDiscovering
	StateNoFilesFound
	StateProcessing
	StateCompleted
	StateFatal
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateDiscovering:
		return "discovering"
	case StateNoFilesFound:
		return "no files found"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// TargetSummary counts the lines a run appended to one manifest.
type TargetSummary struct {
	Path  string
	Lines int
}

// Result holds what a run did. It is returned even when the run fails so the
// caller can report partial output.
type Result struct {
	State     RunState
	Total     int
	Processed int
	Skipped   int
	Targets   []TargetSummary
	Elapsed   time.Duration
	Summary   string
	Warnings  error // *multierror.Error of per-file problems, nil if none
}
