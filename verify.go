package main

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// VerifyStatus is the outcome of checking one manifest entry.
type VerifyStatus int

const (
	VerifyOK VerifyStatus = iota
	VerifyFailed
	VerifyMissing
	VerifyUnreadable
)

func (s VerifyStatus) String() string {
	switch s {
	case VerifyOK:
		return "OK"
	case VerifyFailed:
		return "FAILED"
	case VerifyMissing:
		return "MISSING"
	case VerifyUnreadable:
		return "FAILED open or read"
	default:
		return "UNKNOWN"
	}
}

// VerifyResult is one checked entry.
type VerifyResult struct {
	Label  string
	Status VerifyStatus
}

// VerifyReport is the outcome of checking a whole manifest.
type VerifyReport struct {
	Results   []VerifyResult
	Malformed error // *multierror.Error of lines that did not parse
}

// Failures counts entries that are not OK.
func (r *VerifyReport) Failures() int {
	n := 0
	for _, res := range r.Results {
		if res.Status != VerifyOK {
			n++
		}
	}
	return n
}

// algorithmForManifest infers the digest algorithm from a manifest's extension.
func algorithmForManifest(manifestPath string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(manifestPath), "."))
}

// VerifyManifest re-hashes every entry of the manifest at manifestPath,
// looking each label up in dir. Lines that do not parse are collected in
// Malformed and skipped.
func VerifyManifest(manifestPath, dir string, hasher Hasher) (*VerifyReport, error) {
	f, err := os.Open(manifestPath)
	if err != nil {
		return nil, &PathError{Path: manifestPath, Reason: "cannot open manifest", Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	report := &VerifyReport{}
	var malformed *multierror.Error
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		entry, err := ParseLine(line)
		if err != nil {
			malformed = multierror.Append(malformed, err)
			continue
		}
		report.Results = append(report.Results, VerifyResult{
			Label:  entry.Label,
			Status: verifyEntry(entry, filepath.Join(dir, entry.Label), hasher),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", manifestPath, err)
	}
	report.Malformed = malformed.ErrorOrNil()
	return report, nil
}

func verifyEntry(entry ChecksumEntry, path string, hasher Hasher) VerifyStatus {
	digest, err := hasher.Hash(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return VerifyMissing
		}
		return VerifyUnreadable
	}
	if !strings.EqualFold(digest.Hex, entry.Digest) {
		return VerifyFailed
	}
	return VerifyOK
}
