package main

import (
	"path/filepath"
	"strings"
)

// FormatLine renders entry in md5sum's output format, without the trailing
// newline: "<hex>  <name>" in text mode and "<hex> *<name>" in binary mode.
// Names containing a backslash or newline are escaped and the line gets a
// leading backslash, as coreutils does.
func FormatLine(entry ChecksumEntry) string {
	var b strings.Builder
	label, escaped := escapeName(entry.Label)
	if escaped {
		b.WriteByte('\\')
	}
	b.WriteString(entry.Digest)
	b.WriteByte(' ')
	if entry.Mode == ModeBinary {
		b.WriteByte('*')
	} else {
		b.WriteByte(' ')
	}
	b.WriteString(label)
	return b.String()
}

// ParseLine is the inverse of FormatLine. The recorded path is reduced to its
// basename, so output of a digest tool run on a full path parses into the
// label used in manifests.
func ParseLine(raw string) (ChecksumEntry, error) {
	line := strings.TrimRight(raw, "\r\n")
	escaped := strings.HasPrefix(line, `\`)
	if escaped {
		line = line[1:]
	}

	sep := strings.IndexByte(line, ' ')
	if sep <= 0 {
		return ChecksumEntry{}, &FormatError{Line: raw, Reason: "no digest separator"}
	}
	digest := line[:sep]
	if !isHex(digest) {
		return ChecksumEntry{}, &FormatError{Line: raw, Reason: "digest is not hexadecimal"}
	}

	rest := line[sep+1:]
	if rest == "" {
		return ChecksumEntry{}, &FormatError{Line: raw, Reason: "missing mode marker"}
	}
	var mode DigestMode
	switch rest[0] {
	case '*':
		mode = ModeBinary
	case ' ':
		mode = ModeText
	default:
		return ChecksumEntry{}, &FormatError{Line: raw, Reason: "neither text nor binary mode marker"}
	}

	name := rest[1:]
	if escaped {
		var ok bool
		if name, ok = unescapeName(name); !ok {
			return ChecksumEntry{}, &FormatError{Line: raw, Reason: "bad escape sequence in file name"}
		}
	}
	if name == "" {
		return ChecksumEntry{}, &FormatError{Line: raw, Reason: "missing file name"}
	}

	return ChecksumEntry{Digest: digest, Mode: mode, Label: labelFor(name)}, nil
}

// labelFor reduces a recorded path to the basename written in manifests.
func labelFor(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 && i < len(name)-1 {
		return name[i+1:]
	}
	return filepath.Base(name)
}

func escapeName(name string) (string, bool) {
	if !strings.ContainsAny(name, "\\\n\r") {
		return name, false
	}
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`)
	return r.Replace(name), true
}

func unescapeName(name string) (string, bool) {
	var b strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		if i == len(name) {
			return "", false
		}
		switch name[i] {
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		default:
			return "", false
		}
	}
	return b.String(), true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}
