package main

import (
	"bufio"
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/tjfoc/gmsm/sm3"
	"github.com/zeebo/blake3"
)

const defaultAlgorithm = "md5"

// Digest is the result of hashing one file.
type Digest struct {
	Hex  string
	Mode DigestMode
}

// Hasher computes the digest of a file. Failing to open or read the file is
// reported as *UnreadableFileError.
type Hasher interface {
	Hash(path string) (Digest, error)
}

var algorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
	"sm3":    sm3.New,
	"blake3": func() hash.Hash { return blake3.New() },
}

// supportedAlgorithms returns the algorithm names in sorted order.
func supportedAlgorithms() []string {
	names := make([]string, 0, len(algorithms))
	for name := range algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewHasher returns the hasher selected by cfg: an external command when
// DigestCommand is set, otherwise the native implementation of Algorithm.
func NewHasher(cfg RunConfig) (Hasher, error) {
	mode := ModeText
	if cfg.Binary {
		mode = ModeBinary
	}
	if strings.TrimSpace(cfg.DigestCommand) != "" {
		return newCommandHasher(cfg.DigestCommand, cfg.Binary)
	}

	newHash, ok := algorithms[manifestExtension(cfg.Algorithm)]
	if !ok {
		return nil, &UsageError{Msg: fmt.Sprintf("unsupported algorithm %q (supported: %s)",
			cfg.Algorithm, strings.Join(supportedAlgorithms(), ", "))}
	}
	return &nativeHasher{newHash: newHash, mode: mode}, nil
}

type nativeHasher struct {
	newHash func() hash.Hash
	mode    DigestMode
}

// Hash streams the file through the hash function.
func (h *nativeHasher) Hash(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, &UnreadableFileError{Path: path, Err: err}
	}
	defer func() {
		_ = f.Close()
	}()

	hh := h.newHash()
	if _, err := io.Copy(hh, f); err != nil {
		return Digest{}, &UnreadableFileError{Path: path, Err: err}
	}
	return Digest{Hex: hex.EncodeToString(hh.Sum(nil)), Mode: h.mode}, nil
}

// commandHasher runs an md5sum-compatible tool and parses the line it prints.
type commandHasher struct {
	name string
	args []string
}

func newCommandHasher(command string, binary bool) (*commandHasher, error) {
	fields := strings.Fields(command)
	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, &UsageError{Msg: fmt.Sprintf("digest command %q not found: %v", fields[0], err)}
	}
	args := append([]string{}, fields[1:]...)
	if binary {
		args = append(args, "-b")
	}
	return &commandHasher{name: path, args: args}, nil
}

func (h *commandHasher) Hash(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digest{}, &UnreadableFileError{Path: path, Err: err}
	}
	_ = f.Close()

	var stderr bytes.Buffer
	args := append(append([]string{}, h.args...), path)
	cmd := exec.Command(h.name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Digest{}, fmt.Errorf("%s %s: %w: %s", h.name, path, err, strings.TrimSpace(stderr.String()))
	}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	if !scanner.Scan() {
		return Digest{}, &FormatError{Line: "", Reason: "digest command printed nothing"}
	}
	entry, err := ParseLine(scanner.Text())
	if err != nil {
		return Digest{}, err
	}
	return Digest{Hex: strings.ToLower(entry.Digest), Mode: entry.Mode}, nil
}
