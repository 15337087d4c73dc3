package main

import (
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// canonicalTempDir returns a temp dir with symlinks resolved, so expected
// paths match what ResolvePaths produces (macOS puts TMPDIR behind /var).
func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	return dir
}

// skipIfPermissionsIgnored skips tests that rely on chmod denying access.
func skipIfPermissionsIgnored(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

// fixedClock returns a Now func that always reports t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type recordingSink struct {
	percents  []int
	summaries []string
}

func (s *recordingSink) OnPercent(percent int) { s.percents = append(s.percents, percent) }

func (s *recordingSink) OnSummary(summary string) { s.summaries = append(s.summaries, summary) }

// fakeHasher only reads its maps, so worker goroutines may share it.
type fakeHasher struct {
	digests map[string]Digest
	errs    map[string]error
}

func (h *fakeHasher) Hash(path string) (Digest, error) {
	if err, ok := h.errs[path]; ok {
		return Digest{}, err
	}
	if d, ok := h.digests[path]; ok {
		return d, nil
	}
	return Digest{Hex: "d41d8cd98f00b204e9800998ecf8427e"}, nil
}
