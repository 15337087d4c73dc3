package main

import (
	"errors"
	"io"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViper(overrides map[string]any) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	for key, value := range overrides {
		v.Set(key, value)
	}
	return v
}

func TestRunConfigFromViperDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := runConfigFromViper(newTestViper(nil), "/data")
	require.NoError(t, err)
	assert.Equal(t, RunConfig{
		SearchPath:      "/data",
		SavePath:        ".",
		ExtensionFilter: allExtensions,
		Mode:            ModeAggregate,
		Algorithm:       defaultAlgorithm,
		Threads:         1,
	}, cfg)
}

func TestRunConfigFromViperOverrides(t *testing.T) {
	t.Parallel()

	cfg, err := runConfigFromViper(newTestViper(map[string]any{
		keySavePath:   "/out",
		keyExtension:  "jpg,png",
		keyTag:        " v1 ",
		keyMode:       "per-directory",
		keyAlgorithm:  "SHA256",
		keyBinary:     true,
		keyThreads:    4,
		keyGitignore:  true,
		keyAllowMerge: true,
	}), "/data")
	require.NoError(t, err)
	assert.Equal(t, RunConfig{
		SearchPath:       "/data",
		SavePath:         "/out",
		ExtensionFilter:  "jpg,png",
		Tag:              "v1",
		Mode:             ModePerDirectory,
		Algorithm:        "sha256",
		Binary:           true,
		Threads:          4,
		RespectGitignore: true,
		AllowMerge:       true,
	}, cfg)
}

func TestRunConfigFromViperRejectsBadValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		overrides map[string]any
	}{
		{"mode", map[string]any{keyMode: "tree"}},
		{"algorithm", map[string]any{keyAlgorithm: "crc64"}},
		{"tag with slash", map[string]any{keyTag: "a/b"}},
		{"tag with backslash", map[string]any{keyTag: `a\b`}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := runConfigFromViper(newTestViper(tc.overrides), "/data")
			var usageErr *UsageError
			require.ErrorAs(t, err, &usageErr)
			assert.Equal(t, exitUsage, exitCode(err))
		})
	}
}

func TestRunConfigFromViperDigestCommandSkipsAlgorithmCheck(t *testing.T) {
	t.Parallel()

	cfg, err := runConfigFromViper(newTestViper(map[string]any{
		keyAlgorithm:     "xxh64",
		keyDigestCommand: " xxh64sum ",
	}), "/data")
	require.NoError(t, err)
	assert.Equal(t, "xxh64", cfg.Algorithm)
	assert.Equal(t, "xxh64sum", cfg.DigestCommand)
}

func TestParseOutputMode(t *testing.T) {
	t.Parallel()

	testCases := map[string]OutputMode{
		"":              ModeAggregate,
		"aggregate":     ModeAggregate,
		"ALL":           ModeAggregate,
		"directory":     ModePerDirectory,
		"dir":           ModePerDirectory,
		"per-directory": ModePerDirectory,
		" file ":        ModePerFile,
		"per-file":      ModePerFile,
	}
	for input, expected := range testCases {
		mode, err := ParseOutputMode(input)
		require.NoError(t, err, "mode %q", input)
		assert.Equal(t, expected, mode, "mode %q", input)
	}

	_, err := ParseOutputMode("tree")
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
}

func TestPrepareRunValidatesBeforeCloning(t *testing.T) {
	t.Parallel()

	var cloned []string
	clone := func(url string, _ io.Writer) (string, func(), error) {
		cloned = append(cloned, url)
		return "/tmp/clone/project", func() {}, nil
	}
	url := "https://github.com/user/project.git"

	_, cleanup, err := prepareRun(newTestViper(map[string]any{keyMode: "tree"}), url, clone, io.Discard)
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
	require.NotNil(t, cleanup)
	assert.Empty(t, cloned)

	cfg, _, err := prepareRun(newTestViper(nil), url, clone, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{url}, cloned)
	assert.Equal(t, "/tmp/clone/project", cfg.SearchPath)

	cfg, _, err = prepareRun(newTestViper(nil), "/data", clone, io.Discard)
	require.NoError(t, err)
	assert.Len(t, cloned, 1)
	assert.Equal(t, "/data", cfg.SearchPath)
}

func TestPrepareRunReportsCloneFailure(t *testing.T) {
	t.Parallel()

	clone := func(string, io.Writer) (string, func(), error) {
		return "", nil, errors.New("network unreachable")
	}
	_, cleanup, err := prepareRun(newTestViper(nil), "git@host:project.git", clone, io.Discard)
	require.ErrorContains(t, err, "network unreachable")
	require.NotNil(t, cleanup)
	cleanup()
}
