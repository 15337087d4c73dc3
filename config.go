package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config keys. Flags are bound to these, so they can also be set in
// config.toml or as SUMTREE_<KEY> environment variables.
const (
	keySavePath      = "save_path"
	keyExtension     = "ext"
	keyTag           = "tag"
	keyMode          = "mode"
	keyAlgorithm     = "algorithm"
	keyBinary        = "binary"
	keyThreads       = "threads"
	keyGitignore     = "gitignore"
	keyAllowMerge    = "allow_merge"
	keyDigestCommand = "digest_command"
	keyInteractive   = "interactive"
	keyClipboard     = "clipboard"
	keyPDF           = "pdf"
	keyQuiet         = "quiet"
	keyLogLevel      = "log_level"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keySavePath, ".")
	v.SetDefault(keyExtension, allExtensions)
	v.SetDefault(keyTag, "")
	v.SetDefault(keyMode, ModeAggregate.String())
	v.SetDefault(keyAlgorithm, defaultAlgorithm)
	v.SetDefault(keyBinary, false)
	v.SetDefault(keyThreads, 1)
	v.SetDefault(keyGitignore, false)
	v.SetDefault(keyAllowMerge, false)
	v.SetDefault(keyDigestCommand, "")
	v.SetDefault(keyQuiet, false)
	v.SetDefault(keyLogLevel, "info")
}

// initConfig reads in the config file and SUMTREE_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", appName))
		}
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("toml")
	}

	viper.SetEnvPrefix(strings.ToUpper(appName))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	case errors.As(err, &notFound):
		logger.Debug("no config file found, using defaults and flags")
	default:
		logger.Warn("error reading config file", "err", err)
	}

	configureLogger(viper.GetString(keyLogLevel))
}

// configureLogger applies the configured level, keeping the current one when
// the name is not recognized.
func configureLogger(levelName string) {
	level, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(levelName)))
	if err != nil {
		logger.Warn("unknown log level, keeping default", "level", levelName)
		return
	}
	logger.SetLevel(level)
}

// bindFlags binds each flag to its config key.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys map[string]string) {
	for flag, key := range keys {
		cobra.CheckErr(v.BindPFlag(key, cmd.Flags().Lookup(flag)))
	}
}

// runConfigFromViper builds the engine configuration for searchPath from the
// merged defaults, config file, environment and flags.
func runConfigFromViper(v *viper.Viper, searchPath string) (RunConfig, error) {
	mode, err := ParseOutputMode(v.GetString(keyMode))
	if err != nil {
		return RunConfig{}, err
	}
	algorithm := manifestExtension(v.GetString(keyAlgorithm))
	if _, ok := algorithms[algorithm]; !ok && v.GetString(keyDigestCommand) == "" {
		return RunConfig{}, &UsageError{Msg: "unsupported algorithm " + algorithm +
			" (supported: " + strings.Join(supportedAlgorithms(), ", ") + ")"}
	}
	tag := strings.TrimSpace(v.GetString(keyTag))
	if strings.ContainsAny(tag, `/\`) {
		return RunConfig{}, &UsageError{Msg: "tag must not contain path separators"}
	}

	return RunConfig{
		SearchPath:       searchPath,
		SavePath:         v.GetString(keySavePath),
		ExtensionFilter:  v.GetString(keyExtension),
		Tag:              tag,
		Mode:             mode,
		Algorithm:        algorithm,
		Binary:           v.GetBool(keyBinary),
		Threads:          v.GetInt(keyThreads),
		RespectGitignore: v.GetBool(keyGitignore),
		AllowMerge:       v.GetBool(keyAllowMerge),
		DigestCommand:    strings.TrimSpace(v.GetString(keyDigestCommand)),
	}, nil
}

// cloneFunc fetches a Git URL into a local directory; cleanup removes it.
type cloneFunc func(url string, progress io.Writer) (dir string, cleanup func(), err error)

// prepareRun validates the configuration for searchPath and only then, for a
// Git URL, clones the repository and points the run at the clone. cleanup is
// never nil.
func prepareRun(v *viper.Viper, searchPath string, clone cloneFunc, progress io.Writer) (RunConfig, func(), error) {
	noop := func() {}
	cfg, err := runConfigFromViper(v, searchPath)
	if err != nil {
		return RunConfig{}, noop, err
	}
	if !isGitURL(searchPath) {
		return cfg, noop, nil
	}

	logger.Info("cloning repository", "url", searchPath)
	dir, cleanup, err := clone(searchPath, progress)
	if err != nil {
		return RunConfig{}, noop, err
	}
	cfg.SearchPath = dir
	return cfg, cleanup, nil
}
