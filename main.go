package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const appName = "sumtree"

// version is the application version, set via ldflags.
var version = "dev"

var (
	cfgFile string

	// verify command
	verifyDir       string
	verifyAlgorithm string

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: appName})
)

var rootCmd = &cobra.Command{
	Use:   appName + " SEARCH_PATH",
	Short: "Write checksum manifests for every file under a directory tree.",
	Long: `sumtree walks SEARCH_PATH, hashes every matching file in a stable,
case-insensitive path order and appends md5sum-compatible lines to manifest
files under the save path.

Output modes:
  aggregate  one manifest named after the search path, e.g. data-set.md5;
             an existing manifest is kept as data-set_<unix-time>.bak
  directory  one manifest per grandparent/parent pair, e.g. set_a.md5
  file       one manifest per containing directory, e.g. data-set-a.md5

SEARCH_PATH may also be a Git URL, which is cloned to a temporary directory.`,
	Example: `  sumtree /data/set --save /out
  sumtree /photos --mode directory --ext images --tag 2024
  sumtree verify /out/data-set.md5 --dir /data/set`,
	Version:       version,
	Args:          usageArgs(cobra.MaximumNArgs(1)),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

var verifyCmd = &cobra.Command{
	Use:   "verify MANIFEST",
	Short: "Check files against a manifest, like md5sum -c.",
	Long: `verify re-hashes every entry of MANIFEST. Labels are looked up in --dir,
which defaults to the directory holding the manifest. The algorithm is taken
from the manifest's extension unless --algorithm is given.`,
	Args:          usageArgs(cobra.ExactArgs(1)),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runVerify,
}

func init() {
	cobra.OnInitialize(initConfig)
	setDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/sumtree/config.toml)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")

	flags := rootCmd.Flags()
	flags.StringP("save", "s", ".", "Directory the manifests are written to")
	flags.StringP("ext", "e", allExtensions, `Only hash files with these extensions (comma-separated, presets allowed, "**" for all)`)
	flags.StringP("tag", "t", "", "Suffix added to manifest names as _<tag>")
	flags.StringP("mode", "m", ModeAggregate.String(), "Output mode: aggregate, directory or file")
	flags.StringP("algorithm", "a", defaultAlgorithm, "Digest algorithm: "+strings.Join(supportedAlgorithms(), ", "))
	flags.BoolP("binary", "b", false, `Write binary-mode lines ("<hex> *<name>")`)
	flags.IntP("threads", "j", 1, "Number of files hashed in parallel (0 for one per CPU)")
	flags.Bool("gitignore", false, "Skip files matched by the .gitignore at the search root")
	flags.Bool("allow-merge", false, "Let unrelated directories with the same names share a manifest")
	flags.String("digest-command", "", "Hash with an external md5sum-compatible command instead")
	flags.Bool("interactive", false, "Pick the search path with a fuzzy finder")
	flags.BoolP("clipboard", "c", false, "Copy the run summary to the clipboard")
	flags.String("pdf", "", "Also write a PDF report of the manifests")
	flags.BoolP("quiet", "q", false, "Do not show progress")

	bindFlags(viper.GetViper(), rootCmd, map[string]string{
		"save":           keySavePath,
		"ext":            keyExtension,
		"tag":            keyTag,
		"mode":           keyMode,
		"algorithm":      keyAlgorithm,
		"binary":         keyBinary,
		"threads":        keyThreads,
		"gitignore":      keyGitignore,
		"allow-merge":    keyAllowMerge,
		"digest-command": keyDigestCommand,
		"interactive":    keyInteractive,
		"clipboard":      keyClipboard,
		"pdf":            keyPDF,
		"quiet":          keyQuiet,
	})
	cobra.CheckErr(viper.BindPFlag(keyLogLevel, rootCmd.PersistentFlags().Lookup("log-level")))

	verifyCmd.Flags().StringVarP(&verifyDir, "dir", "d", "", "Directory the manifest labels refer to (default: the manifest's directory)")
	verifyCmd.Flags().StringVarP(&verifyAlgorithm, "algorithm", "a", "", "Digest algorithm (default: from the manifest extension)")
	rootCmd.AddCommand(verifyCmd)

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Msg: err.Error()}
	})
}

// usageArgs turns cobra's argument validation errors into usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return &UsageError{Msg: err.Error()}
		}
		return nil
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	var searchPath string
	if len(args) == 1 {
		searchPath = args[0]
	}

	if viper.GetBool(keyInteractive) {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cannot determine current directory: %w", err)
		}
		searchPath, err = pickSearchPath(cwd)
		if errors.Is(err, errPickerAborted) {
			fmt.Fprintln(os.Stderr, "Interactive selection aborted.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	if searchPath == "" {
		return cmd.Help()
	}

	cfg, cleanup, err := prepareRun(viper.GetViper(), searchPath, cloneGitRepo, os.Stderr)
	if err != nil {
		return err
	}
	defer cleanup()

	presets, presetsPath, err := loadPresets(presetSearchDirs())
	if err != nil {
		logger.Warn("could not load presets, using built-in ones", "err", err)
		presets = newPresets(defaultPresets)
	} else if presetsPath != "" {
		logger.Debug("loaded extension presets", "path", presetsPath, "presets", len(presets))
	}

	sink := newProgressSink(viper.GetBool(keyQuiet), os.Stderr, cmd.OutOrStdout(), logger)
	engine := &Engine{
		Config:  cfg,
		Sink:    sink,
		Logger:  logger,
		Presets: presets,
	}
	res, err := engine.Run()
	if err != nil {
		if len(res.Targets) > 0 {
			logger.Warn("run aborted, manifests written so far are kept", "manifests", len(res.Targets))
		}
		return err
	}

	if res.State == StateNoFilesFound {
		fmt.Fprintf(cmd.OutOrStdout(), "No files found in %s matching %q\n", searchPath, cfg.ExtensionFilter)
		return nil
	}
	logger.Debug("manifests written", "targets", len(res.Targets), "skipped", res.Skipped)

	if pdfPath := viper.GetString(keyPDF); pdfPath != "" {
		title := fmt.Sprintf("Checksums of %s", filepath.Base(cfg.SearchPath))
		if err := generatePDF(res, title, pdfPath); err != nil {
			return err
		}
		logger.Info("saved PDF report", "path", pdfPath)
	}
	if viper.GetBool(keyClipboard) {
		if err := copyRunReport(res); err != nil {
			logger.Warn("clipboard unavailable", "err", err)
		} else {
			logger.Info("summary copied to clipboard")
		}
	}
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]
	algorithm := verifyAlgorithm
	if algorithm == "" {
		algorithm = algorithmForManifest(manifestPath)
	}
	hasher, err := NewHasher(RunConfig{Algorithm: algorithm})
	if err != nil {
		return err
	}

	dir := verifyDir
	if dir == "" {
		dir = filepath.Dir(manifestPath)
	}
	report, err := VerifyManifest(manifestPath, dir, hasher)
	if err != nil {
		return err
	}

	printVerifyReport(cmd.OutOrStdout(), report)
	if report.Malformed != nil {
		logger.Warn("manifest has improperly formatted lines", "err", report.Malformed)
	}
	if failures := report.Failures(); failures > 0 {
		return fmt.Errorf("%d of %d computed checksums did NOT match", failures, len(report.Results))
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err)
		os.Exit(exitCode(err))
	}
}
