package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
)

// Engine runs one manifest generation: resolve paths, discover files, then
// name, hash, write and report each file in discovery order.
type Engine struct {
	Config RunConfig

	// Hasher overrides the hasher derived from Config.
	Hasher  Hasher
	Sink    ProgressSink
	Logger  *log.Logger
	Presets Presets
	Now     func() time.Time

	state RunState
}

// State returns where the last run stopped.
func (e *Engine) State() RunState {
	return e.state
}

// Run executes the whole run. The returned Result is always non-nil and
// describes whatever was written before a failure.
func (e *Engine) Run() (*Result, error) {
	now := e.Now
	if now == nil {
		now = time.Now
	}
	logger := e.Logger
	if logger == nil {
		logger = log.New(os.Stderr)
	}
	sink := e.Sink
	if sink == nil {
		sink = nopSink{}
	}

	start := now()
	res := &Result{}
	e.setState(res, StateIdle)
	fail := func(err error) (*Result, error) {
		e.setState(res, StateFatal)
		res.Elapsed = now().Sub(start)
		return res, err
	}

	// Resolve both paths before anything touches the disk.
	e.setState(res, StateResolving)
	cfg := e.Config
	search, save, err := ResolvePaths(cfg.SearchPath, cfg.SavePath)
	if err != nil {
		return fail(err)
	}
	cfg.SearchPath, cfg.SavePath = search, save

	hasher := e.Hasher
	if hasher == nil {
		if hasher, err = NewHasher(cfg); err != nil {
			return fail(err)
		}
	}
	namer, err := NewNamer(cfg)
	if err != nil {
		return fail(err)
	}

	// Manifests and backups in the save path are never hashed, in case it
	// lies inside the search path.
	e.setState(res, StateDiscovering)
	aggregate, isAggregate := namer.AggregateTarget()
	files, err := Discover(search, DiscoverOptions{
		Extensions:       parseExtensionFilter(cfg.ExtensionFilter, e.Presets),
		RespectGitignore: cfg.RespectGitignore,
		Exclude:          namer.IsManifest,
		Logger:           logger,
	})
	if err != nil {
		return fail(err)
	}
	res.Total = len(files)
	logger.Debug("discovery finished", "search_path", search, "files", res.Total)
	if len(files) == 0 {
		e.setState(res, StateNoFilesFound)
		res.Elapsed = now().Sub(start)
		return res, nil
	}

	e.setState(res, StateProcessing)
	writer := NewManifestWriter(start)
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Warn("closing manifest", "err", err)
		}
	}()
	// An aggregate manifest from an earlier run is kept aside, not extended.
	if isAggregate {
		backup, err := writer.Backup(aggregate)
		if err != nil {
			return fail(err)
		}
		if backup != "" {
			logger.Info("backed up existing manifest", "manifest", aggregate.Path, "backup", backup)
		}
	}

	// Start hashing, possibly ahead of the write loop, and report 0%.
	done := make(chan struct{})
	defer close(done)
	digestOf := e.startHashing(hasher, files, done)

	progress := NewProgressState(len(files))
	progress, percent, emit := progress.Update(0)
	if emit {
		sink.OnPercent(percent)
	}

	// Name, hash and write each file strictly in discovery order.
	var warnings *multierror.Error
	for i, file := range files {
		target, err := namer.Name(file)
		if err != nil {
			res.Targets = writer.Targets()
			return fail(err)
		}

		// Unreadable files are skipped; the run carries on.
		r := digestOf(i)
		if r.err != nil {
			warnings = multierror.Append(warnings, r.err)
			if isPerFileError(r.err) {
				logger.Warn("skipping file", "path", file.Path, "err", r.err)
			} else {
				logger.Error("hashing failed, skipping file", "path", file.Path, "err", r.err)
			}
			res.Skipped++
		} else {
			entry := ChecksumEntry{Digest: r.digest.Hex, Mode: r.digest.Mode, Label: filepath.Base(file.Path)}
			if err := writer.Write(target, FormatLine(entry)); err != nil {
				res.Targets = writer.Targets()
				return fail(err)
			}
			res.Processed++
		}

		progress, percent, emit = progress.Update(i + 1)
		if emit {
			sink.OnPercent(percent)
		}
	}

	// Summarize
	res.Targets = writer.Targets()
	res.Warnings = warnings.ErrorOrNil()
	res.Elapsed = now().Sub(start)
	res.Summary = fmt.Sprintf("%d files processed in %s", res.Processed, Summarize(start, start.Add(res.Elapsed)))
	sink.OnSummary(res.Summary)
	e.setState(res, StateCompleted)
	return res, nil
}

func (e *Engine) setState(res *Result, state RunState) {
	e.state = state
	res.State = state
}

type hashResult struct {
	digest Digest
	err    error
}

// startHashing returns a function yielding the digest of files[i]. With one
// thread the file is hashed on demand. With more, a worker pool hashes ahead
// and each file's result waits in its own slot, so the caller still consumes
// them in discovery order.
func (e *Engine) startHashing(hasher Hasher, files []DiscoveredFile, done <-chan struct{}) func(int) hashResult {
	workers := e.Config.Threads
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 1 {
		return func(i int) hashResult {
			d, err := hasher.Hash(files[i].Path)
			return hashResult{digest: d, err: err}
		}
	}
	workers = min(workers, len(files))

	results := make([]chan hashResult, len(files))
	jobs := make(chan int, len(files))
	for i := range files {
		results[i] = make(chan hashResult, 1)
		jobs <- i
	}
	close(jobs)

	for w := 0; w < workers; w++ {
		go hashWorker(hasher, files, jobs, results, done)
	}
	return func(i int) hashResult {
		return <-results[i]
	}
}

// hashWorker hashes the files whose indexes arrive on jobs until the queue
// drains or the run ends.
func hashWorker(hasher Hasher, files []DiscoveredFile, jobs <-chan int, results []chan hashResult, done <-chan struct{}) {
	for i := range jobs {
		select {
		case <-done:
			return
		default:
		}
		d, err := hasher.Hash(files[i].Path)
		results[i] <- hashResult{digest: d, err: err}
	}
}
