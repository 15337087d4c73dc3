package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
)

// ProgressState counts finished files. LastPercent starts at -1 so that 0%
// is reported once even when the first file already moves past it.
type ProgressState struct {
	Processed   int
	Total       int
	LastPercent int
}

// NewProgressState starts tracking a run of total files.
func NewProgressState(total int) ProgressState {
	return ProgressState{Total: total, LastPercent: -1}
}

// Update returns the state after processed files are done, plus the whole
// percentage when it differs from the last one reported.
func (s ProgressState) Update(processed int) (ProgressState, int, bool) {
	s.Processed = processed
	if s.Total <= 0 {
		return s, 0, false
	}
	percent := processed * 100 / s.Total
	if percent == s.LastPercent {
		return s, 0, false
	}
	s.LastPercent = percent
	return s, percent, true
}

// Summarize formats the whole seconds between start and end.
func Summarize(start, end time.Time) string {
	return formatElapsed(int(end.Sub(start) / time.Second))
}

func formatElapsed(seconds int) string {
	switch {
	case seconds <= 0:
		return "<1 second"
	case seconds == 1:
		return "1 second"
	case seconds < 60:
		return fmt.Sprintf("%d seconds", seconds)
	case seconds < 120:
		return fmt.Sprintf("%d seconds (1 minute)", seconds)
	default:
		return fmt.Sprintf("%d seconds (%d minutes, %d seconds)", seconds, seconds/60, seconds%60)
	}
}

// ProgressSink receives progress from the engine.
type ProgressSink interface {
	OnPercent(percent int)
	OnSummary(summary string)
}

// terminalSink redraws the percentage in place on a terminal. On anything
// else it stays quiet until the summary.
type terminalSink struct {
	progress io.Writer
	summary  io.Writer
	tty      bool
}

// newProgressSink picks the sink for a CLI run. Quiet runs report through the
// logger: percentages at debug level, the summary at info.
func newProgressSink(quiet bool, progress *os.File, summary io.Writer, logger *log.Logger) ProgressSink {
	if quiet {
		return logSink{logger: logger}
	}
	return newTerminalSink(progress, summary)
}

func newTerminalSink(progress *os.File, summary io.Writer) *terminalSink {
	return &terminalSink{
		progress: progress,
		summary:  summary,
		tty:      isatty.IsTerminal(progress.Fd()) || isatty.IsCygwinTerminal(progress.Fd()),
	}
}

func (s *terminalSink) OnPercent(percent int) {
	if s.tty {
		fmt.Fprintf(s.progress, "\r%3d%%", percent)
	}
}

func (s *terminalSink) OnSummary(summary string) {
	if s.tty {
		fmt.Fprint(s.progress, "\r\033[K")
	}
	fmt.Fprintln(s.summary, summary)
}

// logSink reports progress as log records.
type logSink struct {
	logger *log.Logger
}

func (s logSink) OnPercent(percent int) {
	s.logger.Debug("progress", "percent", percent)
}

func (s logSink) OnSummary(summary string) {
	s.logger.Info(summary)
}

type nopSink struct{}

func (nopSink) OnPercent(int) {}
func (nopSink) OnSummary(string) {}
