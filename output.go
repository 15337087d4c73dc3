package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/atotto/clipboard"
)

// renderTargets lists the manifests a run wrote to, one per line.
func renderTargets(targets []TargetSummary) string {
	var builder strings.Builder
	for _, t := range targets {
		noun := "lines"
		if t.Lines == 1 {
			noun = "line"
		}
		builder.WriteString(fmt.Sprintf("  %s (%d %s)\n", t.Path, t.Lines, noun))
	}
	return builder.String()
}

// renderRunReport is the text copied to the clipboard after a run.
func renderRunReport(res *Result) string {
	var builder strings.Builder
	builder.WriteString(res.Summary)
	builder.WriteString("\n")
	if res.Skipped > 0 {
		builder.WriteString(fmt.Sprintf("Skipped files: %d\n", res.Skipped))
	}
	if len(res.Targets) > 0 {
		builder.WriteString("Manifests:\n")
		builder.WriteString(renderTargets(res.Targets))
	}
	return builder.String()
}

// printVerifyReport writes one "<label>: <status>" line per entry, md5sum -c style.
func printVerifyReport(w io.Writer, report *VerifyReport) {
	for _, r := range report.Results {
		fmt.Fprintf(w, "%s: %s\n", r.Label, r.Status)
	}
}

// copyRunReport puts the run report on the system clipboard.
func copyRunReport(res *Result) error {
	if err := clipboard.WriteAll(renderRunReport(res)); err != nil {
		return fmt.Errorf("error writing to clipboard: %w", err)
	}
	return nil
}
