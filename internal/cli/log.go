// Package cli implements the lifetree command-line interface.
//
// The commands load a timeline snapshot (from a file argument or the
// configured store), compute its layout and render it, or serve the same
// pipeline over HTTP. Configuration comes from pkg/config; flags given on
// the command line win over the config file.
//
// # Commands
//
// The main commands are:
//   - layout: Compute the layout of a snapshot, optionally re-running on change
//   - render: Write JSON, DOT or SVG artifacts
//   - inspect: Validate a snapshot and summarize its branches
//   - browse: Step through the moments of a timeline in the terminal
//   - serve: Run the HTTP API
//   - token: Issue an access token for the API
//   - login, logout: Save or remove the token used by the http store
//   - cache: Manage the local layout cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Otherwise the
// level comes from the log.level config setting.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Computed layout of 42 moments (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
