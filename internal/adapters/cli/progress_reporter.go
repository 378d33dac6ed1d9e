// Package cli adapts the terminal UI helpers to the build use case's
// ProgressReporter port.
package cli

import (
	"github.com/tmoreland/bookweave/internal/core/usecases"
	"github.com/tmoreland/bookweave/internal/ui"
)

var _ usecases.ProgressReporter = (*ProgressReporter)(nil)

// ProgressReporter renders build progress with styled terminal output.
type ProgressReporter struct {
	out *ui.Output
}

// NewProgressReporter creates a ProgressReporter writing to stdout/stderr.
func NewProgressReporter(verbose bool) *ProgressReporter {
	return &ProgressReporter{out: ui.NewOutput().WithVerbose(verbose)}
}

// ReportProgress renders a labeled progress bar for one build step.
func (r *ProgressReporter) ReportProgress(step string, current, total int, message string) {
	r.out.Progress(current, total, step+": "+message)
}

// ReportError renders a fatal or per-page error.
func (r *ProgressReporter) ReportError(err error) {
	r.out.Error(err.Error())
}

// ReportSuccess renders a completed step.
func (r *ProgressReporter) ReportSuccess(message string) {
	r.out.Success(message)
}

// ReportInfo renders an informational line.
func (r *ProgressReporter) ReportInfo(message string) {
	r.out.Info(message)
}
