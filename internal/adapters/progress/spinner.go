package progress

import (
	"context"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"

	"github.com/xet-labs/xet-composer/internal/domain/config"
	"github.com/xet-labs/xet-composer/internal/usecase"
)

// stageLabels maps pipeline stages to display names, in pipeline order.
var stageLabels = map[string]string{
	"resolve":  "Resolving",
	"validate": "Validating",
	"render":   "Rendering",
	"compile":  "Compiling",
	"deploy":   "Deploying",
}

// SpinnerSink renders pipeline progress as a terminal spinner. Each stage
// event updates the suffix; previously completed stages stay visible as a
// checked trail.
type SpinnerSink struct {
	spinner *spinner.Spinner
	trail   string
	current string
}

// NewSpinnerSink creates a spinner-based progress sink.
func NewSpinnerSink() *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.HideCursor = false
	return &SpinnerSink{spinner: s}
}

// OnProgress updates the spinner for a new pipeline stage.
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if !r.spinner.Active() {
		r.spinner.Start()
	}

	label, ok := stageLabels[event.Stage]
	if !ok {
		label = event.Stage
	}
	if r.current != "" {
		if r.trail != "" {
			r.trail += " → "
		}
		r.trail += color.GreenString("✓ %s", r.current)
	}
	r.current = label

	suffix := " "
	if r.trail != "" {
		suffix += r.trail + " → "
	}
	r.spinner.Suffix = suffix + color.YellowString("● %s", label) + ": " + event.Message
}

// Stop halts the spinner and clears the line.
func (r *SpinnerSink) Stop() {
	if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// NewSinkFromConfig picks the spinner sink for interactive terminal use and
// the no-op sink otherwise.
func NewSinkFromConfig(cfg *config.RuntimeConfig) usecase.ProgressSink {
	if cfg.NonInteractive || cfg.JSON {
		return usecase.NopProgress{}
	}
	return NewSpinnerSink()
}

var _ usecase.ProgressSink = (*SpinnerSink)(nil)
