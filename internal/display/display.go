// Package display prints run progress for people watching the terminal.
package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/sanitize"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// Printer writes progress messages, by default to stderr so that stdout is
// left to the step output and the printed report.
type Printer struct {
	out     io.Writer
	verbose bool

	bold   *color.Color
	red    *color.Color
	yellow *color.Color
	green  *color.Color
	cyan   *color.Color
}

type Option func(*Printer)

func WithOutput(w io.Writer) Option {
	return func(p *Printer) {
		p.out = w
	}
}

// WithVerbose enables Debug messages.
func WithVerbose(verbose bool) Option {
	return func(p *Printer) {
		p.verbose = verbose
	}
}

// WithColor forces colour on or off. Without it fatih/color decides from the terminal.
func WithColor(enabled bool) Option {
	return func(p *Printer) {
		for _, c := range p.colors() {
			if enabled {
				c.EnableColor()
			} else {
				c.DisableColor()
			}
		}
	}
}

func New(opts ...Option) *Printer {
	p := &Printer{
		out:    os.Stderr,
		bold:   color.New(color.Bold),
		red:    color.New(color.FgRed, color.Bold),
		yellow: color.New(color.FgYellow, color.Bold),
		green:  color.New(color.FgGreen, color.Bold),
		cyan:   color.New(color.FgCyan, color.Bold),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Printer) colors() []*color.Color {
	return []*color.Color{p.bold, p.red, p.yellow, p.green, p.cyan}
}

func (p *Printer) Normal(format string, a ...any) {
	fmt.Fprintf(p.out, format+"\n", a...)
}

func (p *Printer) Bold(format string, a ...any) {
	p.bold.Fprintf(p.out, format+"\n", a...)
}

func (p *Printer) Red(format string, a ...any) {
	p.red.Fprintf(p.out, format+"\n", a...)
}

func (p *Printer) Yellow(format string, a ...any) {
	p.yellow.Fprintf(p.out, format+"\n", a...)
}

func (p *Printer) Green(format string, a ...any) {
	p.green.Fprintf(p.out, format+"\n", a...)
}

// Debug prints only in verbose mode.
func (p *Printer) Debug(format string, a ...any) {
	if p.verbose {
		p.cyan.Fprintf(p.out, format+"\n", a...)
	}
}

// OnEvent makes the printer a runner.Observer.
func (p *Printer) OnEvent(_ context.Context, e runner.Event) {
	switch e.Type {
	case runner.EventRunStarted:
		if e.Report.Pipeline != "" {
			p.Bold("Pipeline '%s': %s", e.Report.Pipeline, e.Report.Command)
		}
		p.Debug("run id %s", e.RunID)

	case runner.EventStepStarted:
		if e.Command == "" {
			return
		}
		p.Bold("\nExecuting step %d (%s): %s\n", e.Step.Index+1, e.Step.Name, sanitize.Instance.SanitizeString(e.Command))

	case runner.EventStepFinished:
		res := e.Result
		switch res.Classification {
		case types.ClassificationSkipped:
			p.Yellow("Skipping step %d (%s): %s", res.Index+1, res.Name, res.Reason)
		case types.ClassificationFailure:
			msg := res.Error
			if msg == "" {
				msg = fmt.Sprintf("exit code %d", res.ExitCode)
			}
			p.Red("Step %d (%s) failed: %s", res.Index+1, res.Name, sanitize.Instance.SanitizeString(msg))
		default:
			p.Debug("Step %d (%s) finished in %s", res.Index+1, res.Name, res.Duration.Round(time.Millisecond))
		}

	case runner.EventRunFinished:
		r := e.Report
		switch r.Outcome {
		case types.OutcomeCompleted:
			p.Green("\nPipeline %s in %s.", r.OutcomeString(), r.Duration().Round(time.Millisecond))
		case types.OutcomeInvalid:
			p.Red("\nPipeline description is invalid:")
			for _, v := range r.Violations {
				p.Red("  %s", v.String())
			}
		default:
			p.Red("\nPipeline %s (%d of %d steps failed).", r.OutcomeString(), len(r.Failures()), r.Executed())
		}
	}
}
