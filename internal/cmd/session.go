package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/display"
	"github.com/kashev/singularity-pipeline/internal/executor"
	"github.com/kashev/singularity-pipeline/internal/pipeline"
	"github.com/kashev/singularity-pipeline/internal/plog"
	"github.com/kashev/singularity-pipeline/internal/printers"
	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/store"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// session wires a runner to the terminal and the run store for one command.
type session struct {
	cmd     *cobra.Command
	config  *config.Configuration
	mode    types.OutputMode
	runner  *runner.Runner
	display *display.Printer
	store   *store.RunStore
}

func newSession(cmd *cobra.Command, name string, opts ...runner.Option) *session {
	c := config.Get(cmd.Context())
	s := &session{
		cmd:    cmd,
		config: c,
		mode:   types.ParseOutputMode(viper.GetString(constants.ArgOutput)),
		display: display.New(
			display.WithOutput(cmd.ErrOrStderr()),
			display.WithVerbose(viper.GetBool(constants.ArgVerbose))),
	}

	// step output must not end up inside a machine readable report
	live := cmd.OutOrStdout()
	if s.mode == types.OutputModeJson || s.mode == types.OutputModeYaml {
		live = cmd.ErrOrStderr()
	}

	var exec executor.Executor = executor.NewShellExecutor(
		executor.WithLiveOutput(live),
		executor.WithStdin(cmd.InOrStdin()))
	if c.DryRun {
		exec = executor.DryRunExecutor{Out: live}
	}

	runOpts := []runner.Option{
		runner.WithCommandName(name),
		runner.WithSingularity(c.SingularityPath, c.ImagePath, c.NoBind),
		runner.WithContinueOnError(c.ContinueOnError),
		runner.WithStepTimeout(c.StepTimeout),
		runner.WithObserver(s.display),
	}
	if c.LogDir != "" && !c.DryRun {
		s.store = store.New(c.LogDir)
		runOpts = append(runOpts, runner.WithObserver(s.store))
	}
	s.runner = runner.New(exec, append(runOpts, opts...)...)
	return s
}

// invalid records a run of an invalid description and returns its validation error.
func (s *session) invalid(ctx context.Context, doc *pipeline.Document) error {
	report, err := s.runner.Run(ctx, doc.Raw)
	s.print(ctx, report)
	return err
}

// finish settles the report, prints it for machine readable modes and
// returns the run error.
func (s *session) finish(ctx context.Context, report *types.RunReport) error {
	err := s.runner.Finish(ctx, report)
	s.print(ctx, report)
	return err
}

func (s *session) print(ctx context.Context, report *types.RunReport) {
	if s.mode == types.OutputModePretty {
		return
	}
	p := printers.GetPrinter(s.mode)
	if err := p.PrintResource(ctx, types.NewPrintableReport(report), s.cmd.OutOrStdout()); err != nil {
		plog.Logger(ctx).Warn("unable to print report", "error", err)
	}
}

func (s *session) close(ctx context.Context) {
	if s.store == nil {
		return
	}
	if dir := s.store.Dir(); dir != "" {
		s.display.Debug("run logs in %s", dir)
	}
	if err := s.store.Close(); err != nil {
		plog.Logger(ctx).Warn("unable to close run store", "error", err)
	}
}
