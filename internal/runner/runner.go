package runner

import (
	"context"
	"time"

	"github.com/rs/xid"

	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/executor"
	"github.com/kashev/singularity-pipeline/internal/macro"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/plog"
	"github.com/kashev/singularity-pipeline/internal/schema"
	"github.com/kashev/singularity-pipeline/internal/singularity"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// SkipFunc decides whether a step is skipped, and why.
type SkipFunc func(step types.StepSpec) (reason string, skip bool)

// Runner sequences the steps of a pipeline through an Executor.
type Runner struct {
	executor        executor.Executor
	binary          string
	imageOverride   string
	noBind          bool
	continueOnError bool
	stepTimeout     time.Duration
	phases          []types.Phase
	skip            SkipFunc
	observers       []Observer
	command         string
}

type Option func(*Runner)

// WithContinueOnError records failures and carries on with the next step.
func WithContinueOnError(enabled bool) Option {
	return func(r *Runner) {
		r.continueOnError = enabled
	}
}

func WithStepTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.stepTimeout = d
	}
}

// WithPhases restricts Run to steps of the given phases.
func WithPhases(phases ...types.Phase) Option {
	return func(r *Runner) {
		r.phases = phases
	}
}

func WithSkip(f SkipFunc) Option {
	return func(r *Runner) {
		r.skip = f
	}
}

func WithObserver(o Observer) Option {
	return func(r *Runner) {
		r.observers = append(r.observers, o)
	}
}

// WithSingularity sets the runtime binary, the image override and whether
// binds are dropped.
func WithSingularity(binary, image string, noBind bool) Option {
	return func(r *Runner) {
		r.binary = binary
		r.imageOverride = image
		r.noBind = noBind
	}
}

// WithCommandName records the CLI command in the report.
func WithCommandName(name string) Option {
	return func(r *Runner) {
		r.command = name
	}
}

func New(e executor.Executor, opts ...Option) *Runner {
	r := &Runner{
		executor: e,
		binary:   constants.DefaultSingularityPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Runtime is the singularity runtime the runner uses for desc.
func (r *Runner) Runtime(desc *types.PipelineDescription) singularity.Runtime {
	return singularity.Runtime{
		Binary: r.binary,
		Image:  singularity.ImageName(r.imageOverride, desc),
		NoBind: r.noBind,
	}
}

// Run validates doc once and, when valid, executes the selected steps. The
// report is returned in every case; the error summarises anything but a
// clean completion.
func (r *Runner) Run(ctx context.Context, doc map[string]any) (*types.RunReport, error) {
	outcome := schema.Validate(doc)
	if !outcome.Valid() {
		report := types.NewRunReport(xid.New().String(), "", r.command)
		report.Outcome = types.OutcomeInvalid
		report.Violations = outcome.Violations
		r.notify(ctx, Event{Type: EventRunStarted, RunID: report.RunID, Report: report})
		plog.Logger(ctx).Warn("pipeline description is invalid", "violations", len(outcome.Violations))
		return report, r.Finish(ctx, report)
	}

	report := r.Start(ctx, outcome.Description)
	r.Execute(ctx, outcome.Description, report, r.phases...)
	return report, r.Finish(ctx, report)
}

// Start opens a report for a validated description.
func (r *Runner) Start(ctx context.Context, desc *types.PipelineDescription) *types.RunReport {
	report := types.NewRunReport(xid.New().String(), desc.Name, r.command)
	r.notify(ctx, Event{Type: EventRunStarted, RunID: report.RunID, Report: report})
	return report
}

// Finish settles the outcome, tells the observers and returns the run error.
func (r *Runner) Finish(ctx context.Context, report *types.RunReport) error {
	report.Finish()
	r.notify(ctx, Event{Type: EventRunFinished, RunID: report.RunID, Report: report})
	plog.Logger(ctx).Info("run finished", "run_id", report.RunID, "outcome", report.OutcomeString(), "steps", len(report.Results))
	return report.Err()
}

// Execute runs the steps of desc in the given phases (all steps when none
// are given) in declared order, appending to report. Once the report is
// aborted every remaining step is recorded as skipped and never executed.
// It returns false when the run is aborted.
func (r *Runner) Execute(ctx context.Context, desc *types.PipelineDescription, report *types.RunReport, phases ...types.Phase) bool {
	steps := desc.Steps
	if len(phases) > 0 {
		steps = desc.StepsIn(phases...)
	}
	rt := r.Runtime(desc)

	for i := range steps {
		step := steps[i]

		if report.Outcome == types.OutcomeAborted {
			r.record(ctx, report, skipped(step, constants.SkipReasonAborted))
			continue
		}
		if r.skip != nil {
			if reason, skip := r.skip(step); skip {
				r.record(ctx, report, skipped(step, reason))
				continue
			}
		}

		res := r.runStep(ctx, report.RunID, rt, desc, step)
		r.record(ctx, report, res)

		if res.Failed() && (!r.continueOnError || res.Reason == perr.ErrorCodeAbortedByUser) {
			plog.Logger(ctx).Warn("aborting pipeline", "step", step.Name, "index", step.Index, "reason", res.Reason)
			report.Abort(step.Index)
		}
	}
	return report.Outcome != types.OutcomeAborted
}

func (r *Runner) runStep(ctx context.Context, runID string, rt singularity.Runtime, desc *types.PipelineDescription, step types.StepSpec) types.StepResult {
	cmd := executor.Command{
		Index:   step.Index,
		Name:    step.Name,
		Type:    step.Type,
		Timeout: r.stepTimeout,
	}
	if step.Type.ProducesImage() {
		cmd.Env = singularity.CredentialsEnv(desc.Credentials)
	}

	line, err := resolve(rt, desc, step)
	if err != nil {
		res := cmd.Result()
		res.ExitCode = -1
		res.Classification = types.ClassificationFailure
		res.Error = err.Error()
		res.Reason = perr.ErrorCodeExecutionFailed
		if e, ok := perr.As(err); ok {
			res.Reason = e.Type
		}
		r.notify(ctx, Event{Type: EventStepStarted, RunID: runID, Step: &step})
		return res
	}
	cmd.Line = line

	r.notify(ctx, Event{Type: EventStepStarted, RunID: runID, Step: &step, Command: line})
	plog.Logger(ctx).Info("running step", "index", step.Index, "step", step.Name, "command", line)
	return r.executor.Execute(ctx, cmd)
}

func resolve(rt singularity.Runtime, desc *types.PipelineDescription, step types.StepSpec) (string, error) {
	tmpl, err := rt.Template(step)
	if err != nil {
		return "", err
	}
	return macro.Resolve(tmpl, rt.Context(desc, step))
}

// Plan resolves every selected step without running anything. Steps whose
// template cannot be resolved carry the error instead of a command.
func (r *Runner) Plan(desc *types.PipelineDescription, phases ...types.Phase) []types.PlannedStep {
	steps := desc.Steps
	if len(phases) > 0 {
		steps = desc.StepsIn(phases...)
	}
	rt := r.Runtime(desc)

	planned := make([]types.PlannedStep, 0, len(steps))
	for _, s := range steps {
		p := types.PlannedStep{Index: s.Index, Name: s.Name, Type: s.Type, Phase: s.EffectivePhase()}
		if line, err := resolve(rt, desc, s); err != nil {
			p.Error = err.Error()
		} else {
			p.Command = line
		}
		planned = append(planned, p)
	}
	return planned
}

func (r *Runner) record(ctx context.Context, report *types.RunReport, res types.StepResult) {
	report.Results = append(report.Results, res)
	r.notify(ctx, Event{Type: EventStepFinished, RunID: report.RunID, Step: stepOf(res), Result: &res, Command: res.Command})
}

func (r *Runner) notify(ctx context.Context, e Event) {
	for _, o := range r.observers {
		o.OnEvent(ctx, e)
	}
}

func skipped(step types.StepSpec, reason string) types.StepResult {
	return types.StepResult{
		Index:          step.Index,
		Name:           step.Name,
		Type:           step.Type,
		Classification: types.ClassificationSkipped,
		Reason:         reason,
	}
}

func stepOf(res types.StepResult) *types.StepSpec {
	return &types.StepSpec{Index: res.Index, Name: res.Name, Type: res.Type}
}
