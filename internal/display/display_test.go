package display

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func TestPrinterEvents(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	p := New(WithOutput(&buf), WithColor(false))
	ctx := context.Background()

	report := types.NewRunReport("r1", "hello", "run")
	step := types.StepSpec{Index: 0, Name: "greet", Type: types.StepTypeShell}

	p.OnEvent(ctx, runner.Event{Type: runner.EventRunStarted, RunID: "r1", Report: report})
	p.OnEvent(ctx, runner.Event{Type: runner.EventStepStarted, RunID: "r1", Step: &step, Command: "echo token=abc"})
	res := types.StepResult{Index: 0, Name: "greet", ExitCode: 3, Classification: types.ClassificationFailure}
	report.Results = append(report.Results, res)
	p.OnEvent(ctx, runner.Event{Type: runner.EventStepFinished, RunID: "r1", Step: &step, Result: &res})
	skipped := types.StepResult{Index: 1, Name: "later", Classification: types.ClassificationSkipped, Reason: "pipeline aborted"}
	p.OnEvent(ctx, runner.Event{Type: runner.EventStepFinished, RunID: "r1", Result: &skipped})
	report.Abort(0)
	p.OnEvent(ctx, runner.Event{Type: runner.EventRunFinished, RunID: "r1", Report: report})

	out := buf.String()
	assert.Contains(out, "Pipeline 'hello': run")
	assert.Contains(out, "Executing step 1 (greet): echo token=<redacted>")
	assert.Contains(out, "Step 1 (greet) failed: exit code 3")
	assert.Contains(out, "Skipping step 2 (later): pipeline aborted")
	assert.Contains(out, "Pipeline aborted-at-step-0 (1 of 1 steps failed).")
	assert.NotContains(out, "\x1b[")
	assert.NotContains(out, "run id")
}

func TestPrinterDebug(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithOutput(&buf), WithColor(false))
	p.Debug("hidden")
	assert.Empty(t, buf.String())

	p = New(WithOutput(&buf), WithColor(false), WithVerbose(true))
	p.Debug("shown %d", 1)
	assert.Equal(t, "shown 1\n", buf.String())
}

func TestPrinterInvalid(t *testing.T) {
	var buf bytes.Buffer
	p := New(WithOutput(&buf), WithColor(false))
	report := types.NewRunReport("r1", "", "check")
	report.Outcome = types.OutcomeInvalid
	report.Violations = []types.Violation{{Field: "steps", Reason: "must be non-empty"}}
	p.OnEvent(context.Background(), runner.Event{Type: runner.EventRunFinished, Report: report})
	assert.Contains(t, buf.String(), "steps")
	assert.Contains(t, buf.String(), "must be non-empty")
}
