package runner

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/kashev/singularity-pipeline/internal/executor"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/pipeline"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// scriptedExecutor fails the steps named in exitCodes and records every call.
type scriptedExecutor struct {
	mu        sync.Mutex
	exitCodes map[string]int
	calls     []executor.Command
}

func (e *scriptedExecutor) Execute(_ context.Context, c executor.Command) types.StepResult {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls = append(e.calls, c)

	res := c.Result()
	res.ExitCode = e.exitCodes[c.Name]
	if res.ExitCode != 0 {
		res.Classification = types.ClassificationFailure
		res.Reason = perr.ErrorCodeNonZeroExit
	} else {
		res.Classification = types.ClassificationSuccess
	}
	return res
}

func (e *scriptedExecutor) names() []string {
	var names []string
	for _, c := range e.calls {
		names = append(names, c.Name)
	}
	return names
}

func doc(t *testing.T, source string) map[string]any {
	t.Helper()
	d, err := pipeline.Parse([]byte(source), "")
	require.NoError(t, err)
	return d.Raw
}

const fourSteps = `
name: four
steps:
  - {name: s0, type: shell, command_template: "true"}
  - {name: s1, type: shell, command_template: "true"}
  - {name: s2, type: shell, command_template: "true"}
  - {name: s3, type: shell, command_template: "true"}
`

type RunnerTestSuite struct {
	suite.Suite
	ctx context.Context
}

func (suite *RunnerTestSuite) SetupTest() {
	suite.ctx = context.Background()
}

func (suite *RunnerTestSuite) TestBootstrapExample() {
	assert := assert.New(suite.T())

	exec := &scriptedExecutor{exitCodes: map[string]int{"base": 1}}
	r := New(exec)

	report, err := r.Run(suite.ctx, doc(suite.T(), `
metadata:
  image: out.img
  def: recipe.def
steps:
  - type: bootstrap
    name: base
    command_template: "singularity build {image} {def}"
`))
	require.Error(suite.T(), err)
	assert.Equal(perr.ErrorCodeExecutionFailed, mustType(err))

	require.Len(suite.T(), exec.calls, 1)
	assert.Equal("singularity build out.img recipe.def", exec.calls[0].Line)

	require.Len(suite.T(), report.Results, 1)
	assert.Equal("base", report.Results[0].Name)
	assert.Equal(types.ClassificationFailure, report.Results[0].Classification)
	assert.Equal("aborted-at-step-0", report.OutcomeString())
}

func (suite *RunnerTestSuite) TestAllSucceed() {
	exec := &scriptedExecutor{}
	report, err := New(exec).Run(suite.ctx, doc(suite.T(), fourSteps))
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), types.OutcomeCompleted, report.Outcome)
	assert.Equal(suite.T(), []string{"s0", "s1", "s2", "s3"}, exec.names())
	assert.Equal(suite.T(), "four", report.Pipeline)
	assert.NotEmpty(suite.T(), report.RunID)
}

func (suite *RunnerTestSuite) TestFailFast() {
	for k := 0; k < 4; k++ {
		suite.Run(fmt.Sprintf("fail at %d", k), func() {
			assert := assert.New(suite.T())

			name := fmt.Sprintf("s%d", k)
			exec := &scriptedExecutor{exitCodes: map[string]int{name: 2}}
			report, err := New(exec).Run(suite.ctx, doc(suite.T(), fourSteps))
			assert.Error(err)

			// steps after k are never executed
			assert.Len(exec.calls, k+1)
			assert.Equal(fmt.Sprintf("aborted-at-step-%d", k), report.OutcomeString())

			require.Len(suite.T(), report.Results, 4)
			for i, res := range report.Results {
				switch {
				case i < k:
					assert.Equal(types.ClassificationSuccess, res.Classification)
				case i == k:
					assert.Equal(types.ClassificationFailure, res.Classification)
					assert.Equal(2, res.ExitCode)
				default:
					assert.Equal(types.ClassificationSkipped, res.Classification)
					assert.Equal("pipeline aborted", res.Reason)
				}
			}
		})
	}
}

func (suite *RunnerTestSuite) TestContinueOnError() {
	assert := assert.New(suite.T())

	exec := &scriptedExecutor{exitCodes: map[string]int{"s1": 1, "s2": 3}}
	report, err := New(exec, WithContinueOnError(true)).Run(suite.ctx, doc(suite.T(), fourSteps))
	assert.Error(err)
	assert.Len(exec.calls, 4)
	assert.Equal(types.OutcomeCompletedWithFailures, report.Outcome)
	assert.Equal(-1, report.AbortedAt)
	assert.Len(report.Failures(), 2)

	exec = &scriptedExecutor{}
	report, err = New(exec, WithContinueOnError(true)).Run(suite.ctx, doc(suite.T(), fourSteps))
	assert.NoError(err)
	assert.Equal(types.OutcomeCompleted, report.Outcome)
}

func (suite *RunnerTestSuite) TestInvalidDescriptionRunsNothing() {
	assert := assert.New(suite.T())

	exec := &scriptedExecutor{}
	report, err := New(exec).Run(suite.ctx, doc(suite.T(), "steps: []\n"))
	assert.True(perr.IsValidationFailed(err))
	assert.Empty(exec.calls)
	assert.Equal(types.OutcomeInvalid, report.Outcome)
	assert.Equal([]types.Violation{{Field: "steps", Reason: "must be non-empty"}}, report.Violations)
}

func (suite *RunnerTestSuite) TestUnknownMacroIsCapturedPerStep() {
	assert := assert.New(suite.T())

	exec := &scriptedExecutor{}
	report, err := New(exec, WithContinueOnError(true)).Run(suite.ctx, doc(suite.T(), `
steps:
  - {name: a, type: shell, command_template: "echo {nope}"}
  - {name: b, type: shell, command_template: "echo ok"}
`))
	assert.Error(err)
	assert.Equal([]string{"b"}, exec.names())
	assert.Equal(perr.ErrorCodeUnknownMacro, report.Results[0].Reason)
	assert.Equal(types.ClassificationFailure, report.Results[0].Classification)
	assert.Equal(types.OutcomeCompletedWithFailures, report.Outcome)
}

func (suite *RunnerTestSuite) TestPhasesAndSkip() {
	assert := assert.New(suite.T())

	source := `
steps:
  - {name: pull, type: pull, options: {source: "docker://alpine"}}
  - {name: hello, type: run}
  - {name: fixtures, type: shell, phase: prepare, command_template: "touch in.txt"}
  - {name: check, type: exec, phase: validate, command_template: "{exec} test -f out.txt"}
`
	exec := &scriptedExecutor{}
	report, err := New(exec, WithPhases(types.PhaseRun, types.PhaseValidate),
		WithSingularity("singularity", "img.sif", true)).Run(suite.ctx, doc(suite.T(), source))
	require.NoError(suite.T(), err)
	assert.Equal([]string{"hello", "check"}, exec.names())
	assert.Equal("singularity run img.sif", exec.calls[0].Line)
	assert.Equal("singularity exec img.sif test -f out.txt", exec.calls[1].Line)
	assert.Equal(3, report.Results[1].Index)

	exec = &scriptedExecutor{}
	report, err = New(exec, WithSkip(func(s types.StepSpec) (string, bool) {
		return "image exists", s.Type == types.StepTypePull
	})).Run(suite.ctx, doc(suite.T(), source))
	require.NoError(suite.T(), err)
	assert.Equal([]string{"hello", "fixtures", "check"}, exec.names())
	assert.Equal(types.ClassificationSkipped, report.Results[0].Classification)
	assert.Equal("image exists", report.Results[0].Reason)
}

func (suite *RunnerTestSuite) TestCredentialsOnlyForBuildSteps() {
	exec := &scriptedExecutor{}
	_, err := New(exec).Run(suite.ctx, doc(suite.T(), `
credentials: {username: me, password: secret}
steps:
  - {name: pull, type: pull, options: {source: "docker://private/x"}}
  - {name: hello, type: run}
`))
	require.NoError(suite.T(), err)
	require.Len(suite.T(), exec.calls, 2)
	assert.Equal(suite.T(), []string{"SINGULARITY_DOCKER_USERNAME=me", "SINGULARITY_DOCKER_PASSWORD=secret"}, exec.calls[0].Env)
	assert.Empty(suite.T(), exec.calls[1].Env)
}

func (suite *RunnerTestSuite) TestObserverEvents() {
	var events []string
	obs := ObserverFunc(func(_ context.Context, e Event) {
		switch e.Type {
		case EventRunStarted, EventRunFinished:
			events = append(events, fmt.Sprintf("%s %s", e.Type, e.Report.OutcomeString()))
		default:
			events = append(events, fmt.Sprintf("%s %s", e.Type, e.Step.Name))
		}
	})

	exec := &scriptedExecutor{exitCodes: map[string]int{"s1": 1}}
	_, _ = New(exec, WithObserver(obs)).Run(suite.ctx, doc(suite.T(), fourSteps))

	want := []string{
		"run_started running",
		"step_started s0", "step_finished s0",
		"step_started s1", "step_finished s1",
		"step_finished s2", "step_finished s3",
		"run_finished aborted-at-step-1",
	}
	if diff := cmp.Diff(want, events); diff != "" {
		suite.T().Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func (suite *RunnerTestSuite) TestExecuteAcrossPhasesSharesReport() {
	assert := assert.New(suite.T())

	d := doc(suite.T(), `
steps:
  - {name: fixtures, type: shell, phase: prepare, command_template: "true"}
  - {name: hello, type: run}
  - {name: check, type: shell, phase: validate, command_template: "true"}
`)
	exec := &scriptedExecutor{exitCodes: map[string]int{"fixtures": 1}}
	r := New(exec)

	outcome := validate(suite.T(), d)
	report := r.Start(suite.ctx, outcome)
	assert.False(r.Execute(suite.ctx, outcome, report, types.PhasePrepare))
	assert.False(r.Execute(suite.ctx, outcome, report, types.PhaseRun))
	assert.False(r.Execute(suite.ctx, outcome, report, types.PhaseValidate))
	err := r.Finish(suite.ctx, report)

	assert.Error(err)
	assert.Equal([]string{"fixtures"}, exec.names())
	assert.Len(report.Results, 3)
	assert.Equal("aborted-at-step-0", report.OutcomeString())
}

func (suite *RunnerTestSuite) TestPlan() {
	assert := assert.New(suite.T())

	d := validate(suite.T(), doc(suite.T(), `
name: Plan Me
steps:
  - {name: b, type: build, options: {source: recipe.def}}
  - {name: x, type: shell, command_template: "echo {missing}"}
`))
	plan := New(&scriptedExecutor{}).Plan(d)
	require.Len(suite.T(), plan, 2)
	assert.Equal("singularity build  Plan_Me.sif recipe.def", plan[0].Command)
	assert.Equal(types.PhaseBuild, plan[0].Phase)
	assert.Contains(plan[1].Error, "{missing}")
}

func TestRunnerTestSuite(t *testing.T) {
	suite.Run(t, new(RunnerTestSuite))
}

// The tests below use the real shell.

func TestShellCancellationAbortsEvenWithContinueOnError(t *testing.T) {
	assert := assert.New(t)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(300*time.Millisecond, cancel)

	report, err := New(executor.NewShellExecutor(), WithContinueOnError(true)).Run(ctx, doc(t, `
steps:
  - {name: long, type: shell, command_template: "sleep 10"}
  - {name: after, type: shell, command_template: "true"}
`))
	assert.True(perr.IsAbortedByUser(err), err)
	assert.Equal(types.OutcomeAborted, report.Outcome)
	assert.Equal(0, report.AbortedAt)
	assert.Equal(perr.ErrorCodeAbortedByUser, report.Results[0].Reason)
	assert.Equal(types.ClassificationSkipped, report.Results[1].Classification)
}

func TestShellStepTimeout(t *testing.T) {
	report, err := New(executor.NewShellExecutor(), WithStepTimeout(200*time.Millisecond)).Run(context.Background(), doc(t, `
steps:
  - {name: slow, type: shell, command_template: "sleep 10"}
`))
	assert.Error(t, err)
	assert.Equal(t, perr.ErrorCodeTimeout, report.Results[0].Reason)
	assert.Equal(t, "aborted-at-step-0", report.OutcomeString())
}

func TestShellFailFast(t *testing.T) {
	dir := t.TempDir()
	report, err := New(executor.NewShellExecutor()).Run(context.Background(), doc(t, fmt.Sprintf(`
metadata:
  dir: %s
steps:
  - {name: first, type: shell, command_template: "touch {dir}/first"}
  - {name: broken, type: shell, command_template: "exit 4"}
  - {name: never, type: shell, command_template: "touch {dir}/never"}
`, dir)))
	assert.Error(t, err)
	assert.Equal(t, 4, report.Results[1].ExitCode)
	assert.FileExists(t, filepath.Join(dir, "first"))
	assert.NoFileExists(t, filepath.Join(dir, "never"))
}

func TestPlanUsesMetadataForTemplateKeys(t *testing.T) {
	desc := validate(t, doc(t, `
name: demo
metadata:
  source: recipe.def
  options: --fakeroot
steps:
  - {name: base, type: build}
  - {name: custom, type: shell, command_template: "singularity build {options} {image} {source}"}
  - {name: local, type: build, options: {source: local.def}}
`))
	plan := New(nil).Plan(desc)
	require.Len(t, plan, 3)
	assert.Equal(t, "singularity build --fakeroot demo.sif recipe.def", plan[0].Command)
	assert.Equal(t, "singularity build --fakeroot demo.sif recipe.def", plan[1].Command)
	assert.Equal(t, "singularity build --fakeroot demo.sif local.def", plan[2].Command)
}

func mustType(err error) string {
	e, _ := perr.As(err)
	return e.Type
}
