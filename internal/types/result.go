package types

import (
	"fmt"
	"time"

	"github.com/kashev/singularity-pipeline/internal/perr"
)

// Classification of a finished step.
type Classification string

const (
	ClassificationSuccess Classification = "success"
	ClassificationFailure Classification = "failure"
	ClassificationSkipped Classification = "skipped"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Index          int            `json:"index" yaml:"index"`
	Name           string         `json:"name" yaml:"name"`
	Type           StepType       `json:"type" yaml:"type"`
	Command        string         `json:"command,omitempty" yaml:"command,omitempty"`
	ExitCode       int            `json:"exit_code" yaml:"exit_code"`
	Duration       time.Duration  `json:"-" yaml:"-"`
	DurationMS     int64          `json:"duration_ms" yaml:"duration_ms"`
	Classification Classification `json:"classification" yaml:"classification"`
	// Reason is the failure reason (UnknownMacro, Timeout, ...) or the skip reason.
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
}

func (r *StepResult) SetDuration(d time.Duration) {
	r.Duration = d
	r.DurationMS = d.Milliseconds()
}

func (r StepResult) Failed() bool {
	return r.Classification == ClassificationFailure
}

// Outcome of a whole run.
type Outcome string

const (
	OutcomeRunning               Outcome = "running"
	OutcomeCompleted             Outcome = "completed"
	OutcomeCompletedWithFailures Outcome = "completed-with-failures"
	OutcomeAborted               Outcome = "aborted"
	OutcomeInvalid               Outcome = "invalid"
)

// RunReport accumulates the step results of a single run.
type RunReport struct {
	RunID      string       `json:"run_id" yaml:"run_id"`
	Pipeline   string       `json:"pipeline,omitempty" yaml:"pipeline,omitempty"`
	Command    string       `json:"command,omitempty" yaml:"command,omitempty"`
	Outcome    Outcome      `json:"outcome" yaml:"outcome"`
	AbortedAt  int          `json:"aborted_at" yaml:"aborted_at"`
	Results    []StepResult `json:"results" yaml:"results"`
	Violations []Violation  `json:"violations,omitempty" yaml:"violations,omitempty"`
	StartedAt  time.Time    `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time    `json:"finished_at" yaml:"finished_at"`
}

func NewRunReport(runID, pipeline, command string) *RunReport {
	return &RunReport{
		RunID:     runID,
		Pipeline:  pipeline,
		Command:   command,
		Outcome:   OutcomeRunning,
		AbortedAt: -1,
		Results:   []StepResult{},
		StartedAt: time.Now().UTC(),
	}
}

// OutcomeString renders the outcome, naming the step for aborted runs.
func (r *RunReport) OutcomeString() string {
	if r.Outcome == OutcomeAborted && r.AbortedAt >= 0 {
		return fmt.Sprintf("aborted-at-step-%d", r.AbortedAt)
	}
	return string(r.Outcome)
}

func (r *RunReport) Completed() bool {
	return r.Outcome == OutcomeCompleted
}

// Failures returns the failed step results in order.
func (r *RunReport) Failures() []StepResult {
	var failed []StepResult
	for _, res := range r.Results {
		if res.Failed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Executed returns the number of steps that were actually started.
func (r *RunReport) Executed() int {
	n := 0
	for _, res := range r.Results {
		if res.Classification != ClassificationSkipped {
			n++
		}
	}
	return n
}

func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Abort marks the run aborted at the declared index of the failing step.
func (r *RunReport) Abort(index int) {
	r.Outcome = OutcomeAborted
	r.AbortedAt = index
}

// Finish stamps the finish time and settles a running outcome.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now().UTC()
	if r.Outcome != OutcomeRunning {
		return
	}
	if len(r.Failures()) > 0 {
		r.Outcome = OutcomeCompletedWithFailures
	} else {
		r.Outcome = OutcomeCompleted
	}
}

// Err summarises an unsuccessful run, naming the first failing step with its
// resolved command and exit code.
func (r *RunReport) Err() error {
	switch r.Outcome {
	case OutcomeCompleted, OutcomeRunning:
		return nil
	case OutcomeInvalid:
		return ViolationsError(r.Violations)
	}

	failures := r.Failures()
	if len(failures) == 0 {
		return perr.ExecutionFailed(r.OutcomeString())
	}
	first := failures[0]
	if first.Reason == perr.ErrorCodeAbortedByUser {
		return perr.AbortedByUser()
	}
	msg := fmt.Sprintf("%s: step %d (%s) failed with exit code %d: %s", r.OutcomeString(), first.Index, first.Name, first.ExitCode, first.Command)
	if len(failures) > 1 {
		msg += fmt.Sprintf(" (%d steps failed)", len(failures))
	}
	return perr.ExecutionFailed(msg)
}
