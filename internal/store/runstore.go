package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kashev/singularity-pipeline/internal/plog"
	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/sanitize"
	"github.com/kashev/singularity-pipeline/internal/singularity"
	"github.com/kashev/singularity-pipeline/internal/types"
)

const (
	EventsFileName  = "events.jsonl"
	ReportFileName  = "report.json"
	HistoryFileName = "history.db"
)

// RunStore writes everything about a run under <base>/<run id>/: one log
// file per executed step, a JSON-lines event log and the final report. It
// is a runner.Observer; failures to write are logged, never returned to the run.
type RunStore struct {
	base string

	mu      sync.Mutex
	runID   string
	dir     string
	broken  bool // the current run is not open; its events are dropped
	events  *zap.Logger
	history *History
}

func New(base string) *RunStore {
	return &RunStore{base: base}
}

// Dir is the directory of the current run, empty before the first event
// or when the run could not be opened.
func (s *RunStore) Dir() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dir
}

func (s *RunStore) OnEvent(ctx context.Context, e runner.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := plog.Logger(ctx)
	if err := s.open(e); err != nil {
		logger.Warn("unable to open run store", "dir", s.base, "error", err)
	}
	if s.broken {
		return
	}

	switch e.Type {
	case runner.EventRunStarted:
		s.events.Info(string(e.Type),
			zap.String("pipeline", e.Report.Pipeline),
			zap.String("command", e.Report.Command))

	case runner.EventStepStarted:
		s.events.Info(string(e.Type),
			zap.Int("index", e.Step.Index),
			zap.String("step", e.Step.Name),
			zap.String("command", sanitize.Instance.SanitizeString(e.Command)))

	case runner.EventStepFinished:
		res := e.Result
		s.events.Info(string(e.Type),
			zap.Int("index", res.Index),
			zap.String("step", res.Name),
			zap.String("classification", string(res.Classification)),
			zap.Int("exit_code", res.ExitCode),
			zap.Int64("duration_ms", res.DurationMS),
			zap.String("reason", res.Reason))
		if res.Classification != types.ClassificationSkipped {
			if err := s.writeStepLog(*res); err != nil {
				logger.Warn("unable to write step log", "step", res.Name, "error", err)
			}
		}

	case runner.EventRunFinished:
		s.events.Info(string(e.Type),
			zap.String("outcome", e.Report.OutcomeString()),
			zap.Int("failures", len(e.Report.Failures())))
		if err := s.writeReport(e.Report); err != nil {
			logger.Warn("unable to write run report", "error", err)
		}
		if err := s.history.FinishRun(e.Report.RunID, e.Report.OutcomeString(), len(e.Report.Failures())); err != nil {
			logger.Warn("unable to update run history", "error", err)
		}
		_ = s.events.Sync()
	}
}

// open creates the run directory on the first event of a run. When any part
// fails the run is marked broken and later events of the same run are
// dropped without retrying.
func (s *RunStore) open(e runner.Event) error {
	if s.runID != "" && s.runID == e.RunID {
		return nil
	}
	s.closeLocked()
	s.runID, s.dir, s.broken = e.RunID, "", true

	dir := filepath.Join(s.base, e.RunID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	events, err := plog.ExecutionLogger(filepath.Join(dir, EventsFileName))
	if err != nil {
		return err
	}
	history, err := OpenHistory(filepath.Join(s.base, HistoryFileName))
	if err != nil {
		_ = events.Sync()
		return err
	}

	pipeline, command, started := "", "", time.Now()
	if e.Report != nil {
		pipeline, command, started = e.Report.Pipeline, e.Report.Command, e.Report.StartedAt
	}
	if err := history.StartRun(e.RunID, pipeline, command, started); err != nil {
		_ = events.Sync()
		history.Close()
		return err
	}

	s.dir, s.events, s.history, s.broken = dir, events, history, false
	return nil
}

func (s *RunStore) writeStepLog(res types.StepResult) error {
	name := fmt.Sprintf("%02d-%s.log", res.Index, singularity.SafeFilename(res.Name, true))
	content := fmt.Sprintf("$ %s\n%s", res.Command, res.Output)
	if res.Error != "" {
		content += "\n" + res.Error + "\n"
	}
	return os.WriteFile(filepath.Join(s.dir, name), []byte(sanitize.Instance.SanitizeString(content)), 0644)
}

func (s *RunStore) writeReport(report *types.RunReport) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, ReportFileName), b, 0644)
}

// Close releases the event log and the history database.
func (s *RunStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeLocked()
}

func (s *RunStore) closeLocked() error {
	var err error
	s.broken = true
	if s.events != nil {
		_ = s.events.Sync()
		s.events = nil
	}
	if s.history != nil {
		err = s.history.Close()
		s.history = nil
	}
	return err
}
