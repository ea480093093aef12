package runner

import (
	"context"

	"github.com/kashev/singularity-pipeline/internal/types"
)

type EventType string

const (
	EventRunStarted   EventType = "run_started"
	EventStepStarted  EventType = "step_started"
	EventStepFinished EventType = "step_finished"
	EventRunFinished  EventType = "run_finished"
)

// Event is published to observers as the run progresses. Report is set for
// run events, Step and Command for step events, Result for step_finished.
type Event struct {
	Type    EventType
	RunID   string
	Step    *types.StepSpec
	Command string
	Result  *types.StepResult
	Report  *types.RunReport
}

// Observer receives events synchronously, in order, on the runner's goroutine.
type Observer interface {
	OnEvent(ctx context.Context, e Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, e Event)

func (f ObserverFunc) OnEvent(ctx context.Context, e Event) {
	f(ctx, e)
}
