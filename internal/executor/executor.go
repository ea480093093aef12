package executor

import (
	"context"
	"time"

	"github.com/kashev/singularity-pipeline/internal/types"
)

// Command is one resolved step ready to run.
type Command struct {
	Index int
	Name  string
	Type  types.StepType

	// Line is the fully resolved shell command.
	Line string

	// Env is added to the inherited environment.
	Env []string

	// Dir is the working directory; empty means the current one.
	Dir string

	// Timeout bounds the wall-clock time of the step. Zero means no limit.
	Timeout time.Duration
}

// Result starts a StepResult for c.
func (c Command) Result() types.StepResult {
	return types.StepResult{
		Index:   c.Index,
		Name:    c.Name,
		Type:    c.Type,
		Command: c.Line,
	}
}

// Executor runs a single command and classifies the outcome. Implementations
// never return partially classified results.
type Executor interface {
	Execute(ctx context.Context, cmd Command) types.StepResult
}
