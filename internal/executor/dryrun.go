package executor

import (
	"context"
	"fmt"
	"io"

	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// DryRunExecutor prints each command instead of running it.
type DryRunExecutor struct {
	Out io.Writer
}

func (e DryRunExecutor) Execute(_ context.Context, c Command) types.StepResult {
	if e.Out != nil {
		fmt.Fprintln(e.Out, c.Line)
	}
	res := c.Result()
	res.Classification = types.ClassificationSkipped
	res.Reason = constants.SkipReasonDryRun
	return res
}
