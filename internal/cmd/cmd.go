package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kashev/singularity-pipeline/internal/cmd/common"
	"github.com/kashev/singularity-pipeline/internal/perr"
)

// RunCLI executes the root command and returns the process exit code.
// SIGINT and SIGTERM cancel the running step.
func RunCLI(ctx context.Context) int {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return execute(ctx, rootCommand())
}

func execute(ctx context.Context, cmd *cobra.Command) int {
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		common.ShowError(ctx, cmd.ErrOrStderr(), err)
	}
	return perr.GetExitCode(err)
}
