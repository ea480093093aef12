package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kashev/singularity-pipeline/internal/cmd/common"
	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/singularity"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Args:  cobra.NoArgs,
		RunE:  runFunc,
		Short: "Run the pipeline",
		Long: `Run the run steps of the pipeline in order.

The image file and every bind source must exist, except with --dry-run.`,
	}

	executionFlags(cmdconfig.OnCmd(cmd)).
		AddBoolFlag(constants.ArgNoBind, false, "Do not pass the bind specifications to singularity")

	return cmd
}

func runFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := config.Get(ctx)

	doc, outcome, err := common.LoadPipeline(ctx, c)
	if err != nil {
		return err
	}
	s := newSession(cmd, "run", runner.WithPhases(types.PhaseRun))
	defer s.close(ctx)
	if !outcome.Valid() {
		return common.Shown(s.invalid(ctx, doc))
	}
	desc := outcome.Description

	if !c.DryRun {
		if err := common.CheckRunInputs(singularity.ImageName(c.ImagePath, desc), desc.Binds, c.NoBind); err != nil {
			return err
		}
	}

	s.display.Bold("\nRunning pipeline...")
	report := s.runner.Start(ctx, desc)
	s.runner.Execute(ctx, desc, report, types.PhaseRun)
	if err := s.finish(ctx, report); err != nil {
		return common.Shown(err)
	}
	if !c.DryRun {
		s.display.Green("\nSuccessfully ran %s.", desc.Name)
	}
	return nil
}
