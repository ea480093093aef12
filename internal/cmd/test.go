package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kashev/singularity-pipeline/internal/cmd/common"
	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/singularity"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func testCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test",
		Args:  cobra.NoArgs,
		RunE:  testFunc,
		Short: "Test the pipeline",
		Long: `Test the pipeline: create the test files with the prepare steps when
any of them is missing (or with --force), run the pipeline unless --skip-run,
then run the validate steps.`,
	}

	executionFlags(cmdconfig.OnCmd(cmd)).
		AddBoolFlag(constants.ArgForce, false, "Recreate the test files even if they exist", cmdconfig.WithShortHand("f")).
		AddBoolFlag(constants.ArgSkipRun, false, "Validate the output of a previous run").
		AddBoolFlag(constants.ArgNoBind, false, "Do not pass the bind specifications to singularity")

	return cmd
}

func testFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := config.Get(ctx)

	doc, outcome, err := common.LoadPipeline(ctx, c)
	if err != nil {
		return err
	}
	if !outcome.Valid() {
		s := newSession(cmd, "test")
		defer s.close(ctx)
		return common.Shown(s.invalid(ctx, doc))
	}
	desc := outcome.Description

	if !c.SkipRun && !c.DryRun {
		if err := common.CheckRunInputs(singularity.ImageName(c.ImagePath, desc), desc.Binds, c.NoBind); err != nil {
			return err
		}
	}

	prepare := c.Force || len(common.MissingFiles(desc.TestFiles)) > 0
	skip := func(step types.StepSpec) (string, bool) {
		if step.EffectivePhase() == types.PhasePrepare && !prepare {
			return constants.SkipReasonTestFiles, true
		}
		return "", false
	}

	s := newSession(cmd, "test", runner.WithSkip(skip))
	defer s.close(ctx)

	s.display.Bold("\nTesting pipeline...")
	report := s.runner.Start(ctx, desc)

	if prepare {
		s.display.Normal("(Re)creating test files...")
	} else {
		s.display.Normal("Test files already exist and will be reused.")
	}
	if s.runner.Execute(ctx, desc, report, types.PhasePrepare) && !c.DryRun {
		if missing := common.MissingFiles(desc.TestFiles); len(missing) > 0 {
			report.Abort(-1)
			_ = s.finish(ctx, report)
			return perr.ExecutionFailed("test files missing after the prepare steps: " + strings.Join(missing, ", "))
		}
	}

	if c.SkipRun {
		s.display.Normal("Skipping run stage.")
	} else {
		s.runner.Execute(ctx, desc, report, types.PhaseRun)
	}

	s.display.Normal("Running validation stage...")
	s.runner.Execute(ctx, desc, report, types.PhaseValidate)

	if err := s.finish(ctx, report); err != nil {
		return common.Shown(err)
	}
	if !c.DryRun {
		s.display.Green("\nPipeline validated successfully!")
	}
	return nil
}
