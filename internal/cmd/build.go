package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kashev/singularity-pipeline/internal/cmd/common"
	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/docker"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/singularity"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func buildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Args:  cobra.NoArgs,
		RunE:  buildFunc,
		Short: "Build the container image",
		Long: `Build the container image by running the build steps of the pipeline.

The build is skipped when the image file already exists, unless --force is
given, in which case the file is deleted first.`,
	}

	executionFlags(cmdconfig.OnCmd(cmd)).
		AddBoolFlag(constants.ArgForce, false, "Delete an existing image and build it again", cmdconfig.WithShortHand("f"))

	return cmd
}

func buildFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := config.Get(ctx)

	doc, outcome, err := common.LoadPipeline(ctx, c)
	if err != nil {
		return err
	}
	if !outcome.Valid() {
		s := newSession(cmd, "build")
		defer s.close(ctx)
		return common.Shown(s.invalid(ctx, doc))
	}
	desc := outcome.Description

	image := singularity.ImageName(c.ImagePath, desc)
	var skip runner.SkipFunc
	deleted := false
	if _, err := os.Stat(image); err == nil {
		if !c.Force {
			skip = func(types.StepSpec) (string, bool) {
				return constants.SkipReasonImageExists, true
			}
		} else if !c.DryRun {
			if err := os.Remove(image); err != nil {
				return perr.InternalWithMessage("unable to delete existing image: " + err.Error())
			}
			deleted = true
		}
	}

	s := newSession(cmd, "build", runner.WithPhases(types.PhaseBuild), runner.WithSkip(skip))
	defer s.close(ctx)

	switch {
	case skip != nil:
		s.display.Yellow("Image file %s already exists! Skipping build.", image)
	case deleted:
		s.display.Normal("Deleting existing image file %s.", image)
	}
	s.display.Bold("\nBuilding pipeline...")

	if skip == nil && !c.DryRun && desc.HasStepType(types.StepTypeDocker2Singularity) {
		if err := ensureConverter(cmd, c); err != nil {
			return err
		}
	}

	report := s.runner.Start(ctx, desc)
	s.runner.Execute(ctx, desc, report, types.PhaseBuild)
	if err := s.finish(ctx, report); err != nil {
		return common.Shown(err)
	}
	if skip == nil && !c.DryRun {
		s.display.Green("\nSuccessfully built image %s.", image)
	}
	return nil
}

// ensureConverter pulls the docker2singularity image ahead of the steps
// that need it, so a missing daemon is reported before anything runs.
func ensureConverter(cmd *cobra.Command, c *config.Configuration) error {
	dc, err := docker.New(docker.WithContext(cmd.Context()), docker.WithHost(c.DockerHost), docker.WithPingTest())
	if err != nil {
		return err
	}
	defer dc.Close()

	_, err = dc.EnsureImage(constants.Docker2SingularityImage)
	return err
}
