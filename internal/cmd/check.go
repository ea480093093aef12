package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kashev/singularity-pipeline/internal/cmd/common"
	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/display"
	"github.com/kashev/singularity-pipeline/internal/docker"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/pipeline"
	"github.com/kashev/singularity-pipeline/internal/printers"
	"github.com/kashev/singularity-pipeline/internal/runner"
	"github.com/kashev/singularity-pipeline/internal/singularity"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func checkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Args:  cobra.NoArgs,
		RunE:  checkFunc,
		Short: "Validate the pipeline description",
		Long: `Validate the pipeline description and list every step with its resolved
command. With --tools also check the installed singularity and, when the
pipeline converts docker images, the docker daemon.`,
	}

	cmdconfig.OnCmd(cmd).
		AddBoolFlag(constants.ArgTools, false, "Also check singularity and docker").
		AddBoolFlag(constants.ArgNoBind, false, "Resolve commands without bind specifications")

	return cmd
}

func checkFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := config.Get(ctx)
	mode := types.ParseOutputMode(viper.GetString(constants.ArgOutput))
	out := display.New(display.WithOutput(cmd.ErrOrStderr()), display.WithVerbose(viper.GetBool(constants.ArgVerbose)))
	p := printers.GetPrinter(mode)

	out.Bold("Checking pipeline file %s", c.PipelinePath)
	doc, outcome, err := common.LoadPipeline(ctx, c)
	if err != nil {
		return err
	}

	if !outcome.Valid() {
		if mode == types.OutputModePretty {
			showViolations(out, doc, outcome.Violations)
		} else if err := p.PrintResource(ctx, types.PrintableViolations{Items: outcome.Violations}, cmd.OutOrStdout()); err != nil {
			return err
		}
		return common.Shown(outcome.Err())
	}
	desc := outcome.Description

	r := runner.New(nil, runner.WithSingularity(c.SingularityPath, c.ImagePath, c.NoBind))
	plan := r.Plan(desc)
	if err := p.PrintResource(ctx, types.PrintablePlan{Items: plan}, cmd.OutOrStdout()); err != nil {
		return err
	}

	var unresolved []*perr.ErrorDetailModel
	for _, s := range plan {
		if s.Error != "" {
			unresolved = append(unresolved, &perr.ErrorDetailModel{Location: stepField(s.Index), Message: s.Error})
		}
	}
	if len(unresolved) > 0 {
		return perr.ValidationFailed(unresolved)
	}

	if viper.GetBool(constants.ArgTools) {
		if err := checkTools(ctx, out, c, desc); err != nil {
			return err
		}
	}

	out.Green("Pipeline '%s' is valid: %d steps, image %s.", desc.Name, len(desc.Steps), r.Runtime(desc).Image)
	return nil
}

func showViolations(out *display.Printer, doc *pipeline.Document, violations []types.Violation) {
	for _, v := range violations {
		out.Red("%s", v.String())
		if src := doc.Annotate(v.Field, !color.NoColor); src != "" {
			out.Normal("%s\n", strings.TrimRight(src, "\n"))
		}
	}
}

func stepField(index int) string {
	return fmt.Sprintf("steps[%d].command_template", index)
}

func checkTools(ctx context.Context, out *display.Printer, c *config.Configuration, desc *types.PipelineDescription) error {
	v, err := singularity.CheckVersion(ctx, c.SingularityPath)
	if err != nil {
		return err
	}
	out.Normal("Found %s.", v.String())

	if !desc.HasStepType(types.StepTypeDocker2Singularity) {
		return nil
	}

	dc, err := docker.New(docker.WithContext(ctx), docker.WithHost(c.DockerHost), docker.WithPingTest())
	if err != nil {
		return err
	}
	defer dc.Close()

	version, err := dc.ServerVersion()
	if err != nil {
		return err
	}
	out.Normal("Found docker %s.", version)

	exists, err := dc.ImageExists(constants.Docker2SingularityImage)
	if err != nil {
		return err
	}
	if !exists {
		out.Yellow("Converter image %s is not present and will be pulled by build.", constants.Docker2SingularityImage)
	}

	tags, err := dc.ImageTags(singularity.DockerName(desc.Name))
	if err != nil {
		return err
	}
	if len(tags) > 0 {
		out.Debug("Existing docker images for this pipeline: %s", strings.Join(tags, ", "))
	}
	return nil
}
