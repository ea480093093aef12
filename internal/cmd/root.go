package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thediveo/enumflag/v2"

	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/types"
)

var outputMode types.OutputMode

// Build the cobra command that handles our command line tool.
func rootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.Name,
		Short:         constants.ShortDescription,
		Long:          constants.LongDescription,
		Version:       viper.GetString("main.version"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate(constants.Name + " v{{.Version}}\n")
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return perr.BadRequestWithMessage(err.Error())
	})

	outputMode = types.OutputModePretty
	b := cmdconfig.
		OnCmd(rootCmd).
		AddPersistentStringFlag(constants.ArgPipeline, constants.DefaultPipelineFile, "Pipeline description file", cmdconfig.WithShortHand("p"), cmdconfig.WithFilepath("yaml", "yml")).
		AddPersistentStringFlag(constants.ArgImage, "", "Image file; defaults to metadata.image or <name>.sif", cmdconfig.WithShortHand("i")).
		AddPersistentStringFlag(constants.ArgConfigPath, "", "Config file (default is ./.singularity-pipeline.yaml or $HOME/.singularity-pipeline/config.yaml)", cmdconfig.WithFilepath("yaml", "yml")).
		AddPersistentStringFlag(constants.ArgLogDir, cmdconfig.DefaultLogDir(), "Directory for run logs and history; empty disables them").
		AddPersistentStringFlag(constants.ArgSingularityPath, constants.DefaultSingularityPath, "Singularity or apptainer executable").
		AddPersistentStringFlag(constants.ArgDockerHost, "", "Docker daemon address used by docker2singularity checks").
		AddPersistentBoolFlag(constants.ArgVerbose, false, "Show more progress detail", cmdconfig.WithShortHand("v")).
		AddPersistentVarFlag(
			enumflag.New(&outputMode, constants.ArgOutput, types.OutputModeIds, enumflag.EnumCaseInsensitive),
			constants.ArgOutput,
			"Output format; one of: pretty, plain, yaml, json")
	if err := b.Error(); err != nil {
		panic(err)
	}

	// disable auto completion generation, since we don't want to support
	// powershell yet - and there's no way to disable powershell in the default generator
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	addCommands(rootCmd)
	return rootCmd
}

func addCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(buildCmd())
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(testCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(templateCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(historyCmd())
}

// executionFlags are shared by the commands that run steps.
func executionFlags(b *cmdconfig.CmdBuilder) *cmdconfig.CmdBuilder {
	return b.
		AddBoolFlag(constants.ArgDryRun, false, "Print the commands instead of running them").
		AddBoolFlag(constants.ArgContinueOnError, false, "Keep going after a failed step").
		AddDurationFlag(constants.ArgStepTimeout, 0, "Kill a step running longer than this, e.g. 30m; 0 means no limit")
}
