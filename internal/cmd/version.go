package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/singularity"
)

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Args:  cobra.NoArgs,
		RunE:  versionFunc,
		Short: "Print the version of this tool and of singularity",
	}
	cmdconfig.OnCmd(cmd)
	return cmd
}

func versionFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := config.Get(ctx)
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "%s version %s\n", constants.Name, viper.GetString("main.version"))
	if commit := viper.GetString("main.commit"); commit != "" && commit != "none" {
		fmt.Fprintf(w, "commit %s, built %s by %s\n", commit, viper.GetString("main.date"), viper.GetString("main.builtBy"))
	}

	v, err := singularity.DetectVersion(ctx, c.SingularityPath)
	if err != nil {
		fmt.Fprintf(w, "Singularity version unknown: %s\n", err)
		return nil
	}
	fmt.Fprintf(w, "Singularity version %s (%s)\n", v.Raw, v.Product)
	return nil
}
