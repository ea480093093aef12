package cmd

import (
	"github.com/spf13/cobra"

	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/templates"
)

func templateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Args:  cobra.NoArgs,
		RunE:  templateFunc,
		Short: "Print a pipeline description to start from",
		Long: `Print a commented pipeline description to start from:

  singularity-pipeline template > pipeline.yaml`,
	}
	cmdconfig.OnCmd(cmd)
	return cmd
}

func templateFunc(cmd *cobra.Command, _ []string) error {
	_, err := cmd.OutOrStdout().Write(templates.Pipeline())
	return err
}
