package cmdconfig

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/plog"
)

func init() {
	CustomPreRunHook = preRunHook
}

// preRunHook loads the configuration once the flags are bound and puts it,
// along with the logger, in the command's context.
func preRunHook(cmd *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := BootstrapViper(v); err != nil {
		return err
	}

	c, err := config.NewConfig(config.WithViper(v))
	if err != nil {
		return err
	}

	ctx := config.Set(cmd.Context(), c)
	ctx = plog.ContextWithLogger(ctx)
	cmd.SetContext(ctx)

	plog.Logger(ctx).Debug("configuration loaded", "command", CommandFullKey(cmd), "config", c.ConfigPath, "pipeline", c.PipelinePath)
	return nil
}
