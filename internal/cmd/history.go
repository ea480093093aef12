package cmd

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kashev/singularity-pipeline/internal/cmdconfig"
	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/plog"
	"github.com/kashev/singularity-pipeline/internal/printers"
	"github.com/kashev/singularity-pipeline/internal/store"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Args:  cobra.NoArgs,
		RunE:  historyFunc,
		Short: "List past runs",
		Long: `List past runs recorded under --log-dir, most recent first.

With --prune, runs older than the given age are forgotten and their log
directories deleted first.`,
	}

	cmdconfig.OnCmd(cmd).
		AddIntFlag(constants.ArgLimit, 20, "Number of runs to list").
		AddDurationFlag(constants.ArgPrune, 0, "Delete runs older than this, e.g. 720h")

	return cmd
}

func historyFunc(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	c := config.Get(ctx)
	if c.LogDir == "" {
		return perr.BadRequestWithMessage("run history needs --log-dir")
	}

	path := filepath.Join(c.LogDir, store.HistoryFileName)
	if _, err := os.Stat(path); err != nil {
		return perr.NotFound("run history", path)
	}
	h, err := store.OpenHistory(path)
	if err != nil {
		return err
	}
	defer h.Close()

	if age := viper.GetDuration(constants.ArgPrune); age > 0 {
		cutoff := time.Now().Add(-age)
		all, err := h.List(-1)
		if err != nil {
			return err
		}
		for _, e := range all {
			if e.RunID != "" && e.StartedAt.Before(cutoff) {
				if err := os.RemoveAll(filepath.Join(c.LogDir, e.RunID)); err != nil {
					plog.Logger(ctx).Warn("unable to delete run logs", "run_id", e.RunID, "error", err)
				}
			}
		}
		n, err := h.Cleanup(cutoff)
		if err != nil {
			return err
		}
		plog.Logger(ctx).Info("pruned run history", "runs", n)
	}

	entries, err := h.List(viper.GetInt(constants.ArgLimit))
	if err != nil {
		return err
	}

	p := printers.GetPrinter(types.ParseOutputMode(viper.GetString(constants.ArgOutput)))
	return p.PrintResource(ctx, types.PrintableHistory{Items: entries}, cmd.OutOrStdout())
}
