package main

import (
	"context"
	"os"

	"github.com/spf13/viper"
	"github.com/turbot/go-kit/helpers"

	"github.com/kashev/singularity-pipeline/internal/cmd"
	"github.com/kashev/singularity-pipeline/internal/cmd/common"
	"github.com/kashev/singularity-pipeline/internal/constants"
)

var (
	// These variables will be set by GoReleaser. We have them in main package because we put everything else in internal
	// and  I couldn't get Go Release to modify the internal packages
	version = "0.0.1-local.1"
	commit  = "none"
	date    = "unknown"
	builtBy = "local"
)

func main() {
	// Create a single, global context for the application
	ctx := context.Background()
	defer func() {
		if r := recover(); r != nil {
			common.ShowError(ctx, os.Stderr, helpers.ToError(r))
			os.Exit(constants.ExitCodeUnknownError)
		}
	}()

	viper.SetDefault("main.version", version)
	viper.SetDefault("main.commit", commit)
	viper.SetDefault("main.date", date)
	viper.SetDefault("main.builtBy", builtBy)

	// Run the CLI
	os.Exit(cmd.RunCLI(ctx))
}
