package constants

import "time"

const (
	// Name is the name of the application.
	Name = "singularity-pipeline"

	DefaultPipelineFile    = "pipeline.yaml"
	DefaultSingularityPath = "singularity"
	DefaultShell           = "sh"
	DefaultImageExtension  = ".sif"
	DefaultImageName       = "pipeline" + DefaultImageExtension

	// ConfigDir is created under the user's home directory.
	ConfigDir      = ".singularity-pipeline"
	ConfigFileName = "config"
	LocalConfig    = "." + Name

	EnvPrefix    = "SINGULARITY_PIPELINE"
	EnvLogLevel  = EnvPrefix + "_LOG_LEVEL"
	EnvLogFormat = EnvPrefix + "_LOG_FORMAT"

	EnvDockerUsername = "SINGULARITY_DOCKER_USERNAME"
	EnvDockerPassword = "SINGULARITY_DOCKER_PASSWORD"

	// Docker2SingularityImage converts a local docker image into a singularity image.
	Docker2SingularityImage = "singularityware/docker2singularity"

	// MinimumSingularityVersion is the oldest release with `singularity build`.
	MinimumSingularityVersion = "2.4.0"

	SupportedSchemaVersion = "1"

	// WaitDelay bounds how long we wait for output pipes after the step
	// process has been killed.
	WaitDelay = 5 * time.Second

	MaxScanSize = 64 * 1024 * 40
)
