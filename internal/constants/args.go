package constants

// Command line arguments. Each one is also a viper key.
const (
	ArgConfigPath      = "config-path"
	ArgPipeline        = "pipeline"
	ArgImage           = "image"
	ArgForce           = "force"
	ArgNoBind          = "no-bind"
	ArgSkipRun         = "skip-run"
	ArgDryRun          = "dry-run"
	ArgContinueOnError = "continue-on-error"
	ArgStepTimeout     = "step-timeout"
	ArgOutput          = "output"
	ArgLogDir          = "log-dir"
	ArgSingularityPath = "singularity-path"
	ArgDockerHost      = "docker-host"
	ArgTools           = "tools"
	ArgVerbose         = "verbose"
	ArgLimit           = "limit"
	ArgPrune           = "prune"
)
