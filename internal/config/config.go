package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/kashev/singularity-pipeline/internal/constants"
)

// Configuration represents the configuration as set by command-line flags,
// the config file and the environment. All variables will be set, unless
// explicitly noted.
type Configuration struct {
	ConfigPath      string
	PipelinePath    string
	ImagePath       string // optional; derived from the pipeline when empty
	LogDir          string // optional; no run store when empty
	SingularityPath string
	DockerHost      string // optional

	StepTimeout time.Duration // zero means no limit

	Force           bool
	NoBind          bool
	SkipRun         bool
	DryRun          bool
	ContinueOnError bool
}

// ConfigOption defines a type of function to configures the Config.
type ConfigOption func(*Configuration) error

// NewConfig creates a new Config.
func NewConfig(opts ...ConfigOption) (*Configuration, error) {
	// Defaults
	c := &Configuration{
		PipelinePath:    constants.DefaultPipelineFile,
		SingularityPath: constants.DefaultSingularityPath,
	}
	// Set options
	for _, opt := range opts {
		err := opt(c)
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

func WithPipelinePath(path string) ConfigOption {
	return func(c *Configuration) error {
		if path != "" {
			c.PipelinePath = path
		}
		return nil
	}
}

func WithImagePath(path string) ConfigOption {
	return func(c *Configuration) error {
		c.ImagePath = path
		return nil
	}
}

func WithLogDir(dir string) ConfigOption {
	return func(c *Configuration) error {
		c.LogDir = dir
		return nil
	}
}

func WithSingularityPath(path string) ConfigOption {
	return func(c *Configuration) error {
		if path != "" {
			c.SingularityPath = path
		}
		return nil
	}
}

func WithStepTimeout(d time.Duration) ConfigOption {
	return func(c *Configuration) error {
		if d < 0 {
			return errNegativeTimeout(d)
		}
		c.StepTimeout = d
		return nil
	}
}

func WithDryRun(enabled bool) ConfigOption {
	return func(c *Configuration) error {
		c.DryRun = enabled
		return nil
	}
}

func WithContinueOnError(enabled bool) ConfigOption {
	return func(c *Configuration) error {
		c.ContinueOnError = enabled
		return nil
	}
}

func WithForce(enabled bool) ConfigOption {
	return func(c *Configuration) error {
		c.Force = enabled
		return nil
	}
}

// WithViper reads every setting from v. Keys are the command line argument names.
func WithViper(v *viper.Viper) ConfigOption {
	return func(c *Configuration) error {
		opts := []ConfigOption{
			WithPipelinePath(v.GetString(constants.ArgPipeline)),
			WithImagePath(v.GetString(constants.ArgImage)),
			WithLogDir(v.GetString(constants.ArgLogDir)),
			WithSingularityPath(v.GetString(constants.ArgSingularityPath)),
			WithStepTimeout(v.GetDuration(constants.ArgStepTimeout)),
			WithDryRun(v.GetBool(constants.ArgDryRun)),
			WithContinueOnError(v.GetBool(constants.ArgContinueOnError)),
			WithForce(v.GetBool(constants.ArgForce)),
		}
		for _, opt := range opts {
			if err := opt(c); err != nil {
				return err
			}
		}
		c.ConfigPath = v.ConfigFileUsed()
		c.DockerHost = v.GetString(constants.ArgDockerHost)
		c.NoBind = v.GetBool(constants.ArgNoBind)
		c.SkipRun = v.GetBool(constants.ArgSkipRun)
		return nil
	}
}
