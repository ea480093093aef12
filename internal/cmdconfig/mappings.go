package cmdconfig

import (
	"strconv"

	"github.com/kashev/singularity-pipeline/internal/constants"
)

type EnvVarType int

const (
	EnvVarTypeString EnvVarType = iota
	EnvVarTypeBool
)

func (t EnvVarType) parse(s string) any {
	if t == EnvVarTypeBool {
		b, err := strconv.ParseBool(s)
		return err == nil && b
	}
	return s
}

// EnvMapping sends an environment variable to viper keys.
type EnvMapping struct {
	ConfigVar []string
	VarType   EnvVarType
}

// global config defaults
var configDefaults = map[string]any{
	constants.ArgPipeline:        constants.DefaultPipelineFile,
	constants.ArgSingularityPath: constants.DefaultSingularityPath,
}

// Variables other tools already use for the same settings. The
// SINGULARITY_PIPELINE_ prefixed ones are picked up by viper directly.
var envMappings = map[string]EnvMapping{
	"DOCKER_HOST": {ConfigVar: []string{constants.ArgDockerHost}, VarType: EnvVarTypeString},
}
