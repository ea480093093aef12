package cmdconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/perr"
)

// BootstrapViper loads the config file and the environment into v. Flags
// bound afterwards take precedence over both.
//
// The config file is --config-path when given, otherwise the first of
// ./.singularity-pipeline.yaml and ~/.singularity-pipeline/config.yaml.
func BootstrapViper(v *viper.Viper) error {
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for k, val := range configDefaults {
		v.SetDefault(k, val)
	}
	setDefaultsFromEnv(v, envMappings)

	if err := readConfigFile(v); err != nil {
		return err
	}
	return validateConfig(v)
}

func readConfigFile(v *viper.Viper) error {
	v.SetConfigType("yaml")

	if path := v.GetString(constants.ArgConfigPath); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return perr.LoadFailed(path, err)
		}
		return nil
	}

	v.SetConfigName(constants.LocalConfig)
	v.AddConfigPath(".")
	if dir, err := DefaultConfigDir(); err == nil {
		// the user file is named config.yaml, merged under the local one
		userFile := filepath.Join(dir, constants.ConfigFileName+".yaml")
		if _, err := os.Stat(userFile); err == nil {
			uv := viper.New()
			uv.SetConfigFile(userFile)
			if err := uv.ReadInConfig(); err != nil {
				return perr.LoadFailed(userFile, err)
			}
			for _, k := range uv.AllKeys() {
				v.SetDefault(k, uv.Get(k))
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return perr.LoadFailed(constants.LocalConfig+".yaml", err)
	}
	return nil
}

func setDefaultsFromEnv(v *viper.Viper, mappings map[string]EnvMapping) {
	for env, m := range mappings {
		val, ok := os.LookupEnv(env)
		if !ok || val == "" {
			continue
		}
		for _, key := range m.ConfigVar {
			v.SetDefault(key, m.VarType.parse(val))
		}
	}
}

func validateConfig(v *viper.Viper) error {
	if d := v.GetDuration(constants.ArgStepTimeout); d < 0 {
		return perr.BadRequestWithMessage("step timeout must not be negative, got " + d.String())
	}
	return nil
}
