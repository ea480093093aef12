package cmdconfig

import (
	"path/filepath"

	"github.com/turbot/go-kit/files"

	"github.com/kashev/singularity-pipeline/internal/constants"
)

// DefaultConfigDir is ~/.singularity-pipeline, where the user config file and
// the default run logs live.
func DefaultConfigDir() (string, error) {
	return files.Tildefy(filepath.Join("~", constants.ConfigDir))
}

// DefaultLogDir is where run logs go when --log-dir is not given.
func DefaultLogDir() string {
	dir, err := DefaultConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "runs")
}
