package singularity

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/kashev/singularity-pipeline/internal/cache"
	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/plog"
)

// Version is the detected container runtime.
type Version struct {
	// Product is "singularity" or "apptainer".
	Product string
	Raw     string
	Semver  *semver.Version
}

func (v Version) String() string {
	return v.Product + " " + v.Raw
}

var minimumVersion = semver.MustParse(constants.MinimumSingularityVersion)

const versionTimeout = 10 * time.Second

// DetectVersion runs `<binary> --version`. Results are cached per binary.
func DetectVersion(ctx context.Context, binary string) (Version, error) {
	key := "singularity-version:" + binary
	if v, ok := cache.GetCache().Get(key); ok {
		return v.(Version), nil
	}

	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, binary, "--version").Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			err = errors.New(strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Version{}, perr.ToolMissing(binary, err)
	}

	v, err := ParseVersion(string(out))
	if err != nil {
		return Version{}, perr.ToolMissing(binary, err)
	}
	plog.Logger(ctx).Debug("detected container runtime", "binary", binary, "version", v.String())

	cache.GetCache().SetWithTTL(key, v, time.Hour)
	return v, nil
}

// ParseVersion reads the output of `singularity --version`, for example
// "singularity version 3.11.4", "2.4.2-dist" or "apptainer version 1.2.5".
func ParseVersion(output string) (Version, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return Version{}, errors.New("empty version output")
	}

	v := Version{Product: "singularity", Raw: fields[len(fields)-1]}
	if strings.Contains(strings.ToLower(output), "apptainer") {
		v.Product = "apptainer"
	}

	sv, err := semver.NewVersion(strings.TrimPrefix(v.Raw, "v"))
	if err != nil {
		return Version{}, err
	}
	v.Semver = sv
	return v, nil
}

// CheckVersion fails when the runtime is older than the first release with
// `singularity build`. Every apptainer release qualifies.
func CheckVersion(ctx context.Context, binary string) (Version, error) {
	v, err := DetectVersion(ctx, binary)
	if err != nil {
		return v, err
	}
	if v.Product == "singularity" && v.Semver.LessThan(minimumVersion) {
		return v, perr.ToolTooOld(binary, v.Raw, constants.MinimumSingularityVersion)
	}
	return v, nil
}
