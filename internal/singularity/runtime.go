package singularity

import (
	"fmt"
	"strings"

	"github.com/kashev/singularity-pipeline/internal/constants"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/types"
)

// Runtime holds what the built-in macros need to know about the container
// runtime for one invocation.
type Runtime struct {
	// Binary is the singularity executable, "singularity" unless configured.
	Binary string
	// Image is the container image file the pipeline builds and runs.
	Image string
	// NoBind drops every bind flag from {binds}, {exec} and {run}.
	NoBind bool
}

func (r Runtime) binary() string {
	if r.Binary == "" {
		return constants.DefaultSingularityPath
	}
	return r.Binary
}

// BindFlags renders the -B flags, each followed by a space.
func (r Runtime) BindFlags(binds []types.Bind) string {
	if r.NoBind {
		return ""
	}
	var b strings.Builder
	for _, bind := range binds {
		b.WriteString("-B ")
		b.WriteString(bind.String())
		b.WriteString(" ")
	}
	return b.String()
}

// ReservedMacros are always computed by the tool. Pipelines may not define
// them in metadata or step options, except metadata.image which names the
// image file.
var ReservedMacros = []string{"image", "binds", "exec", "run"}

// IsReserved reports whether name is one of ReservedMacros.
func IsReserved(name string) bool {
	for _, r := range ReservedMacros {
		if r == name {
			return true
		}
	}
	return false
}

// Builtins returns the reserved macros. They take precedence over metadata
// and step options.
func (r Runtime) Builtins(desc *types.PipelineDescription) map[string]types.Value {
	binds := r.BindFlags(desc.Binds)
	return map[string]types.Value{
		"image": types.StringValue(r.Image),
		"binds": types.StringValue(binds),
		"exec":  types.StringValue(fmt.Sprintf("%s exec %s%s", r.binary(), binds, r.Image)),
		"run":   types.StringValue(fmt.Sprintf("%s run %s%s", r.binary(), binds, r.Image)),
	}
}

// Context builds the execution context of one step: metadata, overridden by
// step options, overridden by the reserved macros. The other keys the
// default templates use ({source}, {options}, {size}, {docker_name}) get a
// default only when neither metadata nor the step sets them. A scalar
// {size} is rendered as a --size flag.
func (r Runtime) Context(desc *types.PipelineDescription, step types.StepSpec) types.ExecutionContext {
	ctx := types.ExecutionContext(desc.Metadata).Merge(step.Options)

	for _, k := range []string{"source", "options"} {
		if _, ok := ctx[k]; !ok {
			ctx[k] = types.StringValue("")
		}
	}
	if _, ok := ctx["docker_name"]; !ok {
		ctx["docker_name"] = types.StringValue(DockerName(desc.Name))
	}
	if v := ctx["size"]; v.IsScalar() {
		ctx["size"] = types.StringValue(sizeFlag(v))
	}

	return ctx.Merge(r.Builtins(desc))
}

// sizeFlag renders an image size as "--size N"; a value that is already a
// flag is kept as is.
func sizeFlag(v types.Value) string {
	s := strings.TrimSpace(v.String())
	if s == "" || strings.HasPrefix(s, "-") {
		return s
	}
	return "--size " + s
}

// Template returns the step's command template, falling back to the default
// for its type.
func (r Runtime) Template(step types.StepSpec) (string, error) {
	if step.CommandTemplate != "" {
		return step.CommandTemplate, nil
	}
	t, ok := DefaultTemplate(step.Type, r.binary())
	if !ok {
		return "", perr.BadRequestWithMessage(fmt.Sprintf("step %s: %s steps need a command_template", step.Name, step.Type))
	}
	return t, nil
}

// DefaultTemplate is the command used for a step type when the step has no
// command_template. exec and shell steps have none.
func DefaultTemplate(t types.StepType, binary string) (string, bool) {
	switch t {
	case types.StepTypePull:
		return binary + " pull {size} {options} {image} {source}", true
	case types.StepTypeBootstrap, types.StepTypeBuild:
		return binary + " build {options} {image} {source}", true
	case types.StepTypeDocker2Singularity:
		return strings.Join([]string{
			"docker build -t {docker_name} -f {source} .",
			"docker run -v /var/run/docker.sock:/var/run/docker.sock -v $(pwd):/output --privileged -t --rm " +
				constants.Docker2SingularityImage + " {docker_name}",
			"mv {docker_name}*.sif {image}",
		}, " && "), true
	case types.StepTypeRun:
		return "{run}", true
	}
	return "", false
}

// ImageName picks the image file: the explicit override, metadata.image, or a
// name derived from the pipeline name.
func ImageName(override string, desc *types.PipelineDescription) string {
	if override != "" {
		return SafeFilename(override, false)
	}
	if v, ok := desc.Metadata["image"]; ok && v.IsScalar() && v.String() != "" {
		return SafeFilename(v.String(), false)
	}
	if desc.Name != "" {
		return SafeFilename(desc.Name, false) + constants.DefaultImageExtension
	}
	return constants.DefaultImageName
}

// DockerName is the lower-case docker tag used by docker2singularity steps.
func DockerName(name string) string {
	if name == "" {
		return strings.TrimSuffix(constants.DefaultImageName, constants.DefaultImageExtension)
	}
	return SafeFilename(name, true)
}

// SafeFilename replaces every character other than ASCII letters, digits and
// "_-./" with an underscore.
func SafeFilename(name string, lower bool) string {
	if lower {
		name = strings.ToLower(name)
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case strings.ContainsRune("_-./", r):
			return r
		}
		return '_'
	}, name)
}

// CredentialsEnv exports registry credentials the way singularity reads them.
func CredentialsEnv(c *types.Credentials) []string {
	if c == nil {
		return nil
	}
	var env []string
	if c.Username != "" {
		env = append(env, constants.EnvDockerUsername+"="+c.Username)
	}
	if c.Password != "" {
		env = append(env, constants.EnvDockerPassword+"="+c.Password)
	}
	return env
}
