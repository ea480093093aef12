package types

import (
	"fmt"
	"strings"
)

// StepType is the kind of work a step performs.
type StepType string

const (
	StepTypeBootstrap          StepType = "bootstrap"
	StepTypeBuild              StepType = "build"
	StepTypePull               StepType = "pull"
	StepTypeRun                StepType = "run"
	StepTypeExec               StepType = "exec"
	StepTypeDocker2Singularity StepType = "docker2singularity"
	StepTypeShell              StepType = "shell"
)

var StepTypes = []StepType{
	StepTypeBootstrap,
	StepTypeBuild,
	StepTypePull,
	StepTypeRun,
	StepTypeExec,
	StepTypeDocker2Singularity,
	StepTypeShell,
}

func (t StepType) Valid() bool {
	for _, s := range StepTypes {
		if s == t {
			return true
		}
	}
	return false
}

// ProducesImage reports whether steps of this type create the container image.
func (t StepType) ProducesImage() bool {
	switch t {
	case StepTypeBootstrap, StepTypeBuild, StepTypePull, StepTypeDocker2Singularity:
		return true
	}
	return false
}

// Phase groups steps for the build, run and test commands.
type Phase string

const (
	PhaseBuild    Phase = "build"
	PhaseRun      Phase = "run"
	PhasePrepare  Phase = "prepare"
	PhaseValidate Phase = "validate"
)

var Phases = []Phase{PhaseBuild, PhaseRun, PhasePrepare, PhaseValidate}

func (p Phase) Valid() bool {
	for _, s := range Phases {
		if s == p {
			return true
		}
	}
	return false
}

// PipelineDescription is the validated, immutable form of a pipeline file.
type PipelineDescription struct {
	Version     string           `json:"version" yaml:"version" validate:"omitempty,eq=1"`
	Name        string           `json:"name,omitempty" yaml:"name,omitempty"`
	Metadata    map[string]Value `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	Binds       []Bind           `json:"binds,omitempty" yaml:"binds,omitempty" validate:"dive"`
	Credentials *Credentials     `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	TestFiles   []string         `json:"test_files,omitempty" yaml:"test_files,omitempty" validate:"dive,required"`
	Steps       []StepSpec       `json:"steps" yaml:"steps" validate:"required,min=1,dive"`
}

// StepsIn returns the steps belonging to any of the given phases, in declared order.
func (p *PipelineDescription) StepsIn(phases ...Phase) []StepSpec {
	var steps []StepSpec
	for _, s := range p.Steps {
		for _, ph := range phases {
			if s.EffectivePhase() == ph {
				steps = append(steps, s)
				break
			}
		}
	}
	return steps
}

// HasStepType reports whether any step is of type t.
func (p *PipelineDescription) HasStepType(t StepType) bool {
	for _, s := range p.Steps {
		if s.Type == t {
			return true
		}
	}
	return false
}

// StepSpec is one step of the pipeline.
type StepSpec struct {
	Index           int              `json:"-" yaml:"-"`
	Name            string           `json:"name" yaml:"name" validate:"required"`
	Type            StepType         `json:"type" yaml:"type" validate:"required,steptype"`
	CommandTemplate string           `json:"command_template,omitempty" yaml:"command_template,omitempty"`
	Options         map[string]Value `json:"options,omitempty" yaml:"options,omitempty"`
	Phase           Phase            `json:"phase,omitempty" yaml:"phase,omitempty" validate:"omitempty,phase"`
}

// EffectivePhase is the declared phase, or the phase implied by the step type.
func (s StepSpec) EffectivePhase() Phase {
	if s.Phase != "" {
		return s.Phase
	}
	if s.Type.ProducesImage() {
		return PhaseBuild
	}
	return PhaseRun
}

// Bind is a path binding passed to singularity with -B.
type Bind struct {
	Source      string `json:"source" yaml:"source" validate:"required"`
	Destination string `json:"destination" yaml:"destination" validate:"required"`
	Options     string `json:"options,omitempty" yaml:"options,omitempty" validate:"omitempty,oneof=rw ro"`
}

func (b Bind) String() string {
	if b.Options != "" {
		return fmt.Sprintf("%s:%s:%s", b.Source, b.Destination, b.Options)
	}
	return fmt.Sprintf("%s:%s", b.Source, b.Destination)
}

// ParseBind parses a source:destination[:options] bind specification.
func ParseBind(spec string) (Bind, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" || parts[1] == "" {
		return Bind{}, fmt.Errorf("bind %q must be source:destination[:options]", spec)
	}
	b := Bind{Source: parts[0], Destination: parts[1]}
	if len(parts) == 3 {
		b.Options = parts[2]
	}
	return b, nil
}

// Credentials for docker registries, passed to singularity through the environment.
type Credentials struct {
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" validate:"required_with=Username"`
}
