package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashev/singularity-pipeline/internal/pipeline"
	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func parse(t *testing.T, source string) map[string]any {
	t.Helper()
	doc, err := pipeline.Parse([]byte(source), "test.yaml")
	require.NoError(t, err)
	return doc.Raw
}

func fields(violations []types.Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Field)
	}
	return out
}

func TestValidDescription(t *testing.T) {
	assert := assert.New(t)

	outcome := Validate(parse(t, `
version: 1
name: Hello World
metadata:
  def: recipe.def
  registry:
    host: docker.io
binds:
  - /data:/mnt
  - /scratch:/scratch:ro
credentials:
  username: me
  password: secret
test_files:
  - out.txt
steps:
  - name: base
    type: bootstrap
    command_template: singularity build {image} {def}
  - name: hello
    type: run
    options:
      size: 1024
      verbose: true
  - name: fixtures
    type: shell
    phase: prepare
    command_template: touch out.txt
`))

	require.True(t, outcome.Valid(), "%v", outcome.Violations)
	assert.NoError(outcome.Err())

	d := outcome.Description
	require.NotNil(t, d)
	assert.Equal("1", d.Version)
	assert.Equal("Hello World", d.Name)
	assert.Equal("recipe.def", d.Metadata["def"].String())
	assert.Equal(types.KindMapping, d.Metadata["registry"].Kind())
	assert.Equal([]types.Bind{
		{Source: "/data", Destination: "/mnt"},
		{Source: "/scratch", Destination: "/scratch", Options: "ro"},
	}, d.Binds)
	assert.Equal("me", d.Credentials.Username)
	assert.Equal([]string{"out.txt"}, d.TestFiles)

	require.Len(t, d.Steps, 3)
	assert.Equal(2, d.Steps[2].Index)
	assert.Equal(types.StepTypeRun, d.Steps[1].Type)
	assert.Equal("1024", d.Steps[1].Options["size"].String())
	assert.Equal(types.PhasePrepare, d.Steps[2].Phase)
}

func TestMinimalDescription(t *testing.T) {
	outcome := Validate(parse(t, `
steps:
  - type: bootstrap
    name: base
    command_template: "singularity build {image} {def}"
`))
	require.True(t, outcome.Valid(), "%v", outcome.Violations)
	assert.Equal(t, "", outcome.Description.Version)
}

func TestEmptySteps(t *testing.T) {
	outcome := Validate(parse(t, "steps: []\n"))
	require.False(t, outcome.Valid())
	assert.Nil(t, outcome.Description)
	assert.Equal(t, []types.Violation{{Field: "steps", Reason: "must be non-empty"}}, outcome.Violations)

	err := outcome.Err()
	assert.True(t, perr.IsValidationFailed(err))
}

func TestMissingSteps(t *testing.T) {
	outcome := Validate(parse(t, "name: nothing\n"))
	assert.Equal(t, []types.Violation{{Field: "steps", Reason: "is required"}}, outcome.Violations)
}

func TestViolations(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   []string
	}{
		{
			name:   "unknown top level key",
			source: "stepz: []\nsteps: [{name: a, type: run}]\n",
			want:   []string{"stepz"},
		},
		{
			name:   "missing step name and type",
			source: "steps: [{command_template: echo}]\n",
			want:   []string{"steps[0].name", "steps[0].type"},
		},
		{
			name:   "unsupported step type",
			source: "steps: [{name: a, type: compile}]\n",
			want:   []string{"steps[0].type"},
		},
		{
			name:   "unknown phase",
			source: "steps: [{name: a, type: run, phase: deploy}]\n",
			want:   []string{"steps[0].phase"},
		},
		{
			name:   "exec without template",
			source: "steps: [{name: a, type: exec}]\n",
			want:   []string{"steps[0].command_template"},
		},
		{
			name:   "duplicate names",
			source: "steps: [{name: a, type: run}, {name: a, type: pull}]\n",
			want:   []string{"steps[1].name"},
		},
		{
			name:   "malformed template",
			source: "steps: [{name: a, type: shell, command_template: 'echo {oops'}]\n",
			want:   []string{"steps[0].command_template"},
		},
		{
			name:   "unsupported version",
			source: "version: 2\nsteps: [{name: a, type: run}]\n",
			want:   []string{"version"},
		},
		{
			name:   "wrong types",
			source: "name: [a]\nmetadata: x\nsteps: {name: a}\n",
			want:   []string{"name", "metadata", "steps"},
		},
		{
			name:   "step is not a mapping",
			source: "steps: [hello]\n",
			want:   []string{"steps[0]"},
		},
		{
			name:   "bad bind",
			source: "binds: [/data]\nsteps: [{name: a, type: run}]\n",
			want:   []string{"binds[0]"},
		},
		{
			name:   "bad bind option",
			source: "binds: ['/a:/b:rx']\nsteps: [{name: a, type: run}]\n",
			want:   []string{"binds[0].options"},
		},
		{
			name:   "password missing",
			source: "credentials: {username: me}\nsteps: [{name: a, type: run}]\n",
			want:   []string{"credentials.password"},
		},
		{
			name:   "non-scalar option",
			source: "steps: [{name: a, type: run, options: {nested: {x: 1}}}]\n",
			want:   []string{"steps[0].options.nested"},
		},
		{
			name:   "unknown step field",
			source: "steps: [{name: a, type: run, comand_template: echo}]\n",
			want:   []string{"steps[0].comand_template"},
		},
		{
			name:   "built-in macro in metadata",
			source: "metadata: {exec: x, image: ok.sif}\nsteps: [{name: a, type: run}]\n",
			want:   []string{"metadata.exec"},
		},
		{
			name:   "built-in macro in step options",
			source: "steps: [{name: a, type: run, options: {image: step.sif, run: x}}]\n",
			want:   []string{"steps[0].options.image", "steps[0].options.run"},
		},
		{
			name:   "empty test file",
			source: "test_files: ['']\nsteps: [{name: a, type: run}]\n",
			want:   []string{"test_files[0]"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(parse(t, tt.source))
			require.False(t, outcome.Valid())
			if diff := cmp.Diff(tt.want, fields(outcome.Violations)); diff != "" {
				t.Errorf("violation fields mismatch (-want +got):\n%s\n%v", diff, outcome.Violations)
			}
		})
	}
}

func TestViolationReasons(t *testing.T) {
	assert := assert.New(t)

	outcome := Validate(parse(t, `
version: "3"
steps:
  - name: a
    type: compile
  - name: a
    type: run
`))
	reasons := map[string]string{}
	for _, v := range outcome.Violations {
		reasons[v.Field] = v.Reason
	}
	assert.Contains(reasons["version"], `unsupported version "3"`)
	assert.Contains(reasons["steps[0].type"], `unsupported step type "compile"`)
	assert.Contains(reasons["steps[1].name"], "duplicate step name")
}

func TestValidateAllViolationsAtOnce(t *testing.T) {
	outcome := Validate(parse(t, "bogus: 1\nsteps: [{type: nope}, {name: b, type: exec}]\n"))
	assert.Len(t, outcome.Violations, 4)

	e, ok := perr.As(outcome.Err())
	require.True(t, ok)
	assert.Len(t, e.ValidationErrors, 4)
}
