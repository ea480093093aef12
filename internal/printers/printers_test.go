package printers

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashev/singularity-pipeline/internal/sanitize"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func samplePlan() types.PrintablePlan {
	return types.PrintablePlan{Items: []types.PlannedStep{
		{Index: 0, Name: "base", Type: types.StepTypeBootstrap, Phase: types.PhaseBuild, Command: "singularity build out.sif recipe.def"},
		{Index: 1, Name: "login", Type: types.StepTypeShell, Phase: types.PhaseRun, Command: "login password=s3cret"},
	}}
}

func TestGetPrinter(t *testing.T) {
	assert := assert.New(t)
	assert.IsType(JsonPrinter{}, GetPrinter(types.OutputModeJson))
	assert.IsType(YamlPrinter{}, GetPrinter(types.OutputModeYaml))
	assert.IsType(TablePrinter{}, GetPrinter(types.OutputModePlain))
	assert.IsType(TablePrinter{}, GetPrinter(types.OutputModePretty))
}

func TestTablePrinter(t *testing.T) {
	assert := assert.New(t)
	var buf bytes.Buffer
	p := TablePrinter{Sanitizer: sanitize.Instance}
	require.NoError(t, p.PrintResource(context.Background(), samplePlan(), &buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(strings.HasPrefix(lines[0], "STEP"))
	assert.Contains(lines[1], "singularity build out.sif recipe.def")
	assert.Contains(lines[2], "password=<redacted>")

	// columns line up
	assert.Equal(strings.Index(lines[0], "NAME"), strings.Index(lines[1], "base"))
}

func TestJsonPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := JsonPrinter{Sanitizer: sanitize.Instance}
	require.NoError(t, p.PrintResource(context.Background(), samplePlan(), &buf))

	var got []types.PlannedStep
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "base", got[0].Name)
	assert.Equal(t, "login password=<redacted>", got[1].Command)
}

func TestYamlPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := YamlPrinter{Sanitizer: sanitize.Instance}
	require.NoError(t, p.PrintResource(context.Background(), types.PrintableViolations{Items: []types.Violation{
		{Field: "steps", Reason: "must be non-empty"},
	}}, &buf))

	var got []types.Violation
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []types.Violation{{Field: "steps", Reason: "must be non-empty"}}, got)
}

func TestHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	p := TablePrinter{}
	require.NoError(t, p.PrintResource(context.Background(), types.PrintableHistory{Items: []types.HistoryEntry{
		{RunID: "cn1", Pipeline: "hello", Command: "run", State: "completed"},
	}}, &buf))
	assert.Contains(t, buf.String(), "completed")
	assert.Contains(t, buf.String(), "FAILURES")
}
