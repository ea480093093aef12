package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashev/singularity-pipeline/internal/perr"
)

const simple = `name: demo
metadata:
  def: recipe.def
steps:
  - name: base
    type: bootstrap
    command_template: singularity build {image} {def}
`

func TestLoad(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(simple), 0600))

	doc, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(path, doc.Path)
	assert.Equal("demo", doc.Raw["name"])

	steps, ok := doc.Raw["steps"].([]any)
	require.True(t, ok)
	assert.Len(steps, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, perr.IsNotFound(err))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"syntax", "steps: [\n  - name: a\n"},
		{"sequence at top level", "- a\n- b\n"},
		{"scalar at top level", "hello\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.source), "p.yaml")
			require.Error(t, err)
			assert.True(t, perr.IsLoadFailed(err), err.Error())
		})
	}
}

func TestParseEmpty(t *testing.T) {
	doc, err := Parse(nil, "")
	require.NoError(t, err)
	assert.Empty(t, doc.Raw)
}

func TestAnnotate(t *testing.T) {
	assert := assert.New(t)

	doc, err := Parse([]byte(simple), "p.yaml")
	require.NoError(t, err)

	assert.Contains(doc.Annotate("steps[0].type", false), "bootstrap")
	assert.Empty(doc.Annotate("steps[3].type", false))
	assert.Empty(doc.Annotate("", false))
	assert.Empty(FromMap(nil).Annotate("steps", false))
}
