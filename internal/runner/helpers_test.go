package runner

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kashev/singularity-pipeline/internal/schema"
	"github.com/kashev/singularity-pipeline/internal/types"
)

func validate(t *testing.T, raw map[string]any) *types.PipelineDescription {
	t.Helper()
	outcome := schema.Validate(raw)
	require.True(t, outcome.Valid(), "%v", outcome.Violations)
	return outcome.Description
}
