package singularity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashev/singularity-pipeline/internal/perr"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		output  string
		product string
		version string
	}{
		{"singularity version 3.11.4\n", "singularity", "3.11.4"},
		{"2.4.2-dist\n", "singularity", "2.4.2-dist"},
		{"singularity-ce version 4.1.0-jammy\n", "singularity", "4.1.0-jammy"},
		{"apptainer version 1.2.5\n", "apptainer", "1.2.5"},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			v, err := ParseVersion(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.product, v.Product)
			assert.Equal(t, tt.version, v.Semver.Original())
		})
	}

	_, err := ParseVersion("")
	assert.Error(t, err)
	_, err = ParseVersion("singularity version unknown")
	assert.Error(t, err)
}

// fakeRuntime writes a script that prints output for --version.
func fakeRuntime(t *testing.T, output string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "singularity")
	script := "#!/bin/sh\necho '" + output + "'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestCheckVersion(t *testing.T) {
	v, err := CheckVersion(context.Background(), fakeRuntime(t, "singularity version 3.8.0"))
	require.NoError(t, err)
	assert.Equal(t, "singularity 3.8.0", v.String())

	_, err = CheckVersion(context.Background(), fakeRuntime(t, "2.3.1"))
	e, ok := perr.As(err)
	require.True(t, ok)
	assert.Equal(t, perr.ErrorCodeToolTooOld, e.Type)

	_, err = CheckVersion(context.Background(), fakeRuntime(t, "apptainer version 1.0.0"))
	assert.NoError(t, err)
}

func TestCheckVersionMissingBinary(t *testing.T) {
	_, err := CheckVersion(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.True(t, perr.IsToolMissing(err))
}
