package cmdconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kashev/singularity-pipeline/internal/config"
	"github.com/kashev/singularity-pipeline/internal/constants"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func testCommand(run func(cmd *cobra.Command)) *cobra.Command {
	cmd := &cobra.Command{
		Use: "build",
		Run: func(cmd *cobra.Command, _ []string) { run(cmd) },
	}
	OnCmd(cmd).
		AddStringFlag(constants.ArgPipeline, constants.DefaultPipelineFile, "pipeline file", WithShortHand("p")).
		AddBoolFlag(constants.ArgForce, false, "force", WithShortHand("f")).
		AddDurationFlag(constants.ArgStepTimeout, 0, "timeout").
		AddStringFlag(constants.ArgConfigPath, "", "config file", WithHidden())
	return cmd
}

func TestFlagsReachConfig(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())

	var got *config.Configuration
	cmd := testCommand(func(cmd *cobra.Command) {
		got = config.Get(cmd.Context())
	})
	cmd.SetArgs([]string{"-p", "other.yaml", "-f", "--step-timeout", "3s"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	require.NotNil(t, got)
	assert.Equal(t, "other.yaml", got.PipelinePath)
	assert.True(t, got.Force)
	assert.Equal(t, 3*time.Second, got.StepTimeout)
}

func TestConfigFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline: from-file.yaml\nforce: true\n"), 0644))

	var got *config.Configuration
	cmd := testCommand(func(cmd *cobra.Command) {
		got = config.Get(cmd.Context())
	})
	cmd.SetArgs([]string{"--config-path", path})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "from-file.yaml", got.PipelinePath)
	assert.True(t, got.Force)
	assert.Equal(t, path, got.ConfigPath)
}

func TestLocalConfigFile(t *testing.T) {
	viper.Reset()
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(constants.LocalConfig+".yaml", []byte("singularity-path: /opt/bin/apptainer\n"), 0644))

	var got *config.Configuration
	cmd := testCommand(func(cmd *cobra.Command) {
		got = config.Get(cmd.Context())
	})
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Equal(t, "/opt/bin/apptainer", got.SingularityPath)
}

func TestEnvironment(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())
	t.Setenv("SINGULARITY_PIPELINE_PIPELINE", "env.yaml")
	t.Setenv("DOCKER_HOST", "tcp://docker.example:2375")

	v := viper.New()
	require.NoError(t, BootstrapViper(v))
	assert.Equal(t, "env.yaml", v.GetString(constants.ArgPipeline))
	assert.Equal(t, "tcp://docker.example:2375", v.GetString(constants.ArgDockerHost))
}

func TestNegativeTimeout(t *testing.T) {
	viper.Reset()
	chdir(t, t.TempDir())

	cmd := testCommand(func(*cobra.Command) {})
	cmd.SetArgs([]string{"--step-timeout=-1s"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestMissingConfigFile(t *testing.T) {
	v := viper.New()
	v.Set(constants.ArgConfigPath, filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, BootstrapViper(v))
}

func TestCommandFullKey(t *testing.T) {
	root := &cobra.Command{Use: "singularity-pipeline"}
	child := &cobra.Command{Use: "build"}
	root.AddCommand(child)
	grandchild := &cobra.Command{Use: "prune"}
	child.AddCommand(grandchild)

	assert.Equal(t, "build", CommandFullKey(child))
	assert.Equal(t, "build.prune", CommandFullKey(grandchild))
	assert.Equal(t, "", CommandFullKey(root))
}
