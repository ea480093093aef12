package docker

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"

	"github.com/kashev/singularity-pipeline/internal/perr"
	"github.com/kashev/singularity-pipeline/internal/plog"
)

// DockerClient wraps the Engine API client with the context its calls use.
type DockerClient struct {
	CLI *client.Client

	ctx context.Context
}

// Option defines a function signature for configuring the Docker client.
type Option func(*DockerClient) error

// WithContext configures the Docker client with a specific context.
func WithContext(ctx context.Context) Option {
	return func(c *DockerClient) error {
		c.ctx = ctx
		return nil
	}
}

// WithHost overrides DOCKER_HOST. An empty host keeps the environment's.
func WithHost(host string) Option {
	return func(c *DockerClient) error {
		if host == "" {
			return nil
		}
		return client.WithHost(host)(c.CLI)
	}
}

// WithPingTest configures the Docker client to perform a ping test to ensure the Docker service is running and available.
func WithPingTest() Option {
	return func(c *DockerClient) error {
		return c.Ping()
	}
}

// New creates a new Docker client with the provided options.
func New(options ...Option) (*DockerClient, error) {

	// Create Docker client
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, perr.DockerFailure(err.Error())
	}

	dc := &DockerClient{
		CLI: cli,
		ctx: context.Background(),
	}

	for _, option := range options {
		if err := option(dc); err != nil {
			_ = cli.Close()
			return nil, err
		}
	}

	return dc, nil
}

func (dc *DockerClient) Close() error {
	return dc.CLI.Close()
}

// Ping checks the daemon answers within five seconds.
func (dc *DockerClient) Ping() error {
	pingCtx, cancel := context.WithTimeout(dc.ctx, time.Second*5)
	defer cancel()
	if _, err := dc.CLI.Ping(pingCtx); err != nil {
		return perr.DockerFailure(fmt.Sprintf("docker daemon unavailable: %v", err))
	}
	return nil
}

// ServerVersion returns the daemon version, e.g. "24.0.7".
func (dc *DockerClient) ServerVersion() (string, error) {
	v, err := dc.CLI.ServerVersion(dc.ctx)
	if err != nil {
		return "", perr.DockerFailure(err.Error())
	}
	return v.Version, nil
}

func (dc *DockerClient) ImageExists(imageName string) (bool, error) {
	// Inspect the image to check if it exists
	_, _, err := dc.CLI.ImageInspectWithRaw(dc.ctx, imageName)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, perr.DockerFailure(fmt.Sprintf("error checking for image %s: %v", imageName, err.Error()))
	}
	return true, nil
}

// ImageTags lists the local tags matching reference, e.g. "hello*".
func (dc *DockerClient) ImageTags(reference string) ([]string, error) {
	images, err := dc.CLI.ImageList(dc.ctx, types.ImageListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", reference)),
	})
	if err != nil {
		return nil, perr.DockerFailure(fmt.Sprintf("failed to list images: %v", err))
	}
	var tags []string
	for _, img := range images {
		tags = append(tags, img.RepoTags...)
	}
	return tags, nil
}

func (dc *DockerClient) ImagePull(imageName string) error {
	plog.Logger(dc.ctx).Info("pulling docker image", "image", imageName)

	resp, err := dc.CLI.ImagePull(dc.ctx, imageName, types.ImagePullOptions{})
	if err != nil {
		return perr.DockerFailure(fmt.Sprintf("failed to pull %s: %v", imageName, err))
	}
	defer resp.Close()

	// the pull only completes once the progress stream is drained
	if _, err = io.Copy(io.Discard, resp); err != nil {
		return perr.DockerFailure(fmt.Sprintf("failed to pull %s: %v", imageName, err))
	}
	return nil
}

// EnsureImage pulls imageName unless it is already present locally.
func (dc *DockerClient) EnsureImage(imageName string) (pulled bool, err error) {
	exists, err := dc.ImageExists(imageName)
	if err != nil || exists {
		return false, err
	}
	if err := dc.ImagePull(imageName); err != nil {
		return false, err
	}
	return true, nil
}
