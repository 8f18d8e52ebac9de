// runner.go runs the packaging tool as a one-shot container: create,
// start, stream logs, wait for exit, remove. The project root is
// bind-mounted at the configured workdir so the tool reads inputs and
// writes dist/, build/, and the spec file directly into the project —
// relocation and cleanup then work exactly as in host mode.
package toolenv

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/megascrapper/freezepack/internal/model"
)

// LabelManagedBy marks containers created by this tool so stray
// leftovers are attributable.
const LabelManagedBy = "freezepack.managed-by"

// ManagedByValue is the value of the LabelManagedBy label.
const ManagedByValue = "freezepack"

// ContainerRunner implements the packager.Runner interface by running
// the packaging tool inside a Docker container.
type ContainerRunner struct {
	// Client is the Docker client; the runner does not own it and
	// never closes it.
	Client *Client

	// Image is the container image providing the packaging tool.
	Image string

	// Tool is the packaging tool binary name inside the image.
	Tool string

	// ProjectRoot is the host directory bind-mounted into the
	// container.
	ProjectRoot string

	// Workdir is the mount point of ProjectRoot inside the container.
	Workdir string
}

// Run executes the tool with the given arguments and blocks until the
// container exits. Host paths under ProjectRoot in the argument list
// are rewritten to their in-container equivalents.
func (r *ContainerRunner) Run(ctx context.Context, args []string) error {
	cli := r.Client.inner

	if err := r.ensureImage(ctx); err != nil {
		return err
	}

	cmd := append([]string{r.Tool}, rewritePaths(args, r.ProjectRoot, r.Workdir)...)

	created, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:      r.Image,
			Cmd:        cmd,
			WorkingDir: r.Workdir,
			Labels:     map[string]string{LabelManagedBy: ManagedByValue},
		},
		&container.HostConfig{
			Mounts: []mount.Mount{{
				Type:   mount.TypeBind,
				Source: r.ProjectRoot,
				Target: r.Workdir,
			}},
		},
		nil, nil, "")
	if err != nil {
		return model.WrapCLIError(model.ExitToolEnvError,
			fmt.Sprintf("failed to create tool container from image %q", r.Image), err)
	}

	// The container is always removed, even when the tool fails: its
	// useful output lands in the bind mount, and its logs have been
	// streamed by then.
	defer func() {
		_ = cli.ContainerRemove(context.WithoutCancel(ctx), created.ID,
			container.RemoveOptions{Force: true})
	}()

	if err := cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return model.WrapCLIError(model.ExitToolEnvError, "failed to start tool container", err)
	}

	// Stream the tool's output while it runs. Docker multiplexes
	// stdout/stderr into one stream; stdcopy demuxes it.
	logs, err := cli.ContainerLogs(ctx, created.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err == nil {
		go func() {
			defer logs.Close()
			_, _ = stdcopy.StdCopy(os.Stdout, os.Stderr, logs)
		}()
	}

	statusCh, errCh := cli.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	select {
	case waitErr := <-errCh:
		return model.WrapCLIError(model.ExitToolEnvError, "failed waiting for tool container", waitErr)
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return model.NewCLIError(model.ExitPackagingError,
				fmt.Sprintf("packaging tool %q failed in container (exit status %d)", r.Tool, status.StatusCode))
		}
	}

	return nil
}

// ensureImage pulls the configured image unless it is already present
// locally. Pull progress is discarded; the interesting output is the
// tool's own.
func (r *ContainerRunner) ensureImage(ctx context.Context) error {
	cli := r.Client.inner

	images, err := cli.ImageList(ctx, image.ListOptions{
		Filters: filters.NewArgs(filters.Arg("reference", r.Image)),
	})
	if err == nil && len(images) > 0 {
		return nil
	}

	reader, err := cli.ImagePull(ctx, r.Image, image.PullOptions{})
	if err != nil {
		return model.WrapCLIError(model.ExitToolEnvError,
			fmt.Sprintf("failed to pull image %q", r.Image), err)
	}
	defer reader.Close()

	// The pull stream must be drained for the pull to complete.
	_, _ = io.Copy(io.Discard, reader)
	return nil
}

// rewritePaths maps host paths under root to their in-container
// locations under workdir. Arguments that do not reference the
// project root (flags, names, relative paths) pass through unchanged.
func rewritePaths(args []string, root, workdir string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = strings.ReplaceAll(arg, root, workdir)
	}
	return out
}
