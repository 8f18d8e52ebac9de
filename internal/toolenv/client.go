// client.go wraps the Docker Engine SDK client with automatic socket
// detection. It is only exercised when a project configures the
// container toolchain; host-mode builds never touch Docker.
package toolenv

import (
	"context"
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/megascrapper/freezepack/internal/model"
)

// pingTimeout bounds the daemon liveness probe. Docker Desktop on
// macOS can take a few seconds to answer when idle.
const pingTimeout = 5 * time.Second

// Client wraps the Docker SDK client. The wrapper exists to keep
// socket detection and error translation in one place rather than
// leaking SDK setup into the runner.
type Client struct {
	inner *client.Client
}

// NewClient creates a Docker client. DOCKER_HOST, when set, is used
// as-is; otherwise the platform's default socket locations are probed.
func NewClient() (*Client, error) {
	host := os.Getenv("DOCKER_HOST")
	if host == "" {
		detected, err := detectDockerHost()
		if err != nil {
			return nil, model.WrapCLIError(model.ExitToolEnvError, "Docker socket not found", err)
		}
		host = detected
	}

	// API version negotiation keeps the client compatible with
	// whatever daemon version is installed.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitToolEnvError,
			fmt.Sprintf("failed to create Docker client for host %q", host), err)
	}

	return &Client{inner: c}, nil
}

// detectDockerHost probes the known per-platform socket locations and
// returns the connection string for the first that exists. Existence
// is checked rather than connectivity; Ping covers the latter.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{"/var/run/docker.sock"})

	case "darwin":
		paths := []string{"/var/run/docker.sock"}
		if home, err := os.UserHomeDir(); err == nil {
			// Newer Docker Desktop versions place the socket under the
			// user's home directory without the /var/run symlink.
			paths = append(paths, home+"/.docker/run/docker.sock")
		}
		return detectUnixSocket(paths)

	case "windows":
		// Named pipes cannot be os.Stat'ed; probe with a short dial.
		pipePath := `//./pipe/docker_engine`
		conn, err := net.DialTimeout("pipe", pipePath, time.Second)
		if err != nil {
			return "", fmt.Errorf("Docker named pipe not found at %s: %w", pipePath, err)
		}
		conn.Close()
		return "npipe://" + pipePath, nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf("Docker socket not found at any of: %v — is Docker running?", paths)
}

// Ping verifies the daemon is reachable. Used by the doctor command
// and before a container-mode build so the failure is attributed to
// the tool environment instead of the packaging step.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if _, err := c.inner.Ping(pingCtx); err != nil {
		return model.WrapCLIError(model.ExitToolEnvError,
			"Docker daemon is not responding — is Docker running?", err)
	}
	return nil
}

// Close releases the client's resources. Safe to call more than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}
