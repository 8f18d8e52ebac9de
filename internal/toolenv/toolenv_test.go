package toolenv

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascrapper/freezepack/internal/model"
)

// TestVerify checks PATH resolution, explicit paths, and the combined
// missing-tools diagnostic. Docker-dependent behavior (client, runner)
// is not covered here because it requires a live daemon.
func TestVerify(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("test fixtures use unix permissions")
	}

	t.Run("tool on PATH", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "freezetool"),
			[]byte("#!/bin/sh\n"), 0o755))
		t.Setenv("PATH", dir)

		assert.NoError(t, Verify("freezetool"))
	})

	t.Run("explicit path", func(t *testing.T) {
		dir := t.TempDir()
		tool := filepath.Join(dir, "freezetool")
		require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\n"), 0o755))

		assert.NoError(t, Verify(tool))
	})

	t.Run("missing tools are all reported", func(t *testing.T) {
		t.Setenv("PATH", t.TempDir())

		err := Verify("freezetool", "versiongen")
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitToolEnvError, cliErr.Code)
		assert.Contains(t, cliErr.Message, "freezetool")
		assert.Contains(t, cliErr.Message, "versiongen")
	})

	t.Run("empty names are skipped", func(t *testing.T) {
		assert.NoError(t, Verify(""))
	})
}

// TestRewritePaths verifies host-to-container path mapping for the
// argument list handed to the containerized tool.
func TestRewritePaths(t *testing.T) {
	args := []string{
		"/home/u/app/app.py",
		"--distpath", "/home/u/app/dist",
		"--onefile",
		"--name", "app",
	}

	got := rewritePaths(args, "/home/u/app", "/src")

	assert.Equal(t, []string{
		"/src/app.py",
		"--distpath", "/src/dist",
		"--onefile",
		"--name", "app",
	}, got)
}
