package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/megascrapper/freezepack/internal/config"
	"github.com/megascrapper/freezepack/internal/model"
)

// buildTestProject is a fixture project driving a stand-in packaging
// tool. The stand-in mimics the real tool's observable behavior:
// it creates the output directory with an executable, the intermediate
// build directory, and the spec file.
type buildTestProject struct {
	dir  string
	name string
}

// newBuildTestProject lays out a full project in a temp dir: inputs,
// a freezepack.json pointing at the stand-in tool, and the stand-in
// itself. toolScript is the shell body run as the packaging tool;
// an empty string installs the default success behavior.
func newBuildTestProject(t *testing.T, toolScript string) *buildTestProject {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stand-in tools use shell scripts")
	}

	dir := t.TempDir()
	name := "app"

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "resources"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "resources", "frame.png"), []byte("png"), 0o644))
	for _, f := range []string{"app.py", "icon.ico", "icon.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.yml"),
		[]byte("Version: 1.2.3\nProductName: App\n"), 0o644))

	if toolScript == "" {
		// Default stand-in: succeed and leave the same byproducts the
		// real tool does.
		toolScript = "mkdir -p dist build\nprintf exe > dist/" + name + "\nprintf spec > " + name + ".spec\n"
	}
	tool := filepath.Join(dir, "fakefreeze.sh")
	require.NoError(t, os.WriteFile(tool, []byte("#!/bin/sh\ncd \"$(dirname \"$0\")\"\n"+toolScript), 0o755))

	cfgContent := fmt.Sprintf(`{"name": %q, "tool": %q}`, name, tool)
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte(cfgContent), 0o644))

	return &buildTestProject{dir: dir, name: name}
}

// path resolves a project-relative path.
func (p *buildTestProject) path(rel string) string {
	return filepath.Join(p.dir, rel)
}

// assertNoIntermediates checks that none of the generated intermediate
// paths exist.
func (p *buildTestProject) assertNoIntermediates(t *testing.T) {
	t.Helper()
	for _, rel := range []string{"dist", "build", p.name + ".spec", "file_version_info.txt"} {
		_, err := os.Stat(p.path(rel))
		assert.True(t, os.IsNotExist(err), "%s should not exist", rel)
	}
}

// TestBuild_Success covers the full pipeline: after a successful run
// exactly one new file (the executable) is at the project root and no
// generated artifact remains.
func TestBuild_Success(t *testing.T) {
	p := newBuildTestProject(t, "")

	err := runBuild(context.Background(), &buildFlags{project: p.dir})
	require.NoError(t, err)

	// The deliverable is at the project root with the expected name.
	data, err := os.ReadFile(p.path(p.name))
	require.NoError(t, err)
	assert.Equal(t, "exe", string(data))

	// No leftovers: dist/, build/, spec file, version-info file.
	p.assertNoIntermediates(t)
}

// TestBuild_Repeatable runs the pipeline twice in succession and
// expects the same final state both times.
func TestBuild_Repeatable(t *testing.T) {
	p := newBuildTestProject(t, "")
	flags := &buildFlags{project: p.dir}

	require.NoError(t, runBuild(context.Background(), flags))
	require.NoError(t, runBuild(context.Background(), flags))

	_, err := os.Stat(p.path(p.name))
	require.NoError(t, err)
	p.assertNoIntermediates(t)
}

// TestBuild_GeneratorFailureIsFailFast covers the abort edge: when the
// version-file generator exits non-zero, no packaging happens and no
// new files appear anywhere.
func TestBuild_GeneratorFailureIsFailFast(t *testing.T) {
	p := newBuildTestProject(t, "")

	// A generator that always fails; the fake packaging tool would
	// drop a marker, so its absence proves packaging never ran.
	gen := p.path("failgen.sh")
	require.NoError(t, os.WriteFile(gen, []byte("#!/bin/sh\nexit 3\n"), 0o755))
	cfgContent := fmt.Sprintf(`{"name": %q, "tool": %q, "generatorCommand": [%q]}`,
		p.name, p.path("fakefreeze.sh"), gen)
	require.NoError(t, os.WriteFile(p.path(config.FileName), []byte(cfgContent), 0o644))

	err := runBuild(context.Background(), &buildFlags{project: p.dir})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitVersionGenError, cliErr.Code)

	// Pre-build state: nothing was generated or packaged.
	p.assertNoIntermediates(t)
	_, statErr := os.Stat(p.path(p.name))
	assert.True(t, os.IsNotExist(statErr))
}

// TestBuild_MissingInputs verifies the up-front validation: a missing
// version template aborts before the generator is even considered.
func TestBuild_MissingInputs(t *testing.T) {
	p := newBuildTestProject(t, "")
	require.NoError(t, os.Remove(p.path("version.yml")))

	err := runBuild(context.Background(), &buildFlags{project: p.dir})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
	p.assertNoIntermediates(t)
}

// TestBuild_PackagingFailure_StrictAbort covers the default failure
// policy: the packaging error propagates and the intermediates the
// tool left behind stay on disk for inspection.
func TestBuild_PackagingFailure_StrictAbort(t *testing.T) {
	p := newBuildTestProject(t, "mkdir -p build\nexit 1\n")

	err := runBuild(context.Background(), &buildFlags{project: p.dir})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitPackagingError, cliErr.Code)

	// strict-abort leaves the partial output and the version file.
	_, statErr := os.Stat(p.path("build"))
	assert.NoError(t, statErr)
	_, statErr = os.Stat(p.path("file_version_info.txt"))
	assert.NoError(t, statErr)

	// No deliverable was produced.
	_, statErr = os.Stat(p.path(p.name))
	assert.True(t, os.IsNotExist(statErr))
}

// TestBuild_PackagingFailure_BestEffortCleanup verifies the other
// policy: the error still propagates, but every intermediate is gone.
func TestBuild_PackagingFailure_BestEffortCleanup(t *testing.T) {
	p := newBuildTestProject(t, "mkdir -p dist build\nexit 1\n")

	err := runBuild(context.Background(), &buildFlags{
		project:   p.dir,
		onFailure: "best-effort-cleanup",
	})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitPackagingError, cliErr.Code)

	p.assertNoIntermediates(t)
}

// TestBuild_ToolProducesNoExecutable covers the relocation guard: a
// packaging run that exits zero but produces nothing is reported as a
// relocation failure naming the expected path.
func TestBuild_ToolProducesNoExecutable(t *testing.T) {
	p := newBuildTestProject(t, "mkdir -p dist build\nprintf spec > app.spec\n")

	err := runBuild(context.Background(), &buildFlags{project: p.dir})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitRelocateError, cliErr.Code)
	assert.Contains(t, cliErr.Message, filepath.Join("dist", p.name))
}

// TestBuild_InvalidPolicyFlag rejects an unknown --on-failure value
// before any step runs.
func TestBuild_InvalidPolicyFlag(t *testing.T) {
	p := newBuildTestProject(t, "")

	err := runBuild(context.Background(), &buildFlags{project: p.dir, onFailure: "whatever"})
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitConfigError, cliErr.Code)
	p.assertNoIntermediates(t)
}

// TestClean_Idempotent runs clean over leftovers and then again over
// nothing; both succeed and the deliverable is untouched.
func TestClean_Idempotent(t *testing.T) {
	p := newBuildTestProject(t, "")

	// Simulate leftovers from an aborted run plus an existing deliverable.
	require.NoError(t, os.MkdirAll(p.path("dist"), 0o755))
	require.NoError(t, os.MkdirAll(p.path("build"), 0o755))
	require.NoError(t, os.WriteFile(p.path("app.spec"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(p.path("file_version_info.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(p.path(p.name), []byte("exe"), 0o755))

	require.NoError(t, runClean(p.dir))
	p.assertNoIntermediates(t)

	// The final executable survives clean.
	_, err := os.Stat(p.path(p.name))
	require.NoError(t, err)

	require.NoError(t, runClean(p.dir))
	p.assertNoIntermediates(t)
}
