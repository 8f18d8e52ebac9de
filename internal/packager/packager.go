// Package packager drives the external packaging/freezing tool that
// bundles the application, its resources, and the generated version
// info into a single standalone executable.
//
// The tool is invoked via os/exec and is never reimplemented: this
// package only assembles the argument list and reports the tool's
// exit status. The argument layout follows the PyInstaller-style
// convention used by the default toolchain, with explicit output,
// work, and spec paths so every intermediate lands at a known fixed
// location that cleanup can remove.
package packager

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/megascrapper/freezepack/internal/config"
	"github.com/megascrapper/freezepack/internal/model"
)

// dataSep is the source/destination separator for data-bundling
// directives. The default toolchain accepts ":" on every platform
// except Windows, where the drive-letter colon forces ";".
func dataSep() string {
	if os.PathSeparator == '\\' {
		return ";"
	}
	return ":"
}

// Args assembles the full freeze-tool argument list for the project.
//
// The produced invocation bundles:
//   - the resources directory under "resources/" inside the bundle
//   - the version template and the runtime icon at the bundle root
//
// and instructs the tool to emit a single-file executable with no
// console window, the generated version info embedded, the configured
// icon applied, a forced clean rebuild, and no interactive overwrite
// prompts.
func Args(p *config.Project, set *model.ArtifactSet) []string {
	sep := dataSep()

	return []string{
		p.EntryPath(),
		"--name", p.Name,
		"--add-data", p.ResourcesPath() + sep + "resources",
		"--add-data", p.VersionTemplatePath() + sep + ".",
		"--add-data", p.BundledIconPath() + sep + ".",
		"--onefile",
		"--noconsole",
		"--version-file", set.VersionFile,
		"--icon", p.IconPath(),
		"--distpath", set.DistDir,
		"--workpath", set.WorkDir,
		"--specpath", p.Root,
		"--clean",
		"--noconfirm",
	}
}

// Runner abstracts where the packaging tool runs: directly on the
// host PATH, or inside a container (see internal/toolenv). Both
// receive the same argument list from Args.
type Runner interface {
	// Run invokes the packaging tool with the given arguments and
	// blocks until it exits. A non-nil error means the tool failed
	// or could not be started.
	Run(ctx context.Context, args []string) error
}

// HostRunner runs the packaging tool as a child process, resolved by
// name on the host PATH.
type HostRunner struct {
	// Tool is the packaging tool binary name (e.g. "pyinstaller").
	Tool string

	// Dir is the working directory for the tool, normally the
	// project root.
	Dir string
}

// Run invokes the tool and streams its output through to the current
// process. Packaging tools print long progress logs; buffering them
// would hide progress from the user, so stdout/stderr are inherited
// and the tail of stderr is additionally retained for the error
// message.
func (r *HostRunner) Run(ctx context.Context, args []string) error {
	// #nosec G204 — tool name and arguments come from the project
	// config, not from untrusted input.
	cmd := exec.CommandContext(ctx, r.Tool, args...)
	cmd.Dir = r.Dir
	cmd.Stdout = os.Stdout

	// Tee stderr: visible live, and available for the diagnostic.
	var stderr strings.Builder
	cmd.Stderr = &teeWriter{a: os.Stderr, b: &stderr}

	if err := cmd.Run(); err != nil {
		message := fmt.Sprintf("packaging tool %q failed", r.Tool)
		if tail := lastLine(stderr.String()); tail != "" {
			message = fmt.Sprintf("%s: %s", message, tail)
		}
		return model.WrapCLIError(model.ExitPackagingError, message, err)
	}

	return nil
}

// Freeze runs the packaging step for the project with the given
// runner. It exists so the CLI orchestration reads as the pipeline the
// tool implements: generate, freeze, relocate, clean.
func Freeze(ctx context.Context, runner Runner, p *config.Project, set *model.ArtifactSet) error {
	return runner.Run(ctx, Args(p, set))
}

// teeWriter duplicates writes to two destinations. Write errors on
// the secondary (the capture buffer) cannot occur with
// strings.Builder, so only the primary's error is reported.
type teeWriter struct {
	a io.Writer
	b *strings.Builder
}

func (w *teeWriter) Write(p []byte) (int, error) {
	w.b.Write(p)
	return w.a.Write(p)
}

// lastLine returns the final non-empty line of s, which for packaging
// tools is usually the actual error.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
