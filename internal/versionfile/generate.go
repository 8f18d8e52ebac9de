// generate.go produces the version-info resource file, either by
// invoking an external generator command or by compiling the resource
// in-process from the parsed template.
package versionfile

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/josephspurrier/goversioninfo"

	"github.com/megascrapper/freezepack/internal/model"
)

// Generate produces the version-info resource at outPath from the
// template at templatePath.
//
// When command is non-empty it is run as
//
//	command... <templatePath> --outfile <outPath>
//
// and any non-zero exit aborts with ExitVersionGenError. This is the
// pipeline's single deliberate fail-fast edge: a missing version file
// would otherwise propagate into the packaging step with a far less
// diagnosable error, so nothing runs after a generation failure.
//
// When command is empty the resource is compiled in-process.
func Generate(ctx context.Context, command []string, templatePath, outPath string) error {
	if len(command) > 0 {
		return runGenerator(ctx, command, templatePath, outPath)
	}
	return generateNative(templatePath, outPath)
}

// runGenerator executes the configured external generator command.
//
// Stdout and stderr are captured separately so stderr can be folded
// into the error message on failure while successful runs stay quiet.
func runGenerator(ctx context.Context, command []string, templatePath, outPath string) error {
	args := append(append([]string{}, command[1:]...), templatePath, "--outfile", outPath)

	// #nosec G204 — the command comes from the project config, not
	// from untrusted input.
	cmd := exec.CommandContext(ctx, command[0], args...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		message := fmt.Sprintf("version-file generator %q failed", command[0])
		if stderrStr != "" {
			message = fmt.Sprintf("%s: %s", message, stderrStr)
		}
		return model.WrapCLIError(model.ExitVersionGenError, message, err)
	}

	return nil
}

// generateNative compiles the version resource from the template using
// the goversioninfo library and writes it to outPath in syso form,
// which a freezing tool can embed directly.
func generateNative(templatePath, outPath string) error {
	tmpl, err := LoadTemplate(templatePath)
	if err != nil {
		return err
	}

	quad, err := tmpl.Quad()
	if err != nil {
		return model.WrapCLIError(model.ExitVersionGenError, "invalid template version", err)
	}

	vi := buildVersionInfo(tmpl, quad)

	// Build assembles the resource structures, Walk serializes them
	// into the internal buffer, WriteSyso emits the resource file.
	vi.Build()
	vi.Walk()

	if err := vi.WriteSyso(outPath, sysoArch()); err != nil {
		return model.WrapCLIError(model.ExitVersionGenError,
			fmt.Sprintf("failed to write version-info file %s", outPath), err)
	}

	return nil
}

// buildVersionInfo maps the parsed template onto goversioninfo's
// resource description. The file and product versions share the same
// quad, matching how the original template is used.
func buildVersionInfo(tmpl *Template, quad Quad) *goversioninfo.VersionInfo {
	fileVersion := goversioninfo.FileVersion{
		Major: quad.Major,
		Minor: quad.Minor,
		Patch: quad.Patch,
		Build: quad.Build,
	}

	vi := &goversioninfo.VersionInfo{
		FixedFileInfo: goversioninfo.FixedFileInfo{
			FileVersion:    fileVersion,
			ProductVersion: fileVersion,
			FileFlagsMask:  "3f",
			FileFlags:      "00",
			FileOS:         "040004",
			FileType:       "01",
			FileSubType:    "00",
		},
		StringFileInfo: goversioninfo.StringFileInfo{
			CompanyName:      tmpl.CompanyName,
			FileDescription:  tmpl.FileDescription,
			FileVersion:      quad.String(),
			InternalName:     tmpl.InternalName,
			LegalCopyright:   tmpl.LegalCopyright,
			OriginalFilename: tmpl.OriginalFilename,
			ProductName:      tmpl.ProductName,
			ProductVersion:   quad.String(),
		},
		VarFileInfo: goversioninfo.VarFileInfo{
			Translation: goversioninfo.Translation{
				LangID:    goversioninfo.LngUSEnglish,
				CharsetID: goversioninfo.CsUnicode,
			},
		},
	}

	// The template may pin a specific language/charset pair; the first
	// entry wins because the resource carries a single translation.
	if len(tmpl.Translations) > 0 {
		vi.VarFileInfo.Translation = goversioninfo.Translation{
			LangID:    goversioninfo.LangID(tmpl.Translations[0].LangID),
			CharsetID: goversioninfo.CharsetID(tmpl.Translations[0].CharsetID),
		}
	}

	return vi
}

// sysoArch maps the runtime architecture onto the names WriteSyso
// accepts, defaulting to amd64 for anything it does not know.
func sysoArch() string {
	switch runtime.GOARCH {
	case "386", "amd64", "arm", "arm64":
		return runtime.GOARCH
	default:
		return "amd64"
	}
}
