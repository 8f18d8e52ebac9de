// Package config loads and validates the freezepack project configuration.
//
// A project is described by an optional freezepack.json file in the
// project root. The file may contain comments and trailing commas
// (JSONC), so this package uses github.com/tidwall/jsonc to normalize
// the content before parsing with the standard encoding/json library.
//
// When the file is absent, the defaults reproduce the conventional
// project layout: a <name>.py entry file, a resources/ directory,
// icon.ico and icon.png, a version.yml template, dist/ and build/
// output directories, and a <name>.spec file — all relative to the
// project root. Every default can be overridden per project without
// source edits.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tidwall/jsonc"

	"github.com/megascrapper/freezepack/internal/model"
)

// FileName is the project configuration file looked up in the
// project root.
const FileName = "freezepack.json"

// ContainerToolchain configures running the packaging tool inside a
// Docker container instead of resolving it on the host PATH. The
// project root is bind-mounted into the container at Workdir.
type ContainerToolchain struct {
	// Image is the container image that provides the packaging tool.
	Image string `json:"image"`

	// Workdir is the mount point for the project root inside the
	// container. Defaults to "/src".
	Workdir string `json:"workdir,omitempty"`
}

// Project holds every path and tool name the build pipeline needs.
// All relative paths are resolved against Root.
type Project struct {
	// Root is the absolute project root directory. It is set by Load
	// and never read from the config file.
	Root string `json:"-"`

	// Name is the application name. It determines the entry file,
	// spec file, and final executable defaults. Defaults to the
	// project root's directory name.
	Name string `json:"name,omitempty"`

	// Entry is the application entry file handed to the packaging
	// tool. Defaults to "<name>.py".
	Entry string `json:"entry,omitempty"`

	// Resources is the directory bundled into the output under the
	// "resources/" path. Defaults to "resources".
	Resources string `json:"resources,omitempty"`

	// Icon is the icon file embedded as the executable's icon.
	// Defaults to "icon.ico".
	Icon string `json:"icon,omitempty"`

	// BundledIcon is an icon image bundled at the output root for the
	// application's own use at runtime. Defaults to "icon.png".
	BundledIcon string `json:"bundledIcon,omitempty"`

	// VersionTemplate is the version-metadata template consumed by the
	// version-file generator and also bundled at the output root.
	// Defaults to "version.yml".
	VersionTemplate string `json:"versionTemplate,omitempty"`

	// VersionFile is the output path of the generated version-info
	// resource. Defaults to "file_version_info.txt".
	VersionFile string `json:"versionFile,omitempty"`

	// GeneratorCommand, when non-empty, is an external version-file
	// generator invoked as GeneratorCommand... <template> --outfile
	// <versionFile>. When empty, the version-info file is produced
	// in-process from the parsed template.
	GeneratorCommand []string `json:"generatorCommand,omitempty"`

	// Tool is the packaging/freezing tool binary name. Defaults to
	// "pyinstaller".
	Tool string `json:"tool,omitempty"`

	// DistDir is the packaging output directory. Defaults to "dist".
	DistDir string `json:"distDir,omitempty"`

	// WorkDir is the packaging tool's intermediate build directory.
	// Defaults to "build".
	WorkDir string `json:"workDir,omitempty"`

	// OnFailure selects what happens to intermediate artifacts when
	// packaging or relocation fails: "strict-abort" (default) leaves
	// them on disk, "best-effort-cleanup" removes them before the
	// error propagates.
	OnFailure string `json:"onFailure,omitempty"`

	// Container, when set, runs the packaging tool inside a Docker
	// container instead of on the host PATH.
	Container *ContainerToolchain `json:"container,omitempty"`
}

// Default returns a Project with the conventional fixed-layout values
// for the given project root.
func Default(root string) *Project {
	p := &Project{Root: root}
	p.applyDefaults()
	return p
}

// Load reads the project configuration from <root>/freezepack.json.
// A missing file is not an error: the returned Project then carries
// pure defaults. A present but malformed file is a config error.
func Load(root string) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "failed to resolve project root", err)
	}

	p := &Project{Root: absRoot}

	path := filepath.Join(absRoot, FileName)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file — fixed-layout defaults apply.
	case err != nil:
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read %s", FileName), err)
	default:
		// Strip JSONC comments/trailing commas, then parse as plain JSON.
		if jsonErr := json.Unmarshal(jsonc.ToJSON(data), p); jsonErr != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse %s", FileName), jsonErr)
		}
		p.Root = absRoot
	}

	p.applyDefaults()

	if p.OnFailure != "" {
		if _, parseErr := model.ParseFailurePolicy(p.OnFailure); parseErr != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "invalid onFailure value", parseErr)
		}
	}

	return p, nil
}

// applyDefaults fills every unset field with its fixed-layout default.
func (p *Project) applyDefaults() {
	if p.Name == "" {
		p.Name = filepath.Base(p.Root)
	}
	if p.Entry == "" {
		p.Entry = p.Name + ".py"
	}
	if p.Resources == "" {
		p.Resources = "resources"
	}
	if p.Icon == "" {
		p.Icon = "icon.ico"
	}
	if p.BundledIcon == "" {
		p.BundledIcon = "icon.png"
	}
	if p.VersionTemplate == "" {
		p.VersionTemplate = "version.yml"
	}
	if p.VersionFile == "" {
		p.VersionFile = "file_version_info.txt"
	}
	if p.Tool == "" {
		p.Tool = "pyinstaller"
	}
	if p.DistDir == "" {
		p.DistDir = "dist"
	}
	if p.WorkDir == "" {
		p.WorkDir = "build"
	}
	if p.OnFailure == "" {
		p.OnFailure = model.PolicyStrictAbort.String()
	}
	if p.Container != nil && p.Container.Workdir == "" {
		p.Container.Workdir = "/src"
	}
}

// Policy returns the parsed failure policy. Load has already validated
// the value, so an unparsable policy here falls back to strict-abort.
func (p *Project) Policy() model.FailurePolicy {
	policy, err := model.ParseFailurePolicy(p.OnFailure)
	if err != nil {
		return model.PolicyStrictAbort
	}
	return policy
}

// abs resolves a configured path against the project root. Absolute
// paths in the config are kept as-is.
func (p *Project) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// EntryPath returns the absolute entry file path.
func (p *Project) EntryPath() string { return p.abs(p.Entry) }

// ResourcesPath returns the absolute resources directory path.
func (p *Project) ResourcesPath() string { return p.abs(p.Resources) }

// IconPath returns the absolute executable-icon path.
func (p *Project) IconPath() string { return p.abs(p.Icon) }

// BundledIconPath returns the absolute bundled-icon path.
func (p *Project) BundledIconPath() string { return p.abs(p.BundledIcon) }

// VersionTemplatePath returns the absolute version template path.
func (p *Project) VersionTemplatePath() string { return p.abs(p.VersionTemplate) }

// ExeName returns the final executable file name, with the platform
// suffix applied on Windows.
func (p *Project) ExeName() string {
	if runtime.GOOS == "windows" {
		return p.Name + ".exe"
	}
	return p.Name
}

// Artifacts derives the full set of generated paths for this project.
// Packaging, relocation, and cleanup all operate on this one value so
// they cannot disagree about where intermediates live.
func (p *Project) Artifacts() *model.ArtifactSet {
	return &model.ArtifactSet{
		VersionFile: p.abs(p.VersionFile),
		DistDir:     p.abs(p.DistDir),
		WorkDir:     p.abs(p.WorkDir),
		SpecFile:    p.abs(p.Name + ".spec"),
		PackagedExe: filepath.Join(p.abs(p.DistDir), p.ExeName()),
		FinalExe:    p.abs(p.ExeName()),
	}
}

// Validate checks that every input the pipeline consumes exists before
// any step runs: entry file, resources directory, both icons, and the
// version template. Reporting all of them up front avoids a packaging
// failure halfway through with a less diagnosable error.
func (p *Project) Validate() error {
	checks := []struct {
		path string
		dir  bool
		role string
	}{
		{p.EntryPath(), false, "entry file"},
		{p.ResourcesPath(), true, "resources directory"},
		{p.IconPath(), false, "icon file"},
		{p.BundledIconPath(), false, "bundled icon file"},
		{p.VersionTemplatePath(), false, "version template"},
	}

	for _, c := range checks {
		info, err := os.Stat(c.path)
		if err != nil {
			return model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("%s not found at %s", c.role, c.path), err)
		}
		if c.dir != info.IsDir() {
			kind := "file"
			if c.dir {
				kind = "directory"
			}
			return model.NewCLIError(model.ExitConfigError,
				fmt.Sprintf("%s at %s is not a %s", c.role, c.path, kind))
		}
	}

	if p.Container != nil && p.Container.Image == "" {
		return model.NewCLIError(model.ExitConfigError,
			"container toolchain requires an image name")
	}

	return nil
}
