// Package cli — build.go implements the "freezepack build" command.
//
// The build command is the primary operation: a linear pipeline that
// turns a project into a single distributable executable.
//
// Pipeline steps:
//  1. Load the project configuration and validate every input exists
//  2. Generate the version-info resource from the version template
//     (a failure here aborts the whole build with nothing to clean up)
//  3. Invoke the packaging/freezing tool (host PATH or container)
//  4. Relocate the packaged executable to the project root
//  5. Remove every intermediate artifact (output dir, work dir, spec
//     file, version-info file)
//
// Once step 3 has started, artifacts may exist on disk, so cleanup is
// governed by the failure policy on every exit path: strict-abort
// leaves intermediates for inspection, best-effort-cleanup removes
// them before the error propagates.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/megascrapper/freezepack/internal/artifact"
	"github.com/megascrapper/freezepack/internal/config"
	"github.com/megascrapper/freezepack/internal/model"
	"github.com/megascrapper/freezepack/internal/packager"
	"github.com/megascrapper/freezepack/internal/toolenv"
	"github.com/megascrapper/freezepack/internal/versionfile"
)

// buildFlags holds the flag values for the build command.
// These are bound to cobra flags in NewBuildCommand.
type buildFlags struct {
	project   string // --project: project root directory
	tool      string // --tool: override the packaging tool binary
	onFailure string // --on-failure: override the failure policy
}

// NewBuildCommand creates the "build" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the application into a single executable",
		Long: `Run the full packaging pipeline for the project:

  1. Generate a version-info resource from the version template
  2. Freeze the application with the packaging tool (single-file,
     no console window, resources and icon bundled, version info and
     icon embedded)
  3. Move the executable to the project root
  4. Remove all intermediate build artifacts

After a successful build, the project root contains exactly one new
file — the executable — and no generated artifacts remain on disk.

Examples:
  freezepack build
  freezepack build --project ~/dev/waterfall
  freezepack build --on-failure best-effort-cleanup`,

		Args: cobra.NoArgs,

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVarP(&flags.project, "project", "C", ".", "Project root directory")
	cmd.Flags().StringVar(&flags.tool, "tool", "", "Packaging tool binary (default from config)")
	cmd.Flags().StringVar(&flags.onFailure, "on-failure", "",
		"Failure policy: strict-abort or best-effort-cleanup (default from config)")

	return cmd
}

// runBuild is the main orchestration function for the build command.
func runBuild(ctx context.Context, flags *buildFlags) error {
	// Step 1: Load configuration and validate inputs.
	cfg, err := config.Load(flags.project)
	if err != nil {
		return err
	}
	if flags.tool != "" {
		cfg.Tool = flags.tool
	}
	if flags.onFailure != "" {
		policy, parseErr := model.ParseFailurePolicy(flags.onFailure)
		if parseErr != nil {
			return model.WrapCLIError(model.ExitConfigError, "invalid --on-failure value", parseErr)
		}
		cfg.OnFailure = policy.String()
	}
	VerboseLog("Project root: %s", cfg.Root)
	VerboseLog("Application: %s (entry: %s)", cfg.Name, cfg.Entry)

	if err := cfg.Validate(); err != nil {
		return err
	}

	set := cfg.Artifacts()

	// Step 2: Generate the version-info resource.
	//
	// This step is fail-fast by design: a failure aborts immediately,
	// no packaging runs, and no cleanup is attempted — the project is
	// still in its pre-build state at this point.
	fmt.Println("Generating version info...")
	if err := versionfile.Generate(ctx, cfg.GeneratorCommand, cfg.VersionTemplatePath(), set.VersionFile); err != nil {
		return err
	}
	VerboseLog("Version-info file written to %s", set.VersionFile)

	// Step 3 onward: artifacts may now exist, so failures are handled
	// according to the configured policy.
	runner, closeRunner, err := newRunner(ctx, cfg)
	if err != nil {
		return finishFailed(cfg, set, err)
	}
	defer closeRunner()

	fmt.Println("Packaging application...")
	if err := packager.Freeze(ctx, runner, cfg, set); err != nil {
		return finishFailed(cfg, set, err)
	}

	// Step 4: Relocate the executable to the project root.
	VerboseLog("Moving %s to %s", set.PackagedExe, set.FinalExe)
	if err := artifact.Relocate(set.PackagedExe, set.FinalExe); err != nil {
		return finishFailed(cfg, set, err)
	}

	// Step 5: Remove all intermediates. After this, the project root
	// holds exactly one new file: the executable.
	VerboseLog("Removing intermediate artifacts")
	if err := artifact.Cleanup(set.Intermediates()); err != nil {
		return err
	}

	printBuildResult(cfg, set)
	return nil
}

// newRunner selects where the packaging tool executes. Host mode
// verifies the tool is on PATH up front; container mode connects to
// Docker and checks the daemon is alive before anything runs.
//
// The returned close function releases the Docker client in container
// mode and is a no-op otherwise.
func newRunner(ctx context.Context, cfg *config.Project) (packager.Runner, func(), error) {
	if cfg.Container == nil {
		if err := toolenv.Verify(cfg.Tool); err != nil {
			return nil, nil, err
		}
		return &packager.HostRunner{Tool: cfg.Tool, Dir: cfg.Root}, func() {}, nil
	}

	cli, err := toolenv.NewClient()
	if err != nil {
		return nil, nil, err
	}
	if err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		return nil, nil, err
	}

	VerboseLog("Using container toolchain: image %s", cfg.Container.Image)
	runner := &toolenv.ContainerRunner{
		Client:      cli,
		Image:       cfg.Container.Image,
		Tool:        cfg.Tool,
		ProjectRoot: cfg.Root,
		Workdir:     cfg.Container.Workdir,
	}
	return runner, func() { _ = cli.Close() }, nil
}

// finishFailed applies the failure policy to a packaging or relocation
// failure. Under best-effort-cleanup the intermediates are removed
// before the original error propagates; under strict-abort they are
// left on disk for inspection. The original error is always returned —
// a cleanup problem must not mask the build failure.
func finishFailed(cfg *config.Project, set *model.ArtifactSet, buildErr error) error {
	if cfg.Policy() == model.PolicyBestEffortCleanup {
		VerboseLog("Build failed — removing intermediate artifacts (best-effort-cleanup)")
		if cleanupErr := artifact.Cleanup(set.Intermediates()); cleanupErr != nil {
			VerboseLog("Cleanup after failure incomplete: %v", cleanupErr)
		}
	} else {
		VerboseLog("Build failed — leaving intermediate artifacts for inspection (strict-abort)")
	}
	return buildErr
}

// printBuildResult outputs the build result in text or JSON format.
func printBuildResult(cfg *config.Project, set *model.ArtifactSet) {
	if IsJSONOutput() {
		result := struct {
			Name       string `json:"name"`
			Executable string `json:"executable"`
		}{
			Name:       cfg.Name,
			Executable: set.FinalExe,
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Packaged %q\n", cfg.Name)
	fmt.Printf("  Executable: %s\n", set.FinalExe)
}
