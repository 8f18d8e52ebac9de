// Package cli — clean.go implements the "freezepack clean" command.
//
// clean removes leftover intermediate artifacts without building:
// useful after an aborted strict-abort build, or to return a project
// to its pre-build state by hand. It never touches the final
// executable. Removal is idempotent — running clean twice leaves the
// same state.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/megascrapper/freezepack/internal/artifact"
	"github.com/megascrapper/freezepack/internal/config"
)

// NewCleanCommand creates the "clean" cobra command.
func NewCleanCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove intermediate build artifacts",
		Long: `Remove every intermediate artifact a build generates: the output
directory, the intermediate build directory, the generated spec file,
and the version-info file. The final executable is never removed.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(project)
		},
	}

	cmd.Flags().StringVarP(&project, "project", "C", ".", "Project root directory")

	return cmd
}

// runClean removes the project's intermediate artifact paths.
func runClean(project string) error {
	cfg, err := config.Load(project)
	if err != nil {
		return err
	}

	set := cfg.Artifacts()
	for _, path := range set.Intermediates() {
		VerboseLog("Removing %s", path)
	}

	if err := artifact.Cleanup(set.Intermediates()); err != nil {
		return err
	}

	if !IsJSONOutput() {
		fmt.Println("Removed intermediate build artifacts")
	}
	return nil
}
