// Package cli — doctor.go implements the "freezepack doctor" command.
//
// doctor checks the build preconditions without running anything:
// every project input exists, and the tool environment is usable —
// the packaging tool (and external generator, when configured) is
// invocable by name in host mode, or the Docker daemon is reachable
// in container mode.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/megascrapper/freezepack/internal/config"
	"github.com/megascrapper/freezepack/internal/model"
	"github.com/megascrapper/freezepack/internal/toolenv"
)

// doctorCheck is one named precondition with its outcome.
type doctorCheck struct {
	Name string `json:"name"`
	OK   bool   `json:"ok"`
	Err  string `json:"error,omitempty"`
}

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check build preconditions",
		Long: `Verify that a build would be able to run: the project inputs (entry
file, resources directory, icons, version template) all exist, and the
external tools are invocable — on the host PATH, or via a reachable
Docker daemon when a container toolchain is configured.`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), project)
		},
	}

	cmd.Flags().StringVarP(&project, "project", "C", ".", "Project root directory")

	return cmd
}

// runDoctor executes every precondition check and reports all results,
// failing with the tool-environment exit code if any check failed.
func runDoctor(ctx context.Context, project string) error {
	cfg, err := config.Load(project)
	if err != nil {
		return err
	}

	checks := []doctorCheck{
		check("project inputs", cfg.Validate()),
		check("tool environment", checkToolEnv(ctx, cfg)),
	}

	printDoctorResult(checks)

	for _, c := range checks {
		if !c.OK {
			return model.NewCLIError(model.ExitToolEnvError, "preconditions not met")
		}
	}
	return nil
}

// checkToolEnv verifies the tools are invocable in whichever
// environment the project configures.
func checkToolEnv(ctx context.Context, cfg *config.Project) error {
	if cfg.Container != nil {
		cli, err := toolenv.NewClient()
		if err != nil {
			return err
		}
		defer func() { _ = cli.Close() }()
		return cli.Ping(ctx)
	}

	tools := []string{cfg.Tool}
	if len(cfg.GeneratorCommand) > 0 {
		tools = append(tools, cfg.GeneratorCommand[0])
	}
	return toolenv.Verify(tools...)
}

// check pairs a name with an error outcome.
func check(name string, err error) doctorCheck {
	c := doctorCheck{Name: name, OK: err == nil}
	if err != nil {
		c.Err = err.Error()
	}
	return c
}

// printDoctorResult outputs the check results in text or JSON format.
func printDoctorResult(checks []doctorCheck) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(checks, "", "  ")
		fmt.Println(string(data))
		return
	}

	for _, c := range checks {
		if c.OK {
			fmt.Printf("ok    %s\n", c.Name)
		} else {
			fmt.Printf("FAIL  %s: %s\n", c.Name, c.Err)
		}
	}
}
