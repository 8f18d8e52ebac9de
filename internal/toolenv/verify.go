// verify.go implements the host-mode precondition check: every tool
// the pipeline will invoke must be resolvable by name before any step
// runs.
package toolenv

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/megascrapper/freezepack/internal/model"
)

// Verify resolves each named tool. Tool names are looked up on PATH;
// explicit paths (anything containing a separator) are checked
// directly. All missing tools are reported at once so the user fixes
// the environment in one pass.
func Verify(tools ...string) error {
	var missing []string
	for _, tool := range tools {
		if tool == "" {
			continue
		}
		if _, err := exec.LookPath(lookupName(tool)); err != nil {
			missing = append(missing, tool)
		}
	}

	if len(missing) > 0 {
		return model.NewCLIError(model.ExitToolEnvError,
			fmt.Sprintf("required tool(s) not invocable: %s", strings.Join(missing, ", ")))
	}
	return nil
}

// lookupName normalizes a configured tool reference for LookPath.
// LookPath handles both bare names and paths, so this only trims
// surrounding whitespace from config values.
func lookupName(tool string) string {
	return filepath.Clean(strings.TrimSpace(tool))
}
