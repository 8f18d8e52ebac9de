// types.go defines the core domain types shared across the freezepack
// packages: typed exit codes, the CLIError wrapper, the packaging
// failure policy, and the ArtifactSet describing every path the
// pipeline creates or consumes.
package model

import (
	"fmt"
	"strings"
)

// FailurePolicy controls what happens to intermediate build artifacts
// when the packaging or relocation step fails.
//
// The version-generation step is not governed by this policy: a failure
// there always aborts immediately with nothing to clean up, because no
// artifacts exist yet at that point.
type FailurePolicy string

const (
	// PolicyStrictAbort aborts with a non-zero exit code and leaves all
	// intermediate artifacts (output dir, work dir, spec file, version
	// file) on disk so the user can inspect what the packaging tool
	// produced before it failed.
	PolicyStrictAbort FailurePolicy = "strict-abort"

	// PolicyBestEffortCleanup removes whatever intermediates were
	// produced before propagating the original error. The project is
	// returned to its pre-build state, at the cost of losing the
	// partial output that could have helped diagnose the failure.
	PolicyBestEffortCleanup FailurePolicy = "best-effort-cleanup"
)

// String returns the string representation of FailurePolicy.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and error messages.
func (p FailurePolicy) String() string {
	return string(p)
}

// IsValid checks whether the FailurePolicy value is one of the
// predefined valid policies.
func (p FailurePolicy) IsValid() bool {
	switch p {
	case PolicyStrictAbort, PolicyBestEffortCleanup:
		return true
	default:
		return false
	}
}

// ParseFailurePolicy converts a string to a FailurePolicy.
// Returns an error if the string does not match any valid policy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	policy := FailurePolicy(strings.ToLower(s))
	if !policy.IsValid() {
		return "", fmt.Errorf("invalid failure policy: %q (valid: strict-abort, best-effort-cleanup)", s)
	}
	return policy, nil
}

// ArtifactSet names every filesystem path the build pipeline touches.
// It is derived from the project configuration before any step runs,
// so that packaging, relocation, and cleanup operate on the same fixed
// paths rather than re-deriving them independently.
//
// Lifecycle of each entry:
//
//	VersionFile  — created by version generation, consumed by packaging,
//	               destroyed by cleanup
//	DistDir      — created by packaging (holds the packaged executable),
//	               consumed by relocation, destroyed by cleanup
//	WorkDir      — packaging byproduct, destroyed by cleanup
//	SpecFile     — packaging byproduct, destroyed by cleanup
//	PackagedExe  — created by packaging inside DistDir, moved (not
//	               destroyed) by relocation
//	FinalExe     — created by relocation at the project root; the
//	               deliverable, never removed
type ArtifactSet struct {
	// VersionFile is the generated version-info resource file path.
	VersionFile string `json:"versionFile"`

	// DistDir is the packaging tool's output directory.
	DistDir string `json:"distDir"`

	// WorkDir is the packaging tool's intermediate build directory.
	WorkDir string `json:"workDir"`

	// SpecFile is the packaging-spec file the tool generates as a
	// byproduct alongside its output.
	SpecFile string `json:"specFile"`

	// PackagedExe is the executable path inside DistDir, as produced
	// by the packaging tool.
	PackagedExe string `json:"packagedExe"`

	// FinalExe is the deliverable path at the project root where the
	// executable ends up after relocation.
	FinalExe string `json:"finalExe"`
}

// Intermediates returns the paths that must not exist after a
// successful build: everything the pipeline generates except the
// final executable. Cleanup removes exactly these.
func (a *ArtifactSet) Intermediates() []string {
	return []string{a.DistDir, a.WorkDir, a.SpecFile, a.VersionFile}
}

// ExitCode defines the CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine which stage of the build
// pipeline failed.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the project configuration is invalid
	// or a required input file (entry file, icon, resources dir,
	// version template) is missing.
	ExitConfigError ExitCode = 2

	// ExitVersionGenError indicates the version-info generation step
	// failed. This aborts the build before any packaging artifacts
	// are created.
	ExitVersionGenError ExitCode = 3

	// ExitPackagingError indicates the packaging/freezing tool
	// returned a non-zero status.
	ExitPackagingError ExitCode = 4

	// ExitRelocateError indicates the packaged executable could not be
	// moved from the output directory to the project root, typically
	// because the packaging tool did not produce it.
	ExitRelocateError ExitCode = 5

	// ExitToolEnvError indicates a required external tool is not
	// invocable: not found on PATH in host mode, or the Docker daemon
	// is unreachable in container mode.
	ExitToolEnvError ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
