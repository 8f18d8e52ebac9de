// Package model defines the domain types for the freezepack CLI.
//
// The pipeline itself has no persistent state: the only entities are
// filesystem paths with a short lifecycle (generated by one step,
// consumed by the next, destroyed by cleanup). ArtifactSet captures
// that lifecycle as a value so that the packaging, relocation, and
// cleanup steps all agree on which paths exist at which point.
//
// CLIError and ExitCode implement the exit-code contract: every error
// surfaced to the user carries a typed code that the CLI layer
// translates into the process exit status.
package model
