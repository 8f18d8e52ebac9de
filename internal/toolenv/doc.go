// Package toolenv provides the isolated tool environment the build
// pipeline runs its external tools in.
//
// Two environments are supported:
//   - host: tools are resolved by name on PATH (Verify checks this
//     up front so a missing tool fails before any work is done);
//   - container: the packaging tool runs inside a one-shot Docker
//     container with the project root bind-mounted, via the Docker
//     Engine SDK. This keeps the packaging toolchain off the host
//     entirely — the container image is the environment.
package toolenv
