// Package artifact handles the tail of the build pipeline: moving the
// packaged executable out of the tool's output directory to the
// project root, and removing every intermediate artifact afterwards.
//
// Relocation prefers os.Rename and falls back to a copy-and-remove
// when the output directory and the project root live on different
// filesystems (rename across devices fails with EXDEV). The copy half
// uses github.com/otiai10/copy, which preserves file permissions, so
// the executable stays executable.
package artifact

import (
	"errors"
	"fmt"
	"os"

	cp "github.com/otiai10/copy"

	"github.com/megascrapper/freezepack/internal/model"
)

// Relocate moves the packaged executable from src (inside the output
// directory) to dst (the project root), making it the deliverable.
//
// A missing src means the packaging tool did not produce what it was
// asked for; that is reported as a relocation error with the expected
// path in the message rather than surfacing later as an opaque
// secondary failure.
//
// An existing dst from a previous run is replaced, so repeated builds
// converge on the same final state.
func Relocate(src, dst string) error {
	if _, err := os.Stat(src); err != nil {
		return model.WrapCLIError(model.ExitRelocateError,
			fmt.Sprintf("packaged executable not found at %s", src), err)
	}

	// Drop a stale deliverable so rename cannot fail on an existing
	// directory entry on platforms where it is not atomic-replace.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return model.WrapCLIError(model.ExitRelocateError,
			fmt.Sprintf("failed to replace existing %s", dst), err)
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	// Rename failed — likely a cross-device move. Copy then remove.
	if err := cp.Copy(src, dst); err != nil {
		return model.WrapCLIError(model.ExitRelocateError,
			fmt.Sprintf("failed to move executable to %s", dst), err)
	}
	if err := os.Remove(src); err != nil {
		return model.WrapCLIError(model.ExitRelocateError,
			fmt.Sprintf("failed to remove packaged copy at %s", src), err)
	}

	return nil
}

// Cleanup removes every path in the set, recursively and
// unconditionally. Paths that do not exist are skipped, which makes
// the operation idempotent: running it twice leaves the same state.
//
// All paths are attempted even when one fails; the combined error is
// returned so a partially blocked cleanup still removes what it can.
func Cleanup(paths []string) error {
	var errs []error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
		}
	}

	if len(errs) > 0 {
		return model.WrapCLIError(model.ExitGeneralError,
			"cleanup incomplete", errors.Join(errs...))
	}
	return nil
}
