// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/invowk/ezn/pkg/archive"
	"github.com/invowk/ezn/pkg/types"
)

// Cleanup removes every extracted entry when the archive asks for it. Entries
// are removed in archive order; directories that still hold children at
// that point are retried in reverse order once the pass is done. Failures
// are logged and reported together in the returned error, which Install
// treats as a warning.
func (e *Engine) Cleanup(ctx context.Context) error {
	g := e.sections().Global()
	if g == nil || !g.Cleanup {
		return nil
	}

	_, _ = fmt.Fprintln(e.stdout(), "Cleaning up after run ...")

	var (
		deferred []*archive.Header
		failed   []error
	)
	for _, h := range e.sections().Headers() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if h.Type != archive.TypeRegular && h.Type != archive.TypeDirectory {
			continue
		}
		if types.EntryName(h.Name).Validate() != nil {
			continue
		}

		_, _ = fmt.Fprintf(e.stdout(), "Removing '%s'\n", h.Name)
		err := os.Remove(e.target(types.EntryName(h.Name)))
		switch {
		case err == nil, errors.Is(err, os.ErrNotExist):
		case h.Type == archive.TypeDirectory:
			deferred = append(deferred, h)
		default:
			e.logger().Error("failed to remove file", "name", h.Name, "err", err)
			failed = append(failed, fmt.Errorf("%s: %w", h.Name, err))
		}
	}

	for _, h := range slices.Backward(deferred) {
		err := os.Remove(e.target(types.EntryName(h.Name)))
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		e.logger().Error("failed to remove directory", "name", h.Name, "err", err)
		failed = append(failed, fmt.Errorf("%s: %w", h.Name, err))
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %w", ErrCleanupIncomplete, errors.Join(failed...))
	}
	return nil
}
