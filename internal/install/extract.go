// SPDX-License-Identifier: MPL-2.0

package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/invowk/ezn/pkg/archive"
	"github.com/invowk/ezn/pkg/types"
)

const (
	// rewriteMode is applied to an existing read-only file so it can be replaced.
	rewriteMode fs.FileMode = 0o600
	// parentMode is used for parent directories that have no header of their own.
	parentMode fs.FileMode = 0o755
)

// readRecorder remembers the first non-EOF error from the archive side of a
// copy, so read failures can be told apart from write failures.
type readRecorder struct {
	r   io.Reader
	err error
}

func (r *readRecorder) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && !errors.Is(err, io.EOF) && r.err == nil {
		r.err = err
	}
	return n, err
}

// Extract writes every header's entry below Dir, in archive order.
// Directories are created, regular files written from their payload, and the
// recorded mode applied. A failure on one entry is logged and the entry is
// skipped; only an archive read failure aborts the extraction.
func (e *Engine) Extract(ctx context.Context) error {
	if e.Archive == nil {
		return ErrNoArchive
	}
	headers := e.sections().Headers()
	if len(headers) == 0 {
		return ErrNoHeaders
	}

	if e.Dir != "" {
		if err := e.dirs().EnsureDir(e.Dir, 0o755); err != nil {
			return fmt.Errorf("create target directory %s: %w", e.Dir, err)
		}
	}

	for _, h := range headers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := types.EntryName(h.Name).Validate(); err != nil {
			e.logger().Error("skipping entry", "name", h.Name, "err", err)
			continue
		}

		switch h.Type {
		case archive.TypeDirectory:
			e.extractDir(h)
		case archive.TypeRegular:
			if err := e.extractFile(h); err != nil {
				return err
			}
		default:
			e.logger().Warn("skipping entry of unknown type", "name", h.Name, "type", h.Type)
		}
	}
	return nil
}

// extractDir ensures the directory exists and applies the recorded mode.
func (e *Engine) extractDir(h *archive.Header) {
	_, _ = fmt.Fprintf(e.stdout(), "Creating directory %s ...\n", h.Name)
	target := e.target(types.EntryName(h.Name))
	if err := e.dirs().EnsureDir(target, h.Mode.Perm()); err != nil {
		e.logger().Error("failed to create directory", "name", h.Name, "err", err)
		return
	}
	if err := os.Chmod(target, h.Mode); err != nil {
		e.logger().Error("failed to set directory mode", "name", h.Name, "mode", fmt.Sprintf("%o", h.Mode), "err", err)
	}
}

// extractFile returns an error only when the archive itself cannot be read.
func (e *Engine) extractFile(h *archive.Header) error {
	_, _ = fmt.Fprintf(e.stdout(), "Extracting %s ...\n", h.Name)
	target := e.target(types.EntryName(h.Name))

	if err := e.dirs().EnsureDir(filepath.Dir(target), parentMode); err != nil {
		e.logger().Error("failed to create parent directory", "name", h.Name, "err", err)
		return nil
	}

	f, err := openForRewrite(target, h.Mode.Perm())
	if err != nil {
		e.logger().Error("failed to open file for writing", "name", h.Name, "err", err)
		return nil
	}

	src := &readRecorder{r: e.Archive.Payload(h)}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	if src.err != nil {
		return fmt.Errorf("%w: %s: %w", ErrArchiveRead, h.Name, src.err)
	}
	if copyErr != nil {
		e.logger().Error("failed to write file", "name", h.Name, "err", copyErr)
		return nil
	}
	if closeErr != nil {
		e.logger().Error("failed to close file", "name", h.Name, "err", closeErr)
		return nil
	}
	if n < h.Length {
		e.logger().Warn("archive ended before the entry was complete", "name", h.Name, "want", h.Length, "got", n)
	}

	if err := os.Chmod(target, h.Mode); err != nil {
		e.logger().Error("failed to set file mode", "name", h.Name, "mode", fmt.Sprintf("%o", h.Mode), "err", err)
	}
	return nil
}

// openForRewrite truncates or creates target. A read-only existing file is
// made owner-writable first and opened again.
func openForRewrite(target string, perm fs.FileMode) (*os.File, error) {
	const flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	f, err := os.OpenFile(target, flags, perm)
	if err == nil || !errors.Is(err, fs.ErrPermission) {
		return f, err
	}

	info, statErr := os.Stat(target)
	if statErr != nil || !info.Mode().IsRegular() {
		return nil, err
	}
	if chmodErr := os.Chmod(target, rewriteMode); chmodErr != nil {
		return nil, err
	}
	return os.OpenFile(target, flags, perm)
}
