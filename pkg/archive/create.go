// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// InstallerMode is the permission applied to a finished installer.
const InstallerMode os.FileMode = 0o755

// ErrCreate is wrapped by every error returned from Create.
var ErrCreate = errors.New("create installer")

// OpenFunc opens the payload source for a regular-file header.
type OpenFunc func(name string) (io.ReadCloser, error)

// CreateOptions configures Create.
type CreateOptions struct {
	// HostPath is the executable copied to the front of the installer.
	HostPath string
	// OutputPath is the installer to write. An existing file is replaced.
	OutputPath string
	// Global is written as the archive's single GLOBAL section.
	Global Global
	// Headers are written in order, each followed by its payload.
	Headers []Header
	// Open supplies payload bytes. Nil opens header names with os.Open.
	Open OpenFunc
}

// Create writes a new installer: the host executable, a DATA marker, the
// GLOBAL section, then one HEADER plus payload per entry.
//
// When the host already carries an archive (it is itself an installer), only
// its executable prefix is copied, so an installer never holds two archives.
// On failure the partial output is removed.
func Create(ctx context.Context, opts CreateOptions) (err error) {
	if opts.Open == nil {
		opts.Open = func(name string) (io.ReadCloser, error) {
			return os.Open(filepath.FromSlash(name))
		}
	}

	if same, serr := samePath(opts.HostPath, opts.OutputPath); serr == nil && same {
		return fmt.Errorf("%w: output %s would overwrite the running executable", ErrCreate, opts.OutputPath)
	}

	host, err := os.Open(opts.HostPath)
	if err != nil {
		return fmt.Errorf("%w: open host executable: %w", ErrCreate, err)
	}
	defer func() { _ = host.Close() }() // Read-only handle

	hostSize, err := hostPrefixSize(host)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCreate, err)
	}

	out, err := os.OpenFile(opts.OutputPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, InstallerMode)
	if err != nil {
		return fmt.Errorf("%w: create output: %w", ErrCreate, err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()                // Best-effort close on error path
			_ = os.Remove(opts.OutputPath) // Best-effort cleanup of partial output
		}
	}()

	bw := bufio.NewWriterSize(out, scanBufferSize)
	if _, err = io.CopyN(bw, host, hostSize); err != nil {
		return fmt.Errorf("%w: copy host executable: %w", ErrCreate, err)
	}

	w := NewWriter(bw)
	if err = w.WriteData(); err != nil {
		return fmt.Errorf("%w: write data marker: %w", ErrCreate, err)
	}
	if err = w.WriteGlobal(opts.Global); err != nil {
		return fmt.Errorf("%w: write global section: %w", ErrCreate, err)
	}

	for _, h := range opts.Headers {
		if err = ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCreate, err)
		}
		if err = w.WriteHeader(h); err != nil {
			return fmt.Errorf("%w: write header: %w", ErrCreate, err)
		}
		if err = writeEntryPayload(w, h, opts.Open); err != nil {
			return fmt.Errorf("%w: %w", ErrCreate, err)
		}
	}

	if err = bw.Flush(); err != nil {
		return fmt.Errorf("%w: flush output: %w", ErrCreate, err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("%w: close output: %w", ErrCreate, err)
	}
	if err = os.Chmod(opts.OutputPath, InstallerMode); err != nil {
		return fmt.Errorf("%w: chmod output: %w", ErrCreate, err)
	}
	return nil
}

func writeEntryPayload(w *Writer, h Header, open OpenFunc) error {
	if !h.HasPayload() {
		return nil
	}
	src, err := open(h.Name)
	if err != nil {
		return fmt.Errorf("open %s: %w", h.Name, err)
	}
	defer func() { _ = src.Close() }() // Read-only source
	return w.WritePayload(h, src)
}

// hostPrefixSize returns how many bytes of host to copy and rewinds it.
func hostPrefixSize(host *os.File) (int64, error) {
	info, err := host.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat host executable: %w", err)
	}
	res, err := ScanReader(host, info.Size())
	if err != nil {
		return 0, fmt.Errorf("scan host executable: %w", err)
	}
	if _, err := host.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("rewind host executable: %w", err)
	}
	if res.HostSize >= 0 {
		return res.HostSize, nil
	}
	return info.Size(), nil
}

func samePath(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
