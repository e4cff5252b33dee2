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

	"github.com/charmbracelet/log"

	"github.com/invowk/ezn/internal/runtime"
	"github.com/invowk/ezn/pkg/archive"
	"github.com/invowk/ezn/pkg/types"
)

var (
	// ErrNoHeaders is returned by Extract when the archive lists no entries.
	ErrNoHeaders = errors.New("archive has no entries")
	// ErrArchiveRead is returned by Extract when payload bytes cannot be read
	// from the archive file.
	ErrArchiveRead = errors.New("failed to read archive")
	// ErrNoArchive is returned by Extract when the engine has no open archive.
	ErrNoArchive = errors.New("no archive to extract from")
	// ErrCommandFailed is returned by Install when the command exits non-zero.
	ErrCommandFailed = errors.New("command failed")
	// ErrCommandStart is returned by Run when the command could not be run at all.
	ErrCommandStart = errors.New("command could not be run")
	// ErrCleanupIncomplete is returned by Cleanup when some entries remain.
	ErrCleanupIncomplete = errors.New("cleanup incomplete")
)

type (
	// DirEnsurer creates a directory and any missing parents.
	DirEnsurer interface {
		EnsureDir(path string, perm fs.FileMode) error
	}

	// OSDirs is the DirEnsurer backed by os.MkdirAll.
	OSDirs struct{}

	// Engine drives the extract, run and cleanup stages for one archive.
	// The zero value of every optional field is usable.
	Engine struct {
		// Archive supplies payload bytes. Required by Extract.
		Archive *archive.Archive
		// Sections overrides Archive.Sections() when non-nil.
		Sections archive.Sections
		// Runner executes the command. Nil selects the native runtime.
		Runner runtime.Runner
		// Dirs creates directories. Nil uses OSDirs.
		Dirs DirEnsurer
		// Dir is the extraction target and the command's working directory.
		// Empty means the current directory.
		Dir string
		// Stdin, Stdout and Stderr are handed to the command. Progress lines
		// are written to Stdout. Nil writers discard output.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
		// Logger receives per-entry failures. Nil discards them.
		Logger *log.Logger
	}
)

// EnsureDir implements DirEnsurer.
func (OSDirs) EnsureDir(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Install runs Extract, Run and Cleanup in order. The first failing stage
// stops the sequence: a failed extraction skips the command, a failed
// command skips cleanup. The returned code is the command's exit status,
// or 1 when a stage failed before or instead of it.
func (e *Engine) Install(ctx context.Context) (types.ExitCode, error) {
	if err := e.Extract(ctx); err != nil {
		return types.ExitFailure, err
	}

	code, err := e.Run(ctx)
	if err != nil {
		return code, err
	}
	if !code.IsSuccess() {
		return code, fmt.Errorf("%w: exit status %d", ErrCommandFailed, code)
	}

	if err := e.Cleanup(ctx); err != nil {
		e.logger().Warn("cleanup left entries behind", "err", err)
	}
	return types.ExitSuccess, nil
}

// Run executes the command from the first Global section through the
// engine's Runner. An archive without a Global section, or with an empty
// command, succeeds without running anything.
func (e *Engine) Run(ctx context.Context) (types.ExitCode, error) {
	command, ok := e.sections().Global().Command()
	if !ok {
		e.logger().Debug("no command to run")
		return types.ExitSuccess, nil
	}

	rn := e.Runner
	if rn == nil {
		rn = runtime.NewNativeRuntime()
	}

	_, _ = fmt.Fprintf(e.stdout(), "Executing %s\n", command)
	e.logger().Debug("running command", "runtime", rn.Name(), "dir", e.Dir)
	res := runtime.RunChecked(ctx, rn, &runtime.Request{
		Command: command,
		Dir:     e.Dir,
		Stdin:   e.Stdin,
		Stdout:  e.Stdout,
		Stderr:  e.Stderr,
	})
	if res.Error != nil {
		return types.ExitFailure, fmt.Errorf("%w: %w", ErrCommandStart, res.Error)
	}
	e.logger().Debug("command finished", "exit_code", res.ExitCode)
	return res.ExitCode, nil
}

func (e *Engine) sections() archive.Sections {
	if e.Sections != nil {
		return e.Sections
	}
	if e.Archive != nil {
		return e.Archive.Sections()
	}
	return nil
}

// target maps an archive entry name to the path it is extracted to.
func (e *Engine) target(name types.EntryName) string {
	p := name.Path()
	if e.Dir == "" {
		return p
	}
	return filepath.Join(e.Dir, p)
}

func (e *Engine) dirs() DirEnsurer {
	if e.Dirs == nil {
		return OSDirs{}
	}
	return e.Dirs
}

func (e *Engine) stdout() io.Writer {
	if e.Stdout == nil {
		return io.Discard
	}
	return e.Stdout
}

func (e *Engine) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}
