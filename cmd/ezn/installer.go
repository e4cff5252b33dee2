// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/invowk/ezn/internal/config"
	"github.com/invowk/ezn/internal/install"
	"github.com/invowk/ezn/internal/issue"
	"github.com/invowk/ezn/internal/runtime"
	"github.com/invowk/ezn/pkg/archive"
	"github.com/invowk/ezn/pkg/types"
)

// extract unpacks the installer without running its command.
func (a *App) extract(ctx context.Context, opts *options) error {
	arc, err := a.openArchive(opts)
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }() // Read-only handle

	engine, err := a.newEngine(arc, opts)
	if err != nil {
		return err
	}
	if err := engine.Extract(ctx); err != nil {
		return a.installFailed(types.ExitFailure, err, arc.Path())
	}
	return nil
}

// install unpacks the installer, runs its command and cleans up.
func (a *App) install(ctx context.Context, opts *options) error {
	arc, err := a.openArchive(opts)
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }() // Read-only handle

	engine, err := a.newEngine(arc, opts)
	if err != nil {
		return err
	}
	code, err := engine.Install(ctx)
	if err != nil {
		return a.installFailed(code, err, arc.Path())
	}
	return nil
}

func (a *App) newEngine(arc *archive.Archive, opts *options) (*install.Engine, error) {
	mode := a.cfg.Runtime
	if opts.runtime != "" {
		mode = config.RuntimeMode(opts.runtime)
	}
	rn, err := runtime.New(mode)
	if err != nil {
		return nil, a.fail(issue.NewErrorContext().
			WithOperation("select runtime").
			WithResource(string(mode)).
			WithIssue(issue.InvalidRuntimeModeId).
			WithSuggestion("Use one of the runtimes available here: "+availableRuntimes()).
			Wrap(err))
	}
	a.logger.Debug("runtime selected", "runtime", rn.Name())

	return &install.Engine{
		Archive: arc,
		Runner:  rn,
		Dir:     opts.dir,
		Stdin:   a.stdin,
		Stdout:  a.stdout,
		Stderr:  a.stderr,
		Logger:  a.logger,
	}, nil
}

// installFailed maps an engine error to a guided ExitError carrying code.
func (a *App) installFailed(code types.ExitCode, err error, path string) error {
	ec := issue.NewErrorContext().Wrap(err)
	switch {
	case errors.Is(err, install.ErrNoHeaders):
		ec.WithOperation("install").
			WithResource(path).
			WithIssue(issue.NoSectionsId).
			WithSuggestion("Build an installer first: ezn -o install.exe <files>")
	case errors.Is(err, install.ErrCommandFailed):
		ec.WithOperation("run the install command").
			WithIssue(issue.CommandFailedId).
			WithSuggestions(
				"The extracted files were kept so the failure can be inspected",
				"Run the installer with -x to extract without running the command",
			)
	case errors.Is(err, runtime.ErrShellNotFound), errors.Is(err, runtime.ErrUnavailable):
		ec.WithOperation("run the install command").
			WithIssue(issue.ShellNotFoundId).
			WithSuggestion("Retry with --runtime virtual to use the built-in shell")
	case errors.Is(err, install.ErrCommandStart):
		ec.WithOperation("run the install command").
			WithIssue(issue.CommandFailedId)
	case errors.Is(err, fs.ErrPermission):
		ec.WithOperation("extract").
			WithResource(path).
			WithIssue(issue.PermissionDeniedId).
			WithSuggestion("Choose a writable target with -C <dir>")
	default:
		ec.WithOperation("extract").
			WithResource(path).
			WithIssue(issue.ExtractionFailedId)
	}

	if code.IsSuccess() {
		code = types.ExitFailure
	}
	return &ExitError{Code: code, Err: ec.BuildError()}
}

// availableRuntimes lists the runtime modes usable on this host.
func availableRuntimes() string {
	modes := runtime.NewRegistry().Available()
	names := make([]string, 0, len(modes))
	for _, m := range modes {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}
