// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/invowk/ezn/internal/issue"
	"github.com/invowk/ezn/pkg/archive"
	"github.com/invowk/ezn/pkg/types"
)

// archivePath returns the installer this invocation reads: the --archive
// value, or the running executable.
func (a *App) archivePath(opts *options) (string, error) {
	if opts.archive != "" {
		return opts.archive, nil
	}
	p, err := a.Executable(os.Args[0])
	if err != nil {
		return "", a.fail(issue.NewErrorContext().
			WithOperation("locate the running installer").
			WithIssue(issue.ArchiveNotFoundId).
			WithSuggestion("Pass the installer explicitly with --archive <path>").
			Wrap(err))
	}
	return p, nil
}

// openArchive opens and scans the installer for the read-only modes.
func (a *App) openArchive(opts *options) (*archive.Archive, error) {
	path, err := a.archivePath(opts)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("opening installer", "path", path)
	arc, err := archive.Open(path)
	if err != nil {
		return nil, a.fail(issue.NewErrorContext().
			WithOperation("open installer").
			WithResource(path).
			WithIssue(issue.ArchiveNotFoundId).
			WithSuggestion("Check that the file exists and is readable").
			Wrap(err))
	}
	a.logger.Debug("installer scanned", "sections", len(arc.Sections()), "host_size", arc.HostSize())
	return arc, nil
}

// dumpSections writes every section's fields. Verbose output adds the
// payload digest of each regular file.
func (a *App) dumpSections(opts *options) error {
	arc, err := a.openArchive(opts)
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }() // Read-only handle

	if err := arc.Sections().Dump(a.stdout); err != nil {
		return err
	}
	if !a.verbose {
		return nil
	}

	_, _ = fmt.Fprintln(a.stdout, "DIGESTS:")
	for _, h := range arc.Sections().Headers() {
		if h.Type != archive.TypeRegular {
			continue
		}
		d, err := arc.Digest(h)
		if err != nil {
			return a.fail(issue.NewErrorContext().
				WithOperation("read payload").
				WithResource(h.Name).
				WithIssue(issue.ExtractionFailedId).
				Wrap(err))
		}
		_, _ = fmt.Fprintf(a.stdout, "  %s %s\n", d, h.Name)
	}
	return nil
}

// listFiles prints the name of every packed entry, one per line.
func (a *App) listFiles(opts *options) error {
	arc, err := a.openArchive(opts)
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }() // Read-only handle

	for _, name := range arc.Sections().Names() {
		_, _ = fmt.Fprintln(a.stdout, name)
	}
	return nil
}

// fail wraps a built ActionableError in an ExitError with status 1.
func (a *App) fail(c *issue.ErrorContext) error {
	return &ExitError{Code: types.ExitFailure, Err: c.BuildError()}
}
