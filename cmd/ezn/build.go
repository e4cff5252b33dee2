// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/invowk/ezn/internal/collect"
	"github.com/invowk/ezn/internal/issue"
	"github.com/invowk/ezn/pkg/archive"
)

// errNoInputs is returned by build mode when no files are named.
var errNoInputs = errors.New("no files or directories to pack")

// build writes a new installer from the running executable (or --archive)
// and the files named in args.
func (a *App) build(ctx context.Context, opts *options, args []string) error {
	output := a.cfg.Output
	if opts.outputSet || output == "" {
		output = opts.output
	}

	if len(args) == 0 {
		return a.fail(issue.NewErrorContext().
			WithOperation("build installer").
			WithResource(output).
			WithIssue(issue.BuildFailedId).
			WithSuggestion("Name the files to include: ezn -o " + output + " <file...>").
			Wrap(errNoInputs))
	}

	host, err := a.archivePath(opts)
	if err != nil {
		return err
	}

	files, err := (&collect.Collector{Logger: a.logger}).Collect(args)
	if err != nil {
		ec := issue.NewErrorContext().
			WithOperation("collect files").
			WithIssue(issue.InputNotFoundId).
			Wrap(err)
		if errors.Is(err, fs.ErrPermission) {
			ec.WithIssue(issue.PermissionDeniedId)
		}
		return a.fail(ec)
	}

	headers := make([]archive.Header, 0, len(files))
	for _, f := range files {
		a.logger.Debug("adding entry", "name", f.Name, "type", f.Type, "mode", fmt.Sprintf("%o", f.Mode), "length", f.Length)
		headers = append(headers, f.Header())
	}

	a.logger.Debug("writing installer", "host", host, "output", output, "entries", len(headers))
	err = archive.Create(ctx, archive.CreateOptions{
		HostPath:   host,
		OutputPath: output,
		Global: archive.Global{
			Exec:    opts.exec,
			HasExec: opts.exec != "",
			Cleanup: opts.cleanup,
		},
		Headers: headers,
	})
	if err != nil {
		ec := issue.NewErrorContext().
			WithOperation("build installer").
			WithResource(output).
			WithIssue(issue.BuildFailedId).
			Wrap(err)
		switch {
		case errors.Is(err, archive.ErrPayloadChanged):
			ec.WithSuggestion("A file changed while it was being packed; run the build again")
		case errors.Is(err, fs.ErrPermission):
			ec.WithIssue(issue.PermissionDeniedId)
		}
		return a.fail(ec)
	}

	_, _ = fmt.Fprintf(a.stdout, "%s Created %s with %d entries\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(output), len(headers))
	return nil
}
