// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/invowk/ezn/internal/config"
	"github.com/invowk/ezn/internal/issue"
)

const (
	modeInstall mode = iota
	modeExtract
	modeList
	modeSections
	modeBuild
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

type (
	// mode is what one invocation does with the installer.
	mode int

	// options holds the parsed command-line flags.
	options struct {
		sections   bool
		list       bool
		extract    bool
		output     string
		outputSet  bool
		exec       string
		cleanup    bool
		archive    string
		dir        string
		runtime    string
		configPath string
		verbose    bool
	}
)

// buildFlags are the flags that switch to build mode even without files.
var buildFlags = []string{"output", "exec", "cleanup"}

func newRootCommand(app *App) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "ezn [flags] [file...]",
		Short: "Build and run self-extracting installers",
		Long: TitleStyle.Render("ezn") + SubtitleStyle.Render(" - self-extracting installers") + `

ezn packs files and directories into a copy of its own executable. Running
that copy extracts the files, runs an optional command and, if asked, removes
what it extracted once the command succeeds.

` + SubtitleStyle.Render("Build mode") + ` (files given, or any of -o, -e, -c):
  ezn -o setup.exe -e "sh install.sh" -c install.sh payload/

` + SubtitleStyle.Render("Installer mode") + ` (no files):
  setup.exe          extract, run the command, clean up
  setup.exe -x       extract only
  setup.exe -l       list the packed file names
  setup.exe -m       dump the raw sections`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.outputSet = cmd.Flags().Changed("output")
			app.prepare(cmd.Context(), opts)
			return app.run(cmd.Context(), selectMode(cmd.Flags(), opts, args), opts, args)
		},
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&opts.sections, "sections", "m", false, "dump the raw archive sections")
	flags.BoolVarP(&opts.list, "list", "l", false, "list the files in the installer")
	flags.BoolVarP(&opts.extract, "extract", "x", false, "extract the files without running the command")
	flags.StringVarP(&opts.output, "output", "o", config.DefaultOutput, "installer to write (build mode)")
	flags.StringVarP(&opts.exec, "exec", "e", "", "command the installer runs after extraction (build mode)")
	flags.BoolVarP(&opts.cleanup, "cleanup", "c", false, "remove the extracted files after the command succeeds (build mode)")
	flags.StringVar(&opts.archive, "archive", "", "installer to read instead of the running executable, or host executable in build mode")
	flags.StringVarP(&opts.dir, "dir", "C", "", "directory to extract into and run the command from")
	flags.StringVar(&opts.runtime, "runtime", "", "runtime for the command: native or virtual (default from config)")
	flags.StringVar(&opts.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/ezn/config.cue)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.SetIn(app.stdin)
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)
	return rootCmd
}

// selectMode picks the invocation mode. Inspection flags win over build
// mode, and build mode needs files or a build flag.
func selectMode(flags *pflag.FlagSet, opts *options, args []string) mode {
	switch {
	case opts.sections:
		return modeSections
	case opts.list:
		return modeList
	case opts.extract:
		return modeExtract
	case len(args) > 0:
		return modeBuild
	}
	for _, name := range buildFlags {
		if flags.Changed(name) {
			return modeBuild
		}
	}
	return modeInstall
}

func (a *App) run(ctx context.Context, m mode, opts *options, args []string) error {
	switch m {
	case modeSections:
		return a.dumpSections(opts)
	case modeList:
		return a.listFiles(opts)
	case modeExtract:
		return a.extract(ctx, opts)
	case modeBuild:
		return a.build(ctx, opts, args)
	default:
		return a.install(ctx, opts)
	}
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the resulting status.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	err := fang.Execute(
		context.Background(),
		newRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			app.renderError(w, err)
		}),
	)
	os.Exit(int(exitCode(err)))
}

// renderError prints err and, in verbose mode, the guide attached to it.
func (a *App) renderError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, a.verbose))
	if !a.verbose {
		return
	}

	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Issue() == nil {
		return
	}
	rendered, renderErr := ae.Issue().Render(a.glamourStyle())
	if renderErr != nil {
		a.logger.Warn("failed to render issue guide", "issue", ae.Guide, "err", renderErr)
		return
	}
	_, _ = fmt.Fprint(w, rendered)
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
