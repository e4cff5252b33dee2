// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/invowk/ezn/internal/config"
	"github.com/invowk/ezn/internal/locate"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: the root command's handler receives an App and
	// delegates through it.
	App struct {
		Config     ConfigProvider
		Executable func(argv0 string) (string, error)
		stdin      io.Reader
		stdout     io.Writer
		stderr     io.Writer

		// Resolved per invocation by prepare.
		cfg     *config.Config
		verbose bool
		logger  *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		Executable func(argv0 string) (string, error)
		Stdin      io.Reader
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}
)

// NewApp creates an App from deps, filling unset fields with defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		Executable: deps.Executable,
		stdin:      deps.Stdin,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
		cfg:        config.DefaultConfig(),
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Executable == nil {
		app.Executable = locate.Executable
	}
	if app.stdin == nil {
		app.stdin = os.Stdin
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	app.logger = newLogger(app.stderr, false)
	return app
}

// prepare loads configuration and builds the logger for one invocation.
// A configuration that cannot be loaded is reported and replaced by the
// defaults, so a broken config file never stops an installer.
func (a *App) prepare(ctx context.Context, opts *options) {
	baseDir, err := os.Getwd()
	if err != nil {
		baseDir = ""
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: opts.configPath,
		BaseDir:        baseDir,
	})
	if err != nil {
		_, _ = io.WriteString(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, opts.verbose)+"\n")
		cfg = config.DefaultConfig()
	}

	a.cfg = cfg
	a.verbose = opts.verbose || cfg.UI.Verbose
	a.logger = newLogger(a.stderr, a.verbose)
}

// newLogger returns the process logger: prefixed, on stderr, and at debug
// level when verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "ezn",
		Level:  level,
	})
}

// glamourStyle maps the configured color scheme to a glamour style name.
func (a *App) glamourStyle() string {
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		if lipgloss.HasDarkBackground() {
			return "dark"
		}
		return "light"
	}
}
