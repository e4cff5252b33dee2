// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/ezn/internal/issue"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// isolated returns options that never touch the real user config directory.
func isolated(t *testing.T) LoadOptions {
	t.Helper()
	return LoadOptions{
		ConfigDirPath: t.TempDir(),
		BaseDir:       t.TempDir(),
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Runtime != RuntimeNative {
		t.Errorf("Runtime = %q, want native", cfg.Runtime)
	}
	if cfg.Output != "install.exe" {
		t.Errorf("Output = %q, want install.exe", cfg.Output)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto || cfg.UI.Verbose {
		t.Errorf("UI = %+v, want auto/false", cfg.UI)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), isolated(t))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want none", path)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadUserConfigDir(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	want := writeConfig(t, opts.ConfigDirPath, "config.cue", `
runtime: "virtual"
ui: verbose: true
`)
	writeConfig(t, opts.BaseDir, LocalConfigFileName, `output: "ignored.exe"`)

	cfg, path, err := loadWithOptions(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.Runtime != RuntimeVirtual || !cfg.UI.Verbose {
		t.Errorf("cfg = %+v, want virtual + verbose", cfg)
	}
	if cfg.Output != DefaultOutput {
		t.Errorf("Output = %q, local file must not be read when the user file exists", cfg.Output)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("ColorScheme = %q, unset fields keep defaults", cfg.UI.ColorScheme)
	}
}

func TestLoadLocalConfig(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	writeConfig(t, opts.BaseDir, LocalConfigFileName, `output: "setup.bin"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Output != "setup.bin" {
		t.Errorf("Output = %q, want setup.bin", cfg.Output)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	writeConfig(t, opts.ConfigDirPath, "config.cue", `runtime: "virtual"`)
	opts.ConfigFilePath = writeConfig(t, t.TempDir(), "custom.cue", `ui: color_scheme: "dark"`)

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Runtime != RuntimeNative {
		t.Errorf("Runtime = %q, explicit file must replace the user config", cfg.Runtime)
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %q, want dark", cfg.UI.ColorScheme)
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	t.Parallel()

	opts := isolated(t)
	opts.ConfigFilePath = filepath.Join(t.TempDir(), "missing.cue")

	_, err := NewProvider().Load(context.Background(), opts)
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("Load() error = %v, want ActionableError", err)
	}
	if ae.Guide != issue.ConfigLoadFailedId {
		t.Errorf("Guide = %d, want ConfigLoadFailedId", ae.Guide)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown runtime", `runtime: "container"`, "runtime"},
		{"unknown field", `shell: "bash"`, "shell"},
		{"wrong type", `ui: verbose: "yes"`, "verbose"},
		{"blank output", `output: "   "`, "output"},
		{"syntax error", `runtime: `, "custom.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := isolated(t)
			opts.ConfigFilePath = writeConfig(t, t.TempDir(), "custom.cue", tt.content)

			_, err := NewProvider().Load(context.Background(), opts)
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

//nolint:paralleltest // Uses t.Setenv.
func TestEnvironmentOverridesFile(t *testing.T) {
	opts := isolated(t)
	writeConfig(t, opts.ConfigDirPath, "config.cue", `
runtime: "native"
output:  "from-file.exe"
`)
	t.Setenv("EZN_RUNTIME", "virtual")
	t.Setenv("EZN_UI_VERBOSE", "true")

	cfg, err := NewProvider().Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Runtime != RuntimeVirtual {
		t.Errorf("Runtime = %q, env must win over file", cfg.Runtime)
	}
	if !cfg.UI.Verbose {
		t.Error("UI.Verbose should come from EZN_UI_VERBOSE")
	}
	if cfg.Output != "from-file.exe" {
		t.Errorf("Output = %q, file must win over defaults", cfg.Output)
	}
}

//nolint:paralleltest // Uses t.Setenv.
func TestEnvironmentInvalidRuntime(t *testing.T) {
	t.Setenv("EZN_RUNTIME", "docker")

	_, err := NewProvider().Load(context.Background(), isolated(t))
	if !errors.Is(err, ErrInvalidRuntimeMode) {
		t.Fatalf("Load() error = %v, want ErrInvalidRuntimeMode", err)
	}
	var ae *issue.ActionableError
	if !errors.As(err, &ae) || ae.Guide != issue.InvalidRuntimeModeId {
		t.Errorf("error should carry the invalid runtime guide: %v", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewProvider().Load(ctx, isolated(t)); !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

//nolint:paralleltest // Mutates the package-level override.
func TestConfigDirOverride(t *testing.T) {
	dir := t.TempDir()
	SetConfigDirOverride(dir)
	t.Cleanup(Reset)

	got, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir() error = %v", err)
	}
	if got != dir {
		t.Errorf("ConfigDir() = %q, want %q", got, dir)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Config{Runtime: "lxc", Output: " ", UI: UIConfig{ColorScheme: "neon"}}
	err := cfg.Validate()
	var invalid *InvalidConfigError
	if !errors.As(err, &invalid) {
		t.Fatalf("Validate() error = %v, want InvalidConfigError", err)
	}
	if len(invalid.FieldErrors) != 3 {
		t.Errorf("FieldErrors = %v, want 3", invalid.FieldErrors)
	}
	for _, sentinel := range []error{ErrInvalidConfig, ErrInvalidRuntimeMode, ErrInvalidOutput, ErrInvalidColorScheme} {
		if !errors.Is(err, sentinel) {
			t.Errorf("errors.Is(%v) = false", sentinel)
		}
	}
}
