// SPDX-License-Identifier: MPL-2.0

package locate

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func writeExecutable(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		t.Fatalf("eval %s: %v", p, err)
	}
	return resolved
}

func TestExecutableUsesOperatingSystem(t *testing.T) {
	t.Parallel()

	self, err := Executable("")
	if err != nil {
		t.Fatalf("Executable() error = %v", err)
	}
	info, err := os.Stat(self)
	if err != nil || !info.Mode().IsRegular() {
		t.Errorf("Executable() = %q, want an existing regular file", self)
	}
	if !filepath.IsAbs(self) {
		t.Errorf("Executable() = %q, want an absolute path", self)
	}
}

func TestFromArgv0Path(t *testing.T) {
	t.Parallel()

	want := writeExecutable(t, t.TempDir(), "installer")
	got, err := fromArgv0(want)
	if err != nil {
		t.Fatalf("fromArgv0() error = %v", err)
	}
	if got != want {
		t.Errorf("fromArgv0() = %q, want %q", got, want)
	}
}

func TestFromArgv0Symlink(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need extra privileges on windows")
	}

	dir := t.TempDir()
	want := writeExecutable(t, dir, "real")
	link := filepath.Join(dir, "link")
	if err := os.Symlink(want, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	got, err := fromArgv0(link)
	if err != nil {
		t.Fatalf("fromArgv0() error = %v", err)
	}
	if got != want {
		t.Errorf("fromArgv0() = %q, want %q", got, want)
	}
}

//nolint:paralleltest // Uses t.Setenv.
func TestFromArgv0SearchesPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("PATH lookup requires an extension on windows")
	}

	dir := t.TempDir()
	want := writeExecutable(t, dir, "ezn-test-installer")
	t.Setenv("PATH", dir)

	got, err := fromArgv0("ezn-test-installer")
	if err != nil {
		t.Fatalf("fromArgv0() error = %v", err)
	}
	if got != want {
		t.Errorf("fromArgv0() = %q, want %q", got, want)
	}
}

func TestFromArgv0Errors(t *testing.T) {
	t.Parallel()

	for _, argv0 := range []string{"", filepath.Join(t.TempDir(), "missing"), t.TempDir()} {
		if _, err := fromArgv0(argv0); !errors.Is(err, ErrNotFound) {
			t.Errorf("fromArgv0(%q) error = %v, want ErrNotFound", argv0, err)
		}
	}
}

//nolint:paralleltest // Replaces the package-level lookup.
func TestExecutableFallsBackToArgv0(t *testing.T) {
	original := executable
	t.Cleanup(func() { executable = original })
	executable = func() (string, error) { return "", errors.New("unsupported") }

	want := writeExecutable(t, t.TempDir(), "fallback")
	got, err := Executable(want)
	if err != nil {
		t.Fatalf("Executable() error = %v", err)
	}
	if got != want {
		t.Errorf("Executable() = %q, want %q", got, want)
	}
}
