// SPDX-License-Identifier: MPL-2.0

// Package locate finds the file the running process was started from, which
// is where an installer reads its own archive.
package locate

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no candidate path names an existing file.
var ErrNotFound = errors.New("executable not found")

// executable is swapped in tests.
var executable = os.Executable

// Executable returns the absolute, symlink-resolved path of the running
// program. It prefers the operating system's answer and falls back to
// resolving argv0: used as a path when it contains a separator, searched on
// PATH otherwise.
func Executable(argv0 string) (string, error) {
	if p, err := executable(); err == nil && p != "" {
		if resolved, err := resolve(p); err == nil {
			return resolved, nil
		}
	}
	return fromArgv0(argv0)
}

func fromArgv0(argv0 string) (string, error) {
	if argv0 == "" {
		return "", fmt.Errorf("%w: empty program name", ErrNotFound)
	}

	candidate := argv0
	if !strings.ContainsRune(argv0, '/') && !strings.ContainsRune(argv0, filepath.Separator) {
		found, err := exec.LookPath(argv0)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrNotFound, argv0, err)
		}
		candidate = found
	}

	resolved, err := resolve(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrNotFound, argv0, err)
	}
	return resolved, nil
}

// resolve makes p absolute, follows symlinks and checks it is a regular file.
func resolve(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	target, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(target)
	if err != nil {
		return "", err
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", target)
	}
	return target, nil
}
