// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"strings"

	"github.com/invowk/ezn/pkg/types"
)

// ErrShellNotFound is returned when the host shell cannot be located.
var ErrShellNotFound = errors.New("no shell found")

// NativeRuntime executes commands with the host shell, the way system(3)
// does: "sh -c" on Unix-like systems and "cmd /C" on Windows.
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the command
	ShellArgs []string
}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return "native"
}

// Available returns whether a shell can be found
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Validate checks if a command can be executed
func (r *NativeRuntime) Validate(req *Request) error {
	return validateCommand(req)
}

// Run executes the command with the host shell and waits for it to exit.
func (r *NativeRuntime) Run(ctx context.Context, req *Request) *Result {
	shell, err := r.getShell()
	if err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}

	args := append(r.getShellArgs(shell), req.Command)
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = req.Dir
	cmd.Env = req.environ()
	cmd.Stdin = req.Stdin
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(types.ExitCode(exitErr.ExitCode()))
		}
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to execute command: %w", err))
	}

	return NewSuccessResult()
}

// getShell determines which shell to use
func (r *NativeRuntime) getShell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	name := "sh"
	if goruntime.GOOS == "windows" {
		name = "cmd"
	}
	sh, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrShellNotFound, name, err)
	}
	return sh, nil
}

// getShellArgs returns the arguments to pass to the shell
func (r *NativeRuntime) getShellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return append([]string(nil), r.ShellArgs...)
	}

	base := filepath.Base(shell)
	base = strings.TrimSuffix(strings.ToLower(base), ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		// Assume POSIX shell
		return []string{"-c"}
	}
}
