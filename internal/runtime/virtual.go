// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/invowk/ezn/pkg/types"
)

// VirtualRuntime executes commands using the embedded mvdan/sh interpreter,
// so an installer can run its command on hosts without a POSIX shell.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return "virtual"
}

// Available returns whether this runtime is available
func (r *VirtualRuntime) Available() bool {
	// Virtual runtime is always available as it's built-in
	return true
}

// Validate checks that the command parses as a shell program
func (r *VirtualRuntime) Validate(req *Request) error {
	if err := validateCommand(req); err != nil {
		return err
	}
	if _, err := parse(req.Command); err != nil {
		return fmt.Errorf("command syntax error: %w", err)
	}
	return nil
}

// Run interprets the command in-process.
func (r *VirtualRuntime) Run(ctx context.Context, req *Request) *Result {
	prog, err := parse(req.Command)
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to parse command: %w", err))
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(req.environ()...)),
		interp.StdIO(req.Stdin, req.Stdout, req.Stderr),
	}
	if req.Dir != "" {
		opts = append(opts, interp.Dir(req.Dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("failed to create interpreter: %w", err))
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return NewExitCodeResult(types.ExitCode(exitStatus))
		}
		return NewErrorResult(types.ExitFailure, fmt.Errorf("command execution failed: %w", err))
	}

	return NewSuccessResult()
}

func parse(command string) (*syntax.File, error) {
	return syntax.NewParser().Parse(strings.NewReader(command), "exec")
}
