// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/invowk/ezn/internal/config"
	"github.com/invowk/ezn/pkg/types"
)

var (
	// ErrUnknownRuntime is returned by New and Registry.Get for an unregistered mode.
	ErrUnknownRuntime = errors.New("unknown runtime")
	// ErrUnavailable is returned by RunChecked when the runtime cannot run on this host.
	ErrUnavailable = errors.New("runtime is not available on this system")
)

type (
	// Request describes one post-extraction command.
	Request struct {
		// Command is the exec line from the archive, run as a shell command.
		Command string
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Env is the child environment. Nil inherits the process environment.
		Env []string
		// Stdin, Stdout and Stderr are the child's standard streams. Nil
		// streams are connected to the null device.
		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// Result contains the result of a command execution.
	Result struct {
		// ExitCode is the exit code of the command
		ExitCode types.ExitCode
		// Error is set when the command could not be started or interpreted.
		// A command that ran and exited non-zero leaves it nil.
		Error error
	}

	// Runner executes the command carried by an installer.
	Runner interface {
		// Name returns the runtime name
		Name() string
		// Available returns whether this runtime can run on the current host
		Available() bool
		// Validate checks the request before it is run
		Validate(req *Request) error
		// Run executes the request and blocks until it finishes
		Run(ctx context.Context, req *Request) *Result
	}

	// Registry maps runtime modes to runners.
	Registry struct {
		runners map[config.RuntimeMode]Runner
	}
)

// Success returns true if the execution was successful
func (r *Result) Success() bool {
	return r.ExitCode.IsSuccess() && r.Error == nil
}

// NewRegistry returns a registry holding the native and virtual runners.
func NewRegistry() *Registry {
	reg := &Registry{runners: make(map[config.RuntimeMode]Runner)}
	reg.Register(config.RuntimeNative, NewNativeRuntime())
	reg.Register(config.RuntimeVirtual, NewVirtualRuntime())
	return reg
}

// Register adds or replaces the runner for mode.
func (r *Registry) Register(mode config.RuntimeMode, rn Runner) {
	r.runners[mode] = rn
}

// Get returns the runner registered for mode.
func (r *Registry) Get(mode config.RuntimeMode) (Runner, error) {
	rn, ok := r.runners[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRuntime, mode)
	}
	return rn, nil
}

// Available returns the registered modes usable on this host, sorted.
func (r *Registry) Available() []config.RuntimeMode {
	var modes []config.RuntimeMode
	for mode, rn := range r.runners {
		if rn.Available() {
			modes = append(modes, mode)
		}
	}
	slices.Sort(modes)
	return modes
}

// New returns the runner for mode. An empty mode selects the native runtime.
func New(mode config.RuntimeMode) (Runner, error) {
	if mode == "" {
		mode = config.RuntimeNative
	}
	return NewRegistry().Get(mode)
}

// RunChecked applies the Available and Validate checks before Run.
func RunChecked(ctx context.Context, rn Runner, req *Request) *Result {
	if !rn.Available() {
		return NewErrorResult(types.ExitFailure, fmt.Errorf("%w: %s", ErrUnavailable, rn.Name()))
	}
	if err := rn.Validate(req); err != nil {
		return NewErrorResult(types.ExitFailure, err)
	}
	return rn.Run(ctx, req)
}

// environ returns req.Env, or the process environment when it is nil.
func (req *Request) environ() []string {
	if req.Env != nil {
		return req.Env
	}
	return os.Environ()
}

// validateCommand is shared by every runner's Validate.
func validateCommand(req *Request) error {
	if req == nil || req.Command == "" {
		return errors.New("no command to execute")
	}
	return nil
}
