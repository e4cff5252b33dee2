// SPDX-License-Identifier: MPL-2.0

package runtime

import "github.com/invowk/ezn/pkg/types"

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination
// rather than failures to start the command. Codes outside 0-255 are
// reported as 1.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code.Normalize()}
}
