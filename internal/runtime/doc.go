// SPDX-License-Identifier: MPL-2.0

// Package runtime runs the command an installer carries after extraction.
//
// Two runtime implementations are available:
//   - native: executes the command with the host shell (sh -c, cmd /C)
//   - virtual: executes the command with an embedded shell interpreter (mvdan/sh)
//
// Both implement the Runner interface with Name(), Available(), Validate() and
// Run(). A Runner never returns a Go error for a command that ran and exited
// non-zero; the status is carried in Result.ExitCode.
package runtime
