// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// ActionableError carries the failed operation, the resource involved and
// remediation hints. An error may also name an Issue, a Markdown guide that
// the CLI renders with glamour below the message.
package issue
