// SPDX-License-Identifier: MPL-2.0

// Package collect turns the paths given to the build command into the ordered
// list of files and directories written to an installer.
package collect
