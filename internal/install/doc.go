// SPDX-License-Identifier: MPL-2.0

// Package install unpacks an installer's archive and runs what it carries.
//
// An Engine works in three stages. Extract writes each entry in archive
// order, Run executes the post-extraction command through a runtime.Runner,
// and Cleanup removes the extracted entries when the archive asks for it.
// Install chains the three and stops at the first failing stage.
package install
