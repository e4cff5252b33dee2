// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the ezn command line.
//
// One root command covers both sides of the tool. Given files, or any of
// -o, -e or -c, it builds an installer from the running executable. Without
// them it treats the running executable as an installer and extracts, lists
// or dumps the archive appended to it.
package cmd
