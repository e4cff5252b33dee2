// SPDX-License-Identifier: MPL-2.0

// Package archive implements the ezn installer container format.
//
// An installer is an unmodified host executable followed by an archive:
//
//	<host executable bytes>
//	*** EZN DATA ***
//	*** EZN GLOB ***
//	[exec <command>]
//	[cleanup]
//	*** EZN END  ***
//	*** EZN HEAD ***
//	name <relative-path>
//	type <REGULAR|DIRECTORY>
//	mode <octal>
//	length <decimal>
//	*** EZN END  ***
//	<length payload bytes, regular files only>
//	... one HEAD block per entry
//
// The archive carries no index and no offsets. The host prefix length is not
// recorded anywhere, so readers discover structure by scanning forward from the
// start of the file for the 16-byte markers, skipping each payload wholesale
// once its header has been parsed.
package archive
