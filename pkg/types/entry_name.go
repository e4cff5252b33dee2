// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrInvalidEntryName is the sentinel error wrapped by InvalidEntryNameError.
var ErrInvalidEntryName = errors.New("invalid entry name")

type (
	// EntryName is the slash-separated path of a packed file or directory,
	// relative to the extraction directory.
	// The zero value ("") is invalid.
	EntryName string

	// InvalidEntryNameError is returned when an EntryName is empty, absolute
	// or escapes the extraction directory.
	InvalidEntryNameError struct {
		Value EntryName
	}
)

// Error implements the error interface.
func (e *InvalidEntryNameError) Error() string {
	return fmt.Sprintf("invalid entry name %q: must be a relative path inside the target directory", e.Value)
}

// Unwrap returns ErrInvalidEntryName for errors.Is() compatibility.
func (e *InvalidEntryNameError) Unwrap() error { return ErrInvalidEntryName }

// String returns the string representation of the EntryName.
func (n EntryName) String() string { return string(n) }

// Validate returns an error unless the name stays below the directory it is
// joined to.
func (n EntryName) Validate() error {
	if !filepath.IsLocal(filepath.FromSlash(string(n))) {
		return &InvalidEntryNameError{Value: n}
	}
	return nil
}

// Path returns the name in the host's path syntax.
func (n EntryName) Path() string { return filepath.FromSlash(string(n)) }
