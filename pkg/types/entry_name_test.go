// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestEntryName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry EntryName
		valid bool
	}{
		{"file", EntryName("setup.sh"), true},
		{"nested", EntryName("payload/docs/readme.txt"), true},
		{"with spaces", EntryName("my files/a b.txt"), true},
		{"dot dot inside name", EntryName("a..b"), true},
		{"empty is invalid", EntryName(""), false},
		{"absolute is invalid", EntryName("/etc/passwd"), false},
		{"parent is invalid", EntryName(".."), false},
		{"escaping is invalid", EntryName("payload/../../x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.entry.Validate()
			if tt.valid {
				if err != nil {
					t.Errorf("EntryName(%q).Validate() returned unexpected error: %v", tt.entry, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("EntryName(%q).Validate() returned nil, want error", tt.entry)
			}
			if !errors.Is(err, ErrInvalidEntryName) {
				t.Errorf("error should wrap ErrInvalidEntryName, got: %v", err)
			}
			var nameErr *InvalidEntryNameError
			if !errors.As(err, &nameErr) {
				t.Errorf("error should be *InvalidEntryNameError, got: %T", err)
			}
		})
	}
}

func TestEntryName_Path(t *testing.T) {
	t.Parallel()

	n := EntryName("payload/docs/readme.txt")
	if got, want := n.Path(), filepath.Join("payload", "docs", "readme.txt"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
	if n.String() != "payload/docs/readme.txt" {
		t.Errorf("String() = %q", n.String())
	}
}
