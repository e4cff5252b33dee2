// SPDX-License-Identifier: MPL-2.0

package cli

import (
	"os"
	"slices"
	"strings"
	"testing"
)

// TestVirtualRuntimeMirrorCoverage enforces that every virtual-runtime
// install script has a native-runtime mirror, and the other way round.
func TestVirtualRuntimeMirrorCoverage(t *testing.T) {
	t.Parallel()

	entries, err := os.ReadDir("testdata")
	if err != nil {
		t.Fatalf("failed to read testdata directory: %v", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".txtar") {
			names = append(names, entry.Name())
		}
	}

	for _, name := range names {
		var mirror string
		switch {
		case strings.HasPrefix(name, "virtual_"):
			mirror = "native_" + strings.TrimPrefix(name, "virtual_")
		case strings.HasPrefix(name, "native_"):
			mirror = "virtual_" + strings.TrimPrefix(name, "native_")
		default:
			continue
		}
		if !slices.Contains(names, mirror) {
			t.Errorf("%s has no mirror script %s", name, mirror)
		}
	}
}
