// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"path/filepath"
	"runtime"
	"testing"
)

// SetHomeDir points the user's home and configuration directories at dir and
// returns a cleanup function that restores the previous values.
//
// Platform handling:
//   - Windows: sets USERPROFILE and APPDATA (dir/AppData/Roaming)
//   - Linux/macOS: sets HOME and XDG_CONFIG_HOME (dir/.config)
//
// Usage:
//
//	t.Cleanup(testutil.SetHomeDir(t, t.TempDir()))
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()

	var restore []func()
	switch runtime.GOOS {
	case "windows":
		restore = append(restore,
			MustSetenv(t, "USERPROFILE", dir),
			MustSetenv(t, "APPDATA", filepath.Join(dir, "AppData", "Roaming")),
		)
	default:
		restore = append(restore,
			MustSetenv(t, "HOME", dir),
			MustSetenv(t, "XDG_CONFIG_HOME", filepath.Join(dir, ".config")),
		)
	}

	return func() {
		for i := len(restore) - 1; i >= 0; i-- {
			restore[i]()
		}
	}
}
