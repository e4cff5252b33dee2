// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/invowk/ezn/pkg/archive"
)

// Entry is an archive header plus the payload written for it.
type Entry struct {
	Header  archive.Header
	Payload string
}

// File returns a regular-file entry whose length matches payload.
func File(name string, mode fs.FileMode, payload string) Entry {
	return Entry{
		Header:  archive.Header{Name: name, Type: archive.TypeRegular, Mode: mode, Length: int64(len(payload))},
		Payload: payload,
	}
}

// Dir returns a directory entry with the given mode.
func Dir(name string, mode fs.FileMode) Entry {
	return Entry{Header: archive.Header{Name: name, Type: archive.TypeDirectory, Mode: mode}}
}

// WriteHost writes a stand-in host executable into dir and returns its path.
func WriteHost(t testing.TB, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "host.bin")
	MustWriteFile(t, path, bytes.Repeat([]byte{0x7f, 'E', 'L', 'F', 0, 1, 2, 3}, 128), 0o755)
	return path
}

// BuildInstaller writes an installer holding g and entries to a new
// temporary directory and returns its path. Payloads come from the entries,
// not from the file system.
func BuildInstaller(t testing.TB, g archive.Global, entries ...Entry) string {
	t.Helper()

	work := t.TempDir()
	payloads := make(map[string]string, len(entries))
	headers := make([]archive.Header, 0, len(entries))
	for _, e := range entries {
		headers = append(headers, e.Header)
		payloads[e.Header.Name] = e.Payload
	}

	out := filepath.Join(work, "install.exe")
	err := archive.Create(context.Background(), archive.CreateOptions{
		HostPath:   WriteHost(t, work),
		OutputPath: out,
		Global:     g,
		Headers:    headers,
		Open: func(name string) (io.ReadCloser, error) {
			p, ok := payloads[name]
			if !ok {
				return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
			}
			return io.NopCloser(strings.NewReader(p)), nil
		},
	})
	if err != nil {
		t.Fatalf("failed to build installer: %v", err)
	}
	return out
}

// OpenInstaller opens path as an archive and closes it when the test ends.
func OpenInstaller(t testing.TB, path string) *archive.Archive {
	t.Helper()
	a, err := archive.Open(path)
	if err != nil {
		t.Fatalf("failed to open installer %s: %v", path, err)
	}
	t.Cleanup(DeferClose(t, a))
	return a
}

// TruncateFile cuts n bytes off the end of path.
func TruncateFile(t testing.TB, path string, n int64) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	if err := os.Truncate(path, info.Size()-n); err != nil {
		t.Fatalf("failed to truncate %s: %v", path, err)
	}
}
