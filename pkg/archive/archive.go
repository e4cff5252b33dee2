// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/opencontainers/go-digest"
)

// Archive is an installer file opened for reading. The same handle serves
// the scan and every payload read, so header FilePosition values always
// refer to this file.
type Archive struct {
	f        *os.File
	path     string
	size     int64
	sections Sections
	hostSize int64
}

// Open opens path and scans it. The caller must Close the returned Archive.
func Open(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close() // Best-effort close on error path
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	res, err := ScanReader(f, info.Size())
	if err != nil {
		_ = f.Close() // Best-effort close on error path
		return nil, fmt.Errorf("scan %s: %w", path, err)
	}

	return &Archive{
		f:        f,
		path:     path,
		size:     info.Size(),
		sections: res.Sections,
		hostSize: res.HostSize,
	}, nil
}

// Path returns the file name the archive was opened from.
func (a *Archive) Path() string { return a.path }

// Size returns the total file size, host prefix included.
func (a *Archive) Size() int64 { return a.size }

// Sections returns the sections found when the archive was opened.
func (a *Archive) Sections() Sections { return a.sections }

// HostSize returns the length of the host executable prefix, or -1 when the
// file carries no archive.
func (a *Archive) HostSize() int64 { return a.hostSize }

// Payload returns a reader over exactly the header's payload bytes. Reads
// stop early at end of file if the archive is truncated.
func (a *Archive) Payload(h *Header) *io.SectionReader {
	return io.NewSectionReader(a.f, h.FilePosition, h.Length)
}

// Digest returns the sha256 digest of the header's payload.
func (a *Archive) Digest(h *Header) (digest.Digest, error) {
	d, err := digest.SHA256.FromReader(a.Payload(h))
	if err != nil {
		return "", fmt.Errorf("digest %s: %w", h.Name, err)
	}
	return d, nil
}

// Close releases the underlying file.
func (a *Archive) Close() error {
	return a.f.Close()
}
