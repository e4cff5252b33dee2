// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"fmt"
	"io"
	"io/fs"
	"strings"
)

// File types recorded in a header.
const (
	TypeNone FileType = iota
	TypeRegular
	TypeDirectory
)

// POSIX special permission bits as they appear in the octal mode field.
const (
	posixSetuid = 0o4000
	posixSetgid = 0o2000
	posixSticky = 0o1000
)

type (
	// FileType is the kind of entry a header describes.
	FileType int

	// Global is the archive-wide install settings. At most one is written per
	// archive.
	Global struct {
		// Exec is the command run after extraction. Only meaningful when HasExec is set.
		Exec string
		// HasExec distinguishes "no exec line" from an exec line with an empty value.
		HasExec bool
		// Cleanup requests removal of the extracted entries after a successful run.
		Cleanup bool
	}

	// Header describes one archived file or directory.
	Header struct {
		Name   string
		Type   FileType
		Mode   fs.FileMode
		Length int64
		// FilePosition is the absolute offset of the payload inside the
		// archive file the header was scanned from. It is derived during a scan
		// and is not written to the archive.
		FilePosition int64
	}

	// Section is one Global or Header record. Kind is MarkerGlobal or
	// MarkerHeader and selects which pointer is set.
	Section struct {
		Kind   Marker
		Global *Global
		Header *Header
	}

	// Sections is the ordered list of sections found in an archive. Order is
	// the physical order in the file.
	Sections []Section
)

// String returns the wire name of the type.
func (t FileType) String() string {
	switch t {
	case TypeRegular:
		return "REGULAR"
	case TypeDirectory:
		return "DIRECTORY"
	default:
		return "NONE"
	}
}

// ParseFileType maps a wire name to a FileType. Unknown names yield TypeNone.
func ParseFileType(s string) FileType {
	switch s {
	case "REGULAR":
		return TypeRegular
	case "DIRECTORY":
		return TypeDirectory
	default:
		return TypeNone
	}
}

// TypeOf classifies a file mode as regular, directory, or none.
func TypeOf(mode fs.FileMode) FileType {
	switch {
	case mode.IsRegular():
		return TypeRegular
	case mode.IsDir():
		return TypeDirectory
	default:
		return TypeNone
	}
}

// ModeBits strips the type bits from mode, keeping permission bits plus
// setuid, setgid and sticky.
func ModeBits(mode fs.FileMode) fs.FileMode {
	return mode & (fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky)
}

// posixMode converts m to the octal value written to the mode line.
func posixMode(m fs.FileMode) uint32 {
	v := uint32(m.Perm())
	if m&fs.ModeSetuid != 0 {
		v |= posixSetuid
	}
	if m&fs.ModeSetgid != 0 {
		v |= posixSetgid
	}
	if m&fs.ModeSticky != 0 {
		v |= posixSticky
	}
	return v
}

// fileMode converts an octal mode value read from the archive.
func fileMode(v uint32) fs.FileMode {
	m := fs.FileMode(v) & fs.ModePerm
	if v&posixSetuid != 0 {
		m |= fs.ModeSetuid
	}
	if v&posixSetgid != 0 {
		m |= fs.ModeSetgid
	}
	if v&posixSticky != 0 {
		m |= fs.ModeSticky
	}
	return m
}

// Command returns the post-extraction command and whether one should run.
// An exec line with an empty value counts as no command.
func (g *Global) Command() (string, bool) {
	if g == nil || !g.HasExec || strings.TrimSpace(g.Exec) == "" {
		return "", false
	}
	return g.Exec, true
}

// End returns the offset just past the header's payload.
func (h *Header) End() int64 {
	return h.FilePosition + h.Length
}

// HasPayload reports whether payload bytes follow the header in the archive.
func (h *Header) HasPayload() bool {
	return h.Type == TypeRegular && h.Length > 0
}

// GlobalSection wraps g in a Section.
func GlobalSection(g *Global) Section {
	return Section{Kind: MarkerGlobal, Global: g}
}

// HeaderSection wraps h in a Section.
func HeaderSection(h *Header) Section {
	return Section{Kind: MarkerHeader, Header: h}
}

// Global returns the first Global section, or nil when the archive has none.
func (ss Sections) Global() *Global {
	for _, s := range ss {
		if s.Kind == MarkerGlobal && s.Global != nil {
			return s.Global
		}
	}
	return nil
}

// Headers returns the header sections in archive order.
func (ss Sections) Headers() []*Header {
	var hs []*Header
	for _, s := range ss {
		if s.Kind == MarkerHeader && s.Header != nil {
			hs = append(hs, s.Header)
		}
	}
	return hs
}

// Names returns the entry names in archive order.
func (ss Sections) Names() []string {
	hs := ss.Headers()
	names := make([]string, 0, len(hs))
	for _, h := range hs {
		names = append(names, h.Name)
	}
	return names
}

// Dump writes a debug listing of every section, one field per line.
func (ss Sections) Dump(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "SECTIONS:"); err != nil {
		return err
	}
	for _, s := range ss {
		var err error
		switch s.Kind {
		case MarkerGlobal:
			exec := "[NONE]"
			if cmd, ok := s.Global.Command(); ok {
				exec = cmd
			}
			_, err = fmt.Fprintf(w, "GLOBAL\n  exec='%s'\n  cleanup=%t\n", exec, s.Global.Cleanup)
		case MarkerHeader:
			h := s.Header
			_, err = fmt.Fprintf(w, "HEADER\n  name='%s'\n  type=%s\n  mode=%o\n  length=%d\n  file_position=%d\n",
				h.Name, h.Type, posixMode(h.Mode), h.Length, h.FilePosition)
		default:
			_, err = fmt.Fprintln(w, "Unknown SECTION")
		}
		if err != nil {
			return err
		}
	}
	return nil
}
