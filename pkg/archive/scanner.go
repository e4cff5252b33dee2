// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// scanBufferSize is the read-ahead used while walking the host prefix.
const scanBufferSize = 64 * 1024

var (
	// ErrUnterminatedSection is returned when a GLOBAL or HEADER section
	// reaches end of file before its END marker.
	ErrUnterminatedSection = errors.New("section is not terminated")
	// ErrMalformedField is returned when a numeric header field cannot be parsed.
	ErrMalformedField = errors.New("malformed section field")
)

// ScanResult is the outcome of a scan.
type ScanResult struct {
	// Sections holds every Global and Header section in physical order.
	Sections Sections
	// HostSize is the offset of the first DATA marker, i.e. the length of
	// the host executable prefix. It is -1 when no DATA marker was found.
	HostSize int64
}

// scanner walks an archive one byte at a time outside of section bodies.
type scanner struct {
	src  io.ReadSeeker
	r    *bufio.Reader
	pos  int64
	size int64
}

// Scan opens path and returns its sections. A file that is too short to hold
// a marker, or that holds none, yields an empty list and no error.
func Scan(path string) (Sections, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = f.Close() }() // Read-only handle; close error carries no information

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat archive: %w", err)
	}

	res, err := ScanReader(f, info.Size())
	if err != nil {
		return nil, err
	}
	return res.Sections, nil
}

// ScanReader scans size bytes of r starting at offset 0.
//
// Outside section bodies the cursor advances one byte at a time. A GLOBAL or
// HEADER marker switches to line parsing until the END marker; after a
// header the cursor seeks past the payload so payload bytes are never
// classified.
func ScanReader(r io.ReadSeeker, size int64) (*ScanResult, error) {
	res := &ScanResult{HostSize: -1}
	if size <= MarkerSize {
		return res, nil
	}

	s := &scanner{src: r, size: size}
	if err := s.seek(0); err != nil {
		return nil, err
	}

	for s.pos < s.size-MarkerSize {
		peek, err := s.r.Peek(MarkerSize)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read archive at offset %d: %w", s.pos, err)
		}

		switch Classify(peek) {
		case MarkerData:
			if res.HostSize < 0 {
				res.HostSize = s.pos
			}
			if err := s.discard(1); err != nil {
				return nil, err
			}

		case MarkerGlobal:
			start := s.pos
			if err := s.discard(MarkerSize); err != nil {
				return nil, err
			}
			g, err := s.readGlobal()
			if err != nil {
				return nil, fmt.Errorf("global section at offset %d: %w", start, err)
			}
			res.Sections = append(res.Sections, GlobalSection(g))

		case MarkerHeader:
			start := s.pos
			if err := s.discard(MarkerSize); err != nil {
				return nil, err
			}
			h, err := s.readHeader()
			if err != nil {
				return nil, fmt.Errorf("header section at offset %d: %w", start, err)
			}
			res.Sections = append(res.Sections, HeaderSection(h))
			if h.HasPayload() {
				if h.Length >= s.size-h.FilePosition {
					// Nothing scannable remains after the payload.
					return res, nil
				}
				if err := s.seek(h.End()); err != nil {
					return nil, err
				}
			}

		default:
			if err := s.discard(1); err != nil {
				return nil, err
			}
		}
	}

	return res, nil
}

// readGlobal parses key/value lines up to and including the END marker.
func (s *scanner) readGlobal() (*Global, error) {
	g := &Global{}
	err := s.readBody(func(line string) error {
		switch {
		case strings.HasPrefix(line, "exec "):
			g.Exec = line[len("exec "):]
			g.HasExec = true
		case strings.HasPrefix(line, "cleanup"):
			g.Cleanup = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// readHeader parses header lines and derives FilePosition from where the END
// marker line finishes.
func (s *scanner) readHeader() (*Header, error) {
	h := &Header{}
	err := s.readBody(func(line string) error {
		switch {
		case strings.HasPrefix(line, "name "):
			h.Name = line[len("name "):]
		case strings.HasPrefix(line, "type "):
			h.Type = ParseFileType(line[len("type "):])
		case strings.HasPrefix(line, "mode "):
			v, err := strconv.ParseUint(strings.TrimSpace(line[len("mode "):]), 8, 32)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrMalformedField, line)
			}
			h.Mode = fileMode(uint32(v))
		case strings.HasPrefix(line, "length "):
			v, err := strconv.ParseInt(strings.TrimSpace(line[len("length "):]), 10, 64)
			if err != nil || v < 0 {
				return fmt.Errorf("%w: %q", ErrMalformedField, line)
			}
			h.Length = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	h.FilePosition = s.pos
	return h, nil
}

// readBody feeds each non-empty line to fn until a line starts with the END
// marker. On return the cursor sits just past the END marker line.
func (s *scanner) readBody(fn func(line string) error) error {
	for {
		peek, err := s.r.Peek(MarkerSize)
		if err == nil && Classify(peek) == MarkerEnd {
			if err := s.discard(MarkerSize); err != nil {
				return err
			}
			return s.skipNewline()
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read archive at offset %d: %w", s.pos, err)
		}

		line, err := s.r.ReadBytes('\n')
		s.pos += int64(len(line))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrUnterminatedSection
			}
			return fmt.Errorf("read archive at offset %d: %w", s.pos, err)
		}

		line = bytes.TrimRight(line, "\r\n")
		if len(line) == 0 {
			continue
		}
		if err := fn(string(line)); err != nil {
			return err
		}
	}
}

// skipNewline consumes the newline that terminates a marker line.
func (s *scanner) skipNewline() error {
	b, err := s.r.Peek(1)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("read archive at offset %d: %w", s.pos, err)
	}
	if b[0] != '\n' {
		return nil
	}
	return s.discard(1)
}

func (s *scanner) discard(n int) error {
	d, err := s.r.Discard(n)
	s.pos += int64(d)
	if err != nil {
		return fmt.Errorf("read archive at offset %d: %w", s.pos, err)
	}
	return nil
}

func (s *scanner) seek(off int64) error {
	if _, err := s.src.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("seek archive to offset %d: %w", off, err)
	}
	if s.r == nil {
		s.r = bufio.NewReaderSize(s.src, scanBufferSize)
	} else {
		s.r.Reset(s.src)
	}
	s.pos = off
	return nil
}
