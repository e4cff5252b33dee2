// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrPayloadChanged is returned when a payload source yields fewer bytes than
// its header declares, typically because the file shrank after collection.
var ErrPayloadChanged = errors.New("payload size differs from header length")

// Writer emits archive sections. Every field line is "key value\n"; this is
// the format ScanReader parses back.
type Writer struct {
	w io.Writer
	n int64
}

// NewWriter returns a Writer appending to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Written returns the number of bytes emitted through this Writer.
func (w *Writer) Written() int64 {
	return w.n
}

// WriteData writes the DATA marker line that opens the archive.
func (w *Writer) WriteData() error {
	return w.marker(MarkerData)
}

// WriteGlobal writes a GLOBAL section. The exec line is omitted when
// g.HasExec is false and the cleanup line when g.Cleanup is false.
func (w *Writer) WriteGlobal(g Global) error {
	if strings.ContainsAny(g.Exec, "\r\n") {
		return fmt.Errorf("exec command must be a single line: %q", g.Exec)
	}
	if err := w.marker(MarkerGlobal); err != nil {
		return err
	}
	if g.HasExec {
		if err := w.field("exec", g.Exec); err != nil {
			return err
		}
	}
	if g.Cleanup {
		if err := w.line("cleanup"); err != nil {
			return err
		}
	}
	return w.marker(MarkerEnd)
}

// WriteHeader writes a HEADER section. The payload, if any, must follow via
// WritePayload.
func (w *Writer) WriteHeader(h Header) error {
	if h.Name == "" || strings.ContainsAny(h.Name, "\r\n") {
		return fmt.Errorf("invalid entry name %q", h.Name)
	}
	if h.Length < 0 {
		return fmt.Errorf("invalid length %d for %s", h.Length, h.Name)
	}
	if err := w.marker(MarkerHeader); err != nil {
		return err
	}
	if err := w.field("name", h.Name); err != nil {
		return err
	}
	if err := w.field("type", h.Type.String()); err != nil {
		return err
	}
	if err := w.field("mode", fmt.Sprintf("%o", posixMode(h.Mode))); err != nil {
		return err
	}
	if err := w.field("length", fmt.Sprintf("%d", h.Length)); err != nil {
		return err
	}
	return w.marker(MarkerEnd)
}

// WritePayload copies exactly h.Length bytes from src. Headers without a
// payload write nothing.
func (w *Writer) WritePayload(h Header, src io.Reader) error {
	if !h.HasPayload() {
		return nil
	}
	n, err := io.CopyN(w.w, src, h.Length)
	w.n += n
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: %w (wrote %d of %d bytes)", h.Name, ErrPayloadChanged, n, h.Length)
		}
		return fmt.Errorf("%s: copy payload: %w", h.Name, err)
	}
	return nil
}

func (w *Writer) marker(m Marker) error {
	return w.write(append(MarkerBytes(m), '\n'))
}

func (w *Writer) field(key, value string) error {
	return w.line(key + " " + value)
}

func (w *Writer) line(s string) error {
	return w.write([]byte(s + "\n"))
}

func (w *Writer) write(b []byte) error {
	n, err := w.w.Write(b)
	w.n += int64(n)
	return err
}
