// SPDX-License-Identifier: MPL-2.0

package collect

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/invowk/ezn/pkg/archive"
	"github.com/invowk/ezn/pkg/types"
)

// ErrNotFound is returned when a path named on the command line cannot be stat'ed.
var ErrNotFound = errors.New("input path not found")

type (
	// File is one entry selected for packing. Name uses forward slashes and
	// is the name recorded in the archive header.
	File struct {
		Name   string
		Type   archive.FileType
		Mode   fs.FileMode
		Length int64
	}

	// Collector expands input paths into the ordered list of Files to pack.
	Collector struct {
		// Logger receives warnings for entries that are skipped. Nil discards them.
		Logger *log.Logger
	}

	// frame is one directory being iterated on the worklist.
	frame struct {
		dir     string
		info    fs.FileInfo
		entries []os.DirEntry
		next    int
	}

	// accumulator holds the output list and the set of names already taken.
	accumulator struct {
		files []File
		seen  map[string]struct{}
	}
)

// Header returns the archive header describing f. FilePosition is left zero.
func (f File) Header() archive.Header {
	return archive.Header{
		Name:   f.Name,
		Type:   f.Type,
		Mode:   f.Mode,
		Length: f.Length,
	}
}

// Collect stats each path and returns the Files to pack, in input order.
// Directories are expanded depth-first with every directory listed before
// its contents. A name already collected is skipped, so the first occurrence
// wins. Symbolic links are followed.
func Collect(paths []string) ([]File, error) {
	return (&Collector{}).Collect(paths)
}

// Collect is the method form of the package-level Collect.
func (c *Collector) Collect(paths []string) ([]File, error) {
	acc := &accumulator{seen: make(map[string]struct{})}
	for _, p := range paths {
		p = trimSeparators(p)
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, p, err)
		}
		if err := types.EntryName(filepath.ToSlash(p)).Validate(); err != nil {
			c.logger().Warn("entry name leaves the extraction directory; installers skip it", "path", p)
		}

		switch {
		case info.Mode().IsRegular():
			acc.add(newFile(p, info))
		case info.IsDir():
			acc.add(newFile(p, info))
			c.walk(p, info, acc)
		default:
			c.logger().Warn("skipping unsupported file type", "path", p, "mode", info.Mode().Type())
		}
	}
	return acc.files, nil
}

// walk expands root with an explicit stack of directory iterators. A
// directory that is the same file as one on the stack (a symlink back to an
// ancestor) is skipped.
func (c *Collector) walk(root string, rootInfo fs.FileInfo, acc *accumulator) {
	entries, err := os.ReadDir(root)
	if err != nil {
		c.logger().Warn("skipping unreadable directory", "path", root, "err", err)
		return
	}
	stack := []*frame{{dir: root, info: rootInfo, entries: entries}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.entries) {
			stack = stack[:len(stack)-1]
			continue
		}
		entry := top.entries[top.next]
		top.next++

		p := filepath.Join(top.dir, entry.Name())
		info, err := os.Stat(p)
		if err != nil {
			c.logger().Warn("skipping entry", "path", p, "err", err)
			continue
		}

		switch {
		case info.Mode().IsRegular():
			acc.add(newFile(p, info))
		case info.IsDir():
			if onStack(stack, info) {
				c.logger().Warn("skipping directory cycle", "path", p)
				continue
			}
			children, err := os.ReadDir(p)
			if err != nil {
				c.logger().Warn("skipping unreadable directory", "path", p, "err", err)
				continue
			}
			acc.add(newFile(p, info))
			stack = append(stack, &frame{dir: p, info: info, entries: children})
		default:
			c.logger().Warn("skipping unsupported file type", "path", p, "mode", info.Mode().Type())
		}
	}
}

func onStack(stack []*frame, info fs.FileInfo) bool {
	for _, f := range stack {
		if os.SameFile(f.info, info) {
			return true
		}
	}
	return false
}

func (c *Collector) logger() *log.Logger {
	if c.Logger == nil {
		return log.New(io.Discard)
	}
	return c.Logger
}

func (a *accumulator) add(f File) {
	if _, ok := a.seen[f.Name]; ok {
		return
	}
	a.seen[f.Name] = struct{}{}
	a.files = append(a.files, f)
}

func newFile(p string, info fs.FileInfo) File {
	f := File{
		Name: path.Clean(filepath.ToSlash(p)),
		Type: archive.TypeOf(info.Mode()),
		Mode: archive.ModeBits(info.Mode()),
	}
	if f.Type == archive.TypeRegular {
		f.Length = info.Size()
	}
	return f
}

// trimSeparators removes trailing path separators, keeping a lone root.
func trimSeparators(p string) string {
	trimmed := strings.TrimRight(p, `/`+string(filepath.Separator))
	if trimmed == "" && p != "" {
		return p[:1]
	}
	return trimmed
}
