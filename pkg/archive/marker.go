// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bytes"
	"sync"
)

// MarkerSize is the length in bytes of every section marker.
const MarkerSize = 16

// Marker identifies a section boundary token.
type Marker int

// Recognized markers. MarkerNone is returned for anything else.
const (
	MarkerNone Marker = iota
	MarkerData
	MarkerGlobal
	MarkerHeader
	MarkerEnd
)

// Marker tags. The full sentinels are assembled from these at runtime; a
// scanner reading its own executable must never find a complete marker in
// the compiled program text.
const (
	markerFence  = "***"
	markerPrefix = "EZN"
	tagData      = "DATA"
	tagGlobal    = "GLOB"
	tagHeader    = "HEAD"
	tagEnd       = "END "
)

var (
	markersOnce sync.Once
	markers     map[Marker][]byte
)

func initMarkers() {
	markersOnce.Do(func() {
		build := func(tag string) []byte {
			var b bytes.Buffer
			for i, part := range []string{markerFence, markerPrefix, tag, markerFence} {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(part)
			}
			return b.Bytes()
		}
		markers = map[Marker][]byte{
			MarkerData:   build(tagData),
			MarkerGlobal: build(tagGlobal),
			MarkerHeader: build(tagHeader),
			MarkerEnd:    build(tagEnd),
		}
	})
}

// Classify reports which marker, if any, starts at b[0]. Only the first
// MarkerSize bytes are compared; shorter input is never a marker.
func Classify(b []byte) Marker {
	if len(b) < MarkerSize {
		return MarkerNone
	}
	// Cheap reject: every sentinel starts with '*'.
	if b[0] != '*' {
		return MarkerNone
	}
	initMarkers()
	b = b[:MarkerSize]
	for _, m := range []Marker{MarkerData, MarkerGlobal, MarkerHeader, MarkerEnd} {
		if bytes.Equal(b, markers[m]) {
			return m
		}
	}
	return MarkerNone
}

// MarkerBytes returns a copy of the sentinel for m, or nil for MarkerNone.
func MarkerBytes(m Marker) []byte {
	initMarkers()
	tok, ok := markers[m]
	if !ok {
		return nil
	}
	return bytes.Clone(tok)
}

// String returns a human-readable name for the marker.
func (m Marker) String() string {
	switch m {
	case MarkerData:
		return "DATA"
	case MarkerGlobal:
		return "GLOBAL"
	case MarkerHeader:
		return "HEADER"
	case MarkerEnd:
		return "END"
	default:
		return "NONE"
	}
}
