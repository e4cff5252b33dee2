// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	for _, m := range []Marker{MarkerData, MarkerGlobal, MarkerHeader, MarkerEnd} {
		tok := MarkerBytes(m)
		require.Len(t, tok, MarkerSize, "marker %s", m)
		assert.Equal(t, m, Classify(tok), "marker %s", m)

		// Trailing bytes beyond the marker are ignored.
		assert.Equal(t, m, Classify(append(tok, "\nname x"...)), "marker %s with suffix", m)
	}
}

func TestClassifyRejects(t *testing.T) {
	t.Parallel()

	data := MarkerBytes(MarkerData)

	tests := []struct {
		name string
		in   []byte
	}{
		{name: "empty", in: nil},
		{name: "short", in: data[:MarkerSize-1]},
		{name: "lower case", in: bytes.ToLower(data)},
		{name: "shifted", in: append([]byte{' '}, data[:MarkerSize-1]...)},
		{name: "binary noise", in: bytes.Repeat([]byte{0xff}, MarkerSize)},
		{name: "unknown tag", in: bytes.Replace(bytes.Clone(data), []byte("DATA"), []byte("DATX"), 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, MarkerNone, Classify(tt.in))
		})
	}
}

func TestMarkerBytesReturnsCopy(t *testing.T) {
	t.Parallel()

	tok := MarkerBytes(MarkerEnd)
	tok[0] = 'x'
	assert.Equal(t, MarkerEnd, Classify(MarkerBytes(MarkerEnd)))
	assert.Nil(t, MarkerBytes(MarkerNone))
}

func TestMarkerShape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "*** EZN END  ***", string(MarkerBytes(MarkerEnd)))
	assert.Equal(t, "*** EZN GLOB ***", string(MarkerBytes(MarkerGlobal)))
}

func TestClassifyConcurrentFirstUse(t *testing.T) {
	t.Parallel()

	tok := MarkerBytes(MarkerHeader)
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, MarkerHeader, Classify(tok))
		}()
	}
	wg.Wait()
}

func TestMarkerString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "GLOBAL", MarkerGlobal.String())
	assert.Equal(t, "NONE", Marker(42).String())
}
