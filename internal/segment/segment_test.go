package segment

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestSplitShortTextIsOneSegment(t *testing.T) {
	segs := Split("factura 1", 4000)
	require.Len(t, segs, 1)
	assert.Equal(t, 1, segs[0].Index)
	assert.Equal(t, "factura 1", segs[0].Text)
}

func TestSplitTenThousandChars(t *testing.T) {
	text := strings.Repeat("a", 10000)

	segs := Split(text, 4000)
	require.Len(t, segs, 3)
	assert.Equal(t, 4000, len(segs[0].Text))
	assert.Equal(t, 4000, len(segs[1].Text))
	assert.Equal(t, 2000, len(segs[2].Text))
	assert.Equal(t, text, join(segs))
}

func TestSplitReconstructsAndBounds(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
	}{
		{"exact multiple", strings.Repeat("x", 12), 4},
		{"remainder", "abcdefghijklmnopqrstuvwxyz", 10},
		{"multibyte", strings.Repeat("ñá€", 7), 5},
		{"max one", "hola", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			segs := Split(tt.text, tt.max)
			n := utf8.RuneCountInString(tt.text)
			assert.Len(t, segs, (n+tt.max-1)/tt.max)
			assert.Equal(t, tt.text, join(segs))
			for i, s := range segs {
				assert.Equal(t, i+1, s.Index)
				assert.LessOrEqual(t, utf8.RuneCountInString(s.Text), tt.max)
				assert.True(t, utf8.ValidString(s.Text))
				assert.Empty(t, s.Lead)
			}
		})
	}
}

func TestSplitEmptyAndDefault(t *testing.T) {
	assert.Empty(t, Split("", 10))

	segs := Split(strings.Repeat("b", DefaultMaxChars+1), 0)
	assert.Len(t, segs, 2)
}

func TestSegmenterOverlapFillsLead(t *testing.T) {
	segs := Segmenter{Max: 10, Overlap: 3}.Split("abcdefghijklmnopqrstuvwxyz")
	require.Len(t, segs, 3)

	assert.Empty(t, segs[0].Lead)
	assert.Equal(t, "hij", segs[1].Lead)
	assert.Equal(t, "klmnopqrst", segs[1].Text)
	assert.Equal(t, "hijklmnopqrst", segs[1].Prompt())
	assert.Equal(t, "rst", segs[2].Lead)
	assert.Equal(t, 20, segs[2].Start)
	assert.Equal(t, "abcdefghijklmnopqrstuvwxyz", join(segs))
}
