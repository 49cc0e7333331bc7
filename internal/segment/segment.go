// Package segment splits normalized document text into bounded, ordered
// pieces small enough for one model call each.
package segment

// DefaultMaxChars is the segment size used when none is configured.
const DefaultMaxChars = 4000

// Segment is a contiguous slice of the document text. Index is 1-based.
// Lead carries trailing context from the previous segment and is not part
// of Text.
type Segment struct {
	Index int
	Text  string
	Lead  string
	// Start is the rune offset of Text within the source text.
	Start int
}

// Prompt returns the text shown to the model for this segment.
func (s Segment) Prompt() string {
	if s.Lead == "" {
		return s.Text
	}
	return s.Lead + s.Text
}

// Segmenter splits text into segments of at most Max runes. Overlap > 0
// fills Lead with the last Overlap runes of the previous segment.
type Segmenter struct {
	Max     int
	Overlap int
}

// Split is Segmenter{Max: max}.Split(text).
func Split(text string, max int) []Segment {
	return Segmenter{Max: max}.Split(text)
}

// Split cuts text into ceil(len/Max) segments whose Texts concatenate back to
// text. Empty text yields no segments.
func (s Segmenter) Split(text string) []Segment {
	if text == "" {
		return nil
	}
	max := s.Max
	if max < 1 {
		max = DefaultMaxChars
	}
	overlap := s.Overlap
	if overlap < 0 || overlap >= max {
		overlap = 0
	}

	runes := []rune(text)
	if len(runes) <= max {
		return []Segment{{Index: 1, Text: text}}
	}

	out := make([]Segment, 0, (len(runes)+max-1)/max)
	for i := 0; i < len(runes); i += max {
		end := i + max
		if end > len(runes) {
			end = len(runes)
		}
		seg := Segment{
			Index: len(out) + 1,
			Text:  string(runes[i:end]),
			Start: i,
		}
		if overlap > 0 && i > 0 {
			seg.Lead = string(runes[i-overlap : i])
		}
		out = append(out, seg)
	}
	return out
}
