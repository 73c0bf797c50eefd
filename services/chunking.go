package services

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Chunker splits long text into overlapping chunks for embedding.
// Cuts prefer paragraph and sentence boundaries and fall back to hard
// character cuts; consecutive chunks share `overlap` characters so
// retrieval keeps cross-boundary context.
type Chunker struct {
	chunkSize     int
	overlap       int
	boundaryRegex *regexp.Regexp
}

func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Chunker{
		chunkSize: chunkSize,
		overlap:   overlap,
		// Paragraph breaks and sentence enders are both acceptable cut points.
		boundaryRegex: regexp.MustCompile(`\n\n+|[.!?]+\s+`),
	}
}

// Split chunks text into pieces of at most chunkSize characters. Sizes
// and offsets count runes, not bytes, so hard cuts never land inside a
// multi-byte character. Every chunk is a literal substring of the
// input; the next chunk starts `overlap` characters before the previous
// one ended. Empty input yields no chunks.
func (c *Chunker) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= c.chunkSize {
		return []string{text}
	}

	boundaries := c.boundaryEnds(text)

	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		if end >= len(runes) {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		// Prefer the last boundary inside the window over a hard cut.
		if cut, ok := lastBoundaryIn(boundaries, start, end); ok {
			end = cut
		}

		chunks = append(chunks, string(runes[start:end]))

		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// boundaryEnds returns the rune positions immediately after each
// paragraph break or sentence ender.
func (c *Chunker) boundaryEnds(text string) []int {
	matches := c.boundaryRegex.FindAllStringIndex(text, -1)
	ends := make([]int, 0, len(matches))
	byteOff, runeOff := 0, 0
	for _, m := range matches {
		runeOff += utf8.RuneCountInString(text[byteOff:m[1]])
		byteOff = m[1]
		ends = append(ends, runeOff)
	}
	return ends
}

// lastBoundaryIn finds the largest boundary position in (start, end].
func lastBoundaryIn(boundaries []int, start, end int) (int, bool) {
	best := -1
	for _, b := range boundaries {
		if b > start && b <= end && b > best {
			best = b
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}
