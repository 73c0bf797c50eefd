package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkerShortText(t *testing.T) {
	c := NewChunker(1000, 200)
	chunks := c.Split("A short story about a brave turtle.")
	if len(chunks) != 1 {
		t.Fatalf("expected single chunk, got %d", len(chunks))
	}
	if chunks[0] != "A short story about a brave turtle." {
		t.Errorf("short text should pass through unchanged, got %q", chunks[0])
	}
}

func TestChunkerEmptyText(t *testing.T) {
	c := NewChunker(1000, 200)
	if chunks := c.Split(""); chunks != nil {
		t.Fatalf("expected nil for empty text, got %v", chunks)
	}
	if chunks := c.Split("   \n\n  "); chunks != nil {
		t.Fatalf("expected nil for whitespace-only text, got %v", chunks)
	}
}

func TestChunkerSizeAndSubstrings(t *testing.T) {
	text := strings.Repeat("The little fox ran through the forest. ", 100)
	c := NewChunker(200, 50)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if len(chunk) > 200 {
			t.Errorf("chunk %d exceeds size limit: %d bytes", i, len(chunk))
		}
		if chunk == "" {
			t.Errorf("chunk %d is empty", i)
		}
		if !strings.Contains(text, chunk) {
			t.Errorf("chunk %d is not a literal substring of the input", i)
		}
	}
}

func TestChunkerCoversWholeText(t *testing.T) {
	// Unique sentences so each chunk locates one position in the input.
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString(strings.Repeat("x", i%7))
		b.WriteString(stringsFromInt(i))
		b.WriteString(" dragons paragraph.\n\n")
	}
	text := b.String()

	c := NewChunker(150, 30)
	chunks := c.Split(text)

	// Successive chunks must start at or before the previous chunk's
	// end, leaving no gaps.
	covered := 0
	for i, chunk := range chunks {
		start := strings.Index(text, chunk)
		if start < 0 {
			t.Fatalf("chunk %d is not a substring of the input", i)
		}
		if start > covered {
			t.Errorf("gap before chunk %d: coverage ended at %d, chunk starts at %d", i, covered, start)
		}
		if end := start + len(chunk); end > covered {
			covered = end
		}
	}
	if covered != len(text) {
		t.Errorf("chunks cover %d of %d bytes", covered, len(text))
	}
}

func stringsFromInt(n int) string {
	digits := []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}
	if n < 10 {
		return digits[n]
	}
	return stringsFromInt(n/10) + "-" + digits[n%10]
}

func TestChunkerCutsOnRuneBoundaries(t *testing.T) {
	// Three-byte runes with no sentence enders force hard cuts; every
	// cut must still fall between characters.
	text := strings.Repeat("亀は勇気を学んだ", 60)
	c := NewChunker(50, 10)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk) {
			t.Fatalf("chunk %d splits a multi-byte character: %q", i, chunk)
		}
		if n := utf8.RuneCountInString(chunk); n > 50 {
			t.Errorf("chunk %d has %d characters, limit is 50", i, n)
		}
		if !strings.Contains(text, chunk) {
			t.Errorf("chunk %d is not a literal substring of the input", i)
		}
	}
}

func TestChunkerPrefersSentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence follows. " + strings.Repeat("More filler words to overflow the window. ", 10)
	c := NewChunker(100, 20)
	chunks := c.Split(text)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	// The first cut happens after a sentence terminator, not mid-word.
	first := strings.TrimRight(chunks[0], " ")
	if !strings.HasSuffix(first, ".") {
		t.Errorf("expected first chunk to end on a sentence boundary, got %q", chunks[0])
	}
}
