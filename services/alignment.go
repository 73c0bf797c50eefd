package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Ramprakash852/AI-storyteller/models"
)

// WordErrorRate computes the Levenshtein word-level edit distance between
// the reference and hypothesis, divided by the reference length.
// Substitutions, insertions and deletions all cost 1. Heavy insertions
// can push the rate above 1.0; callers must clamp when scoring.
func WordErrorRate(reference, hypothesis string) float64 {
	ref := strings.Fields(reference)
	hyp := strings.Fields(hypothesis)

	if len(ref) == 0 {
		if len(hyp) == 0 {
			return 0
		}
		return 1
	}

	// Two-row edit distance DP over words.
	prev := make([]int, len(hyp)+1)
	curr := make([]int, len(hyp)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ref); i++ {
		curr[0] = i
		for j := 1; j <= len(hyp); j++ {
			cost := 1
			if ref[i-1] == hyp[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return float64(prev[len(hyp)]) / float64(len(ref))
}

// ReadingScore converts a word error rate into a 0-100 accuracy score.
// Error rates above 1.0 clamp to 0 rather than going negative.
func ReadingScore(reference, hypothesis string) float64 {
	score := 100 * (1 - WordErrorRate(reference, hypothesis))
	if score < 0 {
		return 0
	}
	return score
}

// SplitSentences breaks text into sentences at terminal punctuation,
// keeping the terminators with their sentence.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if runes[i] == '.' || runes[i] == '!' || runes[i] == '?' {
			// Absorb a run of terminators ("?!", "...") into one sentence.
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
				current.WriteRune(runes[i])
			}
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// tokenize splits a sentence into word and punctuation tokens, each
// punctuation mark standing alone.
func tokenize(sentence string) []string {
	var tokens []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			tokens = append(tokens, word.String())
			word.Reset()
		}
	}

	for _, r := range sentence {
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			// Keep in-word apostrophes ("don't") attached.
			if r == '\'' && word.Len() > 0 {
				word.WriteRune(r)
				continue
			}
			flush()
			tokens = append(tokens, string(r))
		default:
			word.WriteRune(r)
		}
	}
	flush()

	return tokens
}

func punctuationOnly(tokens []string) []string {
	punct := make([]string, 0)
	for _, tok := range tokens {
		if len([]rune(tok)) == 1 {
			r := []rune(tok)[0]
			if unicode.IsPunct(r) || unicode.IsSymbol(r) {
				punct = append(punct, tok)
			}
		}
	}
	return punct
}

// AnalyzePunctuation aligns transcript and story sentences positionally
// up to the shorter count and records every sentence index where the
// punctuation token sequences differ.
func AnalyzePunctuation(transcript, story string) []models.PunctuationDiff {
	transcriptSentences := SplitSentences(transcript)
	storySentences := SplitSentences(story)

	minLen := len(transcriptSentences)
	if len(storySentences) < minLen {
		minLen = len(storySentences)
	}

	differences := make([]models.PunctuationDiff, 0)
	for i := 0; i < minLen; i++ {
		transcriptPunct := punctuationOnly(tokenize(transcriptSentences[i]))
		storyPunct := punctuationOnly(tokenize(storySentences[i]))

		if !equalStrings(transcriptPunct, storyPunct) {
			differences = append(differences, models.PunctuationDiff{
				SentenceIndex:         i,
				TranscriptPunctuation: transcriptPunct,
				StoryPunctuation:      storyPunct,
			})
		}
	}

	return differences
}

// HighlightDifferences produces a word-level diff between the original
// text and the reading, marking words missing from the reading in red
// spans and extra words in green spans. Unchanged words pass through.
func HighlightDifferences(originalText, yourReading string) string {
	original := strings.Fields(originalText)
	reading := strings.Fields(yourReading)

	// LCS table over words.
	lcs := make([][]int, len(original)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(reading)+1)
	}
	for i := len(original) - 1; i >= 0; i-- {
		for j := len(reading) - 1; j >= 0; j-- {
			if original[i] == reading[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var out []string
	i, j := 0, 0
	for i < len(original) && j < len(reading) {
		switch {
		case original[i] == reading[j]:
			out = append(out, original[i])
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			out = append(out, removedSpan(original[i]))
			i++
		default:
			out = append(out, addedSpan(reading[j]))
			j++
		}
	}
	for ; i < len(original); i++ {
		out = append(out, removedSpan(original[i]))
	}
	for ; j < len(reading); j++ {
		out = append(out, addedSpan(reading[j]))
	}

	return strings.Join(out, " ")
}

func removedSpan(word string) string {
	return fmt.Sprintf(`<span class="bg-red-200 text-red-700 px-1 rounded">%s</span>`, word)
}

func addedSpan(word string) string {
	return fmt.Sprintf(`<span class="bg-green-200 text-green-700 px-1 rounded">%s</span>`, word)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
