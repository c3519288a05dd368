// Package textchunk splits page text into overlapping, token-budgeted chunks.
package textchunk

import "strings"

const (
	// DefaultChunkSize is the token budget per chunk.
	DefaultChunkSize = 300
	// DefaultOverlapSize is how many trailing tokens each chunk repeats from
	// its predecessor, so nothing is lost at a boundary.
	DefaultOverlapSize = 100
)

// Split breaks text into chunks of at most size whitespace-delimited tokens.
// Every chunk after the first starts with the previous chunk's trailing
// overlap tokens. Text with no more than size tokens stays in one chunk.
// Blank text yields no chunks.
func Split(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultOverlapSize
	}
	if overlap >= size {
		overlap = size / 2
	}

	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil
	}

	step := size - overlap
	var chunks []string
	for i := 0; ; i += step {
		end := i + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, strings.Join(tokens[i:end], " "))
		if end == len(tokens) {
			break
		}
	}
	return chunks
}
