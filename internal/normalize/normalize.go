// Package normalize canonicalizes text so that ingested chunks and incoming
// queries share one token surface. The pipeline is deterministic, pure and
// idempotent for any fixed option set.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Options toggles individual pipeline stages. All stages default to on.
type Options struct {
	ConvertToLowerCase         bool
	NormalizeUrls              bool
	NormalizeEmails            bool
	NormalizeSpecialCharacters bool
	NormalizeNumbers           bool
	RemovePunctuation          bool
	RemoveDiacritics           bool
	NormalizeQuotes            bool
}

// DefaultOptions returns options with every stage enabled.
func DefaultOptions() Options {
	return Options{
		ConvertToLowerCase:         true,
		NormalizeUrls:              true,
		NormalizeEmails:            true,
		NormalizeSpecialCharacters: true,
		NormalizeNumbers:           true,
		RemovePunctuation:          true,
		RemoveDiacritics:           true,
		NormalizeQuotes:            true,
	}
}

var (
	multiWhitespacePattern = regexp.MustCompile(`\s+`)
	urlPattern             = regexp.MustCompile(`https?://\S+`)
	emailPattern           = regexp.MustCompile(`[\w.-]+@[\w.-]+\.\w+`)
	nonAlphanumericPattern = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	thousandsPattern       = regexp.MustCompile(`(\d),(\d)`)
)

var lineBreakReplacer = strings.NewReplacer(
	"\r\n", " ",
	"\n", " ",
	"\t", " ",
	"\v", " ",
	"\f", " ",
)

var specialCharReplacer = strings.NewReplacer(
	"&", " and ",
	"%", " percent ",
	"$", " USD ",
	"€", " EUR ",
	"£", " GBP ",
	"@", " at ",
	"#", " number ",
)

var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"`", "'", // backtick
	"´", "'", // acute accent
	"′", "'", // prime
	"″", `"`, // double prime
)

// Text runs the normalization pipeline over text. Empty input is returned
// unchanged.
func Text(text string, opts Options) string {
	if text == "" {
		return text
	}

	s := norm.NFKC.String(text)

	if opts.ConvertToLowerCase {
		s = strings.ToLower(s)
	}

	if opts.NormalizeUrls {
		s = urlPattern.ReplaceAllString(s, " URL ")
	}

	if opts.NormalizeEmails {
		s = emailPattern.ReplaceAllString(s, " EMAIL ")
	}

	s = lineBreakReplacer.Replace(s)
	s = collapseWhitespace(s)

	if opts.NormalizeSpecialCharacters {
		s = specialCharReplacer.Replace(s)
	}

	if opts.NormalizeNumbers {
		// Non-overlapping matches leave every other separator in runs like
		// "1,2,3", so repeat until stable.
		for {
			next := thousandsPattern.ReplaceAllString(s, "${1}${2}")
			if next == s {
				break
			}
			s = next
		}
	}

	if opts.RemovePunctuation {
		s = nonAlphanumericPattern.ReplaceAllString(s, " ")
	}

	if opts.RemoveDiacritics {
		s = removeDiacritics(s)
	}

	if opts.NormalizeQuotes {
		s = quoteReplacer.Replace(s)
	}

	s = collapseWhitespace(s)
	if opts.ConvertToLowerCase {
		// Stage replacements insert upper-case tokens; fold once more so a
		// second run is a no-op.
		s = strings.ToLower(s)
	}
	return s
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(multiWhitespacePattern.ReplaceAllString(s, " "))
}

// removeDiacritics decomposes, drops combining marks and recomposes.
func removeDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
