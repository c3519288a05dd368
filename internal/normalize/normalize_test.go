package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextDefaults(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain sentence", "Hello, World!", "hello world"},
		{"whitespace collapse", "a\t b\r\nc\v d\f e", "a b c d e"},
		{"url placeholder", "see https://example.com/a?b=c now", "see url now"},
		{"email placeholder", "write to dev@example.com today", "write to email today"},
		{"currency symbol", "$5", "usd 5"},
		{"ampersand", "fish & chips", "fish and chips"},
		{"thousands separators", "1,000,000 items", "1000000 items"},
		{"alternating separators", "1,2,3", "123"},
		{"diacritics lost to punctuation strip", "café", "caf"},
		{"leading and trailing space", "  hi  ", "hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input, opts))
		})
	}
}

func TestTextSelectiveStages(t *testing.T) {
	t.Run("diacritics only", func(t *testing.T) {
		got := Text("café naïve", Options{RemoveDiacritics: true})
		assert.Equal(t, "cafe naive", got)
	})

	t.Run("quotes only", func(t *testing.T) {
		got := Text("“hi” and ‘there’", Options{NormalizeQuotes: true})
		assert.Equal(t, `"hi" and 'there'`, got)
	})

	t.Run("no lowercase", func(t *testing.T) {
		got := Text("Hello World", Options{})
		assert.Equal(t, "Hello World", got)
	})

	t.Run("url placeholder keeps case when not lowering", func(t *testing.T) {
		got := Text("see https://example.com now", Options{NormalizeUrls: true})
		assert.Equal(t, "see URL now", got)
	})
}

func TestTextEmptyInput(t *testing.T) {
	assert.Equal(t, "", Text("", DefaultOptions()))
}

func TestTextIdempotent(t *testing.T) {
	samples := []string{
		"Hello, World!",
		"see https://example.com/a?b=c and mail dev@example.com",
		"$1,000,000 & 50% off “today”",
		"café résumé naïve",
		"  spaced\tout\r\ntext  ",
		"1,2,3,4,5",
		"MiXeD CaSe @ #1",
	}
	optionSets := []Options{
		DefaultOptions(),
		{},
		{ConvertToLowerCase: true, NormalizeUrls: true, NormalizeEmails: true},
		{NormalizeSpecialCharacters: true, NormalizeNumbers: true},
		{RemovePunctuation: true, RemoveDiacritics: true, NormalizeQuotes: true},
	}

	for _, opts := range optionSets {
		for _, s := range samples {
			once := Text(s, opts)
			assert.Equal(t, once, Text(once, opts), "not idempotent for %q with %+v", s, opts)
		}
	}
}
