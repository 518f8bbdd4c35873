package utils

import (
	"strings"
	"unicode"
)

// CountWords counts plain-text words in rich-text content. Markup is
// stripped first so tags and entities don't inflate the count.
func CountWords(content string) int {
	text := StripMarkup(content)

	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 0 {
			count++
		}
	}

	return count
}

// StripMarkup removes HTML-style tags and collapses common entities,
// yielding the plain text a reader would see. Tags become word boundaries
// so "</p><p>" doesn't glue adjacent words together.
func StripMarkup(content string) string {
	var b strings.Builder
	b.Grow(len(content))

	inTag := false
	for _, r := range content {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}

	text := b.String()
	replacer := strings.NewReplacer(
		"&nbsp;", " ",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&#39;", "'",
	)
	return replacer.Replace(text)
}

// Truncate cuts s to at most max bytes without splitting a multi-byte rune,
// appending an ellipsis when anything was cut.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRight(s[:cut], " \t\n") + "..."
}

func utf8RuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
