package utils

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// markdownV2Reserved lists what Telegram requires to be escaped in MarkdownV2.
const markdownV2Reserved = "\\_*[]()~`>#+-=|{}.!"

// NormalizeText brings user input and catalog labels to one comparable form:
// NFC, Persian letters instead of their Arabic look-alikes, ASCII digits and
// single spaces (ZWNJ counts as a space).
func NormalizeText(s string) string {
	t := transform.Chain(norm.NFC, runes.Map(foldRune))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

func foldRune(r rune) rune {
	switch {
	case r >= '\u06f0' && r <= '\u06f9':
		return '0' + (r - '\u06f0')
	case r >= '\u0660' && r <= '\u0669':
		return '0' + (r - '\u0660')
	case r == 'ي' || r == 'ى':
		return 'ی'
	case r == 'ك':
		return 'ک'
	case r == '\u200c':
		return ' '
	}
	return r
}

// EscapeMarkdownV2 escapes literal text for parse_mode=MarkdownV2.
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
