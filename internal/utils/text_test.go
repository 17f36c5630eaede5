package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"persian digits", "۴۵", "45"},
		{"arabic-indic digits", "٩٠", "90"},
		{"arabic yeh and kaf", "\u0643\u0631\u062c \u0639\u0644\u064a", "\u06a9\u0631\u062c \u0639\u0644\u06cc"},
		{"zwnj and spaces", "  سعادت\u200cآباد  ", "سعادت آباد"},
		{"collapses inner spaces", "کل   طبقات", "کل طبقات"},
		{"ascii untouched", "abc 12", "abc 12"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeText(tc.in))
		})
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `قیمت: \*1\.200\.000\* تومان \(تقریبی\)\!`, EscapeMarkdownV2("قیمت: *1.200.000* تومان (تقریبی)!"))
	assert.Equal(t, `a\_b\-c\\d`, EscapeMarkdownV2(`a_b-c\d`))
	assert.Equal(t, "", EscapeMarkdownV2(""))
}
