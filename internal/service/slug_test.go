package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "spaces", input: "Random Category String", want: "random-category-string"},
		{name: "accents", input: "Café  Olé!", want: "cafe-ole"},
		{name: "punctuation runs", input: "Go -- Web & APIs", want: "go-web-apis"},
		{name: "trim edges", input: "  --Django--  ", want: "django"},
		{name: "digits", input: "Python 3.12", want: "python-3-12"},
		{name: "only symbols", input: "!!!", want: ""},
		{name: "empty", input: "", want: ""},
		{name: "non latin", input: "日本語", want: ""},
		{name: "full width", input: "ＧＯ", want: "go"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input))
		})
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{
		"Random Category String",
		"Café  Olé!",
		"a--b__c",
		"-leading and trailing-",
		"Ünïcödé Names 2024",
		"already-a-slug",
	}

	for _, input := range inputs {
		once := Slugify(input)
		assert.Equal(t, once, Slugify(once), "input %q", input)
	}
}
