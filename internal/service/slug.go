package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify derives a lowercase, hyphen-separated token from a category name.
//
//	Slugify("Random Category String") // "random-category-string"
//	Slugify("Café  Olé!")             // "cafe-ole"
//
// Output only contains [a-z0-9-] without leading, trailing or repeated hyphens,
// so Slugify(Slugify(s)) == Slugify(s).
func Slugify(name string) string {
	folded, _, err := transform.String(newMarkStripper(), name)
	if err != nil {
		folded = name
	}

	var b strings.Builder
	b.Grow(len(folded))
	pendingHyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// NFKD 分解后去掉组合符号，é -> e。Chain 带内部状态，每次调用单独创建。
func newMarkStripper() transform.Transformer {
	return transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
