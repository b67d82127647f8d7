// Package normalize maps human-entered names to a canonical comparable form.
//
// The same function is applied when writing the search projection and when
// reading a search query, so index and query always agree.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// arabicMarks covers harakat, Quranic annotation signs and the superscript
// alef. U+06DD, U+06DE, U+06E5, U+06E6 and U+06E9 are letters or symbols and
// are left alone.
var arabicMarks = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x0610, Hi: 0x061A, Stride: 1},
		{Lo: 0x0640, Hi: 0x0640, Stride: 1},
		{Lo: 0x064B, Hi: 0x065F, Stride: 1},
		{Lo: 0x0670, Hi: 0x0670, Stride: 1},
		{Lo: 0x06D6, Hi: 0x06DC, Stride: 1},
		{Lo: 0x06DF, Hi: 0x06E4, Stride: 1},
		{Lo: 0x06E7, Hi: 0x06E8, Stride: 1},
		{Lo: 0x06EA, Hi: 0x06ED, Stride: 1},
	},
}

// foldLetter maps visually similar alef forms to the bare alef.
func foldLetter(r rune) rune {
	switch r {
	case 'أ', 'إ', 'آ', 'ٱ':
		return 'ا'
	}
	return r
}

// The trailing NFC recomposes sequences that a removed mark was blocking,
// which keeps Arabic idempotent.
func newTransformer() transform.Transformer {
	return transform.Chain(
		norm.NFC,
		runes.Remove(runes.In(arabicMarks)),
		runes.Map(foldLetter),
		norm.NFC,
	)
}

// Arabic strips diacritics and tatweel and folds alef variants.
// It never fails: on a transform error the input is returned unchanged.
func Arabic(text string) string {
	if text == "" {
		return text
	}
	out, _, err := transform.String(newTransformer(), text)
	if err != nil {
		return text
	}
	return out
}

// Ptr normalizes an optional value; nil stays nil.
func Ptr(text *string) *string {
	if text == nil {
		return nil
	}
	out := Arabic(*text)
	return &out
}

// Projection builds the searchable text stored for a person: the normalized
// full name followed by the normalized nickname, lower-cased. Case folding
// happens here because SQLite's LOWER only folds ASCII.
func Projection(fullName, nickname string) string {
	return strings.ToLower(strings.TrimSpace(Arabic(fullName) + " " + Arabic(nickname)))
}

// Query prepares raw search input: trims, collapses inner whitespace and
// normalizes.
func Query(q string) string {
	return Arabic(strings.Join(strings.Fields(q), " "))
}
