package textrun

import (
	"unicode"

	"github.com/npillmayer/textrun/bidi"
	"golang.org/x/text/language"
)

// CharFlags are properties of a character relevant for run resolution.
type CharFlags uint16

// Character properties reported by a Classifier.
const (
	IsLetter CharFlags = 1 << iota
	IsDigit
	IsLineBreak
	IsParaBreak
	IsFormatAnchor
	IsRTL
)

// StopMask is the set of flags which end a run of text. Characters with
// one of these flags are carved out as runs of their own.
const StopMask = IsLineBreak | IsParaBreak | IsFormatAnchor

// CharClass is the classification of a single character.
type CharClass struct {
	Script language.Script // set for letters only
	Flags  CharFlags
}

// Is checks if c has any of the flags f.
func (c CharClass) Is(f CharFlags) bool {
	return c.Flags&f != 0
}

// Classifier classifies characters. Implementations must be pure functions.
type Classifier interface {
	Classify(r rune) CharClass
}

// ClassifierFunc lets clients use ordinary functions as Classifiers.
type ClassifierFunc func(rune) CharClass

// Classify calls f.
func (f ClassifierFunc) Classify(r rune) CharClass {
	return f(r)
}

// DefaultClassifier classifies characters with the help of the Unicode
// tables of packages unicode and golang.org/x/text.
var DefaultClassifier Classifier = ClassifierFunc(classify)

func classify(r rune) CharClass {
	var c CharClass
	switch r {
	case '\n', '\r', '\v', '\f', 0x85, LineSeparator:
		c.Flags |= IsLineBreak
	case ParagraphSeparator:
		c.Flags |= IsParaBreak
	case '\t', ObjectReplacement:
		c.Flags |= IsFormatAnchor
	}
	if unicode.IsLetter(r) {
		c.Flags |= IsLetter
		c.Script = ScriptOf(r)
	} else if unicode.IsDigit(r) {
		c.Flags |= IsDigit
	}
	if bidi.IsRightToLeft(r) {
		c.Flags |= IsRTL
	}
	return c
}

// scriptTable maps Unicode script tables to ISO 15924 codes. Scripts not
// listed are reported as "Zyyy" (common).
var scriptTable = []struct {
	table *unicode.RangeTable
	code  string
}{
	{unicode.Latin, "Latn"},
	{unicode.Arabic, "Arab"},
	{unicode.Hebrew, "Hebr"},
	{unicode.Syriac, "Syrc"},
	{unicode.Thaana, "Thaa"},
	{unicode.Nko, "Nkoo"},
	{unicode.Greek, "Grek"},
	{unicode.Cyrillic, "Cyrl"},
	{unicode.Armenian, "Armn"},
	{unicode.Georgian, "Geor"},
	{unicode.Devanagari, "Deva"},
	{unicode.Bengali, "Beng"},
	{unicode.Gurmukhi, "Guru"},
	{unicode.Gujarati, "Gujr"},
	{unicode.Oriya, "Orya"},
	{unicode.Tamil, "Taml"},
	{unicode.Telugu, "Telu"},
	{unicode.Kannada, "Knda"},
	{unicode.Malayalam, "Mlym"},
	{unicode.Thai, "Thai"},
	{unicode.Lao, "Laoo"},
	{unicode.Tibetan, "Tibt"},
	{unicode.Myanmar, "Mymr"},
	{unicode.Khmer, "Khmr"},
	{unicode.Mongolian, "Mong"},
	{unicode.Ethiopic, "Ethi"},
	{unicode.Han, "Hani"},
	{unicode.Hiragana, "Hira"},
	{unicode.Katakana, "Kana"},
	{unicode.Hangul, "Hang"},
}

var scripts []language.Script

var scriptCommon = language.MustParseScript("Zyyy")

func init() {
	scripts = make([]language.Script, len(scriptTable))
	for i, s := range scriptTable {
		scripts[i] = language.MustParseScript(s.code)
	}
}

// ScriptOf returns the script of a rune.
func ScriptOf(r rune) language.Script {
	if r < 0x80 { // fast path for ASCII
		if unicode.IsLetter(r) {
			return scripts[0]
		}
		return scriptCommon
	}
	for i, s := range scriptTable {
		if unicode.Is(s.table, r) {
			return scripts[i]
		}
	}
	return scriptCommon
}
