package uax11

import (
	"unicode"

	jj "github.com/cloudfoundry/jibber_jabber"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
)

// Category is one of 6 char categories as defined in UAX#11.
type Category int8

// East_Asian_Width properties
const (
	N  Category = iota // Neutral (Not East Asian)
	A                  // East Asian Ambiguous
	W                  // East Asian Wide
	Na                 // East Asian Narrow
	H                  // East Asian Halfwidth
	F                  // East Asian Fullwidth
)

func (c Category) String() string {
	return [...]string{"N", "A", "W", "Na", "H", "F"}[c]
}

// WidthCategory returns the width category of a single rune as proposed by the UAX#11
// standard. We consult the tables of package golang.org/x/text/width.
//
// Returns one of N, A, Na, W, H, F.
func WidthCategory(r rune) Category {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianAmbiguous:
		return A
	case width.EastAsianWide:
		return W
	case width.EastAsianNarrow:
		return Na
	case width.EastAsianHalfwidth:
		return H
	case width.EastAsianFullwidth:
		return F
	}
	return N
}

// Context represents information about the typesetting environment.
//
// From UAX#11:
// The term context as used here includes extra information such as explicit
// markup, knowledge of the source code page, font information, or language
// and script identification. For example:
//
// Greek characters resolve to narrow when used with a standard Greek font,
// because there is no East Asian legacy context.
type Context struct {
	ForceEastAsian bool            // force East Asian context
	Script         language.Script // ISO 15924 script identifier
	Locale         string          // ISO 639/3166 locale string
	resolve        resolver
}

// EastAsianContext is a context for East Asian languages.
var EastAsianContext = makeEastAsianContext()

// LatinContext is a context for western languages.
var LatinContext = makeLatinContext()

func makeEastAsianContext() *Context {
	return &Context{
		ForceEastAsian: true,
		Script:         language.MustParseScript("Hant"),
		Locale:         "zh-Hant",
		resolve:        resolveToWide,
	}
}

func makeLatinContext() *Context {
	return &Context{
		Script:  language.MustParseScript("Latn"),
		Locale:  "en-US",
		resolve: resolveToNarrow,
	}
}

// A resolver decides about the width of ambiguous characters.
type resolver func(Category) Category

func resolveToNarrow(cat Category) Category {
	if cat == A {
		return Na
	}
	return cat
}

func resolveToWide(cat Category) Category {
	if cat == A {
		return W
	}
	return cat
}

func findResolver(script language.Script, lang language.Tag) resolver {
	switch script.String() {
	case
		"Bopo", "Hanb", "Hani", "Hans",
		"Hant", "Hang", "Hira", "Kana",
		"Jpan", "Kore", "Yiii":
		return resolveToWide
	}
	_, _, confidence := eaMatch.Match(lang)
	if confidence == language.No {
		return resolveToNarrow
	}
	return resolveToWide
}

var eaMatch = language.NewMatcher([]language.Tag{
	language.English, // The first language is used as fallback.
	language.Chinese,
	language.Japanese,
	language.Korean,
})

// ContextFor creates a context for a locale.
func ContextFor(locale string) *Context {
	lang := language.Make(locale)
	script, _ := lang.Script()
	return &Context{
		Script:  script,
		Locale:  locale,
		resolve: findResolver(script, lang),
	}
}

// ContextFromEnvironment creates a Context from the user's environment,
// i.e. from the user's locale.
func ContextFromEnvironment() *Context {
	userLocale, err := jj.DetectIETF()
	if err != nil {
		T().Errorf(err.Error())
		userLocale = "en-US"
		T().Infof("UAX#11 sets default user locale %v", userLocale)
	} else {
		T().Infof("UAX#11 detected user locale %v", userLocale)
	}
	return ContextFor(userLocale)
}

// Width returns the width of a rune in terms of EN (width of an
// 'n' in East Asian fixed pitch fonts). Non-spacing marks, enclosing
// marks and format characters have a width of 0.
//
// If an empty context is given, LatinContext is assumed.
//
// Returns either 0, 1 (narrow character) or 2 (wide character).
func Width(r rune, context *Context) int {
	if unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) || r == 0 {
		return 0
	}
	if context == nil || context.resolve == nil {
		context = LatinContext
	}
	cat := WidthCategory(r)
	if context.ForceEastAsian {
		cat = resolveToWide(cat)
	} else {
		cat = context.resolve(cat)
	}
	switch cat {
	case W, F:
		return 2
	}
	return 1
}

// StringWidth returns the accumulated width of a sequence of runes,
// in terms of EN.
func StringWidth(rs []rune, context *Context) int {
	w := 0
	for _, r := range rs {
		w += Width(r, context)
	}
	return w
}
