package digits

import (
	"fmt"

	"golang.org/x/text/language"
)

// Method is a method of digit substitution.
type Method int8

// Digit substitution methods. European is the default and means no
// substitution at all.
const (
	European       Method = iota // always display European digits
	NativeNational               // national digits of the locale, if not ASCII
	Context                      // depending on the preceding letter, for Arabic locales
	Traditional                  // traditional digits of the locale's script
)

func (m Method) String() string {
	switch m {
	case European:
		return "European"
	case NativeNational:
		return "NativeNational"
	case Context:
		return "Context"
	case Traditional:
		return "Traditional"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// Source says where the locale for digit substitution comes from.
type Source int8

// Sources for the digit locale.
const (
	FromText Source = iota // the locale of the styled text
	FromUser               // the user's default locale
	Override               // an explicitly given locale
)

// Policy is a digit substitution policy, as attached to a text style.
type Policy struct {
	Source Source
	Method Method
	Locale language.Tag // used for Source Override
}

func (p Policy) locale(text language.Tag) language.Tag {
	switch p.Source {
	case FromUser:
		return UserLocale()
	case Override:
		return p.Locale
	}
	return text
}

// Culture is a locale used for digit substitution, together with the code
// point of digit zero of its script.
type Culture struct {
	Tag  language.Tag
	Zero rune
}

// None is the culture for "no substitution".
var None = Culture{}

// IsNone is true if c will not change any digits.
func (c Culture) IsNone() bool {
	return c.Zero == 0 || c.Zero == '0'
}

// Same compares two cultures by their digits.
func (c Culture) Same(other Culture) bool {
	if c.IsNone() {
		return other.IsNone()
	}
	return c.Zero == other.Zero
}

func (c Culture) String() string {
	if c.IsNone() {
		return "no-substitution"
	}
	return fmt.Sprintf("%s(%#U)", c.Tag, c.Zero)
}

// Resolve determines the digit culture for text with locale textLocale and
// a style with digit policy p. If the returned flag is true, the culture
// applies to digits only where their context asks for Arabic digits (see
// type NumberContext).
//
// Locales without a mapping fall back to no substitution.
func Resolve(p Policy, textLocale language.Tag) (Culture, bool) {
	tag := p.locale(textLocale)
	var c Culture
	contextual := false
	switch p.Method {
	case European:
		c = None
	case NativeNational:
		c = Native(tag)
	case Context:
		if IsArabicLike(tag) {
			c, contextual = TraditionalFor(tag), true
		}
	case Traditional:
		if c = TraditionalFor(tag); c.IsNone() {
			c = nativeFromExtension(tag)
		}
	default:
		tracer().Infof("unknown digit substitution method %v, using no substitution", p.Method)
	}
	if c.IsNone() {
		return None, false
	}
	return c, contextual
}

// IsArabicLike is true for locales written in Arabic script, e.g. Arabic
// or Farsi.
func IsArabicLike(tag language.Tag) bool {
	script, _ := tag.Script()
	return script == scriptArab
}
