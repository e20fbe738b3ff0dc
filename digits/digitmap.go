package digits

// Code points used by Arabic cultures.
const (
	arabicPercent            rune = 0x066A
	arabicDecimalSeparator   rune = 0x066B
	arabicThousandsSeparator rune = 0x066C
	arabicComma              rune = 0x060C
)

// DigitMap maps characters of numbers to the code points of a digit
// substitution culture. The zero value maps every character to itself.
type DigitMap struct {
	zero   rune
	arabic bool // Arabic separators and percent sign
}

// NewDigitMap creates a digit map for a culture.
func NewDigitMap(c Culture) DigitMap {
	if c.IsNone() {
		return DigitMap{}
	}
	return DigitMap{
		zero:   c.Zero,
		arabic: c.Zero == zeroArabic || c.Zero == zeroExtendedArabic,
	}
}

// Map maps a single code point. Only '0'…'9', '%', ',' and '.' are subject
// to substitution; all other code points are returned unchanged.
func (m DigitMap) Map(r rune) rune {
	if m.zero == 0 {
		return r
	}
	switch {
	case r >= '0' && r <= '9':
		return m.zero + (r - '0')
	case !m.arabic:
		return r
	case r == '%':
		return arabicPercent
	case r == '.':
		return arabicDecimalSeparator
	case r == ',':
		return arabicThousandsSeparator
	}
	return r
}

// MapRunes maps a sequence of code points into a new slice.
func (m DigitMap) MapRunes(rs []rune) []rune {
	out := make([]rune, len(rs))
	for i, r := range rs {
		out[i] = m.Map(r)
	}
	return out
}

// fallbacks lists replacements for code points which are missing from
// older fonts.
var fallbacks = map[rune]rune{
	arabicDecimalSeparator:   ',',
	arabicThousandsSeparator: arabicComma,
	arabicPercent:            '%',
	arabicComma:              ',',
}

// Fallback returns a replacement for a code point produced by a DigitMap,
// for use with fonts which do not contain the code point. Fallbacks may be
// chained: the Arabic thousands separator falls back to the Arabic comma,
// which in turn falls back to a comma.
func Fallback(r rune) (rune, bool) {
	f, ok := fallbacks[r]
	return f, ok
}
