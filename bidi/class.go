package bidi

import (
	"strconv"

	"golang.org/x/text/unicode/bidi"
)

// Class is a Bidi_Class as defined by UAX#9. We re-use the definitions of
// package golang.org/x/text/unicode/bidi.
type Class = bidi.Class

// Level is a bidi embedding level. Odd levels are right-to-left.
type Level uint8

// MaxLevel is the maximum embedding level we support. Scopes nested deeper
// than that are counted as overflow.
const MaxLevel Level = 61

// Direction is a text flow direction.
type Direction int8

// Neutral is used for scopes which do not override the direction of
// the characters they contain.
const (
	Neutral Direction = iota
	LeftToRight
	RightToLeft
)

func (d Direction) String() string {
	switch d {
	case LeftToRight:
		return "LtoR"
	case RightToLeft:
		return "RtoL"
	}
	return "neutral"
}

// BaseLevel returns the paragraph level for a paragraph direction.
func BaseLevel(d Direction) Level {
	if d == RightToLeft {
		return 1
	}
	return 0
}

// IsRTL is true for odd levels.
func (l Level) IsRTL() bool {
	return l&1 == 1
}

// Direction returns the flow direction of a level.
func (l Level) Direction() Direction {
	if l.IsRTL() {
		return RightToLeft
	}
	return LeftToRight
}

// next returns the least level greater than l with direction d.
func (l Level) next(d Direction) Level {
	if d == RightToLeft {
		return (l + 1) | 1
	}
	return (l + 2) &^ 1
}

// strongFor is L for even levels and R for odd levels.
func strongFor(l Level) Class {
	if l.IsRTL() {
		return bidi.R
	}
	return bidi.L
}

var classNames = [...]string{
	bidi.L:       "L",
	bidi.R:       "R",
	bidi.EN:      "EN",
	bidi.ES:      "ES",
	bidi.ET:      "ET",
	bidi.AN:      "AN",
	bidi.CS:      "CS",
	bidi.B:       "B",
	bidi.S:       "S",
	bidi.WS:      "WS",
	bidi.ON:      "ON",
	bidi.BN:      "BN",
	bidi.NSM:     "NSM",
	bidi.AL:      "AL",
	bidi.Control: "Control",
	bidi.LRO:     "LRO",
	bidi.RLO:     "RLO",
	bidi.LRE:     "LRE",
	bidi.RLE:     "RLE",
	bidi.PDF:     "PDF",
	bidi.LRI:     "LRI",
	bidi.RLI:     "RLI",
	bidi.FSI:     "FSI",
	bidi.PDI:     "PDI",
}

// ClassString returns a bidi class as a string.
func ClassString(c Class) string {
	if int(c) < len(classNames) && classNames[c] != "" {
		return classNames[c]
	}
	return "bidi_class(" + strconv.FormatInt(int64(c), 10) + ")"
}

// ClassOf returns the bidi class of a rune.
func ClassOf(r rune) Class {
	props, _ := bidi.LookupRune(r)
	return props.Class()
}

// IsRightToLeft is true for runes which are able to raise the bidi level of
// left-to-right text: strong right-to-left characters, Arabic numbers and
// explicit directional formatting characters.
func IsRightToLeft(r rune) bool {
	switch ClassOf(r) {
	case bidi.R, bidi.AL, bidi.AN:
		return true
	case bidi.RLE, bidi.RLO, bidi.RLI, bidi.LRE, bidi.LRO, bidi.LRI, bidi.FSI:
		return true
	}
	return false
}

// IsStrong is true for L, R and AL.
func IsStrong(c Class) bool {
	return c == bidi.L || c == bidi.R || c == bidi.AL
}

func isNumber(c Class) bool {
	return c == bidi.EN || c == bidi.AN
}

// isNI checks for neutral or isolate classes (UAX#9 BD 1.5).
// Removed characters (BN) count as neutral, too.
func isNI(c Class) bool {
	switch c {
	case bidi.B, bidi.S, bidi.WS, bidi.ON, bidi.BN:
		return true
	}
	return false
}

func isExplicit(c Class) bool {
	switch c {
	case bidi.LRE, bidi.RLE, bidi.LRO, bidi.RLO, bidi.PDF, bidi.LRI, bidi.RLI, bidi.FSI, bidi.PDI:
		return true
	}
	return false
}

// nDirection maps a class to the strong direction it counts as for rules
// N0 to N2: numbers count as R.
func nDirection(c Class) Class {
	switch c {
	case bidi.L:
		return bidi.L
	case bidi.R, bidi.AL, bidi.EN, bidi.AN:
		return bidi.R
	}
	return bidi.ON
}
