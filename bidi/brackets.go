package bidi

import (
	"sort"

	"golang.org/x/text/unicode/bidi"
)

// BD16MaxNesting is the maximum stack depth for rule BD16 as defined in UAX#9.
const BD16MaxNesting = 63

// --- Brackets and bracket stack --------------------------------------------

// Brackets require a disproportionate amount of work in UAX#9. It reads:
//
// The following algorithm identifies all of the bracket pairs in a given
// isolating run sequence:
//
// * Create a fixed-size stack for exactly 63 elements each consisting of a bracket
//   character and a text position. Initialize it to empty.
// * Inspect each character in the isolating run sequence in logical order.
//   - If an opening paired bracket is found and there is room in the stack, push its
//     Bidi_Paired_Bracket property value and its text position onto the stack.
//   - If an opening paired bracket is found and there is no room in the stack, stop
//     processing BD16 for the remainder of the isolating run sequence.
//   - If a closing paired bracket is found, find the nearest matching opening
//     bracket on the stack. If there is one, record the pair and pop the stack
//     through this element inclusively. Otherwise continue without popping.
// * Sort the list of pairs of text positions in ascending order based on the
//   text position of the opening paired bracket.
//
// Examples of bracket pairs:
//
// 	Text                Pairings
// 	1 2 3 4 5 6 7 8
// 	a ) b ( c           None
// 	a ( b ] c           None
// 	a ( b ) c           2-4
// 	a ( b [ c ) d ]     2-6
// 	a ( b ] c ) d       2-6
// 	a ( b ) c ) d       2-4
// 	a ( b ( c ) d       4-6
// 	a ( b ( c ) d )     2-8, 4-6
// 	a ( b { c } d )     2-8, 4-6

type bracketPair struct {
	o, c rune
}

// Paired brackets from BidiBrackets.txt.
var uax9BracketPairs = []bracketPair{
	{0x0028, 0x0029}, {0x005B, 0x005D}, {0x007B, 0x007D}, {0x0F3A, 0x0F3B},
	{0x0F3C, 0x0F3D}, {0x169B, 0x169C}, {0x2045, 0x2046}, {0x207D, 0x207E},
	{0x208D, 0x208E}, {0x2308, 0x2309}, {0x230A, 0x230B}, {0x2329, 0x232A},
	{0x2768, 0x2769}, {0x276A, 0x276B}, {0x276C, 0x276D}, {0x276E, 0x276F},
	{0x2770, 0x2771}, {0x2772, 0x2773}, {0x2774, 0x2775}, {0x27C5, 0x27C6},
	{0x27E6, 0x27E7}, {0x27E8, 0x27E9}, {0x27EA, 0x27EB}, {0x27EC, 0x27ED},
	{0x27EE, 0x27EF}, {0x2983, 0x2984}, {0x2985, 0x2986}, {0x2987, 0x2988},
	{0x2989, 0x298A}, {0x298B, 0x298C}, {0x298D, 0x2990}, {0x298F, 0x298E},
	{0x2991, 0x2992}, {0x2993, 0x2994}, {0x2995, 0x2996}, {0x2997, 0x2998},
	{0x29D8, 0x29D9}, {0x29DA, 0x29DB}, {0x29FC, 0x29FD}, {0x2E22, 0x2E23},
	{0x2E24, 0x2E25}, {0x2E26, 0x2E27}, {0x2E28, 0x2E29}, {0x3008, 0x3009},
	{0x300A, 0x300B}, {0x300C, 0x300D}, {0x300E, 0x300F}, {0x3010, 0x3011},
	{0x3014, 0x3015}, {0x3016, 0x3017}, {0x3018, 0x3019}, {0x301A, 0x301B},
	{0xFE59, 0xFE5A}, {0xFE5B, 0xFE5C}, {0xFE5D, 0xFE5E}, {0xFF08, 0xFF09},
	{0xFF3B, 0xFF3D}, {0xFF5B, 0xFF5D}, {0xFF5F, 0xFF60}, {0xFF62, 0xFF63},
}

var openers, closers map[rune]rune

func init() {
	openers = make(map[rune]rune, len(uax9BracketPairs))
	closers = make(map[rune]rune, len(uax9BracketPairs))
	for _, p := range uax9BracketPairs {
		openers[p.o] = p.c
		closers[p.c] = p.o
	}
}

// canonical maps brackets to their canonical equivalents, which matters
// for U+2329/U+232A only.
func canonical(r rune) rune {
	switch r {
	case 0x2329:
		return 0x3008
	case 0x232A:
		return 0x3009
	}
	return r
}

// This is the stack to perform the algorithm described above.
type bracketStack []brktpos

type brktpos struct {
	closing rune // the bracket expected to close this one
	pos     int  // index of the opening bracket within the batch
}

// pairing is a pair of indices of matching brackets.
type pairing struct {
	o, c int
}

func (bs bracketStack) push(r rune, pos int) (bool, bracketStack) {
	if len(bs) >= BD16MaxNesting { // overflow, as defined in UAX#9
		return false, bs
	}
	c, ok := openers[r]
	if !ok {
		T().Errorf("push of %#U failed, not found as opening bracket", r)
		return false, bs
	}
	return true, append(bs, brktpos{closing: canonical(c), pos: pos})
}

// popWith checks for an opening bracket on the bracket stack matching a
// given closing bracket.
func (bs bracketStack) popWith(c rune) (bool, int, bracketStack) {
	c = canonical(c)
	for i := len(bs) - 1; i >= 0; i-- { // start at TOS, possibly skip unclosed opening brackets
		if bs[i].closing == c {
			return true, bs[i].pos, bs[:i]
		}
	}
	return false, -1, bs
}

// findBracketPairs identifies the bracket pairs within a level run (given
// as a sequence of indices into chars). Only characters currently of class
// ON qualify as brackets. The second return value is the position of the
// first opening bracket which has not been closed (or -1).
func findBracketPairs(run []int, chars []rune, types []Class) ([]pairing, int) {
	var stack bracketStack
	var pairs []pairing
	for _, i := range run {
		if types[i] != bidi.ON {
			continue
		}
		r := chars[i]
		if _, ok := openers[r]; ok {
			var pushed bool
			if pushed, stack = stack.push(r, i); !pushed {
				break // stop processing BD16 for the remainder
			}
		} else if _, ok := closers[r]; ok {
			if found, o, rest := stack.popWith(r); found {
				pairs = append(pairs, pairing{o: o, c: i})
				stack = rest
			}
		}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].o < pairs[j].o })
	unclosed := -1
	if len(stack) > 0 {
		unclosed = stack[0].pos
	}
	return pairs, unclosed
}
