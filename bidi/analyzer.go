package bidi

import (
	"unicode"

	"golang.org/x/text/unicode/bidi"
)

// Flags control the operation of an Analyzer.
type Flags uint8

// Incomplete signals that more text may follow the batch. The analyzer
// will then leave characters unresolved whose levels depend on
// characters not yet seen.
const Incomplete Flags = 1 << iota

// State is the bidi context a batch of text is analyzed in.
type State struct {
	Level      Level     // level of the scope the batch starts in
	Override   Direction // direction override of the scope, if any
	LastStrong Class     // strong class preceding the batch: L, R or AL
	LastNumber Class     // number class preceding the batch: EN or AN
	NumberLast bool      // LastNumber is nearer to the batch than LastStrong
}

// An Analyzer resolves bidi levels for a batch of characters. It returns a
// level for every character and the number of leading characters for which
// the level is final. Without flag Incomplete all characters are final.
type Analyzer interface {
	Analyze(chars []rune, state State, flags Flags) ([]Level, int, error)
}

// AnalyzerFunc lets clients use ordinary functions as Analyzers.
type AnalyzerFunc func([]rune, State, Flags) ([]Level, int, error)

// Analyze calls f.
func (f AnalyzerFunc) Analyze(chars []rune, state State, flags Flags) ([]Level, int, error) {
	return f(chars, state, flags)
}

// Option configures the default analyzer.
type Option func(*analyzer)

// Testing sets a test mode, where upper case ASCII letters are treated
// as class R. This makes test cases a lot easier to read.
func Testing(b bool) Option {
	return func(a *analyzer) {
		a.testing = b
	}
}

// NewAnalyzer returns the default analyzer, which follows the rules of
// UAX#9 for a single paragraph.
func NewAnalyzer(opts ...Option) Analyzer {
	a := &analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type analyzer struct {
	testing bool
}

func (a *analyzer) classOf(r rune) Class {
	if a.testing && r < unicode.MaxASCII && unicode.IsUpper(r) {
		return bidi.R
	}
	return ClassOf(r)
}

// batch holds the working data of a single call to Analyze.
type batch struct {
	chars   []rune
	orig    []Class // classes from the Unicode character database
	types   []Class // classes as the rules change them
	levels  []Level
	state   State
	neutral []bool // characters of the last run still neutral before N1/N2
}

// Analyze resolves levels for chars.
func (a *analyzer) Analyze(chars []rune, state State, flags Flags) ([]Level, int, error) {
	n := len(chars)
	b := &batch{
		chars:  chars,
		orig:   make([]Class, n),
		types:  make([]Class, n),
		levels: make([]Level, n),
		state:  state,
	}
	if n == 0 {
		return b.levels, 0, nil
	}
	for i, r := range chars {
		b.orig[i] = a.classOf(r)
	}
	b.explicitLevels()
	runs := b.levelRuns()
	incomplete := flags&Incomplete != 0
	unclosed := -1
	for k, run := range runs {
		sos, eos := b.boundaries(runs, k)
		last := k == len(runs)-1
		b.resolveWeak(run, sos)
		u := b.resolveBrackets(run, sos)
		if last {
			unclosed = u
			b.markPending(run)
		}
		b.resolveNeutrals(run, sos, eos, k == 0)
		b.resolveImplicit(run)
	}
	b.assignRemoved()
	resolved := n
	if incomplete {
		resolved = b.resolvedPrefix(unclosed)
	}
	T().Debugf("bidi: analyzed %d characters, %d resolved", n, resolved)
	return b.levels, resolved, nil
}

// --- Explicit levels (X1–X9) -----------------------------------------------

type stackEntry struct {
	level    Level
	override Direction
}

// explicitLevels applies rules X1 to X9. Explicit formatting characters are
// removed by setting their class to BN.
func (b *batch) explicitLevels() {
	stack := make([]stackEntry, 1, 8)
	stack[0] = stackEntry{level: b.state.Level, override: b.state.Override}
	overflow := 0
	for i, c := range b.orig {
		top := stack[len(stack)-1]
		b.levels[i] = top.level
		switch c {
		case bidi.RLE, bidi.RLO, bidi.RLI, bidi.LRE, bidi.LRO, bidi.LRI, bidi.FSI:
			b.types[i] = bidi.BN
			dir := LeftToRight
			if c == bidi.RLE || c == bidi.RLO || c == bidi.RLI ||
				(c == bidi.FSI && b.firstStrongAfter(i) != bidi.L) {
				dir = RightToLeft
			}
			next := top.level.next(dir)
			if overflow > 0 || next > MaxLevel {
				overflow++
				continue
			}
			e := stackEntry{level: next}
			if c == bidi.RLO || c == bidi.LRO {
				e.override = dir
			}
			stack = append(stack, e)
		case bidi.PDF, bidi.PDI:
			b.types[i] = bidi.BN
			if overflow > 0 {
				overflow--
			} else if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case bidi.BN:
			b.types[i] = bidi.BN
		case bidi.B:
			b.types[i] = bidi.B
			b.levels[i] = b.state.Level
		default:
			switch top.override {
			case LeftToRight:
				b.types[i] = bidi.L
			case RightToLeft:
				b.types[i] = bidi.R
			default:
				b.types[i] = c
			}
		}
	}
}

// firstStrongAfter finds the first strong class after an FSI, up to the
// matching PDI (rule P2 applied to the isolate).
func (b *batch) firstStrongAfter(i int) Class {
	depth := 0
	for j := i + 1; j < len(b.orig); j++ {
		switch c := b.orig[j]; c {
		case bidi.LRI, bidi.RLI, bidi.FSI:
			depth++
		case bidi.PDI:
			if depth == 0 {
				return bidi.L
			}
			depth--
		case bidi.L:
			if depth == 0 {
				return bidi.L
			}
		case bidi.R, bidi.AL:
			if depth == 0 {
				return bidi.R
			}
		}
	}
	return bidi.L
}

// levelRuns splits the batch into maximal runs of characters of equal
// level (X10), ignoring removed characters.
func (b *batch) levelRuns() [][]int {
	var runs [][]int
	var run []int
	for i, c := range b.types {
		if c == bidi.BN {
			continue
		}
		if len(run) > 0 && b.levels[run[0]] != b.levels[i] {
			runs = append(runs, run)
			run = nil
		}
		run = append(run, i)
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

// boundaries determines sos and eos for level run k. The first run starts
// with the strong class preceding the batch, if it is at the level of the
// batch's scope.
func (b *batch) boundaries(runs [][]int, k int) (Class, Class) {
	level := b.levels[runs[k][0]]
	prev, next := b.state.Level, b.state.Level
	if k > 0 {
		prev = b.levels[runs[k-1][0]]
	}
	if k < len(runs)-1 {
		next = b.levels[runs[k+1][0]]
	}
	sos := strongFor(maxLevel(prev, level))
	if k == 0 && level == b.state.Level {
		sos = b.state.LastStrong
	}
	eos := strongFor(maxLevel(next, level))
	return sos, eos
}

func maxLevel(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// --- Weak types (W1–W7) ----------------------------------------------------

func (b *batch) resolveWeak(run []int, sos Class) {
	t := b.types
	// W1: NSM takes the type of the previous character
	prev := sos
	if prev == bidi.AL {
		prev = bidi.R
	}
	for _, i := range run {
		if t[i] == bidi.NSM {
			t[i] = prev
		}
		prev = t[i]
	}
	// W2: EN after AL becomes AN; W3: AL becomes R
	strong := sos
	for _, i := range run {
		switch t[i] {
		case bidi.L, bidi.R, bidi.AL:
			strong = t[i]
		case bidi.EN:
			if strong == bidi.AL {
				t[i] = bidi.AN
			}
		}
	}
	for _, i := range run {
		if t[i] == bidi.AL {
			t[i] = bidi.R
		}
	}
	// W4: single separators between numbers
	for k := 1; k < len(run)-1; k++ {
		i, before, after := run[k], t[run[k-1]], t[run[k+1]]
		switch t[i] {
		case bidi.ES:
			if before == bidi.EN && after == bidi.EN {
				t[i] = bidi.EN
			}
		case bidi.CS:
			if before == after && isNumber(before) {
				t[i] = before
			}
		}
	}
	// W5: sequences of ET adjacent to EN become EN
	for k := 0; k < len(run); k++ {
		if t[run[k]] != bidi.ET {
			continue
		}
		end := k
		for end < len(run) && t[run[end]] == bidi.ET {
			end++
		}
		adjacent := (k > 0 && t[run[k-1]] == bidi.EN) || (end < len(run) && t[run[end]] == bidi.EN)
		if adjacent {
			for j := k; j < end; j++ {
				t[run[j]] = bidi.EN
			}
		}
		k = end - 1
	}
	// W6: remaining separators and terminators become ON
	for _, i := range run {
		switch t[i] {
		case bidi.ES, bidi.ET, bidi.CS:
			t[i] = bidi.ON
		}
	}
	// W7: EN after L becomes L
	strong = sos
	for _, i := range run {
		switch t[i] {
		case bidi.L, bidi.R:
			strong = t[i]
		case bidi.EN:
			if strong == bidi.L {
				t[i] = bidi.L
			}
		}
	}
}

// --- Bracket pairs (N0) ----------------------------------------------------

// resolveBrackets applies rule N0 and returns the first unclosed opening
// bracket of the run (or -1).
func (b *batch) resolveBrackets(run []int, sos Class) int {
	pairs, unclosed := findBracketPairs(run, b.chars, b.types)
	if len(pairs) == 0 {
		return unclosed
	}
	e := strongFor(b.levels[run[0]])
	pos := make(map[int]int, len(run)) // character index → index within run
	for k, i := range run {
		pos[i] = k
	}
	for _, p := range pairs {
		var found Class = bidi.ON
		for k := pos[p.o] + 1; k < pos[p.c]; k++ {
			d := nDirection(b.types[run[k]])
			if d == e {
				found = e
				break
			} else if d != bidi.ON {
				found = d
			}
		}
		switch found {
		case bidi.ON: // no strong types within brackets
			continue
		case e:
		default: // opposite direction within brackets, check context
			ctx := nDirection(sos)
			for k := pos[p.o] - 1; k >= 0; k-- {
				if d := nDirection(b.types[run[k]]); d != bidi.ON {
					ctx = d
					break
				}
			}
			if ctx != found {
				found = e
			}
		}
		b.setBracket(run, pos[p.o], found)
		b.setBracket(run, pos[p.c], found)
	}
	return unclosed
}

// setBracket changes the class of a bracket. Characters originally of class
// NSM following the bracket change, too.
func (b *batch) setBracket(run []int, k int, c Class) {
	b.types[run[k]] = c
	for k++; k < len(run) && b.orig[run[k]] == bidi.NSM; k++ {
		b.types[run[k]] = c
	}
}

// --- Neutral types (N1, N2) ------------------------------------------------

func (b *batch) resolveNeutrals(run []int, sos, eos Class, first bool) {
	e := strongFor(b.levels[run[0]])
	t := b.types
	for k := 0; k < len(run); k++ {
		if !isNI(t[run[k]]) {
			continue
		}
		end := k
		for end < len(run) && isNI(t[run[end]]) {
			end++
		}
		before := nDirection(sos)
		if k > 0 {
			before = nDirection(t[run[k-1]])
		} else if first && b.state.NumberLast && b.levels[run[0]] == b.state.Level {
			before = bidi.R
		}
		after := eos
		if end < len(run) {
			after = nDirection(t[run[end]])
		}
		c := e // N2
		if before == after {
			c = before // N1
		}
		for j := k; j < end; j++ {
			if t[run[j]] != bidi.B {
				t[run[j]] = c
			}
		}
		k = end - 1
	}
}

// --- Implicit levels (I1, I2) ----------------------------------------------

func (b *batch) resolveImplicit(run []int) {
	for _, i := range run {
		l := b.levels[i]
		switch c := b.types[i]; {
		case !l.IsRTL() && c == bidi.R:
			b.levels[i] = l + 1
		case !l.IsRTL() && isNumber(c):
			b.levels[i] = l + 2
		case l.IsRTL() && (c == bidi.L || isNumber(c)):
			b.levels[i] = l + 1
		}
	}
}

// assignRemoved gives removed characters the level of the preceding
// character.
func (b *batch) assignRemoved() {
	prev := b.state.Level
	for i, c := range b.types {
		if c == bidi.BN {
			b.levels[i] = prev
		}
		prev = b.levels[i]
	}
}

// resolvedPrefix determines how many leading characters have a final level
// if more text may follow. Trailing neutrals depend on the next strong
// character. An unclosed opening bracket depends on its closing partner.
func (b *batch) resolvedPrefix(unclosed int) int {
	n := len(b.chars)
	for n > 0 && b.isPending(n-1) {
		n--
	}
	if unclosed >= 0 && unclosed < n {
		n = unclosed
	}
	return n
}

// markPending remembers which characters of a run are neutral after the
// weak rules and N0. Their levels depend on the character following them.
func (b *batch) markPending(run []int) {
	b.neutral = make([]bool, len(b.chars))
	for _, i := range run {
		b.neutral[i] = isNI(b.types[i])
	}
}

func (b *batch) isPending(i int) bool {
	return b.types[i] == bidi.BN || (b.neutral != nil && b.neutral[i])
}
