package bidi

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/stacks/arraystack"
	"golang.org/x/text/unicode/bidi"
)

// ErrUnbalancedScope is returned when a scope is closed which has never
// been opened.
var ErrUnbalancedScope = errors.New("bidi: end of embedding scope without matching start")

// DefaultBackscanLimit is the number of characters a ScopeState will look
// back to find the last strong class before a position.
const DefaultBackscanLimit = 256

// PrecedingText returns the text immediately preceding a position in the
// text source. An empty result signals the start of the text.
type PrecedingText func(pos int) ([]rune, error)

// scope is an open embedding scope.
type scope struct {
	level    Level
	override Direction
	start    int // text position where the scope has been entered
}

// classInfo stores what we know about the directional context before a
// text position: the nearest strong class and the nearest number class.
// As numbers count as R for the resolution of neutrals, we have to know
// which of the two comes last.
type classInfo struct {
	pos        int
	strong     Class // L, R or AL
	number     Class // EN or AN
	numberLast bool  // number has been seen after the strong class
	hasNumber  bool
}

// ScopeState tracks nested explicit embedding scopes. A scope is entered
// whenever the text source signals a directional embedding and left at
// its matching end of segment. Scopes nested deeper than MaxLevel are not
// rejected, but counted as overflow.
//
// A ScopeState is not safe for concurrent use. To carry it over to
// another line, take a Snapshot.
type ScopeState struct {
	base     Level
	stack    *arraystack.Stack // of scope
	overflow int
	memo     map[int]classInfo // keyed by scope id, holds the position
	Backscan int               // maximum number of characters to look back
}

// NewScopeState creates a scope state for a paragraph with base direction d.
func NewScopeState(d Direction) *ScopeState {
	return &ScopeState{
		base:     BaseLevel(d),
		stack:    arraystack.New(),
		memo:     make(map[int]classInfo),
		Backscan: DefaultBackscanLimit,
	}
}

func (s *ScopeState) String() string {
	return fmt.Sprintf("scope[base=%d level=%d depth=%d overflow=%d]", s.base,
		s.CurrentLevel(), s.Depth(), s.overflow)
}

// BaseLevel returns the paragraph level.
func (s *ScopeState) BaseLevel() Level {
	return s.base
}

// Depth is the number of open scopes, not counting overflow.
func (s *ScopeState) Depth() int {
	return s.stack.Size()
}

// Overflow is the number of open scopes which exceeded MaxLevel.
func (s *ScopeState) Overflow() int {
	return s.overflow
}

// IsEmbedded is true if at least one scope is open.
func (s *ScopeState) IsEmbedded() bool {
	return s.stack.Size()+s.overflow > 0
}

func (s *ScopeState) top() (scope, bool) {
	t, ok := s.stack.Peek()
	if !ok {
		return scope{level: s.base, start: -1}, false
	}
	return t.(scope), true
}

// CurrentLevel returns the level of the innermost open scope.
func (s *ScopeState) CurrentLevel() Level {
	t, _ := s.top()
	return t.level
}

// Override returns the direction override of the innermost open scope.
func (s *ScopeState) Override() Direction {
	t, _ := s.top()
	return t.override
}

// scopeID identifies the innermost scope, including overflowed ones.
func (s *ScopeState) scopeID() int {
	return s.stack.Size() + s.overflow
}

// EnterEmbedding opens a new scope at text position pos. The new level is
// the least level greater than the current one, with direction dir. If
// override is set, all characters within the scope will be treated as
// strong characters of direction dir.
//
// Returns the level active before the scope has been entered.
func (s *ScopeState) EnterEmbedding(pos int, dir Direction, override bool) Level {
	parent := s.CurrentLevel()
	next := parent.next(dir)
	if s.overflow > 0 || next > MaxLevel {
		s.overflow++
		T().Debugf("bidi scope overflow at %d: %d", pos, s.overflow)
	} else {
		sc := scope{level: next, start: pos}
		if override {
			sc.override = dir
		}
		s.stack.Push(sc)
		T().Debugf("bidi scope entered at %d, level %d → %d", pos, parent, next)
	}
	s.resetClasses(pos)
	return parent
}

// ExitEmbedding closes the innermost scope at text position pos.
// Returns the level active before the scope has been closed.
func (s *ScopeState) ExitEmbedding(pos int) (Level, error) {
	parent := s.CurrentLevel()
	if s.overflow > 0 {
		s.overflow--
	} else if _, ok := s.stack.Pop(); !ok {
		T().Errorf("bidi scope end at %d without matching start", pos)
		return parent, ErrUnbalancedScope
	}
	T().Debugf("bidi scope left at %d, level %d → %d", pos, parent, s.CurrentLevel())
	s.resetClasses(pos)
	return parent, nil
}

// resetClasses sets the class context at the start or end of a scope
// to defaults appropriate for the current level.
func (s *ScopeState) resetClasses(pos int) {
	s.memo[s.scopeID()] = s.defaultClasses(pos)
}

func (s *ScopeState) defaultClasses(pos int) classInfo {
	if s.CurrentLevel().IsRTL() {
		return classInfo{pos: pos, strong: bidi.AL, number: bidi.AN}
	}
	return classInfo{pos: pos, strong: bidi.L, number: bidi.EN}
}

// NoteText records the directional context at position end, given the text
// immediately preceding end. Text resolved by a client should be noted, to
// spare later look-ups a backward scan through the text source.
func (s *ScopeState) NoteText(end int, text []rune) {
	id := s.scopeID()
	prev, known := s.memo[id]
	known = known && prev.pos == end-len(text)
	def := s.defaultClasses(end)
	info := classInfo{pos: end}
	found, stop := scanClasses(text, &info)
	switch {
	case found || stop:
		if !found {
			info.strong = def.strong
		}
		if !info.hasNumber {
			info.number = def.number
			if known {
				info.number = prev.number
			}
		}
	case known: // no strong class within text
		info.strong = prev.strong
		if !info.hasNumber {
			info.number, info.hasNumber, info.numberLast = prev.number, prev.hasNumber, prev.numberLast
		}
	default: // context before text remains unknown; look-ups will have to scan
		delete(s.memo, id)
		return
	}
	s.memo[id] = info
}

// Note records the class of a single character resolved at position
// pos-1, i.e. the class context at pos. Only strong and number classes
// are recorded.
func (s *ScopeState) Note(pos int, c Class) {
	if !IsStrong(c) && !isNumber(c) {
		if prev, ok := s.memo[s.scopeID()]; ok && prev.pos == pos-1 {
			prev.pos = pos
			s.memo[s.scopeID()] = prev
		}
		return
	}
	id := s.scopeID()
	prev, known := s.memo[id]
	known = known && prev.pos == pos-1
	info := classInfo{pos: pos}
	if IsStrong(c) {
		info.strong = c
		info.number = s.defaultClasses(pos).number
		if known {
			info.number, info.hasNumber = prev.number, prev.hasNumber
		}
	} else {
		if !known {
			delete(s.memo, id)
			return
		}
		info.strong = prev.strong
		info.number, info.hasNumber, info.numberLast = c, true, true
	}
	s.memo[id] = info
}

// scanClasses scans text backwards and records strong and number classes
// into info. It returns true if a strong class has been found, and true as
// a second value if a line boundary stopped the scan. info.hasNumber
// carries over between calls for consecutive chunks of text.
func scanClasses(text []rune, info *classInfo) (bool, bool) {
	for i := len(text) - 1; i >= 0; i-- {
		c := ClassOf(text[i])
		switch {
		case isLineBoundary(text[i], c):
			info.numberLast = info.hasNumber
			return false, true
		case IsStrong(c):
			info.strong = c
			info.numberLast = info.hasNumber
			return true, false
		case isNumber(c) && !info.hasNumber:
			info.number = c
			info.hasNumber = true
		}
	}
	info.numberLast = info.hasNumber
	return false, false
}

// isLineBoundary is true for paragraph separators (class B) and for hard
// line breaks, which have class WS or S.
func isLineBoundary(r rune, c Class) bool {
	switch r {
	case '\u2028', '\v', '\f':
		return true
	}
	return c == bidi.B
}

// context returns the class context before pos, scanning backwards through
// the text source if necessary. The scan will not cross the start of the
// current scope.
func (s *ScopeState) context(pos int, query PrecedingText) (classInfo, error) {
	id := s.scopeID()
	if info, ok := s.memo[id]; ok && info.pos == pos {
		return info, nil
	}
	T().Debugf("bidi: scanning backwards for class context at %d", pos)
	info := classInfo{pos: pos}
	lower := 0
	if t, ok := s.top(); ok {
		lower = t.start
	}
	p, scanned, found := pos, 0, false
	for query != nil && p > lower && scanned < s.Backscan && !found {
		text, err := query(p)
		if err != nil {
			return info, err
		}
		if len(text) == 0 {
			break
		}
		if len(text) > p-lower {
			text = text[len(text)-(p-lower):]
		}
		if len(text) > s.Backscan-scanned {
			text = text[len(text)-(s.Backscan-scanned):]
		}
		var stop bool
		if found, stop = scanClasses(text, &info); stop {
			break
		}
		p -= len(text)
		scanned += len(text)
	}
	def := s.defaultClasses(pos)
	if !found {
		info.strong = def.strong
	}
	if !info.hasNumber {
		info.number = def.number
	}
	s.memo[id] = info
	return info, nil
}

// LastStrongClass returns the class of the nearest strong character before
// pos within the current scope. If there is none, it defaults to L for even
// levels and AL for odd levels.
func (s *ScopeState) LastStrongClass(pos int, query PrecedingText) (Class, error) {
	info, err := s.context(pos, query)
	return info.strong, err
}

// LastNumberClass returns the class of the nearest number before pos within
// the current scope. European numbers are reported as Arabic numbers if
// arabicLocale is set and the current level is right-to-left.
func (s *ScopeState) LastNumberClass(pos int, query PrecedingText, arabicLocale bool) (Class, error) {
	info, err := s.context(pos, query)
	n := info.number
	if n == bidi.EN && arabicLocale && s.CurrentLevel().IsRTL() {
		n = bidi.AN
	}
	return n, err
}

// AnalyzerState assembles the initial state for analyzing a batch of text
// starting at pos.
func (s *ScopeState) AnalyzerState(pos int, query PrecedingText, arabicLocale bool) (State, error) {
	info, err := s.context(pos, query)
	if err != nil {
		return State{}, err
	}
	number, _ := s.LastNumberClass(pos, query, arabicLocale)
	return State{
		Level:      s.CurrentLevel(),
		Override:   s.Override(),
		LastStrong: info.strong,
		LastNumber: number,
		NumberLast: info.numberLast,
	}, nil
}

// --- Snapshots -------------------------------------------------------------

// Snapshot is an immutable copy of a ScopeState, used to carry open scopes
// over from one line to the next.
type Snapshot struct {
	state *ScopeState
}

// Snapshot returns a copy of s.
func (s *ScopeState) Snapshot() *Snapshot {
	return &Snapshot{state: s.clone()}
}

// Depth returns the number of open scopes (including overflow) at the time
// the snapshot was taken.
func (snap *Snapshot) Depth() int {
	if snap == nil {
		return 0
	}
	return snap.state.scopeID()
}

// Level returns the innermost level at the time the snapshot was taken.
func (snap *Snapshot) Level() Level {
	if snap == nil {
		return 0
	}
	return snap.state.CurrentLevel()
}

// Restore creates a new ScopeState from a snapshot. The snapshot itself
// remains unchanged.
func (snap *Snapshot) Restore() *ScopeState {
	return snap.state.clone()
}

func (s *ScopeState) clone() *ScopeState {
	c := &ScopeState{
		base:     s.base,
		stack:    arraystack.New(),
		overflow: s.overflow,
		memo:     make(map[int]classInfo, len(s.memo)),
		Backscan: s.Backscan,
	}
	values := s.stack.Values() // in LIFO order
	for i := len(values) - 1; i >= 0; i-- {
		c.stack.Push(values[i])
	}
	for k, v := range s.memo {
		c.memo[k] = v
	}
	return c
}
