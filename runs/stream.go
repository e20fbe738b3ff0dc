package runs

import (
	"strings"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
)

// Stream is a run-length encoded sequence of entries. Content entries
// refer to ResolvedRuns in an arena owned by the stream.
type Stream struct {
	entries []Entry
	arena   []*ResolvedRun
	index   *redblacktree.Tree // stream position → entry index
	length  int
}

func newStream() *Stream {
	return &Stream{index: redblacktree.NewWith(utils.IntComparator)}
}

// Len returns the number of stream positions covered.
func (s *Stream) Len() int {
	return s.length
}

// Count returns the number of entries.
func (s *Stream) Count() int {
	return len(s.entries)
}

// Entry returns the i-th entry.
func (s *Stream) Entry(i int) Entry {
	return s.entries[i]
}

// Entries returns all entries of the stream. Clients must not modify
// the result.
func (s *Stream) Entries() []Entry {
	return s.entries
}

// Run returns the run a content handle refers to.
func (s *Stream) Run(h ContentHandle) (*ResolvedRun, bool) {
	if int(h) < 0 || int(h) >= len(s.arena) {
		return nil, false
	}
	return s.arena[h], true
}

// RunOf returns the run of an entry, or nil for control entries.
func (s *Stream) RunOf(e Entry) *ResolvedRun {
	if h, ok := e.Content(); ok {
		r, _ := s.Run(h)
		return r
	}
	return nil
}

// KindOf returns the kind of an entry.
func (s *Stream) KindOf(e Entry) Kind {
	if r := s.RunOf(e); r != nil {
		return r.Kind
	}
	return Control
}

// EntryAt returns the entry covering stream position pos together with
// its index.
func (s *Stream) EntryAt(pos int) (Entry, int, bool) {
	if pos < 0 || pos >= s.length {
		return Entry{}, -1, false
	}
	node, found := s.index.Floor(pos)
	if !found {
		return Entry{}, -1, false
	}
	i := node.Value.(int)
	return s.entries[i], i, true
}

func (s *Stream) appendEntry(length int, h Handle) {
	e := Entry{Start: s.length, Length: length, Handle: h}
	s.index.Put(e.Start, len(s.entries))
	s.entries = append(s.entries, e)
	s.length += length
}

func (s *Stream) appendRun(r *ResolvedRun) {
	h := ContentHandle(len(s.arena))
	s.arena = append(s.arena, r)
	s.appendEntry(r.Length, h)
}

func (s *Stream) appendControl(c ControlKind) {
	s.appendEntry(1, ControlHandle(c))
}

// truncate cuts the stream at stream position pos. The entry covering pos
// is shortened, if it is a content entry. Returns the source position
// following the last source position retained, or -1 if no content entry
// has been cut or removed.
func (s *Stream) truncate(pos int) int {
	if pos >= s.length {
		return -1
	}
	cut := -1
	e, i, _ := s.EntryAt(pos)
	if pos > e.Start {
		if r := s.RunOf(e); r != nil { // length-only truncation
			r.Length = pos - e.Start
			if len(r.Chars) > r.Length {
				r.Chars = r.Chars[:r.Length]
			}
			cut = r.End()
		}
		s.entries[i].Length = pos - e.Start
		i++
	}
	for j := i; j < len(s.entries); j++ {
		if r := s.RunOf(s.entries[j]); r != nil && cut < 0 {
			cut = r.Start
		}
		s.index.Remove(s.entries[j].Start)
	}
	for j := len(s.entries) - 1; j >= i; j-- {
		if h, ok := s.entries[j].Content(); ok && int(h) == len(s.arena)-1 {
			s.arena = s.arena[:h]
		}
	}
	s.entries = s.entries[:i]
	s.length = pos
	return cut
}

// TextChars returns the number of characters in runs of kind Text.
func (s *Stream) TextChars() int {
	n := 0
	for _, r := range s.arena {
		if r.Kind == Text {
			n += r.Length
		}
	}
	return n
}

// Controls returns the number of control entries of kind c.
func (s *Stream) Controls(c ControlKind) int {
	n := 0
	for _, e := range s.entries {
		if k, ok := e.Control(); ok && k == c {
			n++
		}
	}
	return n
}

// Depth returns the number of reversed sections open after the last
// entry.
func (s *Stream) Depth() int {
	return s.Controls(ReverseOpen) - s.Controls(ReverseClose)
}

// String returns the stream in a notation suitable for debugging, where
// text runs are displayed by their characters and other runs by their kind.
func (s *Stream) String() string {
	var b strings.Builder
	for _, e := range s.entries {
		if c, ok := e.Control(); ok {
			b.WriteString(c.String())
			continue
		}
		r := s.RunOf(e)
		switch r.Kind {
		case Text:
			b.WriteString(string(r.Chars))
		case Hidden:
		default:
			b.WriteString("[" + r.Kind.String() + "]")
		}
	}
	return b.String()
}
