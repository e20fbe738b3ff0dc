package runs

import "fmt"

// Kind is the kind of a run.
type Kind int8

// Kinds of runs. Control is the kind of control entries, which do not
// carry a ResolvedRun.
const (
	Text Kind = iota
	EmbeddedObject
	LineBreak
	ParagraphBreak
	Hidden
	Anchor
	Control
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case EmbeddedObject:
		return "object"
	case LineBreak:
		return "linebreak"
	case ParagraphBreak:
		return "parbreak"
	case Hidden:
		return "hidden"
	case Anchor:
		return "anchor"
	case Control:
		return "control"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ControlKind is the kind of a control entry.
type ControlKind int8

// Control entries.
const (
	ReverseOpen  ControlKind = iota + 1 // start of a reversed section
	ReverseClose                        // end of a reversed section
	ForcedBreak                         // line broken after reaching the character cap
)

func (c ControlKind) String() string {
	switch c {
	case ReverseOpen:
		return "<"
	case ReverseClose:
		return ">"
	case ForcedBreak:
		return "⏎"
	}
	return fmt.Sprintf("control(%d)", int(c))
}

// Handle refers to the payload of a stream entry. It is either a
// ControlHandle or a ContentHandle.
type Handle interface {
	isHandle()
	String() string
}

// ControlHandle is the handle of control entries.
type ControlHandle ControlKind

// ContentHandle is the handle of content entries, an index into the
// stream's arena of runs.
type ContentHandle int

func (ControlHandle) isHandle() {}
func (ContentHandle) isHandle() {}

func (h ControlHandle) String() string {
	return ControlKind(h).String()
}

func (h ContentHandle) String() string {
	return fmt.Sprintf("#%d", int(h))
}

// Entry is an element of a Stream. Start and Length are stream positions.
type Entry struct {
	Start  int
	Length int
	Handle Handle
}

// End returns the stream position after the entry.
func (e Entry) End() int {
	return e.Start + e.Length
}

// Control returns the control kind of e, if e is a control entry.
func (e Entry) Control() (ControlKind, bool) {
	if h, ok := e.Handle.(ControlHandle); ok {
		return ControlKind(h), true
	}
	return 0, false
}

// Content returns the arena index of e, if e is a content entry.
func (e Entry) Content() (ContentHandle, bool) {
	h, ok := e.Handle.(ContentHandle)
	return h, ok
}

func (e Entry) String() string {
	return fmt.Sprintf("%d+%d:%s", e.Start, e.Length, e.Handle)
}
