package textrun

import (
	"errors"
	"fmt"

	"github.com/npillmayer/textrun/bidi"
	"github.com/npillmayer/textrun/digits"
	"github.com/npillmayer/textrun/effects"
	"golang.org/x/text/language"
)

// SpanKind is the kind of a styled span.
type SpanKind int8

// Kinds of spans a TextSource may hand out. EmbeddingStart and EmbeddingEnd
// spans are markers for explicit directional embeddings, nested like
// brackets. They occupy source positions, but carry no visible text.
const (
	Text SpanKind = iota
	EmbeddedObject
	LineBreak
	ParagraphBreak
	Hidden
	EmbeddingStart
	EmbeddingEnd
)

func (k SpanKind) String() string {
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
	case EmbeddingStart:
		return "embed-start"
	case EmbeddingEnd:
		return "embed-end"
	}
	return fmt.Sprintf("span-kind(%d)", int(k))
}

// Placeholder characters for positions not carrying text. They are used
// whenever a non-text span has to be presented as text, e.g. when scanning
// backwards for the bidi context.
const (
	ObjectReplacement  rune = '\uFFFC'
	LineSeparator      rune = '\u2028'
	ParagraphSeparator rune = '\u2029'
	ZeroWidthSpace     rune = '\u200B'
)

// Placeholder returns the placeholder character for a non-text span kind.
func (k SpanKind) Placeholder() rune {
	switch k {
	case EmbeddedObject:
		return ObjectReplacement
	case LineBreak:
		return LineSeparator
	case ParagraphBreak:
		return ParagraphSeparator
	}
	return ZeroWidthSpace
}

// Style is the set of properties shared by all characters of a span.
type Style struct {
	Locale  language.Tag     // language of the text
	Digits  digits.Policy    // digit substitution
	Symbol  bool             // set for non-standard fonts, which will not take part in bidi resolution
	Effects []effects.Effect // underlines, highlights and the like, in source positions
}

// Embedding is a directional embedding modifier.
type Embedding struct {
	Direction bidi.Direction // either LeftToRight or RightToLeft
	Override  bool           // force the direction on all characters of the embedding
}

// StyledSpan is a section of text sharing a single style. Spans are produced
// by a TextSource and are not changed once handed out.
type StyledSpan struct {
	Kind      SpanKind
	Start     int    // source position of the first character
	Length    int    // number of source positions
	Chars     []rune // characters of text spans
	Style     *Style
	Embedding *Embedding // modifier for EmbeddingStart spans
}

func (s *StyledSpan) String() string {
	if s == nil {
		return "<nil span>"
	}
	return fmt.Sprintf("[%s %d+%d]", s.Kind, s.Start, s.Length)
}

// End returns the source position after the last position of s.
func (s *StyledSpan) End() int {
	return s.Start + s.Length
}

// Contains is true if pos is a source position covered by s.
func (s *StyledSpan) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End()
}

// Validate checks that s is a well-formed span covering source position pos.
// It returns a *PreconditionError otherwise.
func (s *StyledSpan) Validate(pos int) error {
	switch {
	case s == nil:
		return preconditionf(pos, "text source returned nil span")
	case s.Length <= 0:
		return preconditionf(pos, "span %v is empty", s)
	case !s.Contains(pos):
		return preconditionf(pos, "span %v does not cover position", s)
	}
	switch s.Kind {
	case Text:
		if s.Style == nil {
			return preconditionf(pos, "text span %v has no style", s)
		}
		if len(s.Chars) != s.Length {
			return preconditionf(pos, "text span %v has %d characters", s, len(s.Chars))
		}
	case EmbeddingStart:
		if s.Embedding == nil || s.Embedding.Direction == bidi.Neutral {
			return preconditionf(pos, "embedding span %v without direction", s)
		}
	}
	return nil
}

// TextSource is the client's text store. Both methods are synchronous and
// free of side effects.
type TextSource interface {
	// FetchSpanAt returns the span covering source position pos, or io.EOF
	// if pos is at or beyond the end of the text.
	FetchSpanAt(pos int) (*StyledSpan, error)
	// PrecedingTextAt returns text immediately before pos. It may return
	// less than all of the preceding text; an empty result signals the
	// start of the text.
	PrecedingTextAt(pos int) ([]rune, error)
}

// ErrPrecondition is the base error for input contract violations.
var ErrPrecondition = errors.New("textrun: precondition violated")

// PreconditionError is returned when a client violates an input contract,
// e.g. by handing out a text span without a style.
type PreconditionError struct {
	Pos int
	Msg string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("textrun: precondition violated at position %d: %s", e.Pos, e.Msg)
}

// Unwrap makes PreconditionError match ErrPrecondition with errors.Is.
func (e *PreconditionError) Unwrap() error {
	return ErrPrecondition
}

func preconditionf(pos int, format string, args ...interface{}) error {
	err := &PreconditionError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
	CT().Errorf(err.Error())
	return err
}
