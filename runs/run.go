package runs

import (
	"fmt"

	"github.com/npillmayer/textrun"
	"github.com/npillmayer/textrun/bidi"
	"github.com/npillmayer/textrun/digits"
	"github.com/npillmayer/textrun/effects"
)

// ResolvedRun is a section of source text with a single kind, bidi level,
// digit culture, style and set of effects. Runs are not changed after they
// have been appended to a stream, except for their length when a stream is
// truncated.
type ResolvedRun struct {
	Start   int // source position
	Length  int // number of source positions
	Kind    Kind
	Level   bidi.Level
	Digits  digits.Culture // digit substitution, if any
	Style   *textrun.Style
	Chars   []rune           // characters of text kinds, shared with the text source
	Effects []effects.Effect // effects active throughout the run
}

func (r *ResolvedRun) String() string {
	s := fmt.Sprintf("{%s %d+%d L%d", r.Kind, r.Start, r.Length, r.Level)
	if !r.Digits.IsNone() {
		s += " " + r.Digits.String()
	}
	if r.Chars != nil {
		s += fmt.Sprintf(" %q", string(r.Chars))
	}
	return s + "}"
}

// End returns the source position after the run.
func (r *ResolvedRun) End() int {
	return r.Start + r.Length
}

// MappedChars returns the characters of the run with digits (and numeric
// separators) substituted according to the run's digit culture.
func (r *ResolvedRun) MappedChars() []rune {
	if r.Digits.IsNone() {
		return r.Chars
	}
	return digits.NewDigitMap(r.Digits).MapRunes(r.Chars)
}
