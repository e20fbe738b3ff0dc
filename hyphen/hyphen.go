/*
Package hyphen extracts words from a stream of runs, to be handed over to
a hyphenator.

A line breaker will try to hyphenate a word if the word spans a possible
line end. It asks an Extractor for the chunk of text around a stream
position. Chunks are delimited by spaces, by runs which are not text and
by changes of the locale. Bracket control entries of the stream are
skipped, as words may well contain text of differing bidi levels.

Chunks carry a position map, which translates an index into the raw text
of the chunk to a stream position. A hyphenator may therefore report
hyphenation points in terms of the raw text.
*/
package hyphen

import (
	"fmt"
	"unicode"

	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/textrun"
	"github.com/npillmayer/textrun/bidi"
	"github.com/npillmayer/textrun/runs"
	"golang.org/x/text/language"
)

// T traces to the core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// DefaultMaxChunk is the default maximum length of a chunk.
const DefaultMaxChunk = 80

// MaxChunkFrom reads the maximum chunk length from configuration key
// textrun.hyphen.maxchunk.
func MaxChunkFrom(conf schuko.Configuration) int {
	if conf != nil && conf.IsSet("textrun.hyphen.maxchunk") {
		if n := conf.GetInt("textrun.hyphen.maxchunk"); n > 0 {
			return n
		}
	}
	return DefaultMaxChunk
}

// RunSource is a stream of runs which is resolved lazily. It is
// implemented by runs.Engine.
type RunSource interface {
	ResolveUpTo(pos int) error
	Stream() *runs.Stream
}

// Chunk is a word extracted for hyphenation.
type Chunk struct {
	Text        []rune       // raw characters of the word
	Start       int          // stream position of the first character
	Length      int          // number of stream positions covered
	Locale      language.Tag // language of the word
	MaxSubword  int          // length of the longest sequence of strong directional characters
	PositionMap []int        // stream position for every index of Text, plus the end position
}

func (c *Chunk) String() string {
	return fmt.Sprintf("chunk[%d+%d %q %s]", c.Start, c.Length, string(c.Text), c.Locale)
}

// Extractor extracts word chunks from a RunSource.
type Extractor struct {
	source   RunSource
	maxChunk int
}

// NewExtractor creates an extractor for chunks of at most maxChunk
// characters. A non-positive maxChunk selects DefaultMaxChunk.
func NewExtractor(source RunSource, maxChunk int) *Extractor {
	if maxChunk <= 0 {
		maxChunk = DefaultMaxChunk
	}
	return &Extractor{source: source, maxChunk: maxChunk}
}

// position is a character of a text run at a stream position.
type position struct {
	r      rune
	locale language.Tag
	ok     bool // a character of a text run
	skip   bool // a bracket control entry
}

// at inspects stream position pos, resolving the stream as needed.
func (x *Extractor) at(pos int) (position, error) {
	if pos < 0 {
		return position{}, nil
	}
	if err := x.source.ResolveUpTo(pos + 1); err != nil {
		return position{}, err
	}
	stream := x.source.Stream()
	entry, _, found := stream.EntryAt(pos)
	if !found {
		return position{}, nil
	}
	if c, ok := entry.Control(); ok {
		return position{skip: c == runs.ReverseOpen || c == runs.ReverseClose}, nil
	}
	run := stream.RunOf(entry)
	if run.Kind != runs.Text || run.Style == nil {
		return position{}, nil
	}
	i := pos - entry.Start
	if i >= len(run.Chars) {
		return position{}, nil
	}
	return position{r: run.Chars[i], locale: run.Style.Locale, ok: true}, nil
}

// CollectWordChunk returns the word around stream position pos. If
// atWordStart is not set, the start of the word is searched backwards from
// pos. Returns nil if there is no text at pos, or if the word is longer than
// the maximum chunk length before reaching pos.
func (x *Extractor) CollectWordChunk(pos int, atWordStart bool) (*Chunk, error) {
	p, err := x.at(pos)
	if err != nil || !p.ok {
		return nil, err
	}
	locale := p.locale
	start := pos
	if !atWordStart && !unicode.IsSpace(p.r) {
		if start, err = x.wordStart(pos, locale); err != nil || start < 0 {
			return nil, err
		}
	}
	buf := textrun.BorrowRuneBuffer()
	defer buf.Release()
	var posmap []int
	var subword, maxSubword int
	q := start
	for ; buf.Len() < x.maxChunk; q++ {
		p, err = x.at(q)
		if err != nil {
			return nil, err
		}
		if p.skip {
			continue
		}
		if !p.ok || (buf.Len() > 0 && p.locale != locale) {
			break
		}
		if unicode.IsSpace(p.r) {
			if buf.Len() == 0 {
				continue // leading space
			}
			break
		}
		if buf.Len() == 0 {
			locale = p.locale
		}
		buf.Append(p.r)
		posmap = append(posmap, q)
		if bidi.IsStrong(bidi.ClassOf(p.r)) {
			subword++
			if subword > maxSubword {
				maxSubword = subword
			}
		} else {
			subword = 0
		}
	}
	if buf.Len() == 0 {
		return nil, nil
	}
	end := posmap[len(posmap)-1] + 1
	chunk := &Chunk{
		Text:        append([]rune(nil), buf.Runes...),
		Start:       posmap[0],
		Length:      end - posmap[0],
		Locale:      locale,
		MaxSubword:  maxSubword,
		PositionMap: append(posmap, end),
	}
	T().Debugf("hyphen: collected %v", chunk)
	return chunk, nil
}

// wordStart searches backwards from pos for the start of a word. It
// returns -1 if more than the maximum chunk length of characters have to be
// traversed.
func (x *Extractor) wordStart(pos int, locale language.Tag) (int, error) {
	start, traversed := pos, 0
	for q := pos - 1; q >= 0; q-- {
		p, err := x.at(q)
		if err != nil {
			return -1, err
		}
		if p.skip {
			continue
		}
		if !p.ok || unicode.IsSpace(p.r) || p.locale != locale {
			break
		}
		start = q
		if traversed++; traversed > x.maxChunk {
			T().Debugf("hyphen: word at %d too long", pos)
			return -1, nil
		}
	}
	return start, nil
}
