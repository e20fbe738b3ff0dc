package textrun

import (
	"io"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/textrun/bidi"
)

// SpanList is a simple TextSource holding a list of consecutive spans in
// memory. It is mainly intended for testing and for clients with small
// texts.
type SpanList struct {
	spans []*StyledSpan
	index *redblacktree.Tree // start position → span
	end   int
}

// NewSpanList creates an empty span list.
func NewSpanList() *SpanList {
	return &SpanList{index: redblacktree.NewWith(utils.IntComparator)}
}

// Append adds a span at the end of the list. The start position of span is
// set by the list. The length of text spans is the number of characters,
// non-text spans default to length 1.
func (l *SpanList) Append(span StyledSpan) *SpanList {
	s := span
	s.Start = l.end
	if s.Kind == Text {
		s.Length = len(s.Chars)
	} else if s.Length == 0 {
		s.Length = 1
	}
	l.spans = append(l.spans, &s)
	l.index.Put(s.Start, &s)
	l.end += s.Length
	return l
}

// Text appends a text span.
func (l *SpanList) Text(text string, style *Style) *SpanList {
	return l.Append(StyledSpan{Kind: Text, Chars: []rune(text), Style: style})
}

// Embed appends the start marker of an embedding.
func (l *SpanList) Embed(dir bidi.Direction, override bool) *SpanList {
	return l.Append(StyledSpan{Kind: EmbeddingStart, Embedding: &Embedding{Direction: dir, Override: override}})
}

// Pop appends the end marker of an embedding.
func (l *SpanList) Pop() *SpanList {
	return l.Append(StyledSpan{Kind: EmbeddingEnd})
}

// Object appends an embedded object.
func (l *SpanList) Object() *SpanList {
	return l.Append(StyledSpan{Kind: EmbeddedObject})
}

// Len returns the number of source positions in the list.
func (l *SpanList) Len() int {
	return l.end
}

// Spans returns the spans of the list.
func (l *SpanList) Spans() []*StyledSpan {
	return l.spans
}

// FetchSpanAt is part of interface TextSource.
func (l *SpanList) FetchSpanAt(pos int) (*StyledSpan, error) {
	if pos < 0 || pos >= l.end {
		return nil, io.EOF
	}
	node, found := l.index.Floor(pos)
	if !found {
		return nil, io.EOF
	}
	return node.Value.(*StyledSpan), nil
}

// PrecedingTextAt is part of interface TextSource. It returns the text from
// the start of the span covering pos-1 up to pos. Non-text spans are
// presented by their placeholder characters.
func (l *SpanList) PrecedingTextAt(pos int) ([]rune, error) {
	if pos <= 0 || pos > l.end {
		return nil, nil
	}
	span, err := l.FetchSpanAt(pos - 1)
	if err != nil {
		return nil, err
	}
	n := pos - span.Start
	if span.Kind == Text {
		return span.Chars[:n], nil
	}
	text := make([]rune, n)
	for i := range text {
		text[i] = span.Kind.Placeholder()
	}
	return text, nil
}

var _ TextSource = (*SpanList)(nil)
