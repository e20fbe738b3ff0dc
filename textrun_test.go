package textrun

import (
	"errors"
	"io"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/textrun/bidi"
	"golang.org/x/text/language"
)

func TestClassify(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	var tests = []struct {
		r      rune
		flags  CharFlags
		script string
	}{
		{'a', IsLetter, "Latn"},
		{'7', IsDigit, ""},
		{'\n', IsLineBreak, ""},
		{ParagraphSeparator, IsParaBreak, ""},
		{'\t', IsFormatAnchor, ""},
		{'א', IsLetter | IsRTL, "Hebr"},
		{'ا', IsLetter | IsRTL, "Arab"},
		{'ܐ', IsLetter | IsRTL, "Syrc"},
		{'١', IsDigit | IsRTL, ""},
		{'\u202B', IsRTL, ""}, // RLE
	}
	for i, test := range tests {
		c := DefaultClassifier.Classify(test.r)
		if c.Flags != test.flags {
			t.Errorf("[%d] expected flags %b for %#U, have %b", i, test.flags, test.r, c.Flags)
		}
		if test.script != "" && c.Script != language.MustParseScript(test.script) {
			t.Errorf("[%d] expected script %s for %#U, have %s", i, test.script, test.r, c.Script)
		}
	}
	if !DefaultClassifier.Classify('\r').Is(StopMask) {
		t.Errorf("expected CR to be a stop character")
	}
}

func TestSpanList(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	style := &Style{Locale: language.English}
	l := NewSpanList().Text("Hello ", style).Embed(bidi.RightToLeft, false).Text("World", style).Pop().Object()
	if l.Len() != 14 {
		t.Fatalf("expected span list to cover 14 positions, has %d", l.Len())
	}
	span, err := l.FetchSpanAt(8)
	if err != nil {
		t.Fatal(err)
	}
	if span.Kind != Text || span.Start != 7 || span.Length != 5 {
		t.Errorf("unexpected span at 8: %v", span)
	}
	if span, _ = l.FetchSpanAt(6); span.Kind != EmbeddingStart || span.Embedding.Direction != bidi.RightToLeft {
		t.Errorf("expected embedding at 6, have %v", span)
	}
	if _, err = l.FetchSpanAt(14); err != io.EOF {
		t.Errorf("expected EOF at end of text, have %v", err)
	}
	text, _ := l.PrecedingTextAt(10)
	if string(text) != "Wor" {
		t.Errorf("expected preceding text 'Wor', have %q", string(text))
	}
	text, _ = l.PrecedingTextAt(14)
	if len(text) != 1 || text[0] != ObjectReplacement {
		t.Errorf("expected object placeholder, have %q", string(text))
	}
	if text, _ = l.PrecedingTextAt(0); len(text) != 0 {
		t.Errorf("expected no text before start, have %q", string(text))
	}
}

func TestSpanValidation(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	var tests = []struct {
		span  *StyledSpan
		valid bool
	}{
		{&StyledSpan{Kind: Text, Start: 0, Length: 2, Chars: []rune("ab"), Style: &Style{}}, true},
		{&StyledSpan{Kind: Text, Start: 0, Length: 2, Chars: []rune("ab")}, false},
		{&StyledSpan{Kind: Text, Start: 0, Length: 3, Chars: []rune("ab"), Style: &Style{}}, false},
		{&StyledSpan{Kind: EmbeddedObject, Start: 0, Length: 0}, false},
		{&StyledSpan{Kind: EmbeddingStart, Start: 0, Length: 1}, false},
		{&StyledSpan{Kind: Hidden, Start: 5, Length: 1}, false},
		{nil, false},
	}
	for i, test := range tests {
		err := test.span.Validate(0)
		if test.valid && err != nil {
			t.Errorf("[%d] expected span to be valid, have %v", i, err)
		}
		if !test.valid && !errors.Is(err, ErrPrecondition) {
			t.Errorf("[%d] expected precondition error, have %v", i, err)
		}
	}
}

func TestRuneBufferPool(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	buf := BorrowRuneBuffer()
	buf.Append([]rune("abc")...)
	if buf.Len() != 3 {
		t.Errorf("expected buffer to hold 3 runes, has %d", buf.Len())
	}
	buf.Release()
	buf = BorrowRuneBuffer()
	if buf.Len() != 0 {
		t.Errorf("expected borrowed buffer to be empty, has %d runes", buf.Len())
	}
	buf.Release()
}
