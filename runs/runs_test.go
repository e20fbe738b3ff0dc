package runs

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/textrun"
	"github.com/npillmayer/textrun/bidi"
	"github.com/npillmayer/textrun/digits"
	"github.com/npillmayer/textrun/effects"
	"github.com/npillmayer/textrun/uax11"
	"golang.org/x/text/language"

	qconf "github.com/npillmayer/schuko/testconfig"
)

var plain = &textrun.Style{Locale: language.English}

func engine(t *testing.T, source textrun.TextSource, opts ...Option) *Engine {
	t.Helper()
	e, err := New(source, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func resolveAll(t *testing.T, e *Engine) *Stream {
	t.Helper()
	if err := e.ResolveUpTo(1 << 30); err != nil {
		t.Fatal(err)
	}
	if !e.Done() {
		t.Fatalf("expected engine to be done after resolving everything")
	}
	return e.Stream()
}

// checkLengths checks that entry lengths add up to the stream length and
// control entries are of length 1.
func checkLengths(t *testing.T, s *Stream, sourceLen int) {
	t.Helper()
	total, content, controls := 0, 0, 0
	for i, entry := range s.Entries() {
		if entry.Start != total {
			t.Errorf("entry #%d starts at %d, expected %d", i, entry.Start, total)
		}
		total += entry.Length
		if _, ok := entry.Control(); ok {
			if entry.Length != 1 {
				t.Errorf("control entry #%d has length %d", i, entry.Length)
			}
			controls++
		} else {
			content += entry.Length
		}
	}
	if total != s.Len() {
		t.Errorf("entry lengths sum up to %d, stream length is %d", total, s.Len())
	}
	if content > sourceLen {
		t.Errorf("content entries cover %d positions, source has %d", content, sourceLen)
	}
	if total != content+controls {
		t.Errorf("expected %d positions = %d content + %d controls", total, content, controls)
	}
}

func TestNoBracketsWithoutRTL(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	for _, dir := range []bidi.Direction{bidi.LeftToRight, bidi.RightToLeft} {
		source := textrun.NewSpanList().Text("Hello ", plain).Text("World,\nhow (are) you?", plain).Object()
		s := resolveAll(t, engine(t, source, WithDirection(dir)))
		if s.Controls(ReverseOpen)+s.Controls(ReverseClose) != 0 {
			t.Errorf("%s: expected no brackets, have %s", dir, s)
		}
		base := bidi.BaseLevel(dir)
		for _, entry := range s.Entries() {
			if r := s.RunOf(entry); r != nil && r.Level != base {
				t.Errorf("%s: expected run %v to have level %d", dir, r, base)
			}
		}
		checkLengths(t, s, source.Len())
		if s.Len() != source.Len() {
			t.Errorf("%s: expected stream to cover %d positions, covers %d", dir, source.Len(), s.Len())
		}
		if s.String() != "Hello World,[linebreak]how (are) you?[object]" {
			t.Errorf("%s: unexpected stream %s", dir, s)
		}
	}
}

func TestBracketInsertion(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("car ", plain).Text("אב גד", plain).Text(" in", plain)
	e := engine(t, source)
	s := resolveAll(t, e)
	if s.String() != "car <אב גד> in" {
		t.Errorf("unexpected stream %s", s)
	}
	if s.Depth() != 0 {
		t.Errorf("expected all brackets to be closed, depth is %d", s.Depth())
	}
	checkLengths(t, s, source.Len())
	if s.Len() != source.Len()+2 {
		t.Errorf("expected 2 control entries in stream of length %d", s.Len())
	}
}

func TestIncompleteBatchIsExtended(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	// The space after the Hebrew letters depends on the following text.
	source := textrun.NewSpanList().Text("אב ", plain).Text("גד", plain)
	e := engine(t, source)
	if err := e.ResolveUpTo(1); err != nil {
		t.Fatal(err)
	}
	if e.Stream().Len() == 0 {
		t.Fatalf("expected runs after resolving")
	}
	if e.SourcePos() != 5 {
		t.Errorf("expected both spans to be fetched, source position is %d", e.SourcePos())
	}
	s := resolveAll(t, e)
	if s.String() != "<אב גד>" {
		t.Errorf("unexpected stream %s", s)
	}
}

func TestIdempotence(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("one ", plain).Text("two ", plain).Text("three", plain)
	e := engine(t, source)
	if err := e.ResolveUpTo(5); err != nil {
		t.Fatal(err)
	}
	n, l := e.Stream().Count(), e.Stream().Len()
	if l < 5 {
		t.Fatalf("expected stream to cover at least 5 positions, covers %d", l)
	}
	if err := e.ResolveUpTo(5); err != nil {
		t.Fatal(err)
	}
	if e.Stream().Count() != n || e.Stream().Len() != l {
		t.Errorf("expected second call to ResolveUpTo to be a no-op")
	}
	if err := e.ResolveUpTo(3); err != nil || e.Stream().Count() != n {
		t.Errorf("expected ResolveUpTo for covered position to be a no-op")
	}
}

func TestNextAndEntryAt(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("ab\tcd", plain).Object()
	e := engine(t, source)
	var kinds []string
	for {
		entry, err := e.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			t.Fatal(err)
		}
		kinds = append(kinds, e.Stream().KindOf(entry).String())
	}
	if k := strings.Join(kinds, " "); k != "text anchor text object" {
		t.Errorf("unexpected sequence of run kinds: %s", k)
	}
	entry, err := e.EntryAt(3)
	if err != nil {
		t.Fatal(err)
	}
	if r := e.Stream().RunOf(entry); r == nil || string(r.Chars) != "cd" {
		t.Errorf("expected run 'cd' at position 3, have %v", r)
	}
	if _, err = e.EntryAt(6); err != io.EOF {
		t.Errorf("expected EOF beyond end of stream, have %v", err)
	}
}

func TestLineBreakCRLF(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	source := textrun.NewSpanList().Text("a\r\nb\u2029c", plain)
	s := resolveAll(t, engine(t, source))
	if s.String() != "a[linebreak]b[parbreak]c" {
		t.Errorf("unexpected stream %s", s)
	}
	if r := s.RunOf(s.Entry(1)); r.Length != 2 {
		t.Errorf("expected CR+LF to be a single line break, have %v", r)
	}
}

func TestCharacterCap(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("abcdefg", plain).Text("hijklmnop", plain)
	e := engine(t, source, WithConfig(Config{MaxLineChars: 10}))
	s := resolveAll(t, e)
	if s.TextChars() != 10 {
		t.Errorf("expected exactly 10 text characters on the line, have %d", s.TextChars())
	}
	last := s.Entry(s.Count() - 1)
	if c, ok := last.Control(); !ok || c != ForcedBreak {
		t.Errorf("expected stream to end with a forced break, ends with %v", last)
	}
	if e.SourcePos() != 10 {
		t.Errorf("expected next line to start at 10, is %d", e.SourcePos())
	}
	checkLengths(t, s, source.Len())
	// text fitting exactly must not be broken
	source = textrun.NewSpanList().Text("abcdefghij", plain)
	s = resolveAll(t, engine(t, source, WithConfig(Config{MaxLineChars: 10})))
	if s.Controls(ForcedBreak) != 0 {
		t.Errorf("expected no forced break, have %s", s)
	}
}

func TestCapKeepsOpenEmbedding(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("ab ", plain).Embed(bidi.RightToLeft, false).
		Text("אבגדהוזחטי", plain).Pop()
	conf := WithConfig(Config{MaxLineChars: 8})
	e := engine(t, source, conf)
	s := resolveAll(t, e)
	if s.Depth() != 0 {
		t.Errorf("expected brackets to be closed at forced break, depth is %d", s.Depth())
	}
	if s.TextChars() != 8 || s.Controls(ForcedBreak) != 1 {
		t.Errorf("expected 8 text characters and a forced break, have %s", s)
	}
	snap := e.Snapshot()
	if snap.Depth() != 1 || snap.Level() != 1 {
		t.Fatalf("expected snapshot within embedding, have depth %d, level %d", snap.Depth(), snap.Level())
	}
	// next line continues within the embedding
	e2 := engine(t, source, conf, StartAt(e.SourcePos()), ResumeFrom(snap))
	s2 := resolveAll(t, e2)
	if s2.String() != "<וזחטי>" {
		t.Errorf("unexpected stream for second line: %s", s2)
	}
	if s2.Controls(ForcedBreak) != 0 || s2.Depth() != 0 {
		t.Errorf("expected second line to be balanced and not broken")
	}
	if e2.Snapshot().Depth() != 0 {
		t.Errorf("expected embedding to be closed at end of second line")
	}
}

func TestEmbeddingBalance(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("x", plain).
		Embed(bidi.RightToLeft, false).Text("abc", plain).
		Embed(bidi.LeftToRight, false).Text("def", plain).Pop().
		Text("גד", plain).Pop().Text("y", plain)
	s := resolveAll(t, engine(t, source))
	depth := 0
	for _, entry := range s.Entries() {
		if c, ok := entry.Control(); ok {
			switch c {
			case ReverseOpen:
				depth++
			case ReverseClose:
				depth--
			}
		}
		if depth < 0 {
			t.Fatalf("closing bracket without opening one in %s", s)
		}
	}
	if depth != 0 {
		t.Errorf("expected brackets to be balanced, depth is %d in %s", depth, s)
	}
	checkLengths(t, s, source.Len())
	for _, entry := range s.Entries() {
		if r := s.RunOf(entry); r != nil && r.Kind == Text && string(r.Chars) == "def" && r.Level != 2 {
			t.Errorf("expected 'def' on level 2, is on level %d", r.Level)
		}
	}
}

func TestUnbalancedEmbedding(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	source := textrun.NewSpanList().Text("x", plain).Pop()
	e := engine(t, source)
	if err := e.ResolveUpTo(10); !errors.Is(err, bidi.ErrUnbalancedScope) {
		t.Errorf("expected unbalanced scope error, have %v", err)
	}
}

type badSource struct{}

func (badSource) FetchSpanAt(pos int) (*textrun.StyledSpan, error) {
	return &textrun.StyledSpan{Kind: textrun.Text, Start: pos, Length: 3, Chars: []rune("abc")}, nil
}

func (badSource) PrecedingTextAt(pos int) ([]rune, error) {
	return nil, nil
}

func TestPrecondition(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	if _, err := New(nil); !errors.Is(err, textrun.ErrPrecondition) {
		t.Errorf("expected precondition error for missing source, have %v", err)
	}
	e := engine(t, badSource{})
	if err := e.ResolveUpTo(1); !errors.Is(err, textrun.ErrPrecondition) {
		t.Errorf("expected precondition error for span without style, have %v", err)
	}
}

func runWith(s *Stream, pos int) *ResolvedRun {
	for _, entry := range s.Entries() {
		if r := s.RunOf(entry); r != nil && pos >= r.Start && pos < r.End() {
			return r
		}
	}
	return nil
}

func TestContextualDigits(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	arabic := &textrun.Style{
		Locale: language.Arabic,
		Digits: digits.Policy{Source: digits.FromText, Method: digits.Context},
	}
	for _, dir := range []bidi.Direction{bidi.LeftToRight, bidi.RightToLeft} {
		source := textrun.NewSpanList().Text("ب1", arabic) // beh, digit one
		s := resolveAll(t, engine(t, source, WithDirection(dir)))
		if r := runWith(s, 1); r == nil || r.Digits.Zero != 0x0660 {
			t.Errorf("%s: expected Arabic digits after Arabic letter, have %v", dir, r)
		}
		source = textrun.NewSpanList().Text("B1", arabic)
		s = resolveAll(t, engine(t, source, WithDirection(dir)))
		if r := runWith(s, 1); r == nil || !r.Digits.IsNone() {
			t.Errorf("%s: expected no substitution after Latin letter, have %v", dir, r)
		}
	}
	// without a letter, direction decides
	source := textrun.NewSpanList().Text("12", arabic)
	s := resolveAll(t, engine(t, source, WithDirection(bidi.RightToLeft)))
	r := runWith(s, 0)
	if r == nil || r.Digits.Zero != 0x0660 {
		t.Fatalf("expected Arabic digits in right-to-left paragraph, have %v", r)
	}
	if string(r.MappedChars()) != "\u0661\u0662" {
		t.Errorf("expected digits to be mapped to Arabic-Indic digits, have %q", string(r.MappedChars()))
	}
}

func TestContextualDigitsByDirection(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	arabic := &textrun.Style{
		Locale: language.Arabic,
		Digits: digits.Policy{Source: digits.FromText, Method: digits.Context},
	}
	// digits within a right-to-left embedding of a left-to-right paragraph
	source := textrun.NewSpanList().Embed(bidi.RightToLeft, false).Text("12", arabic).Pop()
	s := resolveAll(t, engine(t, source))
	if r := runWith(s, 1); r == nil || r.Digits.Zero != 0x0660 {
		t.Errorf("expected Arabic digits within RTL embedding, have %v", r)
	}
	// digits followed by Arabic text, resolved by the bidi analyzer
	source = textrun.NewSpanList().Text("12 ب", arabic)
	s = resolveAll(t, engine(t, source, WithDirection(bidi.RightToLeft)))
	if r := runWith(s, 0); r == nil || r.Digits.Zero != 0x0660 {
		t.Errorf("expected Arabic digits in right-to-left paragraph, have %v", r)
	}
	s = resolveAll(t, engine(t, source, WithDirection(bidi.LeftToRight)))
	if r := runWith(s, 0); r == nil || !r.Digits.IsNone() {
		t.Errorf("expected no substitution in left-to-right paragraph, have %v", r)
	}
}

func TestEffectSplits(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	style := &textrun.Style{
		Locale:  language.English,
		Effects: []effects.Effect{{Start: 2, Length: 3, Name: "underline"}},
	}
	source := textrun.NewSpanList().Text("abcdefg", style)
	s := resolveAll(t, engine(t, source))
	if s.Count() != 3 {
		t.Fatalf("expected 3 runs, have %d: %s", s.Count(), s)
	}
	r := s.RunOf(s.Entry(1))
	if string(r.Chars) != "cde" || len(r.Effects) != 1 || r.Effects[0].Name != "underline" {
		t.Errorf("expected underlined run 'cde', have %v with effects %v", r, r.Effects)
	}
}

func TestTruncate(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("car ", plain).Text("אב גד", plain).Text(" in", plain)
	e := engine(t, source)
	resolveAll(t, e)
	e.Truncate(7) // "car <אב"
	s := e.Stream()
	if s.String() != "car <אב>" {
		t.Errorf("unexpected stream after truncation: %s", s)
	}
	if e.SourcePos() != 6 {
		t.Errorf("expected next line to start at source position 6, is %d", e.SourcePos())
	}
	checkLengths(t, s, source.Len())
	if e.EstimatedWidth() != 6 {
		t.Errorf("expected estimated width of 6 en, have %d", e.EstimatedWidth())
	}
}

func TestEstimatedWidth(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	source := textrun.NewSpanList().Text("ab〈", plain)
	e := engine(t, source, WithConfig(Config{EastAsian: true}))
	resolveAll(t, e)
	if e.EstimatedWidth() != 4 {
		t.Errorf("expected width of 4 en, have %d", e.EstimatedWidth())
	}
}

func TestConfigFrom(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	conf := testconfig.Conf{
		"textrun.maxlinechars": 100,
		"textrun.backscan":     32,
		"textrun.eastasian":    true,
	}
	c := ConfigFrom(conf)
	if c.MaxLineChars != 100 || c.Backscan != 32 || !c.EastAsian || c.WidthBudget != 0 {
		t.Errorf("unexpected configuration %+v", c)
	}
	if d := ConfigFrom(nil); d.MaxLineChars != DefaultMaxLineChars {
		t.Errorf("expected default cap of %d, have %d", DefaultMaxLineChars, d.MaxLineChars)
	}
}

func TestWidthBudgetKeepsLevels(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	source := textrun.NewSpanList().Text("אב ", plain).Text("גד", plain)
	unlimited := resolveAll(t, engine(t, source, WithWidthContext(uax11.LatinContext)))
	e := engine(t, source, WithWidthContext(uax11.LatinContext), WithConfig(Config{WidthBudget: 2}))
	s := resolveAll(t, e)
	if s.String() != unlimited.String() || s.String() != "<אב גד>" {
		t.Errorf("expected width budget not to change the stream, have %s vs. %s", s, unlimited)
	}
	if r := runWith(s, 2); r == nil || r.Level != 1 {
		t.Errorf("expected space between Hebrew words on level 1, have %v", r)
	}
	if e.EstimatedWidth() != 5 {
		t.Errorf("expected estimated width of 5 en, have %d", e.EstimatedWidth())
	}
}

// contentChars returns the characters of a text run, or placeholders for
// the positions of a hidden run.
func contentChars(r *ResolvedRun) []rune {
	switch r.Kind {
	case Text:
		return r.Chars
	case Hidden:
		return []rune(strings.Repeat(string(textrun.ZeroWidthSpace), r.Length))
	}
	return nil
}

func visible(chars []rune) string {
	return strings.ReplaceAll(string(chars), string(textrun.ZeroWidthSpace), "")
}

// bracketDisplay renders the content of a stream in display order by
// reversing the content of every bracket pair.
func bracketDisplay(s *Stream) string {
	stack := [][]rune{nil}
	for _, entry := range s.Entries() {
		if c, ok := entry.Control(); ok {
			switch c {
			case ReverseOpen:
				stack = append(stack, nil)
			case ReverseClose:
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for i, j := 0, len(top)-1; i < j; i, j = i+1, j-1 {
					top[i], top[j] = top[j], top[i]
				}
				stack[len(stack)-1] = append(stack[len(stack)-1], top...)
			}
			continue
		}
		if r := s.RunOf(entry); r != nil {
			stack[len(stack)-1] = append(stack[len(stack)-1], contentChars(r)...)
		}
	}
	return visible(stack[0])
}

// levelDisplay renders the content of a stream in display order by
// reordering its characters by level. Positions of hidden runs take part
// in reordering.
func levelDisplay(s *Stream) string {
	var chars []rune
	var levels []bidi.Level
	for _, entry := range s.Entries() {
		if r := s.RunOf(entry); r != nil {
			for _, c := range contentChars(r) {
				chars = append(chars, c)
				levels = append(levels, r.Level)
			}
		}
	}
	display := make([]rune, len(chars))
	for i, j := range bidi.Reorder(levels) {
		display[i] = chars[j]
	}
	return visible(display)
}

func TestBracketsMatchDisplayOrder(t *testing.T) {
	teardown := qconf.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	sources := []*textrun.SpanList{
		textrun.NewSpanList().Text("car ", plain).Text("אב גד", plain).Text(" in", plain),
		textrun.NewSpanList().Text("x", plain).
			Embed(bidi.RightToLeft, false).Text("abc", plain).
			Embed(bidi.LeftToRight, false).Text("def", plain).Pop().
			Text("גד", plain).Pop().Text("y", plain),
	}
	// markers between the embeddings separate "abc" from "def"
	expected := []string{"car דג בא in", "xדגdefabcy"}
	for i, source := range sources {
		s := resolveAll(t, engine(t, source))
		byBrackets, byLevels := bracketDisplay(s), levelDisplay(s)
		if byBrackets != byLevels {
			t.Errorf("brackets of %s give %q, levels give %q", s, byBrackets, byLevels)
		}
		if byLevels != expected[i] {
			t.Errorf("expected display order %q, have %q", expected[i], byLevels)
		}
	}
}
