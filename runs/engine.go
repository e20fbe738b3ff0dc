package runs

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/npillmayer/textrun"
	"github.com/npillmayer/textrun/bidi"
	"github.com/npillmayer/textrun/digits"
	"github.com/npillmayer/textrun/uax11"
)

// Engine resolves the runs of a single line. An engine is not safe for
// concurrent use, and must not be called recursively.
type Engine struct {
	source     textrun.TextSource
	classifier textrun.Classifier
	analyzer   bidi.Analyzer
	config     Config
	widthCtx   *uax11.Context
	direction  bidi.Direction
	resume     *bidi.Snapshot
	scope      *bidi.ScopeState
	stream     *Stream
	pending    batch
	numbers    digits.ContextCache
	tracker    digits.Tracker
	marks      []scopeMark
	start      int        // source position of the line start
	srcPos     int        // next source position to fetch
	lastLevel  bidi.Level // level after the last entry, including brackets
	lineChars  int        // text characters in the stream
	width      int        // estimated width of text in the stream
	overBudget bool       // width budget exceeded, scans no longer stop for it
	rtlContext bool       // right-to-left text seen in the current paragraph
	cursor     int        // next entry for Next
	cut        int        // source position where the next line starts, if known
	done       bool
}

// scopeMark records the scope state at a stream position, right after an
// embedding has been entered or left.
type scopeMark struct {
	pos  int
	snap *bidi.Snapshot
}

// New creates an engine resolving text from source.
func New(source textrun.TextSource, opts ...Option) (*Engine, error) {
	if source == nil {
		err := &textrun.PreconditionError{Pos: 0, Msg: "text source is nil"}
		T().Errorf(err.Error())
		return nil, err
	}
	e := &Engine{
		source:    source,
		config:    DefaultConfig(),
		direction: bidi.LeftToRight,
		stream:    newStream(),
		cut:       -1,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.classifier == nil {
		e.classifier = textrun.DefaultClassifier
	}
	if e.analyzer == nil {
		e.analyzer = bidi.NewAnalyzer()
	}
	if e.widthCtx == nil {
		if e.config.EastAsian {
			e.widthCtx = uax11.EastAsianContext
		} else {
			e.widthCtx = environmentWidthContext()
		}
	}
	if e.resume != nil {
		e.scope = e.resume.Restore()
	} else {
		e.scope = bidi.NewScopeState(e.direction)
	}
	e.scope.Backscan = e.config.Backscan
	e.lastLevel = e.scope.BaseLevel()
	e.srcPos = e.start
	e.marks = append(e.marks, scopeMark{pos: 0, snap: e.scope.Snapshot()})
	return e, nil
}

var envWidth struct {
	once sync.Once
	ctx  *uax11.Context
}

func environmentWidthContext() *uax11.Context {
	envWidth.once.Do(func() {
		envWidth.ctx = uax11.ContextFromEnvironment()
	})
	return envWidth.ctx
}

// Stream returns the stream of runs resolved so far.
func (e *Engine) Stream() *Stream {
	return e.stream
}

// Done is true if resolution of the line has finished, either at the end
// of the text or by a forced break.
func (e *Engine) Done() bool {
	return e.done
}

// SourcePos returns the source position where the next line starts, if
// the line has been finished by a forced break or by Truncate. Otherwise
// it returns the next source position to be fetched.
func (e *Engine) SourcePos() int {
	if e.cut >= 0 {
		return e.cut
	}
	return e.srcPos
}

// ResolveUpTo resolves runs until the stream covers stream position target,
// or the text is exhausted. It is a no-op for positions already covered.
func (e *Engine) ResolveUpTo(target int) error {
	for e.stream.Len() < target && !e.done {
		length, pos := e.stream.Len(), e.srcPos
		if err := e.resolveNext(); err != nil {
			return err
		}
		if e.stream.Len() == length && e.srcPos == pos && !e.done {
			break // no progress
		}
	}
	return nil
}

// Next returns the next entry of the stream, resolving more text if
// necessary. It returns io.EOF after the last entry.
func (e *Engine) Next() (Entry, error) {
	for e.cursor >= e.stream.Count() {
		if e.done {
			return Entry{}, io.EOF
		}
		if err := e.resolveNext(); err != nil {
			return Entry{}, err
		}
	}
	entry := e.stream.Entry(e.cursor)
	e.cursor++
	return entry, nil
}

// EntryAt resolves up to stream position pos and returns the entry
// covering it. It returns io.EOF if the stream ends before pos.
func (e *Engine) EntryAt(pos int) (Entry, error) {
	if err := e.ResolveUpTo(pos + 1); err != nil {
		return Entry{}, err
	}
	entry, _, ok := e.stream.EntryAt(pos)
	if !ok {
		return Entry{}, io.EOF
	}
	return entry, nil
}

// EstimatedWidth returns the estimated width of the text in the stream in
// en, according to UAX#11.
func (e *Engine) EstimatedWidth() int {
	return e.width
}

// Snapshot returns the bidi scope state at the end of the line, to be
// handed to the engine of the next line.
func (e *Engine) Snapshot() *bidi.Snapshot {
	if e.cut >= 0 {
		return e.marks[len(e.marks)-1].snap
	}
	return e.scope.Snapshot()
}

// Truncate ends the line at stream position pos. The run covering pos is
// shortened, all entries after it are dropped and reversed sections still
// open are closed. Afterwards SourcePos tells where the next line starts
// and Snapshot returns the bidi scope state at pos.
func (e *Engine) Truncate(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos >= e.stream.Len() {
		return
	}
	cut := e.stream.truncate(pos)
	if cut < 0 {
		cut = e.start
		if n := e.stream.Count(); n > 0 {
			for i := n - 1; i >= 0; i-- {
				if r := e.stream.RunOf(e.stream.Entry(i)); r != nil {
					cut = r.End()
					break
				}
			}
		}
	}
	e.pending.clear()
	e.marks = e.marksUpTo(pos)
	e.lineChars = e.stream.TextChars()
	e.width = 0
	for _, entry := range e.stream.Entries() {
		if r := e.stream.RunOf(entry); r != nil && r.Kind == Text {
			e.width += uax11.StringWidth(r.Chars, e.widthCtx)
		}
	}
	e.lastLevel = e.scope.BaseLevel() + bidi.Level(e.stream.Depth())
	e.bracket(e.scope.BaseLevel())
	e.cut = cut
	e.done = true
	if e.cursor > e.stream.Count() {
		e.cursor = e.stream.Count()
	}
	T().Debugf("line truncated at %d, next line starts at source position %d", pos, cut)
}

func (e *Engine) marksUpTo(pos int) []scopeMark {
	i := len(e.marks)
	for i > 1 && e.marks[i-1].pos > pos {
		i--
	}
	return e.marks[:i]
}

// --- Fetching spans --------------------------------------------------------

// resolveNext fetches the span at the next unresolved source position and
// resolves as much of it as possible. It either advances the source
// position or finishes the line.
func (e *Engine) resolveNext() error {
	if e.done {
		return nil
	}
	span, err := e.source.FetchSpanAt(e.srcPos)
	if errors.Is(err, io.EOF) {
		return e.finish()
	} else if err != nil {
		return fmt.Errorf("runs: fetching span at %d: %w", e.srcPos, err)
	}
	if err = span.Validate(e.srcPos); err != nil {
		return err
	}
	T().Debugf("resolving span %v from %d", span, e.srcPos)
	switch span.Kind {
	case textrun.Text:
		return e.resolveText(span)
	case textrun.EmbeddingStart:
		if err = e.flush(); err != nil {
			return err
		}
		parent := e.scope.EnterEmbedding(span.End(), span.Embedding.Direction, span.Embedding.Override)
		e.emitMarker(span, parent)
		return nil
	case textrun.EmbeddingEnd:
		if err = e.flush(); err != nil {
			return err
		}
		if _, err = e.scope.ExitEmbedding(span.End()); err != nil {
			return fmt.Errorf("runs: end of embedding at %d: %w", e.srcPos, err)
		}
		e.emitMarker(span, e.scope.CurrentLevel())
		return nil
	case textrun.EmbeddedObject:
		return e.resolveOther(span, EmbeddedObject, e.scope.CurrentLevel())
	case textrun.LineBreak:
		return e.resolveOther(span, LineBreak, e.scope.BaseLevel())
	case textrun.ParagraphBreak:
		return e.resolveOther(span, ParagraphBreak, e.scope.BaseLevel())
	case textrun.Hidden:
		return e.resolveOther(span, Hidden, e.scope.CurrentLevel())
	}
	T().Debugf("unknown span kind %v at %d, treating it as hidden", span.Kind, e.srcPos)
	return e.resolveOther(span, Hidden, e.scope.CurrentLevel())
}

// resolveOther emits a run for a non-text span, ending a pending batch.
func (e *Engine) resolveOther(span *textrun.StyledSpan, kind Kind, level bidi.Level) error {
	if err := e.flush(); err != nil {
		return err
	}
	n := span.End() - e.srcPos
	e.emitRun(&ResolvedRun{Start: e.srcPos, Length: n, Kind: kind, Level: level, Style: span.Style})
	e.numbers.Invalidate()
	e.noteNonText(span.Kind, n)
	if kind == LineBreak || kind == ParagraphBreak {
		e.rtlContext = false
	}
	e.srcPos += n
	return nil
}

// emitMarker emits a hidden run for an embedding marker span, and records
// the scope state for the stream position after it.
func (e *Engine) emitMarker(span *textrun.StyledSpan, level bidi.Level) {
	n := span.End() - e.srcPos
	e.emitRun(&ResolvedRun{Start: e.srcPos, Length: n, Kind: Hidden, Level: level, Style: span.Style})
	e.numbers.Invalidate()
	e.srcPos += n
	e.marks = append(e.marks, scopeMark{pos: e.stream.Len(), snap: e.scope.Snapshot()})
}

func (e *Engine) noteNonText(kind textrun.SpanKind, n int) {
	placeholders := make([]rune, n)
	for i := range placeholders {
		placeholders[i] = kind.Placeholder()
	}
	e.scope.NoteText(e.srcPos+n, placeholders)
}

// resolveText scans a text span from the current source position. A stop
// character at the start is carved out as a special run. Otherwise
// characters up to the next stop character, the end of the span or the
// character cap are appended to the pending batch. Exceeding the width
// budget ends the scan once, so clients may inspect the stream; it does
// not complete the pending batch.
func (e *Engine) resolveText(span *textrun.StyledSpan) error {
	chars := span.Chars[e.srcPos-span.Start:]
	if c := e.classifier.Classify(chars[0]); c.Is(textrun.StopMask) {
		return e.resolveSpecial(span, chars, c)
	}
	budget := e.config.WidthBudget
	width := e.width + e.pending.width
	i, capped := 0, false
	for ; i < len(chars); i++ {
		c := e.classifier.Classify(chars[i])
		if c.Is(textrun.StopMask) {
			break
		}
		if e.lineChars+e.pending.len()+i+1 > e.config.MaxLineChars {
			capped = true
			break
		}
		w := uax11.Width(chars[i], e.widthCtx)
		if budget > 0 && !e.overBudget && width+w > budget {
			T().Debugf("width budget of %d exceeded at %d", budget, e.srcPos+i)
			e.overBudget = true
			if i > 0 {
				break
			}
		}
		width += w
		if c.Is(textrun.IsRTL) && !span.Style.Symbol {
			e.pending.bidi = true
		}
	}
	if i > 0 {
		e.pending.add(span, e.srcPos, chars[:i], width-e.width-e.pending.width)
		e.srcPos += i
	}
	if capped {
		return e.forceBreak()
	}
	return e.tryEmit()
}

// resolveSpecial emits a run for a single line break, paragraph break or
// format anchor character. CR+LF counts as a single line break.
func (e *Engine) resolveSpecial(span *textrun.StyledSpan, chars []rune, c textrun.CharClass) error {
	if err := e.flush(); err != nil {
		return err
	}
	n, kind := 1, Anchor
	switch {
	case c.Is(textrun.IsParaBreak):
		kind = ParagraphBreak
		e.rtlContext = false
	case c.Is(textrun.IsLineBreak):
		kind = LineBreak
		e.rtlContext = false
		if chars[0] == '\r' && len(chars) > 1 && chars[1] == '\n' {
			n = 2
		}
	}
	e.emitRun(&ResolvedRun{
		Start:  e.srcPos,
		Length: n,
		Kind:   kind,
		Level:  e.scope.BaseLevel(),
		Style:  span.Style,
		Chars:  chars[:n],
	})
	e.numbers.Invalidate()
	e.scope.NoteText(e.srcPos+n, chars[:n])
	e.srcPos += n
	return nil
}

// finish ends the line at the end of the text.
func (e *Engine) finish() error {
	if err := e.flush(); err != nil {
		return err
	}
	e.bracket(e.scope.BaseLevel())
	e.done = true
	T().Debugf("end of text at %d, stream has %d entries", e.srcPos, e.stream.Count())
	return nil
}

// forceBreak ends the line after the character cap has been reached.
// A pending batch is accepted even if its bidi levels are not final.
func (e *Engine) forceBreak() error {
	if !e.pending.empty() {
		levels, _, err := e.analyze(bidi.Incomplete)
		if err != nil {
			return err
		}
		e.emitBatch(levels)
	}
	e.bracket(e.scope.BaseLevel())
	e.stream.appendControl(ForcedBreak)
	e.marks = append(e.marks, scopeMark{pos: e.stream.Len(), snap: e.scope.Snapshot()})
	e.cut = e.srcPos
	e.done = true
	T().Infof("line reached cap of %d characters, forcing a break at %d", e.config.MaxLineChars, e.srcPos)
	return nil
}

// --- Emitting runs ---------------------------------------------------------

// bracket inserts reverse controls to get from the last level to level l.
func (e *Engine) bracket(l bidi.Level) {
	for e.lastLevel < l {
		e.stream.appendControl(ReverseOpen)
		e.lastLevel++
	}
	for e.lastLevel > l {
		e.stream.appendControl(ReverseClose)
		e.lastLevel--
	}
}

func (e *Engine) emitRun(r *ResolvedRun) {
	e.bracket(r.Level)
	e.stream.appendRun(r)
	if r.Kind == Text {
		e.lineChars += r.Length
		e.width += uax11.StringWidth(r.Chars, e.widthCtx)
	}
}
