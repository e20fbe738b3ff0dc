package runs

import (
	"fmt"

	"github.com/npillmayer/textrun"
	"github.com/npillmayer/textrun/bidi"
	"github.com/npillmayer/textrun/digits"
	"github.com/npillmayer/textrun/effects"
)

// A segment is a section of a single text span, collected into a batch.
type segment struct {
	span  *textrun.StyledSpan
	start int    // source position
	chars []rune // slice of span.Chars
}

// batch collects segments of text for bidi analysis. Segments of a batch
// are consecutive in the source text.
type batch struct {
	segments []segment
	buf      *textrun.RuneBuffer // characters of all segments
	start    int                 // source position of the first segment
	width    int                 // estimated width of all segments
	bidi     bool                // right-to-left characters seen
}

func (b *batch) empty() bool {
	return len(b.segments) == 0
}

func (b *batch) len() int {
	if b.buf == nil {
		return 0
	}
	return b.buf.Len()
}

func (b *batch) add(span *textrun.StyledSpan, start int, chars []rune, width int) {
	if b.buf == nil {
		b.buf = textrun.BorrowRuneBuffer()
		b.start = start
	}
	b.segments = append(b.segments, segment{span: span, start: start, chars: chars})
	b.buf.Append(chars...)
	b.width += width
}

func (b *batch) clear() {
	b.buf.Release()
	b.buf = nil
	b.segments = b.segments[:0]
	b.width = 0
	b.bidi = false
}

// --- Bidi analysis ---------------------------------------------------------

// uniform is true if the pending batch resolves to the current level without
// bidi analysis: neither the batch nor the text before it in the paragraph
// contains right-to-left characters, and no embedding is open.
func (e *Engine) uniform() bool {
	return !e.pending.bidi && !e.rtlContext && !e.scope.IsEmbedded()
}

// analyze resolves the bidi levels of the pending batch. It returns a level
// for every character and the number of characters with final levels.
func (e *Engine) analyze(flags bidi.Flags) ([]bidi.Level, int, error) {
	n := e.pending.len()
	if e.uniform() {
		levels := make([]bidi.Level, n)
		l := e.scope.CurrentLevel()
		for i := range levels {
			levels[i] = l
		}
		return levels, n, nil
	}
	arabic := digits.IsArabicLike(e.pending.segments[0].span.Style.Locale)
	state, err := e.scope.AnalyzerState(e.pending.start, e.source.PrecedingTextAt, arabic)
	if err != nil {
		return nil, 0, fmt.Errorf("runs: bidi context at %d: %w", e.pending.start, err)
	}
	levels, resolved, err := e.analyzer.Analyze(e.pending.buf.Runes, state, flags)
	if err != nil {
		return nil, 0, fmt.Errorf("runs: bidi analysis at %d: %w", e.pending.start, err)
	}
	if len(levels) != n {
		return nil, 0, fmt.Errorf("runs: bidi analysis at %d returned %d levels for %d characters",
			e.pending.start, len(levels), n)
	}
	return levels, resolved, nil
}

// tryEmit emits the pending batch, if its bidi levels are final. Otherwise
// the batch is kept and extended by the following text.
func (e *Engine) tryEmit() error {
	if e.pending.empty() {
		return nil
	}
	if e.uniform() {
		return e.flush()
	}
	levels, resolved, err := e.analyze(bidi.Incomplete)
	if err != nil {
		return err
	}
	if resolved < e.pending.len() {
		T().Debugf("batch at %d incomplete: %d of %d characters resolved",
			e.pending.start, resolved, e.pending.len())
		return nil
	}
	e.emitBatch(levels)
	return nil
}

// flush resolves and emits the pending batch, with no more text following.
func (e *Engine) flush() error {
	if e.pending.empty() {
		return nil
	}
	levels, _, err := e.analyze(0)
	if err != nil {
		return err
	}
	e.emitBatch(levels)
	return nil
}

// --- Emitting batches ------------------------------------------------------

// emitBatch splits the pending batch into runs and clears it.
func (e *Engine) emitBatch(levels []bidi.Level) {
	b := &e.pending
	if b.bidi {
		e.rtlContext = true
	}
	depth := e.scope.Depth() + e.scope.Overflow()
	ctx, known := e.numbers.Lookup(b.start, depth)
	e.tracker.Start(ctx, known)
	k := 0
	for _, seg := range b.segments {
		e.emitSegment(seg, levels[k:k+len(seg.chars)])
		k += len(seg.chars)
	}
	end := b.start + b.len()
	if ctx, known = e.tracker.Context(); known {
		e.numbers.Store(end, depth, ctx)
	}
	e.scope.NoteText(end, b.buf.Runes)
	T().Debugf("emitted batch [%d..%d), stream length is %d", b.start, end, e.stream.Len())
	b.clear()
}

// emitSegment emits the runs of a segment: it is split at effect
// boundaries, at level changes and where the digit culture changes.
func (e *Engine) emitSegment(seg segment, levels []bidi.Level) {
	style := seg.span.Style
	culture, contextual := digits.Resolve(style.Digits, style.Locale)
	rtl := e.scope.CurrentLevel().IsRTL()
	current := culture
	if contextual {
		current = digits.None
		if ctx, ok := e.tracker.Context(); ok {
			current = ctx.Apply(culture)
		}
	}
	for _, rng := range effects.Split(style.Effects, seg.start, len(seg.chars)) {
		from := rng.Start - seg.start
		to := from + rng.Length
		runStart, runCulture := from, current
		for i := from; i < to; i++ {
			if contextual {
				current = e.numberCulture(seg.chars[i], rtl, culture, current)
			}
			if i == runStart {
				runCulture = current
				continue
			}
			if levels[i] != levels[runStart] || !current.Same(runCulture) {
				e.emitText(seg, runStart, i, levels[runStart], runCulture, rng.Effects)
				runStart, runCulture = i, current
			}
		}
		if to > runStart {
			e.emitText(seg, runStart, to, levels[runStart], runCulture, rng.Effects)
		}
	}
}

// numberCulture follows the number context for contextual digit
// substitution. Letters decide the context for the digits following them;
// without a letter, the direction of the enclosing paragraph or embedding
// decides. The resolved level of a digit is no help here, as digits end
// up on even levels. Other characters keep the culture of the characters
// before them.
func (e *Engine) numberCulture(r rune, rtl bool, culture, current digits.Culture) digits.Culture {
	c := e.classifier.Classify(r)
	switch {
	case c.Is(textrun.IsLetter):
		e.tracker.Letter(c.Script)
		ctx, _ := e.tracker.Context()
		return ctx.Apply(culture)
	case c.Is(textrun.IsDigit):
		return e.tracker.Digit(rtl).Apply(culture)
	}
	return current
}

func (e *Engine) emitText(seg segment, from, to int, level bidi.Level, culture digits.Culture,
	effs []effects.Effect) {
	//
	e.emitRun(&ResolvedRun{
		Start:   seg.start + from,
		Length:  to - from,
		Kind:    Text,
		Level:   level,
		Digits:  culture,
		Style:   seg.span.Style,
		Chars:   seg.chars[from:to],
		Effects: effs,
	})
}
