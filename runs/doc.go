/*
Package runs resolves styled text into a stream of runs.

An Engine pulls spans from a textrun.TextSource and splits them into
ResolvedRuns: sections of text with a single kind, bidi level, digit
culture, style and set of text effects. Runs are collected in a Stream,
interleaved with control entries. Control entries open and close
direction-reversed sections of text, or signal a forced line break.
Every control entry occupies exactly one position of the stream, so
stream positions differ from source positions.

Brackets are inserted relative to the paragraph's base level: whenever the
level of a run differs from the level of the run before, the difference is
made up with ReverseOpen or ReverseClose entries. Reversing every bracketed
section, innermost first, yields the visual order of the stream.

Resolution is lazy. Clients call ResolveUpTo or Next, and the engine
fetches just as much text as needed. Text with right-to-left characters is
collected into batches until the bidi levels of the whole batch are final.

To bound the work done per line, the number of text characters on a line
is capped. If the cap is reached, the engine closes all brackets and
appends a ForcedBreak entry. The bidi scope state at that point is kept,
so the next line may continue within the open embeddings.

Configuration keys are

	textrun.maxlinechars   maximum number of text characters per line (9600)
	textrun.widthbudget    estimated line width in en, limits lookahead (0 = no limit)
	textrun.backscan       characters to look back for bidi context (256)
	textrun.eastasian      estimate widths for an East Asian context
*/
package runs

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the core-tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}
