/*
Package digits decides which script's digits are used to display numbers.

Text may carry digits '0'…'9' which are to be displayed with the digits of
another script, depending on the locale of the text, the user's locale or
the text's context. A Policy describes where the locale comes from and
which Method of substitution is to be applied. Resolve turns a policy into
a Culture, a locale together with the first digit of its script.

For the contextual method, the decision is made per digit: digits following
an Arabic letter are displayed with Arabic digits, others remain European.
Without a preceding letter, the direction of the surrounding text decides.
See type NumberContext.

DigitMap finally maps digits, decimal separators and percent signs to the
code points of a culture.
*/
package digits

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

func tracer() tracing.Trace {
	return gtrace.CoreTracer
}
