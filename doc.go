/*
Package textrun resolves styled text into runs, ready for line breaking.

# Description

A line formatter does not work on characters directly. Before a line can
be broken, the text between the line start and some target position has to
be split into runs: sections of text sharing one style, one bidi
embedding level, one digit substitution and one set of text effects.
Package textrun defines the input side of this process: clients provide a
TextSource, which hands out StyledSpans. Sub-packages do the actual work:

	bidi     tracks embedding scopes and resolves bidi levels (UAX#9)
	digits   decides which script's digits are used to display numbers
	effects  splits spans at the boundaries of text effects
	runs     fetches spans and resolves them into a run stream
	hyphen   extracts word chunks from a run stream for hyphenation
	uax11    estimates display width (UAX#11)

Resolution is lazy: a client asks for runs up to a position and the engine
will fetch just as much text from the source as needed. Positions in the
run stream differ from positions in the source text, as the engine inserts
control entries for direction reversal and for forced line breaks.

# BSD License

Copyright (c) 2017–2021, Norbert Pillmayer.
All rights reserved.

Redistribution and use in source and binary forms, with or without
modification, are permitted provided that the following conditions
are met:

1. Redistributions of source code must retain the above copyright
notice, this list of conditions and the following disclaimer.

2. Redistributions in binary form must reproduce the above copyright
notice, this list of conditions and the following disclaimer in the
documentation and/or other materials provided with the distribution.

3. Neither the name of this software nor the names of its contributors
may be used to endorse or promote products derived from this software
without specific prior written permission.

THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS
"AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT
LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR
A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT
HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT
LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE,
DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY
THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT
(INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
*/
package textrun

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// CT traces to the core-tracer.
func CT() tracing.Trace {
	return gtrace.CoreTracer
}
