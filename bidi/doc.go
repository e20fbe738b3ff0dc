/*
Package bidi tracks bidi embedding scopes and resolves bidi levels for
runs of text, following the Unicode UAX#9 Bidirectional Algorithm.

Text is not resolved paragraph by paragraph, but in batches, as it is
fetched from a text source. Embedding scopes are opened and closed by the
client (through style modifiers), not by explicit formatting characters,
and are tracked by a ScopeState, which outlives a single batch and may be
carried over from one line to the next by a Snapshot.

Levels for a batch of characters are computed by an Analyzer. The default
analyzer implements the rules of UAX#9 for a single level run, including
bracket pairs (BD16, N0). It supports an incomplete mode, where characters
at the end of a batch are left unresolved if their level depends on text
not yet seen.

Isolates (LRI, RLI, FSI, PDI) occurring as characters within a batch are
treated like embeddings. This is not standards-conforming, but good enough
for text where isolation is expressed by the client's scopes.

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
package bidi

import (
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the global core tracer
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// UnicodeVersion is the UAX#9 version this implementation follows.
const UnicodeVersion = "13.0.0"
