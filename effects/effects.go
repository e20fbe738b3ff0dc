/*
Package effects splits text into ranges of uniform text effects.

A styled span may carry a list of effects (e.g., underline, a background
highlight or a custom drawing effect), each covering a range of text
positions. Effects may overlap. Before runs are handed to shaping and
drawing, they have to be split so that each run has exactly one set of
active effects.
*/
package effects

import (
	"fmt"

	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
)

// T traces to the core tracer.
func T() tracing.Trace {
	return gtrace.CoreTracer
}

// Effect is a text effect covering positions [Start, Start+Length).
// Name and Data are not interpreted by this package.
type Effect struct {
	Start  int
	Length int
	Name   string
	Data   interface{}
}

func (e Effect) String() string {
	return fmt.Sprintf("%s[%d+%d]", e.Name, e.Start, e.Length)
}

// Range is a range of text positions with a uniform set of active effects.
type Range struct {
	Start   int
	Length  int
	Effects []Effect // in the order of the original effect list
}

func (r Range) String() string {
	return fmt.Sprintf("[%d+%d]%v", r.Start, r.Length, r.Effects)
}

type boundary struct {
	pos   int
	start bool
	index int // index into the effect list
}

func byPosition(a, b interface{}) int {
	x, y := a.(boundary), b.(boundary)
	if x.pos != y.pos {
		return x.pos - y.pos
	}
	return x.index - y.index
}

// Split partitions [start, start+length) into contiguous ranges, such that
// the set of effects from list active within each range is constant.
// Effects are clipped to the extent. Ranges without any active effect are
// included. A non-positive length results in no ranges.
func Split(list []Effect, start, length int) []Range {
	if length <= 0 {
		return nil
	}
	end := start + length
	events := make([]interface{}, 0, 2*len(list))
	for i, e := range list {
		from, to := max(e.Start, start), min(e.Start+e.Length, end)
		if from >= to {
			continue
		}
		events = append(events, boundary{pos: from, start: true, index: i},
			boundary{pos: to, start: false, index: i})
	}
	utils.Sort(events, byPosition)
	active := make([]bool, len(list))
	ranges := make([]Range, 0, len(events)+1)
	pos := start
	for k := 0; k < len(events); {
		p := events[k].(boundary).pos
		if p > pos {
			ranges = append(ranges, Range{Start: pos, Length: p - pos, Effects: collect(list, active)})
			pos = p
		}
		for ; k < len(events) && events[k].(boundary).pos == p; k++ {
			b := events[k].(boundary)
			active[b.index] = b.start
		}
	}
	if pos < end {
		ranges = append(ranges, Range{Start: pos, Length: end - pos, Effects: collect(list, active)})
	}
	T().Debugf("effects: split [%d+%d] into %d ranges", start, length, len(ranges))
	return ranges
}

func collect(list []Effect, active []bool) []Effect {
	var effects []Effect
	for i, a := range active {
		if a {
			effects = append(effects, list[i])
		}
	}
	return effects
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
