package bidi

import (
	"fmt"
	"strings"
)

// --- Reordering ------------------------------------------------------------

// Resolving embedding levels is followed by reordering, which is done per
// line (UAX#9, rules L1 to L4). We disregard rule L1 and leave it to the
// client, as any whitespace may end up next to a line boundary after line
// wrap. Rules L3 and L4 are a matter of shaping.

// Reorder returns the visual order of characters on a line, given their
// resolved levels (rule L2): from the highest level down to the lowest odd
// level, any contiguous sequence of characters at that level or higher is
// reversed. The result maps visual positions to logical positions.
func Reorder(levels []Level) []int {
	order := make([]int, len(levels))
	for i := range order {
		order[i] = i
	}
	var high, lowOdd Level = 0, MaxLevel + 1
	for _, l := range levels {
		if l > high {
			high = l
		}
		if l.IsRTL() && l < lowOdd {
			lowOdd = l
		}
	}
	for l := high; l >= lowOdd && l > 0; l-- {
		for i := 0; i < len(levels); {
			if levels[order[i]] < l {
				i++
				continue
			}
			j := i
			for j < len(levels) && levels[order[j]] >= l {
				j++
			}
			reverse(order, i, j)
			i = j
		}
	}
	return order
}

// reverse ordering of [i,j)
func reverse(order []int, i, j int) {
	for j--; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
}

// LevelString is a helper for debugging and testing.
func LevelString(levels []Level) string {
	var b strings.Builder
	for i, l := range levels {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%d", l)
	}
	return b.String()
}
