package effects

import (
	"testing"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/testconfig"
	"github.com/npillmayer/schuko/tracing"
)

func TestSplitNoEffects(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	//
	ranges := Split(nil, 10, 5)
	if len(ranges) != 1 || ranges[0].Start != 10 || ranges[0].Length != 5 || len(ranges[0].Effects) != 0 {
		t.Errorf("expected a single range without effects, have %v", ranges)
	}
	if ranges = Split(nil, 10, 0); len(ranges) != 0 {
		t.Errorf("expected no ranges for empty extent, have %v", ranges)
	}
}

func TestSplitOverlapping(t *testing.T) {
	teardown := testconfig.QuickConfig(t)
	defer teardown()
	gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	//
	underline := Effect{Name: "underline", Start: 2, Length: 6}
	highlight := Effect{Name: "highlight", Start: 5, Length: 10}
	ranges := Split([]Effect{underline, highlight}, 0, 10)
	expected := []struct {
		start, length int
		names         []string
	}{
		{0, 2, nil},
		{2, 3, []string{"underline"}},
		{5, 3, []string{"underline", "highlight"}},
		{8, 2, []string{"highlight"}},
	}
	if len(ranges) != len(expected) {
		t.Fatalf("expected %d ranges, have %v", len(expected), ranges)
	}
	for i, x := range expected {
		r := ranges[i]
		if r.Start != x.start || r.Length != x.length || len(r.Effects) != len(x.names) {
			t.Errorf("[%d] expected range %d+%d with %v, have %v", i, x.start, x.length, x.names, r)
			continue
		}
		for j, name := range x.names {
			if r.Effects[j].Name != name {
				t.Errorf("[%d] expected effect %s, have %s", i, name, r.Effects[j].Name)
			}
		}
	}
}

func TestSplitAdjacentEffects(t *testing.T) {
	a := Effect{Name: "a", Start: 0, Length: 4}
	b := Effect{Name: "b", Start: 4, Length: 4}
	ranges := Split([]Effect{b, a}, 2, 4)
	if len(ranges) != 2 {
		t.Fatalf("expected 2 ranges, have %v", ranges)
	}
	if ranges[0].Effects[0].Name != "a" || ranges[1].Effects[0].Name != "b" {
		t.Errorf("expected effects a, b in order of position, have %v", ranges)
	}
	total := 0
	for _, r := range ranges {
		total += r.Length
	}
	if total != 4 {
		t.Errorf("expected ranges to cover the extent, have length %d", total)
	}
}
