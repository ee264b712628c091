package diag

import (
	"encoding/json"
	"sync"
	"testing"

	"exflow/internal/syntax"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(file string, start, end int) Location {
	return Location{File: file, Span: syntax.Span{
		StartByte: start,
		EndByte:   end,
		Start:     syntax.Point{Line: 1, Column: start},
		End:       syntax.Point{Line: 1, Column: end},
	}}
}

func TestBag_SortAndDedup(t *testing.T) {
	b := NewBag()
	unit := UnitRef{Kind: "method", DisplayName: "Method 'Run'"}

	b.Add(New(EmptyCatch, loc("b.cs", 10, 20), unit, "catch (Exception)", "Method 'Run'"))
	b.Add(New(OverlyBroadCatch, loc("a.cs", 10, 20), unit, "catch (Exception)", "Method 'Run'"))
	b.Add(New(EmptyCatch, loc("a.cs", 10, 20), unit, "catch (Exception)", "Method 'Run'"))
	b.Add(New(EmptyCatch, loc("a.cs", 10, 20), unit, "catch (Exception)", "Method 'Run'"))
	b.Add(New(ThrowStatement, loc("a.cs", 0, 40), unit, "Method 'Run'"))

	b.Sort()
	b.Dedup()

	items := b.Items()
	require.Len(t, items, 4)
	assert.Equal(t, "EXF001", items[0].RuleID)
	assert.Equal(t, "EXF008", items[1].RuleID, "warning sorts before suggestion at the same span")
	assert.Equal(t, "EXF010", items[2].RuleID)
	assert.Equal(t, "b.cs", items[3].Location.File)

	assert.Equal(t, "Empty catch (Exception) in Method 'Run' swallows exceptions", items[1].Message)
	assert.Equal(t, 2, b.Count(SevWarning))
	assert.Zero(t, b.Count(SevError))
}

func TestBag_ConcurrentAdd(t *testing.T) {
	b := NewBag()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b.Add(New(AnalyzerFailure, loc("x.cs", i, i+1), UnitRef{}, "unit", "boom"))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 16, b.Len())
	assert.Equal(t, 16, b.Count(SevError))

	b.Filter(func(d Diagnostic) bool { return d.Location.Span.StartByte < 4 })
	assert.Equal(t, 4, b.Len())
}

func TestSeverity(t *testing.T) {
	for _, s := range []Severity{SevHidden, SevSuggestion, SevWarning, SevError} {
		parsed, err := ParseSeverity(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}
	_, err := ParseSeverity("fatal")
	assert.Error(t, err)

	data, err := json.Marshal(New(UnreachableCatch, loc("a.cs", 1, 2), UnitRef{}, "a", "b", "c"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"severity":"error"`)
}

func TestRuleByID(t *testing.T) {
	r, ok := RuleByID("EXF004")
	require.True(t, ok)
	assert.Equal(t, "rethrow_anti_pattern", r.Name)

	r, ok = RuleByID("unreachable_catch")
	require.True(t, ok)
	assert.Equal(t, "EXF007", r.ID)

	_, ok = RuleByID("EXF999")
	assert.False(t, ok)

	seen := map[string]bool{}
	for _, r := range Rules {
		assert.False(t, seen[r.ID], r.ID)
		seen[r.ID] = true
	}
}
