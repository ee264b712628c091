package diag

import (
	"sort"
	"sync"
)

// Bag collects diagnostics from concurrent producers.
type Bag struct {
	mu    sync.Mutex
	items []Diagnostic
}

func NewBag() *Bag {
	return &Bag{}
}

func (b *Bag) Add(ds ...Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append(b.items, ds...)
}

func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Items returns a copy of the collected diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.items))
	copy(out, b.items)
	return out
}

// Count returns the number of diagnostics at sev or above.
func (b *Bag) Count(sev Severity) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for i := range b.items {
		if b.items[i].Severity >= sev {
			n++
		}
	}
	return n
}

// Sort orders by file, start, end, severity (desc) and rule id, so output is
// deterministic regardless of worker scheduling.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i].Location, b.items[j].Location
		if di.File != dj.File {
			return di.File < dj.File
		}
		if di.Span.StartByte != dj.Span.StartByte {
			return di.Span.StartByte < dj.Span.StartByte
		}
		if di.Span.EndByte != dj.Span.EndByte {
			return di.Span.EndByte < dj.Span.EndByte
		}
		if b.items[i].Severity != b.items[j].Severity {
			return b.items[i].Severity > b.items[j].Severity
		}
		return b.items[i].RuleID < b.items[j].RuleID
	})
}

type dedupKey struct {
	rule  string
	file  string
	start int
	end   int
}

// Dedup drops diagnostics with the same rule and location, keeping the first.
func (b *Bag) Dedup() {
	b.mu.Lock()
	defer b.mu.Unlock()
	seen := make(map[dedupKey]bool, len(b.items))
	items := b.items[:0]
	for _, d := range b.items {
		k := dedupKey{d.RuleID, d.Location.File, d.Location.Span.StartByte, d.Location.Span.EndByte}
		if seen[k] {
			continue
		}
		seen[k] = true
		items = append(items, d)
	}
	b.items = items
}

// Filter keeps only the diagnostics keep accepts.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := b.items[:0]
	for _, d := range b.items {
		if keep(d) {
			items = append(items, d)
		}
	}
	b.items = items
}
