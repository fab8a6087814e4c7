package catalog

import (
	"net/url"
	"sync"
)

// Location is the seam to the routing layer: the external, bookmarkable
// representation of the filter state. Replace rewrites the current history
// entry; Push creates a new one.
type Location interface {
	Query() url.Values
	Replace(q url.Values)
	Push(q url.Values)
}

// MemoryLocation is an in-process Location for the CLI and tests. It counts
// writes so tests can assert the one-write-per-fetch invariant.
type MemoryLocation struct {
	mu       sync.Mutex
	values   url.Values
	replaces int
	pushes   int
}

func NewMemoryLocation() *MemoryLocation {
	return &MemoryLocation{values: url.Values{}}
}

func (l *MemoryLocation) Query() url.Values {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneValues(l.values)
}

func (l *MemoryLocation) Replace(q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = cloneValues(q)
	l.replaces++
}

func (l *MemoryLocation) Push(q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = cloneValues(q)
	l.pushes++
}

// SetQuery simulates an external navigation (back button, header search).
func (l *MemoryLocation) SetQuery(q url.Values) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.values = cloneValues(q)
}

// Writes reports how many times the synchronizer wrote the location.
func (l *MemoryLocation) Writes() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.replaces + l.pushes
}

func cloneValues(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		for _, v := range vs {
			out.Add(k, v)
		}
	}
	return out
}
