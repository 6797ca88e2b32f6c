package person

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Sequence hands out division identifiers for one parse run, starting at 1.
// It is safe for concurrent use. The zero value is ready to use.
type Sequence struct {
	last atomic.Int64
}

// Next returns the next identifier.
func (s *Sequence) Next() int {
	return int(s.last.Add(1))
}

// Division is an organisational unit. Two divisions are Equal when their
// names match, whatever their identifiers.
type Division struct {
	id   int
	name string
}

// NewDivision creates a division named name, taking its id from seq.
func NewDivision(seq *Sequence, name string) *Division {
	return &Division{id: seq.Next(), name: name}
}

func (d *Division) ID() int      { return d.id }
func (d *Division) Name() string { return d.name }

// Equal compares divisions by name only.
func (d *Division) Equal(other *Division) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.name == other.name
}

func (d *Division) String() string {
	return fmt.Sprintf("Division{id=%d, name='%s'}", d.id, d.name)
}

// Registry resolves division names to shared instances. Implementations
// must return the same *Division for the same name for their lifetime.
type Registry interface {
	// LookupOrCreate returns the division for name, creating it with the
	// next identifier if it has not been seen.
	LookupOrCreate(name string) *Division

	// Divisions returns every division in creation order.
	Divisions() []*Division

	// Len returns the number of distinct divisions.
	Len() int
}

// MapRegistry is a Registry for single-goroutine use.
type MapRegistry struct {
	seq    Sequence
	byName map[string]*Division
	order  []*Division
}

// NewMapRegistry returns an empty registry with its own id sequence.
func NewMapRegistry() *MapRegistry {
	return &MapRegistry{byName: make(map[string]*Division)}
}

func (r *MapRegistry) LookupOrCreate(name string) *Division {
	if d, ok := r.byName[name]; ok {
		return d
	}
	d := NewDivision(&r.seq, name)
	r.byName[name] = d
	r.order = append(r.order, d)
	return d
}

func (r *MapRegistry) Divisions() []*Division {
	out := make([]*Division, len(r.order))
	copy(out, r.order)
	return out
}

func (r *MapRegistry) Len() int {
	return len(r.order)
}

// LockedRegistry is a Registry that may be shared between goroutines.
// Lookup and creation happen under one mutex.
type LockedRegistry struct {
	mu    sync.Mutex
	inner *MapRegistry
}

// NewLockedRegistry returns an empty registry safe for concurrent builds.
func NewLockedRegistry() *LockedRegistry {
	return &LockedRegistry{inner: NewMapRegistry()}
}

func (r *LockedRegistry) LookupOrCreate(name string) *Division {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.LookupOrCreate(name)
}

func (r *LockedRegistry) Divisions() []*Division {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.Divisions()
}

func (r *LockedRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inner.Len()
}
