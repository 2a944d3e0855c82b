// Package reservoir implements a Vitter-style uniform reservoir sampler
// over a stream of tokenized documents, maintaining the rejuvenation
// window for the particle filter.
package reservoir

import "math/rand"

// Sampler is a fixed-capacity uniform reservoir. Documents are stored as
// token slices; a document's reservoir slot is its (d in spec.md terms)
// index used by the assignment store.
type Sampler struct {
	capacity int
	seen     int64
	slots    [][]string
}

// New creates a reservoir with the given capacity. Capacity 0 disables
// retention entirely: every Add returns (0, false).
func New(capacity int) *Sampler {
	return &Sampler{
		capacity: capacity,
		slots:    make([][]string, 0, capacity),
	}
}

// Add inserts doc into the reservoir and reports the slot it occupies, or
// ok=false if the document was not retained. seen is always incremented.
func (s *Sampler) Add(rng *rand.Rand, doc []string) (slot int, ok bool) {
	c := s.seen
	s.seen++

	if s.capacity <= 0 {
		return 0, false
	}

	if c < int64(s.capacity) {
		s.slots = append(s.slots, doc)
		return int(c), true
	}

	r := rng.Int63n(c + 1)
	if r < int64(s.capacity) {
		s.slots[r] = doc
		return int(r), true
	}
	return 0, false
}

// Get returns the document at slot, or ok=false if the slot is unoccupied.
func (s *Sampler) Get(slot int) ([]string, bool) {
	if slot < 0 || slot >= len(s.slots) {
		return nil, false
	}
	return s.slots[slot], true
}

// Occupied returns min(seen, capacity).
func (s *Sampler) Occupied() int {
	if int64(s.capacity) < s.seen {
		return s.capacity
	}
	return int(s.seen)
}

// Seen returns the total number of documents observed so far.
func (s *Sampler) Seen() int64 {
	return s.seen
}

// All returns every currently occupied document, indexed by reservoir slot.
func (s *Sampler) All() [][]string {
	out := make([][]string, len(s.slots))
	copy(out, s.slots)
	return out
}
