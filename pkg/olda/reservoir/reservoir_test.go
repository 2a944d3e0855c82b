package reservoir

import (
	"math"
	"math/rand"
	"testing"
)

func TestNew_ZeroCapacityNeverRetains(t *testing.T) {
	s := New(0)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		_, ok := s.Add(rng, []string{"a"})
		if ok {
			t.Fatalf("expected zero-capacity reservoir to never retain")
		}
	}
	if s.Seen() != 20 {
		t.Fatalf("expected seen=20, got %d", s.Seen())
	}
}

func TestAdd_FillsUpToCapacity(t *testing.T) {
	s := New(3)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 3; i++ {
		slot, ok := s.Add(rng, []string{"doc"})
		if !ok || slot != i {
			t.Fatalf("expected doc %d retained at slot %d, got slot=%d ok=%v", i, i, slot, ok)
		}
	}
	if s.Occupied() != 3 {
		t.Fatalf("expected occupied=3, got %d", s.Occupied())
	}
}

func TestGet_OutOfRange(t *testing.T) {
	s := New(2)
	if _, ok := s.Get(5); ok {
		t.Fatalf("expected out-of-range slot to miss")
	}
	if _, ok := s.Get(-1); ok {
		t.Fatalf("expected negative slot to miss")
	}
}

func TestOccupied_SaturatesAtCapacity(t *testing.T) {
	s := New(5)
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 50; i++ {
		s.Add(rng, []string{"x"})
	}
	if s.Occupied() != 5 {
		t.Fatalf("expected occupied saturate at capacity 5, got %d", s.Occupied())
	}
	if s.Seen() != 50 {
		t.Fatalf("expected seen=50, got %d", s.Seen())
	}
}

func TestAll_ReturnsIndependentCopy(t *testing.T) {
	s := New(2)
	rng := rand.New(rand.NewSource(1))
	s.Add(rng, []string{"a"})
	s.Add(rng, []string{"b"})

	all := s.All()
	all[0] = []string{"mutated"}

	doc, _ := s.Get(0)
	if doc[0] != "a" {
		t.Fatalf("expected internal state unaffected by mutation of All() result, got %v", doc)
	}
}

// TestVitterRetentionProbability loosely checks that, well past capacity,
// the final arrival is retained with probability close to capacity/seen,
// as Vitter's algorithm guarantees in expectation.
func TestVitterRetentionProbability(t *testing.T) {
	const capacity = 4
	const streamLen = 40
	const trials = 20000

	retainedLast := 0
	rng := rand.New(rand.NewSource(123))
	for trial := 0; trial < trials; trial++ {
		s := New(capacity)
		var lastSlot int
		var lastOK bool
		for i := 0; i < streamLen; i++ {
			lastSlot, lastOK = s.Add(rng, []string{"doc"})
		}
		if lastOK {
			retainedLast++
		}
		_ = lastSlot
	}

	got := float64(retainedLast) / float64(trials)
	want := float64(capacity) / float64(streamLen)
	if math.Abs(got-want) > 0.03 {
		t.Fatalf("expected retention probability near %v, got %v", want, got)
	}
}
