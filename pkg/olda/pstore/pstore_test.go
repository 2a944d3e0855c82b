package pstore

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/cognicore/olda/pkg/olda/internalerr"
	"github.com/cognicore/olda/pkg/olda/particle"
)

func TestNew_UniformInitialWeights(t *testing.T) {
	s := New(4, 3, 0.1, 0.01)
	for i, w := range s.Weights() {
		if math.Abs(w-0.25) > 1e-12 {
			t.Fatalf("particle %d: expected weight 0.25, got %v", i, w)
		}
	}
}

func TestNormalizeWeights_SumsToOne(t *testing.T) {
	s := New(5, 2, 0.1, 0.01)
	for i, p := range s.Particles() {
		p.SetWeight(float64(i + 1))
	}
	if err := s.NormalizeWeights(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum float64
	for _, w := range s.Weights() {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("expected weights to sum to 1, got %v", sum)
	}
}

func TestNormalizeWeights_CollapseErrors(t *testing.T) {
	s := New(3, 2, 0.1, 0.01)
	for _, p := range s.Particles() {
		p.SetWeight(0)
	}
	if err := s.NormalizeWeights(); !errors.Is(err, internalerr.ErrParticleCollapse) {
		t.Fatalf("expected ErrParticleCollapse, got %v", err)
	}
}

func TestEffectiveSampleSize_UniformIsPopulationSize(t *testing.T) {
	s := New(8, 2, 0.1, 0.01)
	ess := s.EffectiveSampleSize()
	if math.Abs(ess-8.0) > 1e-9 {
		t.Fatalf("expected ESS=8 for uniform weights, got %v", ess)
	}
}

func TestEffectiveSampleSize_DegenerateIsOne(t *testing.T) {
	s := New(8, 2, 0.1, 0.01)
	for i, p := range s.Particles() {
		if i == 0 {
			p.SetWeight(1.0)
		} else {
			p.SetWeight(0.0)
		}
	}
	ess := s.EffectiveSampleSize()
	if math.Abs(ess-1.0) > 1e-9 {
		t.Fatalf("expected ESS=1 for a fully degenerate distribution, got %v", ess)
	}
}

func TestUniformReweightAll(t *testing.T) {
	s := New(4, 2, 0.1, 0.01)
	for i, p := range s.Particles() {
		p.SetWeight(float64(i))
	}
	s.UniformReweightAll()
	for _, w := range s.Weights() {
		if math.Abs(w-0.25) > 1e-12 {
			t.Fatalf("expected uniform weight 0.25, got %v", w)
		}
	}
}

func TestResample_PreservesPopulationSizeAndUniformWeight(t *testing.T) {
	s := New(6, 2, 0.1, 0.01)
	weights := []float64{0.5, 0.1, 0.1, 0.1, 0.1, 0.1}
	for i, p := range s.Particles() {
		p.SetWeight(weights[i])
	}

	rng := rand.New(rand.NewSource(3))
	if err := s.Resample(rng); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if s.Len() != 6 {
		t.Fatalf("expected population size preserved at 6, got %d", s.Len())
	}
	for i, w := range s.Weights() {
		if math.Abs(w-1.0/6.0) > 1e-12 {
			t.Fatalf("particle %d: expected uniform weight 1/6 after resample, got %v", i, w)
		}
	}
}

func TestResample_ChildrenInheritParentCounts(t *testing.T) {
	s := New(3, 2, 0.1, 0.01)
	parent := s.Particles()[0]
	parent.NewDocument(0)

	rng := rand.New(rand.NewSource(5))
	if _, err := parent.Transition(rng, s.Assign(), 0, 0, 1, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, p := range s.Particles() {
		if i == 0 {
			p.SetWeight(1.0)
		} else {
			p.SetWeight(0.0)
		}
	}

	if err := s.Resample(rng); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, child := range s.Particles() {
		if child.Global().Count(1, 0)+child.Global().Count(1, 1) != 1 {
			t.Fatalf("child %d: expected inherited global count of 1, got %d/%d",
				i, child.Global().Count(1, 0), child.Global().Count(1, 1))
		}
	}
}

func TestReweightAllAndTransitionAll(t *testing.T) {
	s := New(3, 2, 0.1, 0.01)
	s.NewDocumentAll(0)
	s.ReweightAll(2, 10)

	rng := rand.New(rand.NewSource(1))
	topics, err := s.TransitionAll(rng, 0, 0, 2, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(topics) != 3 {
		t.Fatalf("expected one topic per particle, got %d", len(topics))
	}
}

func TestRejuvenate_BroadcastsToEveryParticle(t *testing.T) {
	s := New(3, 2, 0.1, 0.01)
	s.NewDocumentAll(0)

	rng := rand.New(rand.NewSource(1))
	if _, err := s.TransitionAll(rng, 0, 0, 2, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	positions := []particle.Position{{Doc: 0, Word: 0}}
	lookup := func(particle.Position) int { return 2 }
	if err := s.Rejuvenate(rng, positions, 1, 10, lookup); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
