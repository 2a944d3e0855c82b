// Package pstore owns the particle population and the assignment store
// shared by every particle in it: multinomial resampling, effective
// sample size, and the broadcast operations the inference driver issues
// against every particle in lockstep.
package pstore

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/olda/pkg/olda/assign"
	"github.com/cognicore/olda/pkg/olda/internalerr"
	"github.com/cognicore/olda/pkg/olda/numerics"
	"github.com/cognicore/olda/pkg/olda/particle"
)

// Store owns the particle array and the assignment store backing it.
type Store struct {
	particles []*particle.Particle
	assign    *assign.Store
	entropy   *ulid.MonotonicEntropy
	topics    int
	alpha     float64
	beta      float64
}

// New allocates count particles, each a root of the assignment store with
// weight 1/count.
func New(count, topics int, alpha, beta float64) *Store {
	s := &Store{
		assign:  assign.New(),
		entropy: ulid.Monotonic(rand.Reader, 0),
		topics:  topics,
		alpha:   alpha,
		beta:    beta,
	}

	s.particles = make([]*particle.Particle, count)
	uniform := 1.0 / float64(count)
	for i := range s.particles {
		id := s.newID()
		p := particle.New(id, topics, alpha, beta, uniform)
		p.SetStoreID(id)
		s.assign.NewRoot(id)
		s.particles[i] = p
	}
	return s
}

func (s *Store) newID() ulid.ULID {
	return ulid.MustNew(ulid.Now(), s.entropy)
}

// Assign returns the shared assignment store, for callers (the engine)
// that need to resolve assignments directly, e.g. for per-document labels.
func (s *Store) Assign() *assign.Store { return s.assign }

// Particles returns the live particle population, in index order.
func (s *Store) Particles() []*particle.Particle { return s.particles }

// Len returns the number of particles.
func (s *Store) Len() int { return len(s.particles) }

// NewDocumentAll starts a new current document at the given reservoir
// slot (particle.NotRetained if the reservoir declined it) on every
// particle.
func (s *Store) NewDocumentAll(slot int) {
	for _, p := range s.particles {
		p.NewDocument(slot)
	}
}

// ReweightAll broadcasts Reweight for the given word across every
// particle, all reading pre-transition counts.
func (s *Store) ReweightAll(word, vocabSize int) {
	for _, p := range s.particles {
		p.Reweight(word, vocabSize)
	}
}

// TransitionAll broadcasts Transition for the word at (slot, wordIndex)
// across every particle, returning the sampled topic per particle in
// index order.
func (s *Store) TransitionAll(rng *mrand.Rand, slot, wordIndex, word, vocabSize int) ([]int, error) {
	topics := make([]int, len(s.particles))
	for i, p := range s.particles {
		t, err := p.Transition(rng, s.assign, slot, wordIndex, word, vocabSize)
		if err != nil {
			return nil, fmt.Errorf("transition all: particle %d: %w", i, err)
		}
		topics[i] = t
	}
	return topics, nil
}

// Weights returns the current particle weights, in index order.
func (s *Store) Weights() []float64 {
	out := make([]float64, len(s.particles))
	for i, p := range s.particles {
		out[i] = p.Weight()
	}
	return out
}

// NormalizeWeights rescales weights to sum to 1. Fails with
// ErrParticleCollapse if every weight is zero.
func (s *Store) NormalizeWeights() error {
	var sum float64
	for _, p := range s.particles {
		sum += p.Weight()
	}
	if sum <= 0 {
		return fmt.Errorf("normalize weights: %w", internalerr.ErrParticleCollapse)
	}
	for _, p := range s.particles {
		p.SetWeight(p.Weight() / sum)
	}
	return nil
}

// EffectiveSampleSize returns 1/‖w‖₂² over the (assumed normalized)
// current weights.
func (s *Store) EffectiveSampleSize() float64 {
	norm := numerics.L2Norm(s.Weights())
	if norm == 0 {
		return 0
	}
	return 1.0 / (norm * norm)
}

// UniformReweightAll resets every particle's weight to 1/P.
func (s *Store) UniformReweightAll() {
	uniform := 1.0 / float64(len(s.particles))
	for _, p := range s.particles {
		p.SetWeight(uniform)
	}
}

// Resample draws P indices with replacement proportional to weight and
// replaces the population with child particles: each child is a deep
// copy of its chosen parent's counts, installed as a new node in the
// assignment store whose parent is the original particle's node — so
// shared history costs O(1) per resample rather than O(total words).
// Every particle's weight is then reset to 1/P.
func (s *Store) Resample(rng *mrand.Rand) error {
	cdf, err := numerics.NormalizeToCDF(s.Weights())
	if err != nil {
		return fmt.Errorf("resample: %w", err)
	}

	next := make([]*particle.Particle, len(s.particles))
	for i := range next {
		k, err := numerics.SampleCategorical(rng, cdf)
		if err != nil {
			return fmt.Errorf("resample: %w", err)
		}

		parent := s.particles[k]
		child := parent.DeepCopy()
		childID := s.newID()
		s.assign.NewChild(childID, parent.StoreID())
		child.SetStoreID(childID)
		next[i] = child
	}

	s.particles = next
	s.UniformReweightAll()
	return nil
}

// Rejuvenate broadcasts one MCMC rejuvenation pass across every
// (post-resample) particle, each drawing its own fresh sample of batch
// positions.
func (s *Store) Rejuvenate(rng *mrand.Rand, positions []particle.Position, batch, vocabSize int, lookup particle.WordLookup) error {
	for i, p := range s.particles {
		if err := p.Rejuvenate(rng, s.assign, positions, batch, vocabSize, lookup); err != nil {
			return fmt.Errorf("rejuvenate: particle %d: %w", i, err)
		}
	}
	return nil
}
