// Package particle implements a single hypothesis in the particle
// population: its weight, its per-document and global topic counts, and
// the reweight/transition/rejuvenate operations of the o-LDA algorithm
// (Canini, Shi & Griffiths, "Online Inference of Topics with LDA").
package particle

import (
	"fmt"
	"math/rand"

	"github.com/cognicore/olda/pkg/olda/assign"
	"github.com/cognicore/olda/pkg/olda/counts"
	"github.com/cognicore/olda/pkg/olda/numerics"
)

// NotRetained is the sentinel document slot used for a document that the
// reservoir declined to keep. Its counts are tracked only transiently,
// for the duration of the current ingest, and never rejuvenated.
const NotRetained = -1

// Position names a (reservoir document slot, word index) pair, the
// addressing scheme the assignment store and rejuvenation use.
type Position struct {
	Doc  int
	Word int
}

// WordLookup resolves the vocabulary id of the word at a reservoir
// position. Supplied by the caller (the engine owns the vocabulary and
// the reservoir; a particle owns neither).
type WordLookup func(pos Position) int

// Particle is one hypothesis about every word's latent topic, plus the
// weight the particle filter maintains for it.
type Particle struct {
	weight  float64
	global  *counts.GlobalCounts
	docs    map[int]*counts.DocumentCounts
	current int // key into docs for the document presently being ingested
	storeID assign.NodeID

	topics      int
	alpha, beta float64
}

// New creates a particle at uniform weight with fresh global counts and no
// document history yet. id is the particle's root node in the assignment
// store.
func New(id assign.NodeID, topics int, alpha, beta, weight float64) *Particle {
	return &Particle{
		weight:  weight,
		global:  counts.NewGlobalCounts(topics),
		docs:    make(map[int]*counts.DocumentCounts),
		storeID: id,
		topics:  topics,
		alpha:   alpha,
		beta:    beta,
	}
}

// StoreID returns the particle's node id in the assignment store.
func (p *Particle) StoreID() assign.NodeID { return p.storeID }

// SetStoreID assigns the particle's node id. Used by the particle store
// when installing a particle into the population (root at construction,
// a fresh child id after resample).
func (p *Particle) SetStoreID(id assign.NodeID) { p.storeID = id }

// Weight returns the particle's current (possibly unnormalized) weight.
func (p *Particle) Weight() float64 { return p.weight }

// SetWeight overwrites the particle's weight, used by normalization and
// uniform reset after resample.
func (p *Particle) SetWeight(w float64) { p.weight = w }

// Global returns the particle's global word-topic counts.
func (p *Particle) Global() *counts.GlobalCounts { return p.global }

// CurrentDoc returns the DocumentCounts for the document presently being
// ingested.
func (p *Particle) CurrentDoc() *counts.DocumentCounts { return p.docs[p.current] }

// DocAt returns the DocumentCounts retained for reservoir slot d, if any.
func (p *Particle) DocAt(d int) (*counts.DocumentCounts, bool) {
	dc, ok := p.docs[d]
	return dc, ok
}

// NewDocument resets the current-document counts for a newly ingested
// document. If slot is a valid reservoir slot (not NotRetained), the fresh
// counts are registered under that slot so rejuvenation can find them
// later; otherwise they live only for the duration of this ingest.
func (p *Particle) NewDocument(slot int) {
	d := counts.NewDocumentCounts(p.topics)
	p.docs[slot] = d
	p.current = slot
}

// f computes the o-LDA eqn 2 unnormalized posterior for word w under
// topic t, using doc's current counts and W the vocabulary size at the
// moment of observation.
func (p *Particle) f(doc *counts.DocumentCounts, word, topic, vocabSize int) float64 {
	wordTerm := (float64(p.global.Count(word, topic)) + p.beta) /
		(float64(p.global.TopicTotal(topic)) + float64(vocabSize)*p.beta)
	docTerm := (float64(doc.Count(topic)) + p.alpha) /
		(float64(doc.Total()) + float64(p.topics)*p.alpha)
	return wordTerm * docTerm
}

// Reweight multiplies the particle's weight by Σ_t f(w,t) under its
// current (pre-transition) counts.
func (p *Particle) Reweight(word, vocabSize int) {
	doc := p.CurrentDoc()
	var sum float64
	for t := 0; t < p.topics; t++ {
		sum += p.f(doc, word, t, vocabSize)
	}
	p.weight *= sum
}

// Transition samples a topic for the word at position (slot, wordIndex),
// updates the global and document counts, and — if slot is a retained
// reservoir document — records the assignment in store.
func (p *Particle) Transition(rng *rand.Rand, store *assign.Store, slot, wordIndex, word, vocabSize int) (int, error) {
	doc := p.CurrentDoc()

	u := make([]float64, p.topics)
	for t := 0; t < p.topics; t++ {
		u[t] = p.f(doc, word, t, vocabSize)
	}

	cdf, err := numerics.NormalizeToCDF(u)
	if err != nil {
		return 0, fmt.Errorf("particle transition: %w", err)
	}
	topic, err := numerics.SampleCategorical(rng, cdf)
	if err != nil {
		return 0, fmt.Errorf("particle transition: %w", err)
	}

	p.global.Add(word, topic)
	doc.Add(topic)

	if slot != NotRetained {
		store.Set(p.storeID, slot, wordIndex, topic)
	}

	return topic, nil
}

// Rejuvenate runs one MCMC pass: it draws a fresh uniform batch-sized
// subset of positions, and for each recomputes the o-LDA eqn 3 posterior
// that excludes that position's own current contribution, resampling its
// topic if it changes.
func (p *Particle) Rejuvenate(rng *rand.Rand, store *assign.Store, positions []Position, batch, vocabSize int, lookup WordLookup) error {
	if len(positions) == 0 || batch <= 0 {
		return nil
	}

	idx := numerics.SampleWithoutReplacement(rng, indexRange(len(positions)), batch)

	for _, i := range idx {
		pos := positions[i]
		doc, ok := p.DocAt(pos.Doc)
		if !ok {
			continue
		}

		word := lookup(pos)
		zOld, err := store.Get(p.storeID, pos.Doc, pos.Word)
		if err != nil {
			return fmt.Errorf("particle rejuvenate: %w", err)
		}

		g := make([]float64, p.topics)
		for t := 0; t < p.topics; t++ {
			excl := 0.0
			if t == zOld {
				excl = 1.0
			}

			wordCount := floorZero(float64(p.global.Count(word, t)) - excl)
			topicTotal := floorZero(float64(p.global.TopicTotal(t)) - excl)
			docCount := floorZero(float64(doc.Count(t)) - excl)
			docTotal := floorZero(float64(doc.Total()) - 1)

			wordTerm := (wordCount + p.beta) / (topicTotal + float64(vocabSize)*p.beta)
			docTerm := (docCount + p.alpha) / (docTotal + float64(p.topics)*p.alpha)
			g[t] = wordTerm * docTerm
		}

		cdf, err := numerics.NormalizeToCDF(g)
		if err != nil {
			return fmt.Errorf("particle rejuvenate: %w", err)
		}
		tNew, err := numerics.SampleCategorical(rng, cdf)
		if err != nil {
			return fmt.Errorf("particle rejuvenate: %w", err)
		}

		if tNew != zOld {
			p.global.ResampleUpdate(word, zOld, tNew)
			doc.ResampleUpdate(zOld, tNew)
			store.Set(p.storeID, pos.Doc, pos.Word, tNew)
		}
	}

	return nil
}

// DeepCopy duplicates weight (assigned by caller), global counts, and
// every retained document's counts, but never the assignment store
// (shared by design via parent links) or the node id (assigned by caller).
func (p *Particle) DeepCopy() *Particle {
	cp := &Particle{
		weight:  p.weight,
		global:  p.global.DeepCopy(),
		docs:    make(map[int]*counts.DocumentCounts, len(p.docs)),
		current: p.current,
		topics:  p.topics,
		alpha:   p.alpha,
		beta:    p.beta,
	}
	for slot, d := range p.docs {
		cp.docs[slot] = d.DeepCopy()
	}
	return cp
}

func floorZero(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

func indexRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
