// Package engine implements ParticleFilterLDA, the public entry point of
// the online LDA inference engine: it ingests one document at a time,
// driving the per-word reweight/transition/normalize/(resample+rejuvenate)
// state machine of spec.md §4.7 against a population of particles.
package engine

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/cognicore/olda/pkg/olda/config"
	"github.com/cognicore/olda/pkg/olda/internalerr"
	"github.com/cognicore/olda/pkg/olda/particle"
	"github.com/cognicore/olda/pkg/olda/pstore"
	"github.com/cognicore/olda/pkg/olda/report"
	"github.com/cognicore/olda/pkg/olda/reservoir"
	"github.com/cognicore/olda/pkg/olda/vocab"
)

// TopicWordLimit bounds how many words TopicReport lists per topic.
const TopicWordLimit = 10

// Engine is ParticleFilterLDA: the online inference driver.
type Engine struct {
	params config.Params
	vocab  *vocab.Map
	res    *reservoir.Sampler
	pop    *pstore.Store
	rng    *rand.Rand

	totalWords int64

	// RunID identifies this engine instance across topic reports and the
	// runlog archive, so two engines ingesting the same corpus stay
	// distinguishable.
	RunID uuid.UUID
}

// New constructs an engine from validated parameters.
func New(params config.Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		params: params,
		vocab:  vocab.New(),
		res:    reservoir.New(params.ReservoirCapacity),
		pop:    pstore.New(params.Particles, params.Topics, params.Alpha, params.Beta),
		rng:    rand.New(rand.NewSource(params.Seed)),
		RunID:  uuid.New(),
	}, nil
}

// VocabSize returns the number of distinct tokens interned so far.
func (e *Engine) VocabSize() int { return e.vocab.Size() }

// TotalWords returns the number of tokens ingested so far, across all
// documents, retained or not.
func (e *Engine) TotalWords() int64 { return e.totalWords }

// IngestDocument ingests a single tokenized document, returning the
// reservoir slot it was assigned (or particle.NotRetained) and whether it
// was retained. Ingest is all-or-nothing: on error the engine should be
// considered poisoned for this document, though prior documents' state
// remains valid and subsequent IngestDocument calls may continue.
func (e *Engine) IngestDocument(tokens []string) (docID int, retained bool, err error) {
	slot, ok := e.res.Add(e.rng, tokens)
	docSlot := particle.NotRetained
	if ok {
		docSlot = slot
	}

	e.pop.NewDocumentAll(docSlot)

	for i, tok := range tokens {
		wordID, _ := e.vocab.ID(tok)
		vocabSize := e.vocab.Size()
		e.totalWords++

		e.pop.ReweightAll(wordID, vocabSize)

		if _, err := e.pop.TransitionAll(e.rng, docSlot, i, wordID, vocabSize); err != nil {
			return docSlot, ok, fmt.Errorf("ingest document: word %d: %w", i, err)
		}

		if err := e.pop.NormalizeWeights(); err != nil {
			return docSlot, ok, fmt.Errorf("ingest document: word %d: %w", i, err)
		}

		if e.pop.EffectiveSampleSize() <= e.params.ESSThreshold {
			if err := e.pop.Resample(e.rng); err != nil {
				return docSlot, ok, fmt.Errorf("ingest document: resample: %w", err)
			}

			positions := e.reservoirPositions(docSlot, i)
			for m := 0; m < e.params.RejuvMCMCSteps; m++ {
				if err := e.pop.Rejuvenate(e.rng, positions, e.params.RejuvBatch, vocabSize, e.wordAt); err != nil {
					return docSlot, ok, fmt.Errorf("ingest document: rejuvenate: %w", err)
				}
			}

			e.pop.UniformReweightAll()
		}
	}

	return docSlot, ok, nil
}

// reservoirPositions lists every (document slot, word index) currently in
// the reservoir whose word has already been observed. The document being
// ingested is placed in the reservoir before its words are, so for curSlot
// only word indices up to curWord are listed. The result is also truncated
// to totalWords as an early-run safeguard (it is never binding in
// practice: the listed positions are a subset of all ingested tokens).
func (e *Engine) reservoirPositions(curSlot, curWord int) []particle.Position {
	docs := e.res.All()
	positions := make([]particle.Position, 0)
	for d, doc := range docs {
		for i := range doc {
			if d == curSlot && i > curWord {
				break
			}
			positions = append(positions, particle.Position{Doc: d, Word: i})
		}
	}
	if int64(len(positions)) > e.totalWords {
		positions = positions[:e.totalWords]
	}
	return positions
}

// wordAt resolves the vocabulary id of the word at a reservoir position.
// Every token reachable this way was already interned during its
// original ingest, so this never mints a new id.
func (e *Engine) wordAt(pos particle.Position) int {
	doc, ok := e.res.Get(pos.Doc)
	if !ok || pos.Word >= len(doc) {
		return -1
	}
	id, _ := e.vocab.ID(doc[pos.Word])
	return id
}

// TopicReport dumps, for every particle, every topic's top TopicWordLimit
// words sorted descending by within-topic probability.
func (e *Engine) TopicReport() [][]report.TopicWords {
	out := make([][]report.TopicWords, e.pop.Len())
	vocabSize := e.vocab.Size()

	for pi, p := range e.pop.Particles() {
		global := p.Global()
		topics := make([]report.TopicWords, e.params.Topics)

		for t := 0; t < e.params.Topics; t++ {
			denom := float64(global.TopicTotal(t)) + float64(vocabSize)*e.params.Beta
			words := make([]report.WordProb, 0, vocabSize)
			for w := 0; w < vocabSize; w++ {
				prob := (float64(global.Count(w, t)) + e.params.Beta) / denom
				token, _ := e.vocab.Token(w)
				words = append(words, report.WordProb{Word: token, Prob: prob})
			}
			sort.Slice(words, func(i, j int) bool {
				if words[i].Prob != words[j].Prob {
					return words[i].Prob > words[j].Prob
				}
				return words[i].Word < words[j].Word
			})
			if len(words) > TopicWordLimit {
				words = words[:TopicWordLimit]
			}
			topics[t] = report.TopicWords{Topic: t, Words: words}
		}
		out[pi] = topics
	}
	return out
}

// PerDocumentLabels returns, for every particle, the topic assigned to
// each word position of the retained document at docID.
func (e *Engine) PerDocumentLabels(docID int) ([][]int, error) {
	doc, ok := e.res.Get(docID)
	if !ok {
		return nil, fmt.Errorf("per-document labels: slot %d: %w", docID, internalerr.ErrReservoirSlotOutOfRange)
	}

	store := e.pop.Assign()
	out := make([][]int, e.pop.Len())
	for pi, p := range e.pop.Particles() {
		labels := make([]int, len(doc))
		for i := range doc {
			t, err := store.Get(p.StoreID(), docID, i)
			if err != nil {
				return nil, fmt.Errorf("per-document labels: particle %d: %w", pi, err)
			}
			labels[i] = t
		}
		out[pi] = labels
	}
	return out, nil
}
