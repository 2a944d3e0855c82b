// Package report formats particle-filter topic state into the
// human-readable artifact spec.md calls for: one header line per
// (particle, topic), followed by indented probability-sorted word lines.
package report

import (
	"fmt"
	"io"
)

// WordProb is a single word's probability within a topic.
type WordProb struct {
	Word string
	Prob float64
}

// TopicWords is one topic's top words, already sorted descending by
// probability.
type TopicWords struct {
	Topic int
	Words []WordProb
}

// WriteText writes reports — one slice of TopicWords per particle — in
// the plain-text topic report format: a header per (particle, topic)
// followed by indented "(probability, word)" lines.
func WriteText(w io.Writer, reports [][]TopicWords) error {
	for p, topics := range reports {
		for _, tw := range topics {
			if _, err := fmt.Fprintf(w, "particle %d topic %d\n", p, tw.Topic); err != nil {
				return err
			}
			for _, wp := range tw.Words {
				if _, err := fmt.Fprintf(w, "  %.6f\t%s\n", wp.Prob, wp.Word); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
