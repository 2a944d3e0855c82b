// Command olda-ingest streams a JSONL corpus through the particle-filter
// LDA engine and prints a plain-text topic report, optionally (with
// --archive) archiving each document's report to a SQLite log along the way.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/cognicore/olda/pkg/olda/config"
	"github.com/cognicore/olda/pkg/olda/corpus"
	"github.com/cognicore/olda/pkg/olda/engine"
	"github.com/cognicore/olda/pkg/olda/report"
	"github.com/cognicore/olda/pkg/olda/runlog"
	"github.com/cognicore/olda/pkg/olda/tokenize"
)

func main() {
	var (
		input      = flag.String("input", "", "Path to JSONL corpus file (required)")
		paramsPath = flag.String("params", "", "Path to engine parameters YAML (optional, uses defaults)")
		stoplist   = flag.String("stoplist", "", "Path to stopword list YAML (optional)")
		archive    = flag.String("archive", "", "Path to SQLite report archive (optional)")
	)
	flag.Parse()

	if *input == "" {
		log.Fatal("--input required")
	}

	params, err := config.Load(*paramsPath)
	if err != nil {
		log.Fatalf("load params: %v", err)
	}

	var stopwords []string
	if *stoplist != "" {
		sl, err := config.LoadStoplist(*stoplist)
		if err != nil {
			log.Fatalf("load stoplist: %v", err)
		}
		stopwords = sl.Terms
	}
	tokenizer := tokenize.New(stopwords)

	docs, err := corpus.LoadJSONL(*input, tokenizer.Tokenize)
	if err != nil {
		log.Fatalf("load corpus: %v", err)
	}

	eng, err := engine.New(params)
	if err != nil {
		log.Fatalf("new engine: %v", err)
	}

	ctx := context.Background()
	var arc *runlog.Archive
	if *archive != "" {
		arc, err = runlog.Open(ctx, *archive)
		if err != nil {
			log.Fatalf("open archive: %v", err)
		}
		defer arc.Close()
	}

	plain := !isatty.IsTerminal(os.Stdout.Fd())

	for seq, doc := range docs {
		docID, retained, err := eng.IngestDocument(doc.Tokens)
		if err != nil {
			log.Fatalf("ingest document %d: %v", seq, err)
		}

		if arc != nil {
			if err := arc.Record(ctx, eng.RunID.String(), seq, docID, retained, eng.TopicReport()); err != nil {
				log.Fatalf("archive report: %v", err)
			}
		}

		if !plain && seq%50 == 0 {
			fmt.Fprintf(os.Stderr, "\ringested %s words across %s documents",
				humanize.Comma(eng.TotalWords()), humanize.Comma(int64(seq+1)))
		}
	}
	if !plain {
		fmt.Fprintln(os.Stderr)
	}

	if err := report.WriteText(os.Stdout, eng.TopicReport()); err != nil {
		log.Fatalf("write report: %v", err)
	}
}
