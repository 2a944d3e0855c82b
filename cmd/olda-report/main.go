// Command olda-report replays archived topic reports for a given run from
// the SQLite report archive written by olda-ingest.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/cognicore/olda/pkg/olda/runlog"
)

func main() {
	var (
		archivePath = flag.String("archive", "", "Path to SQLite report archive (required)")
		runID       = flag.String("run", "", "Run id to replay (required)")
	)
	flag.Parse()

	if *archivePath == "" {
		log.Fatal("--archive required")
	}
	if *runID == "" {
		log.Fatal("--run required")
	}

	ctx := context.Background()
	arc, err := runlog.Open(ctx, *archivePath)
	if err != nil {
		log.Fatalf("open archive: %v", err)
	}
	defer arc.Close()

	bodies, err := arc.Replay(ctx, *runID)
	if err != nil {
		log.Fatalf("replay: %v", err)
	}
	if len(bodies) == 0 {
		log.Fatalf("no reports found for run %s", *runID)
	}

	for i, body := range bodies {
		fmt.Printf("=== document %d ===\n%s\n", i, body)
	}
}
