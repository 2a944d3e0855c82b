// Package corpus provides lightweight stand-ins for the corpus-acquisition
// and tokenization collaborators spec.md declares out of scope: loading a
// JSONL document stream and stripping markup from raw HTML bodies. It
// never filters or assigns topics; it only prepares text for a
// caller-supplied tokenizer ahead of Engine.IngestDocument.
package corpus

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// Document is a single pre-tokenized corpus entry.
type Document struct {
	Tokens []string `json:"tokens"`
}

// rawDocument is the on-disk JSONL shape: plain text, tokenized by the
// caller before it reaches Engine.IngestDocument.
type rawDocument struct {
	Text string `json:"text"`
}

// LoadJSONL reads one JSON object per line, each with a "text" field, and
// tokenizes its body with tokenize. Malformed lines are skipped with a
// warning rather than aborting the whole load, the same tolerance
// korel/internal/rss.LoadFromJSONL applies to its feed items.
func LoadJSONL(path string, tokenize func(string) []string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	var docs []Document
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		var raw rawDocument
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			log.Printf("Warning: skipping malformed JSON at line %d in %s: %v", i+1, path, err)
			continue
		}

		docs = append(docs, Document{Tokens: tokenize(raw.Text)})
	}

	if len(docs) == 0 {
		return nil, fmt.Errorf("no valid documents found in %s", path)
	}
	return docs, nil
}

// StripHTML extracts the plain text content of an HTML document, for
// corpora sourced from web pages rather than plain text feeds.
func StripHTML(raw string) string {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}

	var buf strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			buf.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extractText(c)
		}
	}
	extractText(doc)

	return strings.TrimSpace(buf.String())
}
