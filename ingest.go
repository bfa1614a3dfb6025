package tfidx

// TextIngestSource is an optional convenience DocumentSource for callers
// who have raw text instead of a pre-tokenized document store. It reads
// lines of the form "<hex-doc-id>\t<raw text>" and runs each line's text
// through the analyzer pipeline (analyzer.go) to produce the word list
// the core engine expects. Not used by any core index-building or
// query-evaluation path - those consume DocumentSource directly.

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// TextIngestSource builds a MemoryDocumentSource from a reader of
// tab-separated "id\ttext" lines, analyzed with config.
type TextIngestSource struct {
	config AnalyzerConfig
}

// NewTextIngestSource returns an ingest helper using the given analyzer
// configuration.
func NewTextIngestSource(config AnalyzerConfig) *TextIngestSource {
	return &TextIngestSource{config: config}
}

// Read parses r line by line and returns a ready-to-use DocumentSource.
// Lines must already be sorted by ascending doc id; blank lines are
// skipped.
func (t *TextIngestSource) Read(r io.Reader) (DocumentSource, error) {
	var docs []Document
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		idPart, text, found := strings.Cut(line, "\t")
		if !found {
			return nil, fmt.Errorf("%w: ingest line %d: missing tab separator", ErrSource, lineNo)
		}
		id, err := ParseDocID(strings.TrimSpace(idPart))
		if err != nil {
			return nil, fmt.Errorf("%w: ingest line %d: %v", ErrSource, lineNo, err)
		}
		docs = append(docs, Document{
			ID:    id,
			Words: AnalyzeWithConfig(text, t.config),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: ingest scan: %v", ErrSource, err)
	}

	return NewMemoryDocumentSource(docs)
}

// ReadContext is Read preceded by a cancellation check: ctx is consulted
// once, before any input is read; a cancellation that arrives while Read
// is scanning is not observed.
func (t *TextIngestSource) ReadContext(ctx context.Context, r io.Reader) (DocumentSource, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSource, err)
	}
	return t.Read(r)
}
