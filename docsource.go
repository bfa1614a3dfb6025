package tfidx

// Document source contract. The engine never owns
// document storage; it pulls documents, already tokenized, from
// whatever the caller plugs in - a database cursor in production, a
// slice in tests.

import (
	"context"
	"fmt"
)

// Document is one unit of indexing: an id and its already-tokenized word
// list. Word order matters only in that repeated words raise that word's
// raw term frequency - it carries no positional information into either
// index.
type Document struct {
	ID    DocID
	Words []string
}

// DocumentStream yields documents in strictly ascending ID order, one at
// a time. Implementations are single-pass: once exhausted or closed they
// are not reusable.
type DocumentStream interface {
	// Next returns the next document, or ok=false when the stream is
	// exhausted. err is non-nil only on a genuine read failure, wrapping
	// ErrSource.
	Next(ctx context.Context) (doc Document, ok bool, err error)

	// Close releases any underlying resource (cursor, file handle). Safe
	// to call multiple times.
	Close() error
}

// DocumentSource opens a fresh ascending-order stream over the full
// document collection. Build (engine.go) opens a single stream and feeds
// each document to both the forward builder and the block builder, so
// the collection is scanned once per build.
type DocumentSource interface {
	Documents(ctx context.Context) (DocumentStream, error)

	// Count reports the total number of documents, used to size N in the
	// IDF formula without a second full scan.
	Count(ctx context.Context) (int, error)
}

// MemoryDocumentSource is a DocumentSource backed by an in-memory slice,
// the reference implementation used by tests and by callers small enough
// not to need a real document store.
type MemoryDocumentSource struct {
	docs []Document
}

// NewMemoryDocumentSource validates that docs are already sorted in
// strictly ascending ID order (the contract every DocumentSource must
// honor) and wraps them.
func NewMemoryDocumentSource(docs []Document) (*MemoryDocumentSource, error) {
	for i := 1; i < len(docs); i++ {
		if !docs[i-1].ID.Less(docs[i].ID) {
			return nil, fmt.Errorf("%w: documents not in strictly ascending id order at index %d (%s >= %s)",
				ErrSource, i, docs[i-1].ID, docs[i].ID)
		}
	}
	cp := make([]Document, len(docs))
	copy(cp, docs)
	return &MemoryDocumentSource{docs: cp}, nil
}

func (m *MemoryDocumentSource) Documents(ctx context.Context) (DocumentStream, error) {
	return &memoryDocumentStream{docs: m.docs}, nil
}

func (m *MemoryDocumentSource) Count(ctx context.Context) (int, error) {
	return len(m.docs), nil
}

type memoryDocumentStream struct {
	docs []Document
	pos  int
}

func (s *memoryDocumentStream) Next(ctx context.Context) (Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, false, fmt.Errorf("%w: %v", ErrSource, err)
	}
	if s.pos >= len(s.docs) {
		return Document{}, false, nil
	}
	doc := s.docs[s.pos]
	s.pos++
	return doc, true, nil
}

func (s *memoryDocumentStream) Close() error { return nil }
