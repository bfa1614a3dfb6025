package tfidx

// Forward index builder: document -> sublinear-TF term-weight
// vector, written as a head/content pair. Grounded on the teacher's
// single-writer index idiom (index.go's Index.build), translated from
// owned-string TF maps to the fixed-width binary codec in codec.go.

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
)

// ForwardHeadEntry is one (doc id, content offset) pair, kept in memory
// after a build so the query evaluator never re-reads the head file.
type ForwardHeadEntry struct {
	DocID  DocID
	Offset uint64
}

// ForwardIndexBuilder writes the forward content file and accumulates
// its head table while a document stream is consumed. It is not safe
// for concurrent use: the spec requires a single document cursor and a
// single running offset counter.
type ForwardIndexBuilder struct {
	content      *bufio.Writer
	closeContent func() error
	nextOffset   uint64
	head         []ForwardHeadEntry
}

// NewForwardIndexBuilder wraps contentWriter, a freshly-created (and
// truncated) forward content file. closeFn is called by Finish, after the
// buffered content has been flushed, to release the underlying file.
func NewForwardIndexBuilder(contentWriter io.Writer, closeFn func() error) *ForwardIndexBuilder {
	return &ForwardIndexBuilder{
		content:      bufio.NewWriter(contentWriter),
		closeContent: closeFn,
	}
}

// AddDocument computes the document's sublinear-TF vector, appends its
// content record, and records its head entry. Words may repeat; order
// within words does not affect the result beyond raw counts.
func (b *ForwardIndexBuilder) AddDocument(id DocID, words []string) error {
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
	}

	terms := make([]TermWeight, 0, len(counts))
	for term, count := range counts {
		terms = append(terms, TermWeight{Term: term, Weight: 1 + math.Log10(float64(count))})
	}
	// Deterministic on-disk order (spec P6: rebuilding from the same
	// document stream must reproduce byte-identical indexes).
	sort.Slice(terms, func(i, j int) bool { return terms[i].Term < terms[j].Term })

	offset := b.nextOffset
	n, err := encodeForwardRecord(b.content, terms)
	if err != nil {
		return fmt.Errorf("%w: writing forward record for %s: %v", ErrIO, id, err)
	}
	b.nextOffset += uint64(n)
	b.head = append(b.head, ForwardHeadEntry{DocID: id, Offset: offset})
	return nil
}

// Head returns the head table accumulated so far. The returned slice is
// shared with the builder; callers must not mutate it.
func (b *ForwardIndexBuilder) Head() []ForwardHeadEntry {
	return b.head
}

// Finish flushes the content writer and writes the head table to
// headWriter, then closes the content file via the constructor's
// closeFn.
func (b *ForwardIndexBuilder) Finish(headWriter io.Writer) error {
	if err := b.content.Flush(); err != nil {
		return fmt.Errorf("%w: flushing forward content: %v", ErrIO, err)
	}
	if b.closeContent != nil {
		if err := b.closeContent(); err != nil {
			return fmt.Errorf("%w: closing forward content: %v", ErrIO, err)
		}
	}

	bw := bufio.NewWriter(headWriter)
	for _, e := range b.head {
		if err := encodeForwardHeadEntry(bw, e.DocID, e.Offset); err != nil {
			return fmt.Errorf("%w: writing forward head entry for %s: %v", ErrIO, e.DocID, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing forward head: %v", ErrIO, err)
	}
	return nil
}

// LoadForwardHead reads a previously-written forward head file in full,
// for the case where an engine is opened against an already-built index
// without rebuilding.
func LoadForwardHead(r io.Reader) ([]ForwardHeadEntry, error) {
	var entries []ForwardHeadEntry
	for {
		id, offset, ok, err := decodeForwardHeadEntry(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return entries, nil
		}
		entries = append(entries, ForwardHeadEntry{DocID: id, Offset: offset})
	}
}

// ReadForwardRecord seeks to offset in a forward content file (opened
// read-only, independently per caller per spec's "do not share a mutable
// file cursor") and decodes the term -> weight map there.
func ReadForwardRecord(r io.ReaderAt, offset uint64) (map[string]float64, error) {
	sr := io.NewSectionReader(r, int64(offset), math.MaxInt64-int64(offset))
	return decodeForwardRecord(sr)
}
