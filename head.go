package tfidx

// Head/offset computer: scans the merged inverted content file
// once, tracking a running byte cursor, and emits a head table of
// (term, offset, idf). The recorded offset always points at a term's
// posting_len field - the position a reader seeks to, reads a count
// from, then reads that many 12-byte ids - a convention writer and
// reader agree on by both sharing codec.go.

import (
	"bufio"
	"fmt"
	"io"
	"math"
)

// InvertedHeadEntry is one term's disk offset and corpus-wide IDF,
// loaded in full and held in memory for the lifetime of an Engine.
type InvertedHeadEntry struct {
	Term   string
	Offset uint64
	IDF    float64
}

// ComputeInvertedHead walks r (the merged inverted content file, from
// the start) and writes a head entry per term to headWriter, returning
// the same entries for in-memory use. df is the document-frequency
// counter accumulated during block building (block.go); totalDocs is N.
func ComputeInvertedHead(r io.Reader, df map[string]int, totalDocs int, headWriter io.Writer) ([]InvertedHeadEntry, error) {
	var cursor uint64
	var entries []InvertedHeadEntry
	hw := bufio.NewWriter(headWriter)

	for {
		wordLen, ok, err := readUint64Peek(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		recordStart := cursor
		cursor += 8

		word, err := readExact(r, int(wordLen))
		if err != nil {
			return nil, err
		}
		cursor += wordLen

		offset := recordStart + 8 + wordLen

		postingLen, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		cursor += 8

		skip := postingLen * DocIDSize
		if _, err := io.CopyN(io.Discard, r, int64(skip)); err != nil {
			return nil, fmt.Errorf("%w: skipping posting list for %q: %v", ErrDecode, word, err)
		}
		cursor += skip

		term := string(word)
		idf := termIDF(totalDocs, df[term])
		entries = append(entries, InvertedHeadEntry{Term: term, Offset: offset, IDF: idf})
		if err := encodeInvertedHeadEntry(hw, term, offset, idf); err != nil {
			return nil, fmt.Errorf("%w: writing inverted head entry for %q: %v", ErrIO, term, err)
		}
	}

	if err := hw.Flush(); err != nil {
		return nil, fmt.Errorf("%w: flushing inverted head: %v", ErrIO, err)
	}
	return entries, nil
}

// termIDF computes log10(N/df). A term present in the content file was
// seen in at least one document, so df is always >= 1 here.
func termIDF(totalDocs, df int) float64 {
	return math.Log10(float64(totalDocs) / float64(df))
}

// LoadInvertedHead reads a previously-written inverted head file in
// full.
func LoadInvertedHead(r io.Reader) ([]InvertedHeadEntry, error) {
	var entries []InvertedHeadEntry
	for {
		term, offset, idf, ok, err := decodeInvertedHeadEntry(r)
		if err != nil {
			return nil, err
		}
		if !ok {
			return entries, nil
		}
		entries = append(entries, InvertedHeadEntry{Term: term, Offset: offset, IDF: idf})
	}
}
