package tfidx

// Binary record codec for forward and inverted index records.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WIRE FORMAT
// ═══════════════════════════════════════════════════════════════════════════════
// All integers are fixed-width big-endian uint64. Doubles are 8-byte
// IEEE-754 big-endian. Records are concatenated with no padding.
//
//	Forward content record:  u64 word_count, then word_count x
//	                          { u64 word_len, word_len bytes, f64 tf_weight }
//	Forward head entry:      12 bytes doc_id, u64 offset
//	Inverted content record: u64 word_len, word_len bytes,
//	                          u64 posting_len, posting_len x 12 bytes
//	Inverted head entry:     u64 word_len, word_len bytes, u64 offset, f64 idf
//
// Every decode function that reads a *sequence* of records until the
// underlying stream ends (inverted content/blocks, either head file) is
// "peeked": at a clean record boundary, a zero-byte read surfaces as
// io.EOF and is reported as ok=false, err=nil - not an error. A short
// read mid-record (io.ErrUnexpectedEOF) is always an error: the index is
// corrupt.
// ═══════════════════════════════════════════════════════════════════════════════

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// writeUint64 writes v as big-endian uint64.
func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

// readUint64 reads a big-endian uint64, required to be present. Any EOF
// here (clean or partial) is a DecodeError: the caller already knows a
// record has started.
func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: reading uint64: %v", ErrDecode, err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

// readUint64Peek reads a big-endian uint64 that may legitimately be
// absent: it is the first field of a record in a sequence-until-EOF
// stream. ok=false, err=nil means clean end of stream.
func readUint64Peek(r io.Reader) (value uint64, ok bool, err error) {
	var buf [8]byte
	n, err := io.ReadFull(r, buf[:])
	if err == io.EOF && n == 0 {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("%w: reading record header: %v", ErrDecode, err)
	}
	return binary.BigEndian.Uint64(buf[:]), true, nil
}

func writeFloat64(w io.Writer, v float64) error {
	return writeUint64(w, math.Float64bits(v))
}

func readFloat64(r io.Reader) (float64, error) {
	bits, err := readUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func readExact(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("%w: reading %d bytes: %v", ErrDecode, n, err)
	}
	return buf, nil
}

func writeDocID(w io.Writer, id DocID) error {
	_, err := w.Write(id[:])
	return err
}

func readDocID(r io.Reader) (DocID, error) {
	var id DocID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return id, fmt.Errorf("%w: reading doc id: %v", ErrDecode, err)
	}
	return id, nil
}

// TermWeight is one (term, TF-weight) pair of a forward-content record.
type TermWeight struct {
	Term   string
	Weight float64
}

// encodeForwardRecord writes a forward-content record and returns the
// number of bytes written. terms must already be in the order the
// caller wants on disk - the codec does not sort, so build-time
// determinism is the builder's responsibility, not smuggled in here.
func encodeForwardRecord(w io.Writer, terms []TermWeight) (int64, error) {
	var n int64
	if err := writeUint64(w, uint64(len(terms))); err != nil {
		return n, err
	}
	n += 8
	for _, tw := range terms {
		if err := writeUint64(w, uint64(len(tw.Term))); err != nil {
			return n, err
		}
		n += 8
		if _, err := io.WriteString(w, tw.Term); err != nil {
			return n, err
		}
		n += int64(len(tw.Term))
		if err := writeFloat64(w, tw.Weight); err != nil {
			return n, err
		}
		n += 8
	}
	return n, nil
}

// decodeForwardRecord reads one forward-content record starting exactly
// at its word_count field (the offset recorded in the forward head).
func decodeForwardRecord(r io.Reader) (map[string]float64, error) {
	wordCount, err := readUint64(r)
	if err != nil {
		return nil, err
	}
	terms := make(map[string]float64, wordCount)
	for i := uint64(0); i < wordCount; i++ {
		wordLen, err := readUint64(r)
		if err != nil {
			return nil, err
		}
		word, err := readExact(r, int(wordLen))
		if err != nil {
			return nil, err
		}
		weight, err := readFloat64(r)
		if err != nil {
			return nil, err
		}
		terms[string(word)] = weight
	}
	return terms, nil
}

// encodeForwardHeadEntry writes a forward-head entry (12-byte doc id,
// u64 offset).
func encodeForwardHeadEntry(w io.Writer, id DocID, offset uint64) error {
	if err := writeDocID(w, id); err != nil {
		return err
	}
	return writeUint64(w, offset)
}

// decodeForwardHeadEntry reads one forward-head entry. ok=false marks a
// clean end of the head file (entry count is file size / 20, per spec,
// but callers may simply loop until EOF).
func decodeForwardHeadEntry(r io.Reader) (id DocID, offset uint64, ok bool, err error) {
	var first [DocIDSize]byte
	n, err := io.ReadFull(r, first[:])
	if err == io.EOF && n == 0 {
		return id, 0, false, nil
	}
	if err != nil {
		return id, 0, false, fmt.Errorf("%w: reading forward head entry: %v", ErrDecode, err)
	}
	id = DocID(first)
	offset, err = readUint64(r)
	if err != nil {
		return id, 0, false, err
	}
	return id, offset, true, nil
}

// encodeInvertedRecord writes an inverted content/block record: the term,
// then its posting list. postings must already be ascending and
// duplicate-free (spec's posting-list invariant).
func encodeInvertedRecord(w io.Writer, term string, postings []DocID) error {
	if err := writeUint64(w, uint64(len(term))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, term); err != nil {
		return err
	}
	if err := writeUint64(w, uint64(len(postings))); err != nil {
		return err
	}
	for _, id := range postings {
		if err := writeDocID(w, id); err != nil {
			return err
		}
	}
	return nil
}

// decodeInvertedRecord reads one inverted content/block record. ok=false
// marks a clean end of stream at a record boundary.
func decodeInvertedRecord(r io.Reader) (term string, postings []DocID, ok bool, err error) {
	wordLen, present, err := readUint64Peek(r)
	if err != nil || !present {
		return "", nil, present, err
	}
	word, err := readExact(r, int(wordLen))
	if err != nil {
		return "", nil, false, err
	}
	postingLen, err := readUint64(r)
	if err != nil {
		return "", nil, false, err
	}
	postings = make([]DocID, postingLen)
	for i := range postings {
		postings[i], err = readDocID(r)
		if err != nil {
			return "", nil, false, err
		}
	}
	return string(word), postings, true, nil
}

// encodeInvertedHeadEntry writes an inverted-head entry: term, the byte
// offset of that term's posting-list length field in the content file,
// and its IDF.
func encodeInvertedHeadEntry(w io.Writer, term string, offset uint64, idf float64) error {
	if err := writeUint64(w, uint64(len(term))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, term); err != nil {
		return err
	}
	if err := writeUint64(w, offset); err != nil {
		return err
	}
	return writeFloat64(w, idf)
}

// decodeInvertedHeadEntry reads one inverted-head entry. ok=false marks
// a clean end of the head file.
func decodeInvertedHeadEntry(r io.Reader) (term string, offset uint64, idf float64, ok bool, err error) {
	wordLen, present, err := readUint64Peek(r)
	if err != nil || !present {
		return "", 0, 0, present, err
	}
	word, err := readExact(r, int(wordLen))
	if err != nil {
		return "", 0, 0, false, err
	}
	offset, err = readUint64(r)
	if err != nil {
		return "", 0, 0, false, err
	}
	idf, err = readFloat64(r)
	if err != nil {
		return "", 0, 0, false, err
	}
	return string(word), offset, idf, true, nil
}
