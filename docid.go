package tfidx

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// DocIDSize is the fixed width of a document identifier, matching the
// 12-byte ids (e.g. Mongo ObjectIDs) the upstream document store hands out.
const DocIDSize = 12

// DocID is an opaque, fixed-width document identifier. Ordering is
// lexicographic on the raw bytes - the same ordering the document source
// is required to stream documents in, and the same ordering every posting
// list on disk must respect.
type DocID [DocIDSize]byte

// Less reports whether d sorts strictly before other.
func (d DocID) Less(other DocID) bool {
	return bytes.Compare(d[:], other[:]) < 0
}

// Compare returns -1, 0, or 1 as d is less than, equal to, or greater than
// other, matching bytes.Compare's contract.
func (d DocID) Compare(other DocID) int {
	return bytes.Compare(d[:], other[:])
}

// String renders the id as hex, for logging and the text-ingestion wire
// format (ingest.go).
func (d DocID) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDocID decodes a hex-encoded 12-byte id produced by String.
func ParseDocID(s string) (DocID, error) {
	var id DocID
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("tfidx: parse doc id %q: %w", s, err)
	}
	if len(b) != DocIDSize {
		return id, fmt.Errorf("tfidx: doc id %q decodes to %d bytes, want %d", s, len(b), DocIDSize)
	}
	copy(id[:], b)
	return id, nil
}
