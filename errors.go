package tfidx

import "errors"

// Sentinel error kinds, following the package-level-variable idiom so
// callers can compare with errors.Is even once errors are wrapped with
// context (file paths, terms, offsets).
var (
	// ErrSource marks a failure reading from a DocumentSource. Fatal to
	// build.
	ErrSource = errors.New("tfidx: document source failure")

	// ErrIO marks a filesystem or byte-stream failure. Fatal during
	// build; surfaced per-query at search time.
	ErrIO = errors.New("tfidx: io failure")

	// ErrDecode marks a malformed record: unexpected EOF mid-record, or
	// a length prefix that doesn't fit the remaining data. Indicates a
	// corrupt index.
	ErrDecode = errors.New("tfidx: malformed record")
)

// An empty query, or a query whose terms are all absent from the inverted
// head, is not an error per spec: Engine.Search returns (nil, nil) for it.
