package tfidx

// Query evaluator: boolean-AND candidate selection over posting
// lists, then cosine-similarity ranking over TF-IDF vectors. Top-N
// selection uses a bounded min-heap built on Go's container/heap - keep
// the smallest of the current top-N and evict on a larger incoming
// score, rather than collecting every candidate before popping N.

import (
	"container/heap"
	"fmt"
	"io"
	"math"
	"sort"
)

// ScoredDocument is one ranked query result.
type ScoredDocument struct {
	DocID DocID
	Score float64
}

// QueryEvaluator answers searches against a built index's immutable head
// tables, opening its own positioned reader per call onto the content
// files so concurrent queries never share a mutable cursor.
type QueryEvaluator struct {
	forwardHead  map[DocID]uint64
	invertedHead map[string]InvertedHeadEntry
	forwardAt    io.ReaderAt
	invertedAt   io.ReaderAt
	topN         int
}

// NewQueryEvaluator builds the in-memory lookup tables from already-
// loaded head entries and wraps the two content files for seeking.
func NewQueryEvaluator(forwardHead []ForwardHeadEntry, invertedHead []InvertedHeadEntry, forwardContent, invertedContent io.ReaderAt, topN int) *QueryEvaluator {
	fh := make(map[DocID]uint64, len(forwardHead))
	for _, e := range forwardHead {
		fh[e.DocID] = e.Offset
	}
	ih := make(map[string]InvertedHeadEntry, len(invertedHead))
	for _, e := range invertedHead {
		ih[e.Term] = e
	}
	return &QueryEvaluator{
		forwardHead:  fh,
		invertedHead: ih,
		forwardAt:    forwardContent,
		invertedAt:   invertedContent,
		topN:         topN,
	}
}

// Search ranks documents against the query terms (duplicates allowed;
// they raise that term's raw count in the query vector) and returns up
// to topN results ordered by descending cosine similarity. A query with
// no terms known to the index returns (nil, nil) - not an error.
func (q *QueryEvaluator) Search(terms []string) ([]ScoredDocument, error) {
	queryVec := q.queryVector(terms)
	if len(queryVec) == 0 {
		return nil, nil
	}

	candidates, err := q.candidates(terms)
	if err != nil {
		return nil, err
	}
	if candidates == nil {
		return nil, nil
	}

	return q.rank(queryVec, candidates)
}

// queryVector computes the sublinear-TF, IDF-weighted, L2-normalized
// query vector. Terms absent from the inverted head contribute IDF 0
// and are dropped, matching the "treated as no-op" rule.
func (q *QueryEvaluator) queryVector(terms []string) map[string]float64 {
	raw := make(map[string]int, len(terms))
	for _, t := range terms {
		raw[t]++
	}

	vec := make(map[string]float64, len(raw))
	for term, count := range raw {
		entry, known := q.invertedHead[term]
		if !known {
			continue
		}
		vec[term] = (1 + math.Log10(float64(count))) * entry.IDF
	}
	return l2Normalize(vec)
}

// candidates computes the boolean-AND candidate set over terms known to
// the inverted head, skipping unknown terms (they neither narrow nor
// exclude). A nil return with nil error means no input term was known.
func (q *QueryEvaluator) candidates(terms []string) ([]DocID, error) {
	var result []DocID
	haveCandidates := false

	for _, term := range terms {
		entry, known := q.invertedHead[term]
		if !known {
			continue
		}
		postings, err := q.loadPostings(entry.Offset)
		if err != nil {
			return nil, err
		}
		if !haveCandidates {
			result = postings
			haveCandidates = true
			continue
		}
		result = intersectSorted(result, postings)
	}

	if !haveCandidates {
		return nil, nil
	}
	return result, nil
}

// loadPostings seeks to offset in the inverted content file and decodes
// a posting_len-prefixed list of DocIDs (the exact convention head.go
// records offsets against).
func (q *QueryEvaluator) loadPostings(offset uint64) ([]DocID, error) {
	sr := io.NewSectionReader(q.invertedAt, int64(offset), math.MaxInt64-int64(offset))
	count, err := readUint64(sr)
	if err != nil {
		return nil, err
	}
	postings := make([]DocID, count)
	for i := range postings {
		postings[i], err = readDocID(sr)
		if err != nil {
			return nil, err
		}
	}
	return postings, nil
}

// intersectSorted is a classic two-pointer intersection over ascending,
// lex-ordered 12-byte keys.
func intersectSorted(a, b []DocID) []DocID {
	out := make([]DocID, 0, minInt(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch a[i].Compare(b[j]) {
		case -1:
			i++
		case 1:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// rank loads and scores every candidate document, returning the top-N by
// descending cosine similarity (ties broken by ascending doc id for
// determinism).
func (q *QueryEvaluator) rank(queryVec map[string]float64, candidates []DocID) ([]ScoredDocument, error) {
	h := &topNHeap{}
	heap.Init(h)

	for _, id := range candidates {
		offset, known := q.forwardHead[id]
		if !known {
			return nil, fmt.Errorf("%w: candidate %s has no forward head entry", ErrDecode, id)
		}
		terms, err := ReadForwardRecord(q.forwardAt, offset)
		if err != nil {
			return nil, err
		}
		docVec := q.weightAndNormalize(terms)
		score := dot(queryVec, docVec)

		cand := ScoredDocument{DocID: id, Score: score}
		if h.Len() < q.topN {
			heap.Push(h, cand)
		} else if h.Len() > 0 && score > (*h)[0].Score {
			heap.Pop(h)
			heap.Push(h, cand)
		}
	}

	results := make([]ScoredDocument, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(ScoredDocument)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID.Less(results[j].DocID)
	})
	return results, nil
}

// weightAndNormalize multiplies raw forward-index TF weights by each
// term's inverted-head IDF (0 if the term never made it into the
// inverted index) and L2-normalizes the result.
func (q *QueryEvaluator) weightAndNormalize(terms map[string]float64) map[string]float64 {
	vec := make(map[string]float64, len(terms))
	for term, tf := range terms {
		idf := 0.0
		if entry, known := q.invertedHead[term]; known {
			idf = entry.IDF
		}
		vec[term] = tf * idf
	}
	return l2Normalize(vec)
}

func l2Normalize(vec map[string]float64) map[string]float64 {
	var sumSquares float64
	for _, w := range vec {
		sumSquares += w * w
	}
	if sumSquares == 0 {
		return vec
	}
	norm := math.Sqrt(sumSquares)
	out := make(map[string]float64, len(vec))
	for term, w := range vec {
		out[term] = w / norm
	}
	return out
}

func dot(a, b map[string]float64) float64 {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var sum float64
	for term, w := range small {
		sum += w * large[term]
	}
	return sum
}

// topNHeap is a min-heap of ScoredDocument ordered by ascending score, so
// the smallest of the current top-N sits at the root and is evicted
// first. Among equal scores the larger doc id sits nearer the root, so
// ties at the cut-off keep the smaller doc ids.
type topNHeap []ScoredDocument

func (h topNHeap) Len() int { return len(h) }
func (h topNHeap) Less(i, j int) bool {
	if h[i].Score != h[j].Score {
		return h[i].Score < h[j].Score
	}
	return h[j].DocID.Less(h[i].DocID)
}
func (h topNHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *topNHeap) Push(x interface{}) { *h = append(*h, x.(ScoredDocument)) }
func (h *topNHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
