package tfidx

// blockMap is the ordered, in-memory term accumulator a block build
// (block.go) fills before flushing: a skip list keyed by term string
// instead of by document position, each key carrying a roaring bitmap of
// the document SEQUENCE NUMBERS (not raw DocIDs - see block.go) that
// contain it. Adapted from the teacher's position skip list: same tower
// mechanics, same randomized leveling, different key and payload.
//
// Using a skip list rather than a plain Go map is what makes flushing a
// block to disk a single in-order walk: BSBI needs each block's
// terms written in lexicographic order, and a skip list's level-0 chain
// already is that order.

import (
	"math/rand"

	"github.com/RoaringBitmap/roaring"
)

const blockMapMaxHeight = 32

type blockMapNode struct {
	term  string
	postings *roaring.Bitmap
	tower [blockMapMaxHeight]*blockMapNode
}

// blockMap is an ordered term -> postings map with O(log n) expected
// insert/lookup and O(n) in-order iteration.
type blockMap struct {
	head   *blockMapNode
	height int
	size   int
	rng    *rand.Rand
}

func newBlockMap(rng *rand.Rand) *blockMap {
	return &blockMap{head: &blockMapNode{}, height: 1, rng: rng}
}

// Len reports the number of distinct terms currently held.
func (m *blockMap) Len() int { return m.size }

// Add records that docSeq (a 0-based stream-order sequence number, not a
// raw DocID) contains term, creating the term's posting bitmap on first
// sight.
func (m *blockMap) Add(term string, docSeq uint32) {
	node, journey := m.search(term)
	if node != nil {
		node.postings.Add(docSeq)
		return
	}

	height := m.randomHeight()
	node = &blockMapNode{term: term, postings: roaring.New()}
	node.postings.Add(docSeq)

	for level := 0; level < height; level++ {
		pred := journey[level]
		if pred == nil {
			pred = m.head
		}
		node.tower[level] = pred.tower[level]
		pred.tower[level] = node
	}
	if height > m.height {
		m.height = height
	}
	m.size++
}

func (m *blockMap) search(term string) (*blockMapNode, [blockMapMaxHeight]*blockMapNode) {
	var journey [blockMapMaxHeight]*blockMapNode
	current := m.head

	for level := m.height - 1; level >= 0; level-- {
		for current.tower[level] != nil && current.tower[level].term < term {
			current = current.tower[level]
		}
		journey[level] = current
	}

	next := current.tower[0]
	if next != nil && next.term == term {
		return next, journey
	}
	return nil, journey
}

func (m *blockMap) randomHeight() int {
	height := 1
	for m.rng.Float64() < 0.5 && height < blockMapMaxHeight {
		height++
	}
	return height
}

// blockMapEntry is one (term, postings) pair yielded in term order.
type blockMapEntry struct {
	Term     string
	Postings *roaring.Bitmap
}

// Entries walks the map in ascending term order.
func (m *blockMap) Entries() []blockMapEntry {
	entries := make([]blockMapEntry, 0, m.size)
	for node := m.head.tower[0]; node != nil; node = node.tower[0] {
		entries = append(entries, blockMapEntry{Term: node.term, Postings: node.postings})
	}
	return entries
}
