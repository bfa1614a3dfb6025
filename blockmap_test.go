package tfidx

import (
	"math/rand"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// BLOCK MAP TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestBlockMap_EntriesAreLexicallyOrdered(t *testing.T) {
	m := newBlockMap(rand.New(rand.NewSource(42)))
	m.Add("fox", 1)
	m.Add("brown", 1)
	m.Add("quick", 2)
	m.Add("brown", 3)

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Term >= entries[i].Term {
			t.Errorf("entries not lexically ordered: %q then %q", entries[i-1].Term, entries[i].Term)
		}
	}
}

func TestBlockMap_AdjacentDedup(t *testing.T) {
	m := newBlockMap(rand.New(rand.NewSource(1)))
	m.Add("brown", 5)
	m.Add("brown", 5)
	m.Add("brown", 5)

	entries := m.Entries()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if card := entries[0].Postings.GetCardinality(); card != 1 {
		t.Errorf("GetCardinality() = %d, want 1 after repeated Add of the same sequence number", card)
	}
}

func TestBlockMap_Len(t *testing.T) {
	m := newBlockMap(rand.New(rand.NewSource(7)))
	if m.Len() != 0 {
		t.Fatalf("new blockMap Len() = %d, want 0", m.Len())
	}
	m.Add("a", 0)
	m.Add("b", 0)
	m.Add("a", 1)
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2 distinct terms", m.Len())
	}
}

func TestBlockMap_PostingsSortedWithinTerm(t *testing.T) {
	m := newBlockMap(rand.New(rand.NewSource(3)))
	for _, seq := range []uint32{5, 1, 3, 2, 4} {
		m.Add("quick", seq)
	}
	entries := m.Entries()
	it := entries[0].Postings.Iterator()
	prev := uint32(0)
	first := true
	for it.HasNext() {
		v := it.Next()
		if !first && v <= prev {
			t.Errorf("postings not ascending: %d after %d", v, prev)
		}
		prev, first = v, false
	}
}
