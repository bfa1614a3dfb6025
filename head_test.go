package tfidx

import (
	"bytes"
	"math"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// HEAD / OFFSET COMPUTER TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestComputeInvertedHead_OffsetsPointAtPostingLen(t *testing.T) {
	var content bytes.Buffer
	if err := encodeInvertedRecord(&content, "brown", []DocID{mustDocID(t, 1)}); err != nil {
		t.Fatalf("encodeInvertedRecord: %v", err)
	}
	if err := encodeInvertedRecord(&content, "fox", []DocID{mustDocID(t, 1), mustDocID(t, 2)}); err != nil {
		t.Fatalf("encodeInvertedRecord: %v", err)
	}

	df := map[string]int{"brown": 1, "fox": 2}
	var head bytes.Buffer
	entries, err := ComputeInvertedHead(bytes.NewReader(content.Bytes()), df, 4, &head)
	if err != nil {
		t.Fatalf("ComputeInvertedHead: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d head entries, want 2", len(entries))
	}

	for _, e := range entries {
		sr := bytes.NewReader(content.Bytes()[e.Offset:])
		count, err := readUint64(sr)
		if err != nil {
			t.Fatalf("seeking to offset %d for %q: %v", e.Offset, e.Term, err)
		}
		if int(count) != df[e.Term] {
			t.Errorf("term %q: posting count at recorded offset = %d, want %d", e.Term, count, df[e.Term])
		}
	}
}

func TestComputeInvertedHead_IDFFormula(t *testing.T) {
	var content bytes.Buffer
	if err := encodeInvertedRecord(&content, "rare", []DocID{mustDocID(t, 1)}); err != nil {
		t.Fatalf("encodeInvertedRecord: %v", err)
	}

	df := map[string]int{"rare": 1}
	var head bytes.Buffer
	entries, err := ComputeInvertedHead(bytes.NewReader(content.Bytes()), df, 10, &head)
	if err != nil {
		t.Fatalf("ComputeInvertedHead: %v", err)
	}

	want := math.Log10(10.0 / 1.0)
	if math.Abs(entries[0].IDF-want) > 1e-9 {
		t.Errorf("IDF = %v, want %v", entries[0].IDF, want)
	}
}

func TestComputeInvertedHead_EmptyContent(t *testing.T) {
	var head bytes.Buffer
	entries, err := ComputeInvertedHead(bytes.NewReader(nil), map[string]int{}, 0, &head)
	if err != nil {
		t.Fatalf("ComputeInvertedHead: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries for empty content, want 0", len(entries))
	}
	if head.Len() != 0 {
		t.Errorf("head writer got %d bytes, want 0", head.Len())
	}
}

func TestLoadInvertedHead_RoundTrip(t *testing.T) {
	var content bytes.Buffer
	if err := encodeInvertedRecord(&content, "fox", []DocID{mustDocID(t, 1)}); err != nil {
		t.Fatalf("encodeInvertedRecord: %v", err)
	}
	df := map[string]int{"fox": 1}
	var head bytes.Buffer
	entries, err := ComputeInvertedHead(bytes.NewReader(content.Bytes()), df, 5, &head)
	if err != nil {
		t.Fatalf("ComputeInvertedHead: %v", err)
	}

	loaded, err := LoadInvertedHead(bytes.NewReader(head.Bytes()))
	if err != nil {
		t.Fatalf("LoadInvertedHead: %v", err)
	}
	if len(loaded) != len(entries) || loaded[0] != entries[0] {
		t.Errorf("got %+v, want %+v", loaded, entries)
	}
}
