package tfidx

import (
	"context"
	"math"
	"path/filepath"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// END-TO-END ENGINE SCENARIOS
// ═══════════════════════════════════════════════════════════════════════════════
//
// Three documents:
//   D1 = 0x01x12, words ["a","b","a"]
//   D2 = 0x02x12, words ["b","c"]
//   D3 = 0x03x12, words ["a","c","c"]
//
// N=3; df(a)=2, df(b)=2, df(c)=2; idf = log10(3/2).
// Posting lists: a -> [D1,D3], b -> [D1,D2], c -> [D2,D3].

func repeatedByteDocID(b byte) DocID {
	var id DocID
	for i := range id {
		id[i] = b
	}
	return id
}

func buildScenarioEngine(t *testing.T) *Engine {
	t.Helper()
	d1, d2, d3 := repeatedByteDocID(1), repeatedByteDocID(2), repeatedByteDocID(3)

	docs := []Document{
		{ID: d1, Words: []string{"a", "b", "a"}},
		{ID: d2, Words: []string{"b", "c"}},
		{ID: d3, Words: []string{"a", "c", "c"}},
	}
	source, err := NewMemoryDocumentSource(docs)
	if err != nil {
		t.Fatalf("NewMemoryDocumentSource: %v", err)
	}

	dir := t.TempDir()
	cfg := Config{
		ForwardDir:       filepath.Join(dir, "idx"),
		InvertedDir:      filepath.Join(dir, "inv_idx"),
		BlocksDir:        filepath.Join(dir, "inv_idx", "blocks"),
		MaxBlockPostings: 10_000,
		TopN:             20,
	}
	engine, err := InitEngine(cfg)
	if err != nil {
		t.Fatalf("InitEngine: %v", err)
	}
	if err := engine.Build(context.Background(), source); err != nil {
		t.Fatalf("Build: %v", err)
	}
	return engine
}

func resultIDs(results []ScoredDocument) []DocID {
	ids := make([]DocID, len(results))
	for i, r := range results {
		ids[i] = r.DocID
	}
	return ids
}

func containsID(ids []DocID, target DocID) bool {
	for _, id := range ids {
		if id == target {
			return true
		}
	}
	return false
}

func TestEngine_SingleTermReturnsAllMatchingDocsRankedByScore(t *testing.T) {
	engine := buildScenarioEngine(t)
	d1, d3 := repeatedByteDocID(1), repeatedByteDocID(3)

	results, err := engine.Search(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	ids := resultIDs(results)
	if !containsID(ids, d1) || !containsID(ids, d3) {
		t.Fatalf("got %v, want both D1 and D3 present", ids)
	}
	if ids[0] != d1 {
		t.Errorf("top result = %s, want D1 (higher raw TF for \"a\")", ids[0])
	}
}

func TestEngine_TwoTermConjunctionNarrowsToSharedDocument(t *testing.T) {
	engine := buildScenarioEngine(t)
	d1 := repeatedByteDocID(1)

	results, err := engine.Search(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DocID != d1 {
		t.Fatalf("got %v, want exactly [D1]", resultIDs(results))
	}
}

func TestEngine_ConjunctionYieldsOnlyDocumentWithBothTerms(t *testing.T) {
	engine := buildScenarioEngine(t)
	d3 := repeatedByteDocID(3)

	results, err := engine.Search(context.Background(), []string{"a", "c"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DocID != d3 {
		t.Fatalf("got %v, want exactly [D3] (the only document with both \"a\" and \"c\")", resultIDs(results))
	}
}

func TestEngine_AllTermsUnknownYieldsNoResults(t *testing.T) {
	engine := buildScenarioEngine(t)

	results, err := engine.Search(context.Background(), []string{"z"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("got %v, want empty result for a wholly unknown term", resultIDs(results))
	}
}

func TestEngine_UnknownTermIsSkippedNotExcluding(t *testing.T) {
	engine := buildScenarioEngine(t)
	d1, d3 := repeatedByteDocID(1), repeatedByteDocID(3)

	results, err := engine.Search(context.Background(), []string{"a", "z"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	ids := resultIDs(results)
	if len(ids) != 2 || !containsID(ids, d1) || !containsID(ids, d3) {
		t.Fatalf("got %v, want the same result as a solo \"a\" query: both D1 and D3", ids)
	}
}

func TestEngine_ConjunctionOfTwoOtherTermsYieldsSingleDocument(t *testing.T) {
	engine := buildScenarioEngine(t)
	d2 := repeatedByteDocID(2)

	results, err := engine.Search(context.Background(), []string{"b", "c"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].DocID != d2 {
		t.Fatalf("got %v, want exactly [D2]", resultIDs(results))
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// INVARIANT TESTS (rebuild determinism is covered by TestForwardIndexBuilder_DeterministicRebuild)
// ═══════════════════════════════════════════════════════════════════════════════

func TestEngine_QueryEqualToWholeDocumentScoresPositive(t *testing.T) {
	engine := buildScenarioEngine(t)
	d3 := repeatedByteDocID(3)

	results, err := engine.Search(context.Background(), []string{"a", "c", "c"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	found := false
	for _, r := range results {
		if r.DocID == d3 {
			found = true
			if r.Score <= 0 {
				t.Errorf("D3's own terms as a query must score > 0, got %v", r.Score)
			}
		}
	}
	if !found {
		t.Errorf("D3 must appear in results for a query equal to its own words, got %v", resultIDs(results))
	}
}

func TestEngine_PostingListsAscendingAndDeduped(t *testing.T) {
	engine := buildScenarioEngine(t)

	seen := 0
	for _, e := range engine.invertedHead {
		if e.Term != "a" {
			continue
		}
		seen++
		postings, err := engine.evaluator.loadPostings(e.Offset)
		if err != nil {
			t.Fatalf("loadPostings: %v", err)
		}
		for i := 1; i < len(postings); i++ {
			if !postings[i-1].Less(postings[i]) {
				t.Errorf("postings for \"a\" not strictly ascending: %s then %s", postings[i-1], postings[i])
			}
		}
	}
	if seen != 1 {
		t.Fatalf("term \"a\" must appear exactly once in the inverted head, found %d", seen)
	}
}

func TestEngine_IDFDerivedFromPostingListCardinality(t *testing.T) {
	engine := buildScenarioEngine(t)
	for _, e := range engine.invertedHead {
		postings, err := engine.evaluator.loadPostings(e.Offset)
		if err != nil {
			t.Fatalf("loadPostings(%q): %v", e.Term, err)
		}
		wantIDF := math.Log10(3.0 / float64(len(postings)))
		if math.Abs(e.IDF-wantIDF) > 1e-9 {
			t.Errorf("term %q: idf=%v, want %v derived from %d postings", e.Term, e.IDF, wantIDF, len(postings))
		}
	}
}

func TestEngine_UnknownTermsDoNotNarrowCandidates(t *testing.T) {
	engine := buildScenarioEngine(t)

	withUnknown, err := engine.Search(context.Background(), []string{"a", "nonexistent-term"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	without, err := engine.Search(context.Background(), []string{"a"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(withUnknown) != len(without) {
		t.Errorf("adding an unknown term changed the candidate count: %d vs %d", len(withUnknown), len(without))
	}
}

func TestEngine_ReloadsExistingIndexWithoutRebuilding(t *testing.T) {
	d1, d2, d3 := repeatedByteDocID(1), repeatedByteDocID(2), repeatedByteDocID(3)
	docs := []Document{
		{ID: d1, Words: []string{"a", "b", "a"}},
		{ID: d2, Words: []string{"b", "c"}},
		{ID: d3, Words: []string{"a", "c", "c"}},
	}
	source, err := NewMemoryDocumentSource(docs)
	if err != nil {
		t.Fatalf("NewMemoryDocumentSource: %v", err)
	}

	dir := t.TempDir()
	cfg := Config{
		ForwardDir:       filepath.Join(dir, "idx"),
		InvertedDir:      filepath.Join(dir, "inv_idx"),
		BlocksDir:        filepath.Join(dir, "inv_idx", "blocks"),
		MaxBlockPostings: 10_000,
		TopN:             20,
	}

	first, err := InitEngine(cfg)
	if err != nil {
		t.Fatalf("InitEngine: %v", err)
	}
	if err := first.Build(context.Background(), source); err != nil {
		t.Fatalf("Build: %v", err)
	}
	first.Close()

	second, err := InitEngine(cfg)
	if err != nil {
		t.Fatalf("InitEngine (reload): %v", err)
	}
	defer second.Close()

	results, err := second.Search(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Search on reloaded engine: %v", err)
	}
	if len(results) != 1 || results[0].DocID != d1 {
		t.Fatalf("reloaded engine gave %v, want exactly [D1]", resultIDs(results))
	}
}

func TestEngine_SearchBeforeBuildFails(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		ForwardDir:  filepath.Join(dir, "idx"),
		InvertedDir: filepath.Join(dir, "inv_idx"),
		BlocksDir:   filepath.Join(dir, "inv_idx", "blocks"),
	}
	engine, err := InitEngine(cfg)
	if err != nil {
		t.Fatalf("InitEngine: %v", err)
	}
	if _, err := engine.Search(context.Background(), []string{"a"}); err == nil {
		t.Error("expected an error searching an unbuilt engine")
	}
}
