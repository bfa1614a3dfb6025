// Package tfidx implements a small-footprint text search engine: a forward
// index (document -> term weight vector), a BSBI-built inverted index
// (term -> posting list + IDF), and a query evaluator that ranks documents
// by cosine similarity over TF-IDF vectors.
//
// ═══════════════════════════════════════════════════════════════════════════════
// WHY TWO INDEXES?
// ═══════════════════════════════════════════════════════════════════════════════
// The forward index answers "what terms, and at what weight, does document D
// contain?" - needed to score a candidate document against a query vector.
// The inverted index answers "which documents contain term T?" - needed to
// find candidates in the first place, and to know T's corpus-wide rarity
// (IDF) without re-scanning every document.
//
//	Forward:  D1 -> {a: 1.30, b: 1.0}
//	Inverted: a  -> [D1, D3]   (idf = log10(N/2))
//	          b  -> [D1, D2]   (idf = log10(N/2))
//
// Both are built once, monolithically, from a document source that is
// assumed to yield documents pre-tokenized and in ascending id order. There
// is no incremental update path: rebuilding is the only way to pick up new
// documents. See engine.go for the entry points (InitEngine, Engine.Build,
// Engine.Search).
// ═══════════════════════════════════════════════════════════════════════════════
package tfidx
