package tfidx

// Engine ties the build-time components and the query evaluator into
// the two public entry points callers need: InitEngine/Build to produce
// an index, Search to query it. Grounded on the teacher's
// DefaultConfig-style constructors (index.go's DefaultBM25Parameters,
// analyzer.go's DefaultAnalyzerConfig).

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

const (
	forwardContentFile  = "forward.content"
	forwardHeadFile     = "forward.head"
	invertedContentFile = "inverted.content"
	invertedHeadFile    = "inverted.head"
)

// Config parameterizes where an engine's index files live and its
// build/query tuning.
type Config struct {
	ForwardDir       string
	InvertedDir      string
	BlocksDir        string
	MaxBlockPostings int
	TopN             int
}

// DefaultConfig returns sensible defaults: max_block_postings=10,000,
// top_n=20.
func DefaultConfig() Config {
	return Config{
		ForwardDir:       "idx",
		InvertedDir:      "inv_idx",
		BlocksDir:        filepath.Join("inv_idx", "blocks"),
		MaxBlockPostings: 10_000,
		TopN:             20,
	}
}

func (c Config) normalize() Config {
	if c.MaxBlockPostings <= 0 {
		c.MaxBlockPostings = 10_000
	}
	if c.TopN <= 0 {
		c.TopN = 20
	}
	return c
}

// Engine holds the immutable, in-memory head tables and open content
// file handles of a built index; all fields are effectively constant
// after initialization or a Build call.
type Engine struct {
	cfg          Config
	forwardHead  []ForwardHeadEntry
	invertedHead []InvertedHeadEntry
	forwardFile  *os.File
	invertedFile *os.File
	evaluator    *QueryEvaluator
}

func (c Config) forwardContentPath() string  { return filepath.Join(c.ForwardDir, forwardContentFile) }
func (c Config) forwardHeadPath() string     { return filepath.Join(c.ForwardDir, forwardHeadFile) }
func (c Config) invertedContentPath() string { return filepath.Join(c.InvertedDir, invertedContentFile) }
func (c Config) invertedHeadPath() string    { return filepath.Join(c.InvertedDir, invertedHeadFile) }

// InitEngine prepares an Engine against cfg's directories. If a
// complete, non-empty index is already present on disk, it is loaded
// immediately and the engine is ready to Search without a Build call.
// Otherwise the engine is returned unbuilt; call Build before Search.
func InitEngine(cfg Config) (*Engine, error) {
	cfg = cfg.normalize()
	if err := os.MkdirAll(cfg.ForwardDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating forward dir %s: %v", ErrIO, cfg.ForwardDir, err)
	}
	if err := os.MkdirAll(cfg.InvertedDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating inverted dir %s: %v", ErrIO, cfg.InvertedDir, err)
	}

	e := &Engine{cfg: cfg}
	if e.alreadyBuilt() {
		if err := e.load(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (e *Engine) alreadyBuilt() bool {
	for _, p := range []string{
		e.cfg.forwardContentPath(), e.cfg.forwardHeadPath(),
		e.cfg.invertedContentPath(), e.cfg.invertedHeadPath(),
	} {
		info, err := os.Stat(p)
		if err != nil || info.Size() == 0 {
			return false
		}
	}
	return true
}

func (e *Engine) load() error {
	forwardHeadF, err := os.Open(e.cfg.forwardHeadPath())
	if err != nil {
		return fmt.Errorf("%w: opening forward head: %v", ErrIO, err)
	}
	defer forwardHeadF.Close()
	forwardHead, err := LoadForwardHead(forwardHeadF)
	if err != nil {
		return err
	}

	invertedHeadF, err := os.Open(e.cfg.invertedHeadPath())
	if err != nil {
		return fmt.Errorf("%w: opening inverted head: %v", ErrIO, err)
	}
	defer invertedHeadF.Close()
	invertedHead, err := LoadInvertedHead(invertedHeadF)
	if err != nil {
		return err
	}

	forwardContentF, err := os.Open(e.cfg.forwardContentPath())
	if err != nil {
		return fmt.Errorf("%w: opening forward content: %v", ErrIO, err)
	}
	invertedContentF, err := os.Open(e.cfg.invertedContentPath())
	if err != nil {
		forwardContentF.Close()
		return fmt.Errorf("%w: opening inverted content: %v", ErrIO, err)
	}

	e.closeContentFiles()
	e.forwardHead = forwardHead
	e.invertedHead = invertedHead
	e.forwardFile = forwardContentF
	e.invertedFile = invertedContentF
	e.evaluator = NewQueryEvaluator(forwardHead, invertedHead, forwardContentF, invertedContentF, e.cfg.TopN)
	return nil
}

// Build consumes source in full, single-pass, and replaces any
// previously built index. I/O errors during build are fatal: a
// half-formed index must be discarded rather than served, so Build
// leaves the engine unbuilt (not serving the partial result) on error.
func (e *Engine) Build(ctx context.Context, source DocumentSource) error {
	// The files about to be rewritten are the ones a previous index is
	// served from, so stop serving it before touching them.
	e.closeContentFiles()
	e.evaluator = nil

	declaredCount, err := source.Count(ctx)
	if err != nil {
		return fmt.Errorf("%w: counting documents: %v", ErrSource, err)
	}

	stream, err := source.Documents(ctx)
	if err != nil {
		return fmt.Errorf("%w: opening document stream: %v", ErrSource, err)
	}
	defer stream.Close()

	forwardContentF, err := os.Create(e.cfg.forwardContentPath())
	if err != nil {
		return fmt.Errorf("%w: creating forward content: %v", ErrIO, err)
	}
	forwardBuilder := NewForwardIndexBuilder(forwardContentF, forwardContentF.Close)

	blockBuilder, err := NewBlockBuilder(e.cfg.BlocksDir, e.cfg.MaxBlockPostings)
	if err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, ok, err := stream.Next(ctx)
		if err != nil {
			return fmt.Errorf("%w: reading document: %v", ErrSource, err)
		}
		if !ok {
			break
		}
		if err := forwardBuilder.AddDocument(doc.ID, doc.Words); err != nil {
			return err
		}
		if err := blockBuilder.AddDocument(doc.ID, doc.Words); err != nil {
			return err
		}
	}

	forwardHeadF, err := os.Create(e.cfg.forwardHeadPath())
	if err != nil {
		return fmt.Errorf("%w: creating forward head: %v", ErrIO, err)
	}
	if err := forwardBuilder.Finish(forwardHeadF); err != nil {
		forwardHeadF.Close()
		return err
	}
	if err := forwardHeadF.Close(); err != nil {
		return fmt.Errorf("%w: closing forward head: %v", ErrIO, err)
	}

	blockPaths, df, totalDocs, err := blockBuilder.Finish()
	if err != nil {
		return err
	}
	if totalDocs != declaredCount {
		return fmt.Errorf("%w: source declared Count()=%d but the stream yielded %d documents",
			ErrSource, declaredCount, totalDocs)
	}

	mergedPath, err := mergeBlocks(e.cfg.BlocksDir, blockPaths)
	if err != nil {
		return err
	}
	if err := os.Rename(mergedPath, e.cfg.invertedContentPath()); err != nil {
		return fmt.Errorf("%w: placing merged content file: %v", ErrIO, err)
	}

	invertedContentForHead, err := os.Open(e.cfg.invertedContentPath())
	if err != nil {
		return fmt.Errorf("%w: reopening inverted content for head pass: %v", ErrIO, err)
	}
	invertedHeadF, err := os.Create(e.cfg.invertedHeadPath())
	if err != nil {
		invertedContentForHead.Close()
		return fmt.Errorf("%w: creating inverted head: %v", ErrIO, err)
	}
	invertedHead, err := ComputeInvertedHead(invertedContentForHead, df, totalDocs, invertedHeadF)
	invertedContentForHead.Close()
	if cerr := invertedHeadF.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	forwardContentForQuery, err := os.Open(e.cfg.forwardContentPath())
	if err != nil {
		return fmt.Errorf("%w: reopening forward content for queries: %v", ErrIO, err)
	}
	invertedContentForQuery, err := os.Open(e.cfg.invertedContentPath())
	if err != nil {
		forwardContentForQuery.Close()
		return fmt.Errorf("%w: reopening inverted content for queries: %v", ErrIO, err)
	}

	e.closeContentFiles()
	e.forwardHead = forwardBuilder.Head()
	e.invertedHead = invertedHead
	e.forwardFile = forwardContentForQuery
	e.invertedFile = invertedContentForQuery
	e.evaluator = NewQueryEvaluator(e.forwardHead, e.invertedHead, forwardContentForQuery, invertedContentForQuery, e.cfg.TopN)
	return nil
}

// Search ranks documents against words by cosine TF-IDF similarity,
// returning up to Config.TopN results ordered by descending score.
func (e *Engine) Search(ctx context.Context, words []string) ([]ScoredDocument, error) {
	if e.evaluator == nil {
		return nil, fmt.Errorf("tfidx: engine has no built index; call Build first")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return e.evaluator.Search(words)
}

// Close releases the open content file handles. Safe to call on an
// unbuilt engine.
func (e *Engine) Close() error {
	return e.closeContentFiles()
}

func (e *Engine) closeContentFiles() error {
	var err error
	if e.forwardFile != nil {
		if cerr := e.forwardFile.Close(); cerr != nil {
			err = cerr
		}
		e.forwardFile = nil
	}
	if e.invertedFile != nil {
		if cerr := e.invertedFile.Close(); cerr != nil {
			err = cerr
		}
		e.invertedFile = nil
	}
	return err
}
