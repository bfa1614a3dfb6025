package tfidx

// Inverted-index block builder: accumulates postings into a
// bounded in-memory term-ordered map (blockmap.go) and flushes it to a
// numbered block file once a posting-count threshold is crossed. Flush
// dispatch is concurrent, bounded, and joined before the merge phase,
// per the teacher's worker-pool-over-WaitGroup idiom (index.go's
// goroutine-dispatched segment writers) generalized to arbitrary block
// counts instead of a fixed shard count.

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/RoaringBitmap/roaring"
)

// BlockBuilder accumulates postings for one inverted-index build. Not
// safe for concurrent AddDocument calls: the document cursor and the
// sequence counter are single-writer.
type BlockBuilder struct {
	dir              string
	maxBlockPostings int

	cur         *blockMap
	curPostings int
	nextBlockID int
	blockPaths  []string

	seqToDocID []DocID
	df         map[string]int

	rng *rand.Rand
	sem chan struct{}
	wg  sync.WaitGroup

	errMu    sync.Mutex
	firstErr error
}

// NewBlockBuilder prepares a freshly-emptied block directory and
// returns a builder with the given flush threshold (postings added, not
// distinct terms).
func NewBlockBuilder(blocksDir string, maxBlockPostings int) (*BlockBuilder, error) {
	if err := os.RemoveAll(blocksDir); err != nil {
		return nil, fmt.Errorf("%w: clearing block dir %s: %v", ErrIO, blocksDir, err)
	}
	if err := os.MkdirAll(blocksDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating block dir %s: %v", ErrIO, blocksDir, err)
	}
	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	return &BlockBuilder{
		dir:              blocksDir,
		maxBlockPostings: maxBlockPostings,
		cur:              newBlockMap(rand.New(rand.NewSource(1))),
		df:               make(map[string]int),
		rng:              rand.New(rand.NewSource(1)),
		sem:              make(chan struct{}, workers),
	}, nil
}

// AddDocument records id's distinct terms into the current block map and
// the df counter, flushing the block if the threshold is crossed.
func (b *BlockBuilder) AddDocument(id DocID, words []string) error {
	seq := uint32(len(b.seqToDocID))
	b.seqToDocID = append(b.seqToDocID, id)

	distinct := make(map[string]struct{}, len(words))
	for _, w := range words {
		distinct[w] = struct{}{}
	}
	for term := range distinct {
		b.df[term]++
		b.cur.Add(term, seq)
		b.curPostings++
	}

	if b.curPostings >= b.maxBlockPostings {
		return b.flush()
	}
	return nil
}

// flush hands the current block map to a worker goroutine and starts a
// fresh, empty one for the builder to keep accumulating into.
func (b *BlockBuilder) flush() error {
	if b.cur.Len() == 0 {
		return nil
	}

	blockID := b.nextBlockID
	b.nextBlockID++
	path := filepath.Join(b.dir, fmt.Sprintf("block-%08d.bin", blockID))
	b.blockPaths = append(b.blockPaths, path)

	m := b.cur
	b.cur = newBlockMap(b.rng)
	b.curPostings = 0

	docIDs := make([]DocID, len(b.seqToDocID))
	copy(docIDs, b.seqToDocID)

	b.sem <- struct{}{}
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() { <-b.sem }()
		if err := writeBlockFile(path, m, docIDs); err != nil {
			b.recordErr(err)
		}
	}()
	return nil
}

func (b *BlockBuilder) recordErr(err error) {
	b.errMu.Lock()
	defer b.errMu.Unlock()
	if b.firstErr == nil {
		b.firstErr = err
	}
}

// Finish flushes any remaining partial block, waits for all dispatched
// flushes to complete, and returns the ordered block file paths, the
// accumulated document-frequency table, and the total document count.
func (b *BlockBuilder) Finish() (blockPaths []string, df map[string]int, totalDocs int, err error) {
	if err := b.flush(); err != nil {
		return nil, nil, 0, err
	}
	b.wg.Wait()

	b.errMu.Lock()
	firstErr := b.firstErr
	b.errMu.Unlock()
	if firstErr != nil {
		return nil, nil, 0, firstErr
	}
	return b.blockPaths, b.df, len(b.seqToDocID), nil
}

// writeBlockFile writes m's entries, in ascending term order, as
// inverted content records, translating each term's bitmap of sequence
// numbers back into ascending DocIDs via docIDs.
func writeBlockFile(path string, m *blockMap, docIDs []DocID) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating block %s: %v", ErrIO, path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for _, entry := range m.Entries() {
		postings := bitmapToDocIDs(entry.Postings, docIDs)
		if err := encodeInvertedRecord(w, entry.Term, postings); err != nil {
			return fmt.Errorf("%w: writing block %s term %q: %v", ErrIO, path, entry.Term, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing block %s: %v", ErrIO, path, err)
	}
	return nil
}

func bitmapToDocIDs(bm *roaring.Bitmap, docIDs []DocID) []DocID {
	out := make([]DocID, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		out = append(out, docIDs[it.Next()])
	}
	return out
}
