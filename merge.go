package tfidx

// External block merger: pairwise FIFO merge of sorted block files
// down to one, implemented as a single pull-based loop over two
// term-record cursors rather than a state machine with a separate
// branch per EOF combination; output bytes are unaffected by the
// simplification.

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// termRecordReader pulls one (term, postings) record at a time from an
// inverted content/block file, caching the current record so a merge
// loop can compare terms before deciding which side to advance.
type termRecordReader struct {
	f    *os.File
	r    *bufio.Reader
	term string
	post []DocID
	ok   bool
}

func openTermRecordReader(path string) (*termRecordReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening block %s: %v", ErrIO, path, err)
	}
	tr := &termRecordReader{f: f, r: bufio.NewReader(f)}
	if err := tr.advance(); err != nil {
		f.Close()
		return nil, err
	}
	return tr, nil
}

func (t *termRecordReader) advance() error {
	term, postings, ok, err := decodeInvertedRecord(t.r)
	if err != nil {
		return err
	}
	t.term, t.post, t.ok = term, postings, ok
	return nil
}

func (t *termRecordReader) Close() error { return t.f.Close() }

// mergeBlocks reduces blockPaths to a single merged content file under
// dir, via repeated pairwise FIFO merges. If blockPaths is empty, an
// empty content file is created. The caller is responsible for placing
// the returned path at its final destination; intermediate merge files
// are left under dir (orphaned, per the contract's allowance) since dir
// is wiped wholesale on the next build.
func mergeBlocks(dir string, blockPaths []string) (string, error) {
	if len(blockPaths) == 0 {
		path := filepath.Join(dir, "merge-empty.bin")
		f, err := os.Create(path)
		if err != nil {
			return "", fmt.Errorf("%w: creating empty content file: %v", ErrIO, err)
		}
		return path, f.Close()
	}

	queue := make([]string, len(blockPaths))
	copy(queue, blockPaths)

	mergeID := 0
	for len(queue) > 1 {
		left, right := queue[0], queue[1]
		queue = queue[2:]

		out := filepath.Join(dir, fmt.Sprintf("merge-%08d.bin", mergeID))
		mergeID++
		if err := mergeTwoBlocks(left, right, out); err != nil {
			return "", err
		}
		queue = append(queue, out)
	}
	return queue[0], nil
}

// mergeTwoBlocks merges two sorted block files into a single sorted
// output file.
func mergeTwoBlocks(leftPath, rightPath, outPath string) error {
	left, err := openTermRecordReader(leftPath)
	if err != nil {
		return err
	}
	defer left.Close()

	right, err := openTermRecordReader(rightPath)
	if err != nil {
		return err
	}
	defer right.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("%w: creating merge output %s: %v", ErrIO, outPath, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	for left.ok || right.ok {
		switch {
		case !right.ok || (left.ok && left.term < right.term):
			if err := encodeInvertedRecord(w, left.term, left.post); err != nil {
				return fmt.Errorf("%w: writing merge output %s: %v", ErrIO, outPath, err)
			}
			if err := left.advance(); err != nil {
				return err
			}
		case !left.ok || right.term < left.term:
			if err := encodeInvertedRecord(w, right.term, right.post); err != nil {
				return fmt.Errorf("%w: writing merge output %s: %v", ErrIO, outPath, err)
			}
			if err := right.advance(); err != nil {
				return err
			}
		default:
			merged := mergePostings(left.post, right.post)
			if err := encodeInvertedRecord(w, left.term, merged); err != nil {
				return fmt.Errorf("%w: writing merge output %s: %v", ErrIO, outPath, err)
			}
			if err := left.advance(); err != nil {
				return err
			}
			if err := right.advance(); err != nil {
				return err
			}
		}
	}

	return w.Flush()
}

// mergePostings merges two ascending, mutually-disjoint DocID slices
// (disjoint because a document lands in exactly one block per term)
// into one ascending slice.
func mergePostings(a, b []DocID) []DocID {
	out := make([]DocID, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch a[i].Compare(b[j]) {
		case -1:
			out = append(out, a[i])
			i++
		case 1:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}
