package morphvec

import (
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Corpus is the training file mapped once into memory; every worker
// goroutine reads its own disjoint byte range directly out of the
// shared mapping, with no per-worker file handle or copy. Each
// worker's start offset is file_size/num_workers*id, the mmap
// equivalent of seeking a per-thread *FILE to that offset.
type Corpus struct {
	f   *os.File
	mm  mmap.MMap
	Size int64
}

// OpenCorpus maps path read-only.
func OpenCorpus(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening training file")
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "statting training file")
	}
	if st.Size() == 0 {
		f.Close()
		return nil, errors.New("training file is empty")
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "mapping training file")
	}
	return &Corpus{f: f, mm: m, Size: st.Size()}, nil
}

// Close unmaps and closes the underlying file.
func (c *Corpus) Close() error {
	if err := c.mm.Unmap(); err != nil {
		c.f.Close()
		return errors.Wrap(err, "unmapping training file")
	}
	return c.f.Close()
}

// WorkerStart returns the byte offset worker id of numWorkers should
// begin reading at: file_size/num_threads*id, so the corpus is
// partitioned into equal disjoint ranges regardless of worker count.
func (c *Corpus) WorkerStart(id, numWorkers int) int64 {
	return c.Size / int64(numWorkers) * int64(id)
}

// Reader returns a sliceReader positioned at byte offset off, reading
// to the end of the mapping.
func (c *Corpus) Reader(off int64) *sliceReader {
	return newSliceReader(c.mm[off:])
}
