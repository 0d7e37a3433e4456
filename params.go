package morphvec

import "unsafe"

// alignedMatrix is a |V|*D float32 matrix whose backing array starts
// on a cache-line boundary (>=64 bytes), so each worker goroutine's
// row touches a line no other row shares the start of. Go has no
// standard-library equivalent of posix_memalign, so this is
// hand-rolled on top of unsafe.Pointer arithmetic: allocate extra
// headroom and slice into it at the first aligned offset.
type alignedMatrix struct {
	data []float32
	cols int
}

const cacheLineBytes = 64

func newAlignedMatrix(rows, cols int) *alignedMatrix {
	n := rows * cols
	pad := cacheLineBytes/4 - 1 // extra float32 slots for alignment slack
	raw := make([]float32, n+pad)
	off := alignmentOffset(raw)
	return &alignedMatrix{data: raw[off : off+n : off+n], cols: cols}
}

func alignmentOffset(s []float32) int {
	if len(s) == 0 {
		return 0
	}
	addr := uintptr(unsafe.Pointer(&s[0]))
	rem := addr % cacheLineBytes
	if rem == 0 {
		return 0
	}
	return int((cacheLineBytes - rem) / 4)
}

// Row returns the slice for vocabulary index i, shared with every
// other goroutine touching the matrix: no synchronization guards
// writes into it, by design (Hogwild-style lock-free updates).
func (m *alignedMatrix) Row(i int32) []float32 {
	start := int(i) * m.cols
	return m.data[start : start+m.cols]
}

// Params holds the three parameter matrices a training run updates:
// Win (syn0, the learned word/context embeddings), Whs (syn1, the
// hierarchical-softmax internal-node vectors), Wneg (syn1neg, the
// negative-sampling output vectors). Whs and Wneg are only allocated
// when their objective is enabled.
type Params struct {
	Win  *alignedMatrix
	Whs  *alignedMatrix
	Wneg *alignedMatrix
	Dim  int
}

// NewParams allocates and initializes the parameter matrices for a
// vocabulary of size v.Size() under cfg: Win is seeded from the
// LCG recurrence with a fixed seed of 1, Whs/Wneg start zeroed.
func NewParams(v *Vocab, cfg *Config) *Params {
	n := v.Size()
	p := &Params{Dim: cfg.Dimension}
	p.Win = newAlignedMatrix(n, cfg.Dimension)

	rng := NewRNG(1)
	for i := range p.Win.data {
		p.Win.data[i] = float32(float64(rng.Next()&0xFFFF)/65536-0.5) / float32(cfg.Dimension)
	}

	if cfg.UseHS {
		p.Whs = newAlignedMatrix(n, cfg.Dimension)
	}
	if cfg.Negative > 0 {
		p.Wneg = newAlignedMatrix(n, cfg.Dimension)
	}
	return p
}
