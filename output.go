package morphvec

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// WriteVectors emits one line per vocabulary entry: "<word> " followed
// by its D-dimensional Win row, either as space-separated "%lf "
// text or, when binary is set, as raw little-endian float32 values.
// No header line (vocab_size/dim) is written.
func WriteVectors(w io.Writer, v *Vocab, p *Params, binary bool) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < v.Size(); i++ {
		if _, err := fmt.Fprintf(bw, "%s ", v.Entry(int32(i)).Word); err != nil {
			return errors.Wrap(err, "writing vector output")
		}
		row := p.Win.Row(int32(i))
		if binary {
			bitw := newBitWriter(bw)
			for _, f := range row {
				bitw.WriteBits(uint64(math.Float32bits(f)), 32)
			}
			if err := bitw.Close(); err != nil {
				return errors.Wrap(err, "writing binary vector output")
			}
		} else {
			for _, f := range row {
				if _, err := fmt.Fprintf(bw, "%f ", float64(f)); err != nil {
					return errors.Wrap(err, "writing vector output")
				}
			}
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return errors.Wrap(err, "writing vector output")
		}
	}
	return bw.Flush()
}

// WriteClusters runs 10 iterations of spherical K-means over Win's
// rows and writes "<word> <clusterId>\n" per vocabulary entry:
// round-robin initialization, centroid accumulation with a
// Laplace-style +1 smoothing divisor, L2-normalize each centroid,
// then reassign every point to its highest-dot-product centroid.
func WriteClusters(w io.Writer, v *Vocab, p *Params, classes int) error {
	const iterations = 10
	n := v.Size()
	dim := p.Dim

	cl := make([]int, n)
	for i := range cl {
		cl[i] = i % classes
	}
	cent := make([]float32, classes*dim)
	centCount := make([]int, classes)

	for it := 0; it < iterations; it++ {
		for i := range cent {
			cent[i] = 0
		}
		for c := range centCount {
			centCount[c] = 1
		}
		for i := 0; i < n; i++ {
			row := p.Win.Row(int32(i))
			base := cl[i] * dim
			for d, f := range row {
				cent[base+d] += f
			}
			centCount[cl[i]]++
		}
		for c := 0; c < classes; c++ {
			base := c * dim
			var norm float32
			for d := 0; d < dim; d++ {
				cent[base+d] /= float32(centCount[c])
				norm += cent[base+d] * cent[base+d]
			}
			norm = float32(math.Sqrt(float64(norm)))
			if norm == 0 {
				continue
			}
			for d := 0; d < dim; d++ {
				cent[base+d] /= norm
			}
		}
		for i := 0; i < n; i++ {
			row := p.Win.Row(int32(i))
			best := float32(-10)
			bestC := 0
			for c := 0; c < classes; c++ {
				base := c * dim
				var dot float32
				for d, f := range row {
					dot += cent[base+d] * f
				}
				if dot > best {
					best = dot
					bestC = c
				}
			}
			cl[i] = bestC
		}
	}

	bw := bufio.NewWriter(w)
	for i := 0; i < n; i++ {
		if _, err := fmt.Fprintf(bw, "%s %d\n", v.Entry(int32(i)).Word, cl[i]); err != nil {
			return errors.Wrap(err, "writing cluster output")
		}
	}
	return bw.Flush()
}
