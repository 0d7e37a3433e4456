package morphvec

import "math"

// UnigramTable draws negative samples with probability proportional
// to cn^0.75. Built once as a flat array of vocab indices rather than
// a Walker-alias or binary search structure: a direct array lookup is
// O(1) and the fixed table size keeps memory bounded.
type UnigramTable struct {
	table []int32
}

const unigramPower = 0.75

// NewUnigramTable builds the table from v's final (sorted) entries.
func NewUnigramTable(v *Vocab) *UnigramTable {
	n := v.Size()

	var total float64
	for i := 0; i < n; i++ {
		total += math.Pow(float64(v.entries[i].Cn), unigramPower)
	}

	ut := &UnigramTable{table: make([]int32, unigramTableSize)}
	i := 0
	cur := math.Pow(float64(v.entries[0].Cn), unigramPower) / total
	for a := 0; a < unigramTableSize; a++ {
		ut.table[a] = int32(i)
		if float64(a)/unigramTableSize > cur {
			i++
			if i >= n {
				i = n - 1
			}
			cur += math.Pow(float64(v.entries[i].Cn), unigramPower) / total
		}
	}
	return ut
}

// Sample returns the vocabulary index at slot r modulo
// unigramTableSize, so any r is accepted (the trainer passes a
// worker's RNG draw shifted right by 16 bits).
func (u *UnigramTable) Sample(r uint64) int32 {
	return u.table[r%unigramTableSize]
}
