package morphvec

import (
	"math"
	"testing"
)

func TestUnigramTableSizeAndValidIndices(t *testing.T) {
	v := newCountVocab([]int64{100, 50, 25, 10, 5})
	ut := NewUnigramTable(v)

	if len(ut.table) != unigramTableSize {
		t.Fatalf("table has %d entries, want %d", len(ut.table), unigramTableSize)
	}
	for _, idx := range ut.table {
		if idx < 0 || int(idx) >= v.Size() {
			t.Fatalf("table contains out-of-range index %d", idx)
		}
	}
}

func TestUnigramTableMassConvergesToPower75(t *testing.T) {
	v := newCountVocab([]int64{1000, 500, 250, 100, 50})
	ut := NewUnigramTable(v)

	var total float64
	for i := 0; i < v.Size(); i++ {
		total += math.Pow(float64(v.Entry(int32(i)).Cn), unigramPower)
	}

	counts := make([]int, v.Size())
	for _, idx := range ut.table {
		counts[idx]++
	}
	for i := 0; i < v.Size(); i++ {
		want := math.Pow(float64(v.Entry(int32(i)).Cn), unigramPower) / total
		got := float64(counts[i]) / float64(unigramTableSize)
		if math.Abs(got-want) > 0.01 {
			t.Errorf("index %d empirical mass %.4f, want ~%.4f", i, got, want)
		}
	}
}
