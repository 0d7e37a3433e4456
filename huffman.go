package morphvec

// BuildHuffmanCodes assigns a binary prefix code to every vocabulary
// entry, shorter codes to more frequent words, and stores the
// resulting Code/Point/CodeLen on each entry. This is a linear-time
// two-pointer construction over a sorted-descending frequency array:
// two monotonically advancing pointers (one over leaves, one over
// already-merged internal nodes) always find the two smallest
// remaining weights without a heap.
func BuildHuffmanCodes(v *Vocab) {
	n := len(v.entries)
	if n == 0 {
		return
	}

	count := make([]int64, 2*n-1)
	binary := make([]byte, 2*n-1)
	parent := make([]int32, 2*n-1)

	for i := 0; i < n; i++ {
		count[i] = v.entries[i].Cn
	}
	for i := n; i < 2*n-1; i++ {
		count[i] = 1_000_000_000_000_000 // "infinity" sentinel for unmerged internal nodes
	}

	pos1 := n - 1
	pos2 := n

	for a := 0; a < n-1; a++ {
		var min1i, min2i int

		if pos1 >= 0 && count[pos1] < count[pos2] {
			min1i = pos1
			pos1--
		} else {
			min1i = pos2
			pos2++
		}

		if pos1 >= 0 && count[pos1] < count[pos2] {
			min2i = pos1
			pos1--
		} else {
			min2i = pos2
			pos2++
		}

		count[n+a] = count[min1i] + count[min2i]
		parent[min1i] = int32(n + a)
		parent[min2i] = int32(n + a)
		binary[min2i] = 1
	}

	var code [maxCodeLength]byte
	var point [maxCodeLength]int32

	for a := 0; a < n; a++ {
		b := a
		i := 0
		for {
			code[i] = binary[b]
			point[i] = int32(b)
			i++
			b = int(parent[b])
			if b == 2*n-2 {
				break
			}
		}
		e := &v.entries[a]
		e.CodeLen = i
		e.Code = make([]byte, i)
		e.Point = make([]int32, i)
		e.Point[0] = int32(n - 2)
		for b := 0; b < i; b++ {
			e.Code[i-b-1] = code[b]
			if b > 0 {
				// b==0 would write e.Point[i], one past the valid
				// [0,CodeLen) range: only point[0..CodeLen-1] are
				// ever read back during training.
				e.Point[i-b] = point[b] - int32(n)
			}
		}
	}
}
