package morphvec

// hashIndex is an open-addressing, linear-probe string->int32 index.
// It stores only positions into a caller-owned entry slice; the
// caller supplies wordAt to resolve a stored position back to its
// string so the probe can verify equality on collision, since the
// backing store lives in Vocab rather than in the index itself.
type hashIndex struct {
	slots []int32
}

const emptySlot int32 = -1

func newHashIndex(size int) *hashIndex {
	s := make([]int32, size)
	for i := range s {
		s[i] = emptySlot
	}
	return &hashIndex{slots: s}
}

// hashString computes h(s) = ((Σ 257·acc + byte_i) mod 2⁶⁴) mod H.
// Go's uint64 arithmetic already wraps mod 2⁶⁴, so the multiply-add
// loop alone computes it; the mod H reduction happens in start.
func hashString(s string) uint64 {
	var h uint64
	for i := 0; i < len(s); i++ {
		h = h*257 + uint64(s[i])
	}
	return h
}

func (h *hashIndex) start(word string) int {
	return int(hashString(word) % uint64(len(h.slots)))
}

// find returns the stored position for word, or -1 if absent. The
// probe is bounded by len(h.slots) since insert never lets the table
// fill completely (load factor is capped by the caller via reduce/
// resize before this would loop forever).
func (h *hashIndex) find(word string, wordAt func(pos int32) string) int32 {
	i := h.start(word)
	for {
		v := h.slots[i]
		if v == emptySlot {
			return emptySlot
		}
		if wordAt(v) == word {
			return v
		}
		i++
		if i == len(h.slots) {
			i = 0
		}
	}
}

// insert records pos under word's hash, linear-probing past
// occupied slots. The caller must ensure word is not already present
// (or intends to shadow with a fresh search on reinsert, as Vocab's
// Sort/Reduce do after clearing the table).
func (h *hashIndex) insert(word string, pos int32) {
	i := h.start(word)
	for h.slots[i] != emptySlot {
		i++
		if i == len(h.slots) {
			i = 0
		}
	}
	h.slots[i] = pos
}

func (h *hashIndex) reset() {
	for i := range h.slots {
		h.slots[i] = emptySlot
	}
}
