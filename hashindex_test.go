package morphvec

import "testing"

func TestHashIndexFindAfterInsert(t *testing.T) {
	words := []string{"the", "quick", "brown", "fox", "jumps", "over", "a", "lazy", "dog"}
	h := newHashIndex(64)
	for i, w := range words {
		h.insert(w, int32(i))
	}
	wordAt := func(pos int32) string { return words[pos] }

	for i, w := range words {
		got := h.find(w, wordAt)
		if got != int32(i) {
			t.Errorf("find(%q) = %d, want %d", w, got, i)
		}
	}
	if h.find("absent", wordAt) != emptySlot {
		t.Errorf("find(absent word) should return emptySlot")
	}
}

func TestHashIndexResetClears(t *testing.T) {
	h := newHashIndex(16)
	h.insert("x", 0)
	h.reset()
	wordAt := func(int32) string { return "x" }
	if h.find("x", wordAt) != emptySlot {
		t.Errorf("expected empty after reset")
	}
}

func TestHashStringDeterministic(t *testing.T) {
	if hashString("abc") != hashString("abc") {
		t.Fatalf("hashString not deterministic")
	}
	if hashString("abc") == hashString("abd") {
		t.Fatalf("unexpected collision between distinct short strings")
	}
}
