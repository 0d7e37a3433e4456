package morphvec

import (
	"strings"
	"testing"
)

func TestVocabBuildFromReader(t *testing.T) {
	// Trailing newline matters: it synthesizes a second "</s>" token
	// on top of the literal one already in the text, via ReadToken's
	// unread-then-resee-the-LF behavior.
	v := BuildFromReader(strings.NewReader("a a b c </s> a b a\n"), 1)

	if v.Size() != 4 {
		t.Fatalf("size = %d, want 4", v.Size())
	}
	wantWords := []string{"</s>", "a", "b", "c"}
	wantCounts := []int64{2, 4, 2, 1}
	for i, w := range wantWords {
		e := v.Entry(int32(i))
		if e.Word != w {
			t.Errorf("entries[%d].Word = %q, want %q", i, e.Word, w)
		}
		if e.Cn != wantCounts[i] {
			t.Errorf("entries[%d].Cn = %d, want %d", i, e.Cn, wantCounts[i])
		}
	}
}

func TestVocabCountsNonIncreasing(t *testing.T) {
	v := BuildFromReader(strings.NewReader("the quick brown fox the lazy the quick the"), 1)
	for i := 2; i < v.Size(); i++ {
		if v.Entry(int32(i)).Cn > v.Entry(int32(i-1)).Cn {
			t.Fatalf("counts not non-increasing at %d: %d > %d", i, v.Entry(int32(i)).Cn, v.Entry(int32(i-1)).Cn)
		}
	}
}

func TestVocabMinCountDrops(t *testing.T) {
	v := BuildFromReader(strings.NewReader("a a a b"), 2)
	if v.IndexOf("b") != emptySlot {
		t.Fatalf("expected b to be dropped by min_count=2")
	}
	if v.IndexOf("a") == emptySlot {
		t.Fatalf("expected a to survive min_count=2")
	}
}

func TestVocabSaveLoadRoundtrip(t *testing.T) {
	v := BuildFromReader(strings.NewReader("a a b c a b a"), 1)
	var buf strings.Builder
	if err := v.Save(&buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadVocab(strings.NewReader(buf.String()), 1)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Size() != v.Size() {
		t.Fatalf("loaded size = %d, want %d", loaded.Size(), v.Size())
	}
	for i := 0; i < v.Size(); i++ {
		if loaded.Entry(int32(i)).Word != v.Entry(int32(i)).Word {
			t.Errorf("entry %d word mismatch: %q vs %q", i, loaded.Entry(int32(i)).Word, v.Entry(int32(i)).Word)
		}
	}
}

func TestVocabReduceKeepsSentinel(t *testing.T) {
	v := NewVocab()
	v.minReduce = 1
	for i := 0; i < 5; i++ {
		v.Add("rare")
	}
	v.Reduce()
	if v.Entry(0).Word != sentenceSentinel {
		t.Fatalf("index 0 = %q, want sentinel", v.Entry(0).Word)
	}
}
