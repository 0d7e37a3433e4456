package morphvec

import (
	"strings"
	"testing"
)

func vocabWith(words ...string) *Vocab {
	v := NewVocab()
	for _, w := range words {
		v.entries = append(v.entries, VocabEntry{Word: w, Cn: 1})
	}
	v.index.reset()
	for i, e := range v.entries {
		v.index.insert(e.Word, int32(i))
	}
	return v
}

func TestLoadMorphologyJoinsAllThreeLists(t *testing.T) {
	v := vocabWith("unhappiness", "un", "happy", "ness")

	err := LoadMorphology(strings.NewReader("unhappiness#un#happy#ness\n"), v)
	if err != nil {
		t.Fatal(err)
	}

	e := v.Entry(v.IndexOf("unhappiness"))
	if len(e.Prefix) != 1 || e.Prefix[0].Index != v.IndexOf("un") || e.Prefix[0].Weight != 1 {
		t.Errorf("Prefix = %+v, want [{%d 1}]", e.Prefix, v.IndexOf("un"))
	}
	if len(e.Root) != 1 || e.Root[0].Index != v.IndexOf("happy") {
		t.Errorf("Root = %+v, want [{%d 1}]", e.Root, v.IndexOf("happy"))
	}
	if len(e.Suffix) != 1 || e.Suffix[0].Index != v.IndexOf("ness") {
		t.Errorf("Suffix = %+v, want [{%d 1}]", e.Suffix, v.IndexOf("ness"))
	}
}

func TestLoadMorphologySkipsShortLines(t *testing.T) {
	v := vocabWith("word")
	err := LoadMorphology(strings.NewReader("word#only#two\n"), v)
	if err != nil {
		t.Fatal(err)
	}
	e := v.Entry(v.IndexOf("word"))
	if e.NumMorphemes() != 0 {
		t.Errorf("expected no morphemes joined from a short line, got %d", e.NumMorphemes())
	}
}

func TestLoadMorphologySkipsAbsentWord(t *testing.T) {
	v := vocabWith("present")
	err := LoadMorphology(strings.NewReader("missing#a#b#c\n"), v)
	if err != nil {
		t.Fatal(err)
	}
	if v.IndexOf("missing") != emptySlot {
		t.Errorf("absent word should not be added to the vocabulary")
	}
}

func TestMainWordOfPhrasePicksLongestSubtoken(t *testing.T) {
	if got := mainWordOf("a bb ccc"); got != "ccc" {
		t.Errorf("mainWordOf = %q, want ccc", got)
	}
	if got := mainWordOf("solo"); got != "solo" {
		t.Errorf("mainWordOf = %q, want solo", got)
	}
	if got := mainWordOf(""); got != "" {
		t.Errorf("mainWordOf of empty string = %q, want empty", got)
	}
}

func TestMainWordOfPhraseBreaksTiesByLast(t *testing.T) {
	if got := mainWordOf("aaa bbb"); got != "bbb" {
		t.Errorf("mainWordOf = %q, want bbb (last of equal-longest subtokens)", got)
	}
	if got := mainWordOf("aaa bbb ccc"); got != "ccc" {
		t.Errorf("mainWordOf = %q, want ccc (last of equal-longest subtokens)", got)
	}
}
