package morphvec

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MorphRef is a weighted reference to another vocabulary entry,
// used for the prefix/root/suffix lists attached to a word.
// Weights are carried but always 1.0 from the supplied loader,
// kept distinct from a bare index for future policies.
type MorphRef struct {
	Index  int32
	Weight float32
}

// VocabEntry is one word's dictionary record.
type VocabEntry struct {
	Word string
	Cn   int64

	Code    []byte  // Huffman bits, MSB (root) first, length == CodeLen
	Point   []int32 // internal-node path, root-first, length == CodeLen
	CodeLen int

	Prefix []MorphRef
	Root   []MorphRef
	Suffix []MorphRef
}

// NumMorphemes is n = |P|+|R|+|S|.
func (e *VocabEntry) NumMorphemes() int {
	return len(e.Prefix) + len(e.Root) + len(e.Suffix)
}

// Vocab is the frequency-sorted dictionary, index 0 always
// sentenceSentinel ("</s>").
type Vocab struct {
	entries   []VocabEntry
	index     *hashIndex
	minReduce int64
	trainWords int64
}

// NewVocab allocates an empty vocabulary with its probe table sized
// at H = 30,000,000 slots, and seeds index 0 with the sentence
// sentinel as the very first insertion.
func NewVocab() *Vocab {
	v := &Vocab{
		index:     newHashIndex(vocabHashSize),
		minReduce: 1,
	}
	v.entries = append(v.entries, VocabEntry{Word: sentenceSentinel, Cn: 0})
	v.index.insert(sentenceSentinel, 0)
	return v
}

func (v *Vocab) wordAt(pos int32) string { return v.entries[pos].Word }

// Size returns |V|.
func (v *Vocab) Size() int { return len(v.entries) }

// TrainWords returns Σcn over the final vocabulary (after Sort).
func (v *Vocab) TrainWords() int64 { return v.trainWords }

// Entry returns the vocabulary entry at i.
func (v *Vocab) Entry(i int32) *VocabEntry { return &v.entries[i] }

// IndexOf returns i such that Entry(i).Word == word, or -1 if absent.
func (v *Vocab) IndexOf(word string) int32 {
	return v.index.find(word, v.wordAt)
}

// Add increments word's count, inserting it with Cn=1 if new.
// Drops low-frequency entries when the load factor would exceed
// 0.7H to keep the probe table from filling up.
func (v *Vocab) Add(word string) {
	i := v.index.find(word, v.wordAt)
	if i != emptySlot {
		v.entries[i].Cn++
		return
	}
	pos := int32(len(v.entries))
	v.entries = append(v.entries, VocabEntry{Word: word, Cn: 1})
	v.index.insert(word, pos)
	if float64(len(v.entries)) > 0.7*float64(len(v.index.slots)) {
		v.Reduce()
	}
}

// Reduce drops every entry with Cn <= minReduce (except index 0) and
// rebuilds the probe table, incrementing the threshold for next
// time.
func (v *Vocab) Reduce() {
	kept := v.entries[:0:0]
	kept = append(kept, v.entries[0]) // keep "</s>" unconditionally
	for _, e := range v.entries[1:] {
		if e.Cn > v.minReduce {
			kept = append(kept, e)
		}
	}
	v.entries = kept
	v.index.reset()
	for i, e := range v.entries {
		v.index.insert(e.Word, int32(i))
	}
	v.minReduce++
}

// Sort finalizes the vocabulary: sorts indices 1..|V|-1 by Cn
// descending (index 0 stays "</s>"), drops entries with
// Cn < minCount, rebuilds the probe table, and records TrainWords.
func (v *Vocab) Sort(minCount int64) {
	rest := v.entries[1:]
	sort.SliceStable(rest, func(i, j int) bool { return rest[i].Cn > rest[j].Cn })

	kept := v.entries[:1]
	for _, e := range rest {
		if e.Cn >= minCount {
			kept = append(kept, e)
		}
	}
	v.entries = kept

	v.index.reset()
	v.trainWords = 0
	for i, e := range v.entries {
		v.index.insert(e.Word, int32(i))
		v.trainWords += e.Cn
	}
}

// BuildFromReader streams whitespace-delimited tokens from r,
// ingesting them into the vocabulary, then finalizes with
// Sort(minCount). Callers that need the file size stat the file
// directly rather than counting bytes consumed here.
func BuildFromReader(r io.Reader, minCount int64) *Vocab {
	v := NewVocab()
	br := bufio.NewReader(r)
	for {
		tok, err := ReadToken(br)
		if err != nil {
			break
		}
		v.Add(tok)
	}
	v.Sort(minCount)
	return v
}

// Save writes "<word> <count>\n" lines in current order.
func (v *Vocab) Save(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, e := range v.entries {
		if _, err := fmt.Fprintf(bw, "%s %d\n", e.Word, e.Cn); err != nil {
			return errors.Wrap(err, "writing saved vocabulary")
		}
	}
	return bw.Flush()
}

// LoadVocab reads back a saved vocabulary file ("<word> <count>\n"
// lines) and finalizes it with Sort(minCount).
func LoadVocab(r io.Reader, minCount int64) (*Vocab, error) {
	v := NewVocab()
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		sp := strings.LastIndexByte(line, ' ')
		if sp < 0 {
			continue
		}
		word := line[:sp]
		cn, err := strconv.ParseInt(strings.TrimSpace(line[sp+1:]), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parsing saved vocabulary line %q", line)
		}
		if word == sentenceSentinel {
			v.entries[0].Cn = cn
			continue
		}
		pos := int32(len(v.entries))
		v.entries = append(v.entries, VocabEntry{Word: word, Cn: cn})
		v.index.insert(word, pos)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading saved vocabulary")
	}
	v.Sort(minCount)
	return v, nil
}
