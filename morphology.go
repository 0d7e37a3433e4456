package morphvec

import (
	"bufio"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// morphEntry is one parsed wordmap line, pre-join against the final
// vocabulary. Weight is always 1 from this loader, kept as a field on
// MorphRef rather than folded away so a future loader could vary it.
type morphEntry struct {
	word   string
	prefix []int32
	root   []int32
	suffix []int32
}

// LoadMorphology reads the wordmap file
// ("word#prefixList#rootList#sufList" lines, each list itself
// comma-separated) and joins every matched entry onto v's final
// vocabulary, filling VocabEntry.Prefix/Root/
// Suffix. v must already be sorted (Vocab.Sort called) since lookups
// go through v.IndexOf and entries referencing vocab index 0 (the
// sentence sentinel) or an absent word are dropped.
//
// Parsing and joining happen in one pass: duplicate words are
// rejected with a plain Go map instead of a second open-addressing
// table.
func LoadMorphology(r io.Reader, v *Vocab) error {
	seen := make(map[string]struct{})
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r\n")
		if line == "" {
			continue
		}
		fields := strings.Split(line, "#")
		if len(fields) < 4 {
			continue // malformed line, too few fields
		}

		word := fields[0]
		if _, dup := seen[word]; dup {
			continue
		}
		vi := v.IndexOf(word)
		if vi <= 0 {
			// absent from the vocabulary, or the "</s>" sentinel
			continue
		}
		seen[word] = struct{}{}

		e := morphEntry{word: word}
		e.prefix = resolveSublist(fields[1], v)
		e.root = resolveSublist(fields[2], v)
		e.suffix = resolveSublist(fields[3], v)

		entry := v.Entry(vi)
		if len(e.prefix) > 0 {
			entry.Prefix = refsOf(e.prefix)
		}
		if len(e.root) > 0 {
			entry.Root = refsOf(e.root)
		}
		if len(e.suffix) > 0 {
			entry.Suffix = refsOf(e.suffix)
		}
	}
	if err := sc.Err(); err != nil {
		return errors.Wrap(err, "reading wordmap file")
	}
	return nil
}

// resolveSublist splits a comma-separated sublist (prefix, root, or
// suffix), resolves each phrase to its main word (the longest
// whitespace-separated subtoken), looks it up in the vocabulary, and
// keeps only the hits, dropping the sentinel and any misses.
func resolveSublist(field string, v *Vocab) []int32 {
	if field == " " || field == "" {
		return nil
	}
	var out []int32
	for _, phrase := range strings.Split(field, ",") {
		main := mainWordOf(phrase)
		if main == "" {
			continue
		}
		idx := v.IndexOf(main)
		if idx <= 0 {
			continue
		}
		out = append(out, idx)
	}
	return out
}

// mainWordOf returns the longest whitespace-separated subtoken of
// phrase. On a length tie the LAST subtoken wins, since best is
// replaced whenever a candidate is at least as long.
func mainWordOf(phrase string) string {
	parts := strings.Fields(phrase)
	if len(parts) == 0 {
		return ""
	}
	best := parts[0]
	for _, p := range parts[1:] {
		if len(best) <= len(p) {
			best = p
		}
	}
	return best
}

func refsOf(idxs []int32) []MorphRef {
	refs := make([]MorphRef, len(idxs))
	for i, idx := range idxs {
		refs[i] = MorphRef{Index: idx, Weight: 1}
	}
	return refs
}
