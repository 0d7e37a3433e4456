package morphvec

import (
	"math"
	"os"
	"strings"
	"testing"
)

func cosineSim(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// TestTrainerLearnsCooccurrenceSmoke runs a small CBOW session over a
// synthetic corpus and checks that co-occurring word vectors end up
// closer together than vectors for words that never co-occur. This
// is a directional check, not a numeric target.
func TestTrainerLearnsCooccurrenceSmoke(t *testing.T) {
	corpus := strings.Repeat("cat dog ", 10000) + strings.Repeat("fish bird ", 10000)
	f, err := os.CreateTemp(t.TempDir(), "corpus-*.txt")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString(corpus); err != nil {
		t.Fatal(err)
	}
	f.Close()

	cfg := &Config{
		Dimension: 10,
		Window:    5,
		Epochs:    5,
		Threads:   2,
		MinCount:  1,
		Arch:      CBOW,
		Negative:  5,
		Sample:    0,
		TrainFile: f.Name(),
	}
	cfg.Alpha = cfg.ResolvedAlpha()
	cfg.AlphaIsSet = true

	rf, err := os.Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	v := BuildFromReader(rf, int64(cfg.MinCount))
	rf.Close()

	params := NewParams(v, cfg)
	sigmoid := NewSigmoidTable()
	unigram := NewUnigramTable(v)

	c, err := OpenCorpus(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	trainer := NewTrainer(cfg, v, params, sigmoid, unigram, c)
	trainer.Run()

	vec := func(w string) []float32 { return params.Win.Row(v.IndexOf(w)) }

	coOccurring := cosineSim(vec("cat"), vec("dog"))
	nonCoOccurring := cosineSim(vec("cat"), vec("fish"))

	if coOccurring <= nonCoOccurring {
		t.Errorf("expected cosine(cat,dog)=%.4f > cosine(cat,fish)=%.4f", coOccurring, nonCoOccurring)
	}
}
