package morphvec

import (
	"math"
	"sync"
	"sync/atomic"
)

const maxSentenceLength = 1000

// Trainer drives the concurrent Hogwild-style training loop: T worker
// goroutines each walk their own byte range of the mapped corpus and
// update the shared parameter matrices with no locking, tolerating
// the resulting lost updates and stale reads in exchange for
// near-linear scaling across threads.
type Trainer struct {
	cfg     *Config
	vocab   *Vocab
	params  *Params
	sigmoid *SigmoidTable
	unigram *UnigramTable
	corpus  *Corpus

	wordCountActual int64 // process-wide progress counter, no synchronization required
	startingAlpha   float64
	alpha           uint64 // float64 bits, read/written via atomic for the debug printer only
}

// NewTrainer wires together a training run's components. unigram may
// be nil when cfg.Negative == 0.
func NewTrainer(cfg *Config, v *Vocab, p *Params, sig *SigmoidTable, ut *UnigramTable, c *Corpus) *Trainer {
	t := &Trainer{
		cfg: cfg, vocab: v, params: p, sigmoid: sig, unigram: ut, corpus: c,
		startingAlpha: cfg.ResolvedAlpha(),
	}
	t.setAlpha(t.startingAlpha)
	return t
}

func (t *Trainer) setAlpha(a float64) { atomic.StoreUint64(&t.alpha, math.Float64bits(a)) }

// Alpha returns the current learning rate, racy by design (read by
// the CLI's debug printer while workers concurrently update it).
func (t *Trainer) Alpha() float64 { return math.Float64frombits(atomic.LoadUint64(&t.alpha)) }

// WordsProcessed returns the running total of words consumed across
// all workers and epochs so far.
func (t *Trainer) WordsProcessed() int64 { return atomic.LoadInt64(&t.wordCountActual) }

// Run executes cfg.Threads worker goroutines to completion.
func (t *Trainer) Run() {
	var wg sync.WaitGroup
	wg.Add(t.cfg.Threads)
	for id := 0; id < t.cfg.Threads; id++ {
		go func(id int) {
			defer wg.Done()
			t.worker(id)
		}(id)
	}
	wg.Wait()
}

type workerState struct {
	rng         *RNG
	neu1, neu1e []float32
	prefixComp  []float32
	rootComp    []float32
	suffixComp  []float32
}

func newWorkerState(id, dim int) *workerState {
	return &workerState{
		rng:        NewRNG(uint64(id)),
		neu1:       make([]float32, dim),
		neu1e:      make([]float32, dim),
		prefixComp: make([]float32, dim),
		rootComp:   make([]float32, dim),
		suffixComp: make([]float32, dim),
	}
}

// worker runs one goroutine's share of the corpus for cfg.Epochs
// passes: read a sentence, process each word's context window,
// refresh the learning rate every 10,000 words, reseek to the
// worker's byte offset at the start of each local iteration.
func (t *Trainer) worker(id int) {
	ws := newWorkerState(id, t.cfg.Dimension)
	trainWords := t.vocab.TrainWords()
	localEpochsLeft := t.cfg.Epochs

	off := t.corpus.WorkerStart(id, t.cfg.Threads)
	r := t.corpus.Reader(off)

	var wordCount, lastWordCount int64
	var sentence []int32

	refreshAlpha := func() {
		if wordCount-lastWordCount <= 10000 {
			return
		}
		delta := wordCount - lastWordCount
		atomic.AddInt64(&t.wordCountActual, delta)
		lastWordCount = wordCount
		actual := atomic.LoadInt64(&t.wordCountActual)
		a := t.startingAlpha * (1 - float64(actual)/float64(int64(t.cfg.Epochs)*trainWords+1))
		if a < t.startingAlpha*0.0001 {
			a = t.startingAlpha * 0.0001
		}
		t.setAlpha(a)
	}

	readSentence := func() bool {
		sentence = sentence[:0]
		for {
			tok, err := ReadToken(r)
			if err != nil {
				return false
			}
			wi := t.vocab.IndexOf(tok)
			if wi == emptySlot {
				continue
			}
			wordCount++
			if wi == 0 {
				break
			}
			if t.cfg.Sample > 0 {
				cn := float64(t.vocab.Entry(wi).Cn)
				ratio := (math.Sqrt(cn/(t.cfg.Sample*float64(trainWords))) + 1) *
					(t.cfg.Sample * float64(trainWords)) / cn
				if ratio < ws.rng.Float64() {
					continue
				}
			}
			sentence = append(sentence, wi)
			if len(sentence) >= maxSentenceLength {
				break
			}
		}
		return true
	}

	for {
		refreshAlpha()

		if len(sentence) == 0 {
			if !readSentence() {
				atomic.AddInt64(&t.wordCountActual, wordCount-lastWordCount)
				localEpochsLeft--
				if localEpochsLeft == 0 {
					return
				}
				wordCount, lastWordCount = 0, 0
				sentence = sentence[:0]
				off = t.corpus.WorkerStart(id, t.cfg.Threads)
				r = t.corpus.Reader(off)
				continue
			}
		}

		if wordCount > trainWords/int64(t.cfg.Threads) {
			atomic.AddInt64(&t.wordCountActual, wordCount-lastWordCount)
			localEpochsLeft--
			if localEpochsLeft == 0 {
				return
			}
			wordCount, lastWordCount = 0, 0
			sentence = sentence[:0]
			off = t.corpus.WorkerStart(id, t.cfg.Threads)
			r = t.corpus.Reader(off)
			continue
		}

		for pos := 0; pos < len(sentence); pos++ {
			word := sentence[pos]
			b := int(ws.rng.Next() % uint64(t.cfg.Window))
			if t.cfg.Arch == CBOW {
				t.trainCBOW(ws, sentence, pos, word, b)
			} else {
				t.trainSkipGram(ws, sentence, pos, word, b)
			}
		}
		sentence = sentence[:0]
	}
}

// forEachContextWord walks the dynamic window around pos (shrunk by b
// on both sides, skipping the center itself), calling fn with each
// in-range neighbor's vocabulary index. Mirrors the "for (a = b; a <
// window*2+1-b; a++) if (a != window)" loop shared by both
// architectures.
func (t *Trainer) forEachContextWord(sentence []int32, pos, b int, fn func(lastWord int32)) {
	window := t.cfg.Window
	for a := b; a < window*2+1-b; a++ {
		if a == window {
			continue
		}
		c := pos - window + a
		if c < 0 || c >= len(sentence) {
			continue
		}
		fn(sentence[c])
	}
}

// addMorphemeComposition accumulates last_word's own vector plus the
// averaged prefix/root/suffix composition into dst: the composite is
// added at half weight (norm=2) when any morphemes are present, full
// weight (norm=1) otherwise.
func (t *Trainer) addMorphemeComposition(ws *workerState, dst []float32, lastWord int32) {
	entry := t.vocab.Entry(lastWord)
	lex := t.params.Win.Row(lastWord)

	n := entry.NumMorphemes()
	norm := float32(1)
	if n > 0 {
		for i := range ws.prefixComp {
			ws.prefixComp[i], ws.rootComp[i], ws.suffixComp[i] = 0, 0, 0
		}
		sumRefs(t.params.Win, entry.Prefix, ws.prefixComp)
		sumRefs(t.params.Win, entry.Root, ws.rootComp)
		sumRefs(t.params.Win, entry.Suffix, ws.suffixComp)
		norm = 2
	}

	for i, v := range lex {
		morph := v
		if n > 0 {
			morph += (ws.prefixComp[i] + ws.rootComp[i] + ws.suffixComp[i]) / float32(n)
		}
		dst[i] += morph / norm
	}
}

func sumRefs(m *alignedMatrix, refs []MorphRef, dst []float32) {
	for _, ref := range refs {
		row := m.Row(ref.Index)
		for i, v := range row {
			dst[i] += v
		}
	}
}

// propagateToMorphemes adds grad (already scaled by alpha) into
// last_word's own row plus every one of its prefix/root/suffix rows,
// with no division by the morpheme count: the backward pass is not
// the inverse of the forward averaging.
func (t *Trainer) propagateToMorphemes(grad []float32, lastWord int32) {
	addInto(t.params.Win.Row(lastWord), grad)
	entry := t.vocab.Entry(lastWord)
	for _, ref := range entry.Prefix {
		addInto(t.params.Win.Row(ref.Index), grad)
	}
	for _, ref := range entry.Root {
		addInto(t.params.Win.Row(ref.Index), grad)
	}
	for _, ref := range entry.Suffix {
		addInto(t.params.Win.Row(ref.Index), grad)
	}
}

func addInto(dst, src []float32) {
	for i, v := range src {
		dst[i] += v
	}
}

// sampleNegativeTarget draws one negative-sampling target, falling
// back to a uniform draw over [1, vocab_size) when the unigram table
// happens to land on the sentinel, and signals the caller to skip
// this draw when it coincides with the positive word.
func (t *Trainer) sampleNegativeTarget(ws *workerState, word int32) (target int32, skip bool) {
	r := ws.rng.Next()
	target = t.unigram.Sample(r >> 16)
	if target == 0 {
		target = int32(r%uint64(t.vocab.Size()-1)) + 1
	}
	return target, target == word
}

// trainCBOW composes the context window into ws.neu1, runs the
// hierarchical-softmax and/or negative-sampling update against the
// target word, then broadcasts the resulting error back across every
// context word (and its morphemes).
func (t *Trainer) trainCBOW(ws *workerState, sentence []int32, pos int, word int32, b int) {
	for i := range ws.neu1 {
		ws.neu1[i] = 0
	}
	for i := range ws.neu1e {
		ws.neu1e[i] = 0
	}

	cw := 0
	t.forEachContextWord(sentence, pos, b, func(lastWord int32) {
		t.addMorphemeComposition(ws, ws.neu1, lastWord)
		cw++
	})
	if cw == 0 {
		return
	}
	for i := range ws.neu1 {
		ws.neu1[i] /= float32(cw)
	}

	alpha := float32(t.Alpha())
	t.applyOutputUpdate(ws, ws.neu1, ws.neu1e, word, alpha)

	t.forEachContextWord(sentence, pos, b, func(lastWord int32) {
		t.propagateToMorphemes(ws.neu1e, lastWord)
	})
}

// trainSkipGram predicts the target word from each context word in
// turn; morphemes are never composed on this branch.
func (t *Trainer) trainSkipGram(ws *workerState, sentence []int32, pos int, word int32, b int) {
	alpha := float32(t.Alpha())
	t.forEachContextWord(sentence, pos, b, func(lastWord int32) {
		for i := range ws.neu1e {
			ws.neu1e[i] = 0
		}
		l1 := t.params.Win.Row(lastWord)
		t.applyOutputUpdate(ws, l1, ws.neu1e, word, alpha)
		addInto(l1, ws.neu1e)
	})
}

// applyOutputUpdate runs the hierarchical-softmax and negative-
// sampling passes shared by both architectures: dot hidden against
// each output row, compute the gradient, accumulate it into errAcc,
// and update the output row in place.
func (t *Trainer) applyOutputUpdate(ws *workerState, hidden, errAcc []float32, word int32, alpha float32) {
	if t.cfg.UseHS {
		entry := t.vocab.Entry(word)
		for d := 0; d < entry.CodeLen; d++ {
			out := t.params.Whs.Row(entry.Point[d])
			var f float32
			for i, v := range hidden {
				f += v * out[i]
			}
			sig, ok := t.sigmoid.Lookup(f)
			if !ok {
				continue
			}
			g := (1 - float32(entry.Code[d]) - sig) * alpha
			for i := range out {
				errAcc[i] += g * out[i]
				out[i] += g * hidden[i]
			}
		}
	}

	if t.cfg.Negative > 0 {
		for d := 0; d <= t.cfg.Negative; d++ {
			var target int32
			var label float32
			if d == 0 {
				target, label = word, 1
			} else {
				tgt, skip := t.sampleNegativeTarget(ws, word)
				if skip {
					continue
				}
				target, label = tgt, 0
			}
			out := t.params.Wneg.Row(target)
			var f float32
			for i, v := range hidden {
				f += v * out[i]
			}
			g := (label - t.sigmoid.At(f)) * alpha
			for i := range out {
				errAcc[i] += g * out[i]
				out[i] += g * hidden[i]
			}
		}
	}
}
