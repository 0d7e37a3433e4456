package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"rsc.io/getopt"

	"golang.org/x/term"

	"github.com/morphvec/morphvec"
)

var (
	size       = flag.Int("size", morphvec.DefaultDimension, "word vector dimension")
	trainFile  = flag.String("train", "", "training data file")
	wordmap    = flag.String("wordmap", "", "morphology wordmap file")
	output     = flag.String("output", "", "output file for vectors/clusters (\"-\" for stdout)")
	saveVocab  = flag.String("save-vocab", "", "save the vocabulary to this file")
	readVocab  = flag.String("read-vocab", "", "read the vocabulary from this file instead of the training data")
	debug      = flag.Int("debug", 2, "debug mode")
	binary     = flag.Bool("binary", false, "save vectors in binary format")
	cbow       = flag.Bool("cbow", true, "use the continuous bag-of-words model (false for skip-gram)")
	alpha      = flag.Float64("alpha", 0, "starting learning rate (default 0.025 for skip-gram, 0.05 for cbow)")
	window     = flag.Int("window", morphvec.DefaultWindow, "max skip length between words")
	sample     = flag.Float64("sample", morphvec.DefaultSample, "threshold for downsampling frequent words")
	hs         = flag.Bool("hs", false, "use hierarchical softmax")
	negative   = flag.Int("negative", morphvec.DefaultNegative, "number of negative samples")
	threads    = flag.Int("threads", morphvec.DefaultThreads, "number of training threads")
	iter       = flag.Int("iter", morphvec.DefaultIterations, "number of training iterations")
	minCount   = flag.Int("min-count", morphvec.DefaultMinCount, "discard words occurring fewer than this many times")
	classes    = flag.Int("classes", 0, "output word classes via k-means rather than vectors")
)

func buildConfig() *morphvec.Config {
	cfg := &morphvec.Config{
		Dimension:     *size,
		Window:        *window,
		Epochs:        *iter,
		Threads:       *threads,
		MinCount:      *minCount,
		Negative:      *negative,
		UseHS:         *hs,
		Sample:        *sample,
		Binary:        *binary,
		Classes:       *classes,
		TrainFile:     *trainFile,
		WordmapFile:   *wordmap,
		OutputFile:    *output,
		SaveVocabFile: *saveVocab,
		ReadVocabFile: *readVocab,
		Debug:         *debug,
	}
	if *cbow {
		cfg.Arch = morphvec.CBOW
	} else {
		cfg.Arch = morphvec.SkipGram
	}
	if isFlagSet("alpha") {
		cfg.Alpha = *alpha
		cfg.AlphaIsSet = true
	}
	return cfg
}

func isFlagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// do runs one training pipeline and returns the process exit code
// instead of calling os.Exit from deep in the call stack.
func do() int {
	cfg := buildConfig()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "morphvec: %v\n", err)
		return 1
	}

	var (
		v   *morphvec.Vocab
		err error
	)
	if cfg.ReadVocabFile != "" {
		f, ferr := os.Open(cfg.ReadVocabFile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "morphvec: %v\n", ferr)
			return 1
		}
		defer f.Close()
		v, err = morphvec.LoadVocab(f, int64(cfg.MinCount))
	} else {
		f, ferr := os.Open(cfg.TrainFile)
		if ferr != nil {
			fmt.Fprintf(os.Stderr, "morphvec: %v\n", ferr)
			return 1
		}
		v = morphvec.BuildFromReader(f, int64(cfg.MinCount))
		f.Close()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "morphvec: %v\n", err)
		return 1
	}

	if cfg.Debug > 0 {
		fmt.Fprintf(os.Stderr, "Vocab size: %d\n", v.Size())
		fmt.Fprintf(os.Stderr, "Words in train file: %d\n", v.TrainWords())
	}

	if cfg.SaveVocabFile != "" {
		sf, serr := os.Create(cfg.SaveVocabFile)
		if serr != nil {
			fmt.Fprintf(os.Stderr, "morphvec: %v\n", serr)
			return 1
		}
		err = v.Save(sf)
		sf.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "morphvec: %v\n", err)
			return 1
		}
	}

	if cfg.WordmapFile == "" || cfg.OutputFile == "" {
		return 0
	}

	mf, merr := os.Open(cfg.WordmapFile)
	if merr != nil {
		fmt.Fprintf(os.Stderr, "morphvec: %v\n", merr)
		return 1
	}
	err = morphvec.LoadMorphology(mf, v)
	mf.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "morphvec: %v\n", err)
		return 1
	}

	morphvec.BuildHuffmanCodes(v)
	params := morphvec.NewParams(v, cfg)
	sigmoid := morphvec.NewSigmoidTable()

	var unigram *morphvec.UnigramTable
	if cfg.Negative > 0 {
		unigram = morphvec.NewUnigramTable(v)
	}

	corpus, cerr := morphvec.OpenCorpus(cfg.TrainFile)
	if cerr != nil {
		fmt.Fprintf(os.Stderr, "morphvec: %v\n", cerr)
		return 1
	}
	defer corpus.Close()

	trainer := morphvec.NewTrainer(cfg, v, params, sigmoid, unigram, corpus)

	done := make(chan struct{})
	if cfg.Debug > 1 {
		go reportProgress(trainer, v, cfg, done)
	}
	trainer.Run()
	close(done)

	out, outErr := openOutput(cfg.OutputFile, cfg.Binary && cfg.Classes == 0)
	if outErr != nil {
		fmt.Fprintf(os.Stderr, "morphvec: %v\n", outErr)
		return 1
	}
	defer out.Close()

	bw := bufio.NewWriter(out)
	if cfg.Classes == 0 {
		err = morphvec.WriteVectors(bw, v, params, cfg.Binary)
	} else {
		err = morphvec.WriteClusters(bw, v, params, cfg.Classes)
	}
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "morphvec: %v\n", err)
		return 1
	}
	return 0
}

// openOutput honors "-output -" (stdout), refusing to write binary
// vector data to an interactive terminal.
func openOutput(path string, binaryOut bool) (*os.File, error) {
	if path == "-" {
		if binaryOut && term.IsTerminal(int(os.Stdout.Fd())) {
			return nil, fmt.Errorf("refusing to write binary output to a terminal; redirect stdout")
		}
		return os.Stdout, nil
	}
	return os.Create(path)
}

func reportProgress(t *morphvec.Trainer, v *morphvec.Vocab, cfg *morphvec.Config, done <-chan struct{}) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			total := int64(cfg.Epochs) * v.TrainWords()
			pct := float64(t.WordsProcessed()) / float64(total+1) * 100
			fmt.Fprintf(os.Stderr, "\rAlpha: %f  Progress: %.2f%%", t.Alpha(), pct)
		}
	}
}

func main() {
	getopt.Alias("s", "size")
	getopt.Alias("t", "train")
	getopt.Alias("o", "output")

	if err := getopt.CommandLine.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	os.Exit(do())
}
