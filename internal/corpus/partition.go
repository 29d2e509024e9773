package corpus

import (
	"fmt"
	"math"
	"math/rand/v2"

	"notepipe/internal/align"
	"notepipe/internal/window"
)

// Split is a deterministic train/test partition of a corpus.
type Split struct {
	XTrain       []align.Series
	XTest        []align.Series
	YTrain       []align.EventSequence
	YTest        []align.EventSequence
	TrainSources []string
	TestSources  []string
	// Vocabulary covers every label in the corpus, train and test.
	Vocabulary window.Vocabulary
	Seed       int64
	TestRatio  float64
}

// Sizes returns the number of train and test recordings.
func (s *Split) Sizes() (train, test int) {
	return len(s.XTrain), len(s.XTest)
}

// TestCount returns ceil(n*ratio), clamped so both sides are non-empty when n >= 2.
func TestCount(n int, ratio float64) int {
	if n <= 0 {
		return 0
	}
	count := int(math.Ceil(float64(n)*ratio - 1e-9))
	count = max(count, 1)
	if n >= 2 {
		count = min(count, n-1)
	}
	return min(count, n)
}

// Partition shuffles the corpus with a PCG source seeded by seed. The first
// TestCount(n, testRatio) shuffled recordings form the test set and the rest
// the train set, both in shuffled order. A corpus needs at least two
// recordings so that neither side is empty.
func (c *Corpus) Partition(seed int64, testRatio float64) (*Split, error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, fmt.Errorf("test ratio must be between 0 and 1 (exclusive), got %v", testRatio)
	}
	n := c.Len()
	if n == 0 {
		return nil, &MissingDataError{Folder: c.Folder, Extension: ".wav"}
	}
	if n < 2 {
		return nil, &TooFewRecordingsError{Folder: c.Folder, Count: n}
	}
	if len(c.X) != n || len(c.Y) != n {
		return nil, fmt.Errorf("corpus has %d sources, %d series, %d event sequences", n, len(c.X), len(c.Y))
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	order := rng.Perm(n)
	nTest := TestCount(n, testRatio)

	var all []int
	for _, seq := range c.Y {
		all = append(all, seq.Labels()...)
	}
	split := &Split{
		Vocabulary: window.NewVocabulary(all),
		Seed:       seed,
		TestRatio:  testRatio,
	}
	for pos, idx := range order {
		if pos < nTest {
			split.XTest = append(split.XTest, c.X[idx])
			split.YTest = append(split.YTest, c.Y[idx])
			split.TestSources = append(split.TestSources, c.Sources[idx])
			continue
		}
		split.XTrain = append(split.XTrain, c.X[idx])
		split.YTrain = append(split.YTrain, c.Y[idx])
		split.TrainSources = append(split.TrainSources, c.Sources[idx])
	}
	return split, nil
}
