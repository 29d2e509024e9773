package combiner

import (
	"notepipe/internal/align"
	"notepipe/internal/config"
)

// NoPrediction marks an event with no frames in its tolerance window.
const NoPrediction = -1

// Frame is one timestamped frame prediction.
type Frame struct {
	Time       float64
	Label      int
	Confidence float64
}

// Config controls the tolerance window and negative-label filtering.
type Config struct {
	LeftEpsilon   float64
	RightEpsilon  float64
	OnlyPositive  bool
	NegativeLabel int
}

// ConfigFromSettings maps the combiner config section.
func ConfigFromSettings(cfg *config.Config) Config {
	return Config{
		LeftEpsilon:   cfg.Combiner.LeftEpsilon,
		RightEpsilon:  cfg.Combiner.RightEpsilon,
		OnlyPositive:  cfg.Combiner.OnlyPositive,
		NegativeLabel: cfg.Combiner.NegativeLabel,
	}
}

// Combiner votes frames into events.
type Combiner struct {
	cfg Config
}

// New returns a Combiner. Negative epsilons are treated as zero.
func New(cfg Config) *Combiner {
	cfg.LeftEpsilon = max(cfg.LeftEpsilon, 0)
	cfg.RightEpsilon = max(cfg.RightEpsilon, 0)
	return &Combiner{cfg: cfg}
}

// Config returns the effective configuration.
func (c *Combiner) Config() Config { return c.cfg }

type tally struct {
	votes      int
	confidence float64
}

// Combine returns one label per expected time. For time t the frames with
// t-LeftEpsilon <= Time <= t+RightEpsilon vote; the label with most votes
// wins, ties go to the larger summed confidence and then the smaller label.
func (c *Combiner) Combine(frames []Frame, expected []float64) []int {
	out := make([]int, len(expected))
	for i, t := range expected {
		lo, hi := t-c.cfg.LeftEpsilon, t+c.cfg.RightEpsilon
		tallies := make(map[int]*tally)
		for _, f := range frames {
			if f.Time < lo || f.Time > hi {
				continue
			}
			if c.cfg.OnlyPositive && f.Label == c.cfg.NegativeLabel {
				continue
			}
			entry, ok := tallies[f.Label]
			if !ok {
				entry = &tally{}
				tallies[f.Label] = entry
			}
			entry.votes++
			entry.confidence += f.Confidence
		}
		out[i] = winner(tallies)
	}
	return out
}

func winner(tallies map[int]*tally) int {
	best := NoPrediction
	var bestTally *tally
	for label, t := range tallies {
		switch {
		case bestTally == nil,
			t.votes > bestTally.votes,
			t.votes == bestTally.votes && t.confidence > bestTally.confidence,
			t.votes == bestTally.votes && t.confidence == bestTally.confidence && label < best:
			best, bestTally = label, t
		}
	}
	return best
}

// CombineSequence combines frames against the times of events.
func (c *Combiner) CombineSequence(frames []Frame, events align.EventSequence) []int {
	return c.Combine(frames, events.Times())
}
