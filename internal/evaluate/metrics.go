package evaluate

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/montanaflynn/stats"
	"github.com/texttheater/golang-levenshtein/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"notepipe/internal/align"
)

// ErrUnknownMetric is returned for metric names missing from a Registry.
var ErrUnknownMetric = errors.New("unknown metric")

// Metric scores one predicted sequence in [0, 1].
type Metric func(truth align.EventSequence, pred []int) float64

// Metric names.
const (
	MetricExactMatch     = "exact_match"
	MetricLabelAccuracy  = "label_accuracy"
	MetricEditSimilarity = "edit_similarity"
)

// LabelAccuracy is the fraction of truth positions predicted correctly.
// Extra predictions are ignored; missing ones count as wrong.
func LabelAccuracy(truth align.EventSequence, pred []int) float64 {
	if len(truth) == 0 {
		if len(pred) == 0 {
			return 1
		}
		return 0
	}
	hits := 0
	for i, ev := range truth {
		if i < len(pred) && pred[i] == ev.Label {
			hits++
		}
	}
	return float64(hits) / float64(len(truth))
}

// EditSimilarity is 1 - levenshtein(truth, pred) / max(len).
func EditSimilarity(truth align.EventSequence, pred []int) float64 {
	longest := max(len(truth), len(pred))
	if longest == 0 {
		return 1
	}
	distance := levenshtein.DistanceForStrings(labelRunes(truth.Labels()), labelRunes(pred), levenshtein.DefaultOptionsWithSub)
	return 1 - float64(distance)/float64(longest)
}

// labelRunes maps labels onto distinct runes, leaving room for NoPrediction.
func labelRunes(labels []int) []rune {
	out := make([]rune, len(labels))
	for i, label := range labels {
		out[i] = rune(0x100 + label + 1)
	}
	return out
}

func exactMatchMetric(truth align.EventSequence, pred []int) float64 {
	if ExactMatch(truth, pred) {
		return 1
	}
	return 0
}

// Score summarizes one metric over a set.
type Score struct {
	Name   string
	Mean   float64
	StdDev float64
	Count  int
}

// DisplayName returns the metric name in title case for tables.
func (s Score) DisplayName() string {
	return DisplayName(s.Name)
}

// DisplayName turns "edit_similarity" into "Edit Similarity".
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

// Registry maps metric names to implementations.
type Registry struct {
	metrics map[string]Metric
}

// NewRegistry returns a registry holding the built-in metrics.
func NewRegistry() *Registry {
	r := &Registry{metrics: make(map[string]Metric)}
	r.Register(MetricExactMatch, exactMatchMetric)
	r.Register(MetricLabelAccuracy, LabelAccuracy)
	r.Register(MetricEditSimilarity, EditSimilarity)
	return r
}

// Register adds or replaces a metric.
func (r *Registry) Register(name string, metric Metric) {
	r.metrics[strings.ToLower(strings.TrimSpace(name))] = metric
}

// Names returns the registered metric names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Evaluate scores every named metric over the set, in the order given.
func (r *Registry) Evaluate(names []string, truths []align.EventSequence, preds [][]int) ([]Score, error) {
	if len(truths) != len(preds) {
		return nil, &LengthMismatchError{Truths: len(truths), Predictions: len(preds)}
	}
	scores := make([]Score, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		metric, ok := r.metrics[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
		}
		score := Score{Name: key, Count: len(truths)}
		if len(truths) > 0 {
			values := make(stats.Float64Data, len(truths))
			for i := range truths {
				values[i] = metric(truths[i], preds[i])
			}
			mean, err := stats.Mean(values)
			if err != nil {
				return nil, fmt.Errorf("%s mean: %w", key, err)
			}
			stddev, err := stats.StandardDeviation(values)
			if err != nil {
				return nil, fmt.Errorf("%s stddev: %w", key, err)
			}
			score.Mean, score.StdDev = mean, stddev
		}
		scores = append(scores, score)
	}
	return scores, nil
}
