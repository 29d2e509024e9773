package window

import (
	"fmt"
	"slices"

	"notepipe/internal/align"
)

// Vocabulary maps labels to dense class indexes in ascending label order.
type Vocabulary struct {
	Labels []int
}

// NewVocabulary returns the sorted distinct labels found in labels.
func NewVocabulary(labels []int) Vocabulary {
	sorted := slices.Clone(labels)
	slices.Sort(sorted)
	return Vocabulary{Labels: slices.Compact(sorted)}
}

// Size returns the number of classes.
func (v Vocabulary) Size() int { return len(v.Labels) }

// Index returns the class index of label.
func (v Vocabulary) Index(label int) (int, bool) {
	return slices.BinarySearch(v.Labels, label)
}

// Label returns the label for class index i.
func (v Vocabulary) Label(i int) (int, bool) {
	if i < 0 || i >= len(v.Labels) {
		return 0, false
	}
	return v.Labels[i], true
}

// OneHot encodes label as a vector of Size() with a single 1.
func (v Vocabulary) OneHot(label int) ([]float64, error) {
	i, ok := v.Index(label)
	if !ok {
		return nil, fmt.Errorf("label %d not in vocabulary", label)
	}
	out := make([]float64, v.Size())
	out[i] = 1
	return out, nil
}

// Dataset is a segment-level training set: X[i] is the window sequence of
// one segment and Y[i] its class index.
type Dataset struct {
	X          [][][]float64
	Y          []int
	Vocabulary Vocabulary
}

// Len returns the number of segments.
func (d Dataset) Len() int { return len(d.Y) }

// BuildDataset windows every recording and collects one sample per segment.
// The vocabulary covers all labels in events.
func BuildDataset(series []align.Series, events []align.EventSequence, p Params) (Dataset, error) {
	if len(series) != len(events) {
		return Dataset{}, fmt.Errorf("dataset has %d recordings but %d event sequences", len(series), len(events))
	}
	var all []int
	for _, seq := range events {
		all = append(all, seq.Labels()...)
	}
	ds := Dataset{Vocabulary: NewVocabulary(all)}
	for i := range series {
		segments, err := Segments(series[i], events[i], p)
		if err != nil {
			return Dataset{}, fmt.Errorf("recording %d: %w", i, err)
		}
		for _, seg := range segments {
			class, _ := ds.Vocabulary.Index(seg.Label)
			ds.X = append(ds.X, seg.Windows)
			ds.Y = append(ds.Y, class)
		}
	}
	return ds, nil
}
