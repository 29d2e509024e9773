package evaluate

import (
	"errors"
	"math"
	"testing"

	"notepipe/internal/align"
)

func seq(labels ...int) align.EventSequence {
	out := make(align.EventSequence, len(labels))
	for i, l := range labels {
		out[i] = align.Event{Label: l, Time: float64(i)}
	}
	return out
}

func TestExactMatch(t *testing.T) {
	truth := seq(1, 3, 5)
	if !ExactMatch(truth, []int{1, 3, 5}) {
		t.Fatal("identical sequences should match")
	}
	if ExactMatch(truth, []int{1, 4, 5}) {
		t.Fatal("single differing label should not match")
	}
	if ExactMatch(truth, []int{1, 3}) {
		t.Fatal("shorter prediction should not match")
	}
	if !ExactMatch(nil, nil) {
		t.Fatal("empty sequences should match")
	}
}

func TestEvaluateSet(t *testing.T) {
	truths := []align.EventSequence{seq(1), seq(2, 3), seq(4), seq(5)}
	preds := [][]int{{1}, {2, 3}, {9}, {-1}}
	got, err := EvaluateSet(truths, preds)
	if err != nil {
		t.Fatalf("EvaluateSet: %v", err)
	}
	if got != 0.5 {
		t.Fatalf("EvaluateSet = %v, want 0.5", got)
	}

	empty, err := EvaluateSet(nil, nil)
	if err != nil || empty != 0 {
		t.Fatalf("EvaluateSet(empty) = %v, %v", empty, err)
	}
}

func TestEvaluateSetLengthMismatch(t *testing.T) {
	_, err := EvaluateSet([]align.EventSequence{seq(1)}, nil)
	if !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
	var mismatch *LengthMismatchError
	if !errors.As(err, &mismatch) || mismatch.Truths != 1 || mismatch.Predictions != 0 {
		t.Fatalf("unexpected mismatch detail: %+v", mismatch)
	}
}

func TestLabelAccuracy(t *testing.T) {
	tests := []struct {
		truth align.EventSequence
		pred  []int
		want  float64
	}{
		{seq(1, 2, 3, 4), []int{1, 2, 0, 4}, 0.75},
		{seq(1, 2), []int{1}, 0.5},
		{seq(1), []int{1, 7, 7}, 1},
		{nil, nil, 1},
		{nil, []int{1}, 0},
	}
	for _, tc := range tests {
		if got := LabelAccuracy(tc.truth, tc.pred); got != tc.want {
			t.Fatalf("LabelAccuracy(%v, %v) = %v, want %v", tc.truth.Labels(), tc.pred, got, tc.want)
		}
	}
}

func TestEditSimilarity(t *testing.T) {
	tests := []struct {
		truth align.EventSequence
		pred  []int
		want  float64
	}{
		{seq(1, 2, 3, 4), []int{1, 2, 3, 4}, 1},
		{seq(1, 2, 3, 4), []int{1, 3, 4}, 0.75},
		{seq(1, 2), []int{3, 4}, 0},
		{seq(0, 1), []int{-1, 1}, 0.5},
		{nil, nil, 1},
	}
	for _, tc := range tests {
		if got := EditSimilarity(tc.truth, tc.pred); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("EditSimilarity(%v, %v) = %v, want %v", tc.truth.Labels(), tc.pred, got, tc.want)
		}
	}
}

func TestRegistryEvaluate(t *testing.T) {
	r := NewRegistry()
	truths := []align.EventSequence{seq(1, 2), seq(3, 4)}
	preds := [][]int{{1, 2}, {3, 9}}
	scores, err := r.Evaluate([]string{"exact_match", "Label_Accuracy"}, truths, preds)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(scores))
	}
	if scores[0].Name != MetricExactMatch || scores[0].Mean != 0.5 || scores[0].StdDev != 0.5 {
		t.Fatalf("unexpected exact match score: %+v", scores[0])
	}
	if scores[1].Name != MetricLabelAccuracy || scores[1].Mean != 0.75 || scores[1].StdDev != 0.25 {
		t.Fatalf("unexpected label accuracy score: %+v", scores[1])
	}
	if scores[1].DisplayName() != "Label Accuracy" {
		t.Fatalf("DisplayName = %q", scores[1].DisplayName())
	}
}

func TestRegistryEvaluateEmptySet(t *testing.T) {
	scores, err := NewRegistry().Evaluate([]string{MetricEditSimilarity}, nil, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if scores[0].Mean != 0 || scores[0].Count != 0 {
		t.Fatalf("unexpected empty score: %+v", scores[0])
	}
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Evaluate([]string{"f1"}, nil, nil); !errors.Is(err, ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
	if _, err := r.Evaluate([]string{MetricExactMatch}, []align.EventSequence{seq(1)}, nil); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestRegistryCustomMetric(t *testing.T) {
	r := NewRegistry()
	r.Register(" Length ", func(truth align.EventSequence, pred []int) float64 { return float64(len(pred)) })
	scores, err := r.Evaluate([]string{"length"}, []align.EventSequence{seq(1)}, [][]int{{1, 2}})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if scores[0].Mean != 2 {
		t.Fatalf("unexpected custom score: %+v", scores[0])
	}
	names := r.Names()
	if len(names) != 4 || names[0] != MetricEditSimilarity {
		t.Fatalf("Names = %v", names)
	}
}
