package evaluate

import (
	"errors"
	"fmt"

	"notepipe/internal/align"
)

// ErrLengthMismatch marks truth and prediction sets of different sizes.
var ErrLengthMismatch = errors.New("truth and prediction counts differ")

// LengthMismatchError reports the sizes of mismatched sets.
type LengthMismatchError struct {
	Truths      int
	Predictions int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("%d truth sequences but %d predictions", e.Truths, e.Predictions)
}

// Unwrap lets callers match with errors.Is(err, ErrLengthMismatch).
func (e *LengthMismatchError) Unwrap() error { return ErrLengthMismatch }

// ExactMatch reports whether pred has the same length as truth and every
// label matches position by position.
func ExactMatch(truth align.EventSequence, pred []int) bool {
	if len(truth) != len(pred) {
		return false
	}
	for i, ev := range truth {
		if ev.Label != pred[i] {
			return false
		}
	}
	return true
}

// EvaluateSet returns the fraction of exactly matched sequences. Empty input
// scores 0.
func EvaluateSet(truths []align.EventSequence, preds [][]int) (float64, error) {
	if len(truths) != len(preds) {
		return 0, &LengthMismatchError{Truths: len(truths), Predictions: len(preds)}
	}
	if len(truths) == 0 {
		return 0, nil
	}
	matched := 0
	for i := range truths {
		if ExactMatch(truths[i], preds[i]) {
			matched++
		}
	}
	return float64(matched) / float64(len(truths)), nil
}
