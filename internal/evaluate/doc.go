// Package evaluate scores predicted label sequences against ground truth.
//
// ExactMatch and EvaluateSet implement whole-sequence accuracy. A Registry
// adds named per-sequence metrics and reports their mean and standard
// deviation over a set.
package evaluate
