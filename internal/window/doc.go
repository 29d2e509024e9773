// Package window cuts aligned recordings into fixed-size model inputs.
//
// A recording with n events is split into n equal segments, one per event.
// Each segment is sliced into blocks, every block is downsampled by a fixed
// stride and zero-padded to a constant width. BuildDataset pairs the window
// sequences with class indexes from a sorted label vocabulary.
package window
