// Package align attaches time to decoded recordings.
//
// Align turns a waveform plus its filename labels into a Pair: a time-indexed
// sample table and an event sequence whose times are spread uniformly across
// the recording. Subsample thins the sample table by a fixed stride.
package align
