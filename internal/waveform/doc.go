// Package waveform loads PCM WAV recordings into sample-rate-tagged channel
// data.
//
// Every recording in a corpus must share one sample rate (44100 Hz by
// default). A mismatch is fatal and reported as *SampleRateMismatchError;
// resampling would silently change the time axis the aligner relies on.
// Samples keep their raw integer amplitudes (converted to float64) and all
// channels are retained; Mono exposes channel 0 for windowing.
package waveform
