// Package model defines the frame predictor boundary and composes a
// predictor with the windower and the event combiner.
//
// Any FramePredictor can be plugged into a Pipeline; predictors that also
// implement Trainer are fitted on the windowed training set. Centroid is a
// small reference predictor over FFT magnitudes that makes the pipeline
// runnable end to end.
package model
