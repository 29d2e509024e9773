// Package combiner reduces frame-level predictions to one label per expected
// event by voting over a tolerance window around each event time.
//
// Frames within [t-left_epsilon, t+right_epsilon] of an event time t vote for
// their label. The majority wins; ties fall to the larger summed confidence
// and then the smaller label. An event with no frames in its window gets
// NoPrediction.
package combiner
