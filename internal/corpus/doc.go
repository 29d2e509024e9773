// Package corpus turns a folder of labelled recordings into an aligned,
// subsampled corpus and partitions it into train and test sets.
//
// The pipeline is a chain of iter.Seq2 stages: Sources lists recordings in
// sorted order, Load decodes filename labels and audio (optionally on a worker
// pool), Align attaches time, and Subsample thins the rows. Collect
// materializes the result and Partition splits it with a fixed seed.
package corpus
