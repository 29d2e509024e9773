// Package runstore records evaluation runs in SQLite.
//
// Each run stores the dataset folder, split sizes, pipeline parameters and
// one score row per split and metric. The schema is versioned; a database
// written by an incompatible version is rejected rather than migrated.
package runstore
