// Package config loads, normalizes, and validates notepipe configuration.
//
// It supplies repository defaults for the corpus pipeline (sample rate,
// subsampling stride, window geometry, split seed), the split cache, the
// event combiner, and evaluation, reads TOML files, expands user paths, and
// honours environment fallbacks such as NOTEPIPE_LOG_LEVEL.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
