package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDataset(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateCombiner(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDataset() error {
	if err := ensurePositiveMap(map[string]int{
		"dataset.sample_rate": c.Dataset.SampleRate,
		"dataset.subsample":   c.Dataset.Subsample,
		"dataset.block_size":  c.Dataset.BlockSize,
		"dataset.downsample":  c.Dataset.Downsample,
		"dataset.workers":     c.Dataset.Workers,
	}); err != nil {
		return err
	}
	if c.Dataset.BlockSize%c.Dataset.Downsample != 0 {
		return fmt.Errorf("dataset.block_size (%d) must be a multiple of dataset.downsample (%d)", c.Dataset.BlockSize, c.Dataset.Downsample)
	}
	if c.Dataset.TestRatio <= 0 || c.Dataset.TestRatio >= 1 {
		return errors.New("dataset.test_ratio must be between 0 and 1 (exclusive)")
	}
	if c.Dataset.Extension != defaultExtension {
		return fmt.Errorf("dataset.extension: unsupported value %q (only %q recordings can be decoded)", c.Dataset.Extension, defaultExtension)
	}
	switch c.Dataset.DecodeErrors {
	case DecodeErrorsSkip, DecodeErrorsAbort:
	default:
		return fmt.Errorf("dataset.decode_errors: unsupported value %q (want %q or %q)", c.Dataset.DecodeErrors, DecodeErrorsSkip, DecodeErrorsAbort)
	}
	return nil
}

func (c *Config) validateCache() error {
	if strings.ContainsAny(c.Cache.Filename, `/\`) {
		return errors.New("cache.filename must be a plain file name")
	}
	switch c.Cache.Validation {
	case ValidationContent, ValidationPath:
	default:
		return fmt.Errorf("cache.validation: unsupported value %q (want %q or %q)", c.Cache.Validation, ValidationContent, ValidationPath)
	}
	return nil
}

func (c *Config) validateCombiner() error {
	if c.Combiner.LeftEpsilon < 0 {
		return errors.New("combiner.left_epsilon must be >= 0")
	}
	if c.Combiner.RightEpsilon < 0 {
		return errors.New("combiner.right_epsilon must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
