package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDataset()
	c.normalizeCache()
	c.normalizeEvaluation()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.RunsDB, err = expandPath(strings.TrimSpace(c.Paths.RunsDB)); err != nil {
		return fmt.Errorf("paths.runs_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeDataset() {
	c.Dataset.DecodeErrors = strings.ToLower(strings.TrimSpace(c.Dataset.DecodeErrors))
	if c.Dataset.DecodeErrors == "" {
		c.Dataset.DecodeErrors = defaultDecodeErrors
	}
	c.Dataset.Extension = strings.ToLower(strings.TrimSpace(c.Dataset.Extension))
	if c.Dataset.Extension == "" {
		c.Dataset.Extension = defaultExtension
	}
	if !strings.HasPrefix(c.Dataset.Extension, ".") {
		c.Dataset.Extension = "." + c.Dataset.Extension
	}
	if c.Dataset.Workers <= 0 {
		c.Dataset.Workers = defaultWorkers
	}
}

func (c *Config) normalizeCache() {
	c.Cache.Filename = strings.TrimSpace(c.Cache.Filename)
	if c.Cache.Filename == "" {
		c.Cache.Filename = defaultCacheFilename
	}
	c.Cache.Validation = strings.ToLower(strings.TrimSpace(c.Cache.Validation))
	if c.Cache.Validation == "" {
		c.Cache.Validation = defaultValidation
	}
}

func (c *Config) normalizeEvaluation() {
	metrics := make([]string, 0, len(c.Evaluation.Metrics))
	seen := make(map[string]struct{}, len(c.Evaluation.Metrics))
	for _, name := range c.Evaluation.Metrics {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		metrics = append(metrics, normalized)
	}
	if len(metrics) == 0 {
		metrics = DefaultMetrics()
	}
	c.Evaluation.Metrics = metrics
}

func (c *Config) normalizeLogging() {
	if value, ok := os.LookupEnv("NOTEPIPE_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
