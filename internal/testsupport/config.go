package testsupport

import (
	"path/filepath"
	"testing"

	"notepipe/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Window geometry is shrunk so fixture recordings stay small.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.RunsDB = filepath.Join(base, "runs.db")
	cfgVal.Dataset.SampleRate = SampleRate
	cfgVal.Dataset.Subsample = 2
	cfgVal.Dataset.BlockSize = 16
	cfgVal.Dataset.Downsample = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithWorkers sets the decode worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.Workers = n
	}
}

// WithDecodeErrors sets the decode error policy.
func WithDecodeErrors(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.DecodeErrors = policy
	}
}

// WithCacheValidation sets the cache validation policy.
func WithCacheValidation(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Cache.Validation = policy
	}
}

// WithWindow overrides subsample, block size and downsample together.
func WithWindow(subsample, block, downsample int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Dataset.Subsample = subsample
		b.cfg.Dataset.BlockSize = block
		b.cfg.Dataset.Downsample = downsample
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.RunsDB)
}
