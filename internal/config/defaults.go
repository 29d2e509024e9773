package config

const (
	defaultLogDir        = "~/.local/share/notepipe/logs"
	defaultRunsDB        = "~/.local/share/notepipe/runs.db"
	defaultSampleRate    = 44100
	defaultSubsample     = 8
	defaultBlockSize     = 512
	defaultDownsample    = 4
	defaultSeed          = 2
	defaultTestRatio     = 0.1
	defaultWorkers       = 1
	defaultDecodeErrors  = DecodeErrorsSkip
	defaultExtension     = ".wav"
	defaultCacheFilename = "cached"
	defaultValidation    = ValidationContent
	defaultEpsilon       = 0.05
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

// Decode error policies.
const (
	DecodeErrorsSkip  = "skip"
	DecodeErrorsAbort = "abort"
)

// Cache validation policies.
const (
	ValidationContent = "content"
	ValidationPath    = "path"
)

// DefaultMetrics lists the metrics reported when none are configured.
func DefaultMetrics() []string {
	return []string{"exact_match", "label_accuracy", "edit_similarity"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
			RunsDB: defaultRunsDB,
		},
		Dataset: Dataset{
			SampleRate:   defaultSampleRate,
			Subsample:    defaultSubsample,
			BlockSize:    defaultBlockSize,
			Downsample:   defaultDownsample,
			Seed:         defaultSeed,
			TestRatio:    defaultTestRatio,
			Workers:      defaultWorkers,
			DecodeErrors: defaultDecodeErrors,
			Extension:    defaultExtension,
		},
		Cache: Cache{
			Enabled:    true,
			Filename:   defaultCacheFilename,
			Validation: defaultValidation,
		},
		Combiner: Combiner{
			LeftEpsilon:  defaultEpsilon,
			RightEpsilon: defaultEpsilon,
		},
		Evaluation: Evaluation{
			Metrics:    DefaultMetrics(),
			RecordRuns: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
