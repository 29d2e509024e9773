package splitcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"notepipe/internal/config"
	"notepipe/internal/corpus"
	"notepipe/internal/fileutil"
	"notepipe/internal/logging"
)

const lockRetryDelay = 50 * time.Millisecond

// Builder produces the corpus for a folder.
type Builder interface {
	Build(ctx context.Context, folder string) (*corpus.Corpus, error)
}

// Options configures a Cache.
type Options struct {
	Filename     string
	Validation   string
	SampleRate   int
	Subsample    int
	Extension    string
	DecodeErrors string
	Seed         int64
	TestRatio    float64
	Logger       *slog.Logger
}

// OptionsFromConfig maps config sections onto cache options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		Filename:     cfg.Cache.Filename,
		Validation:   cfg.Cache.Validation,
		SampleRate:   cfg.Dataset.SampleRate,
		Subsample:    cfg.Dataset.Subsample,
		Extension:    cfg.Dataset.Extension,
		DecodeErrors: cfg.Dataset.DecodeErrors,
		Seed:         cfg.Dataset.Seed,
		TestRatio:    cfg.Dataset.TestRatio,
		Logger:       logger,
	}
}

// Cache loads and stores splits for dataset folders.
type Cache struct {
	opts    Options
	builder Builder
	logger  *slog.Logger
}

// New constructs a cache backed by builder.
func New(opts Options, builder Builder) *Cache {
	if opts.Filename == "" {
		opts.Filename = "cached"
	}
	if opts.Validation == "" {
		opts.Validation = config.ValidationContent
	}
	return &Cache{
		opts:    opts,
		builder: builder,
		logger:  logging.NewComponentLogger(opts.Logger, "splitcache"),
	}
}

// Path returns the cache file location for folder.
func (c *Cache) Path(folder string) string {
	return filepath.Join(folder, c.opts.Filename)
}

// LoadOrBuild returns the cached split for folder when useCache is set and
// the stored key matches. Otherwise it builds the corpus, partitions it and
// replaces the cache file before returning. cached reports whether the split
// came from the cache file.
func (c *Cache) LoadOrBuild(ctx context.Context, folder string, useCache bool) (split *corpus.Split, cached bool, err error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, false, fmt.Errorf("resolve dataset folder: %w", err)
	}
	path := c.Path(abs)
	logger := c.logger.With(logging.String(logging.FieldFolder, abs))

	unlock, err := c.lock(ctx, path)
	if err != nil {
		return nil, false, err
	}
	defer unlock()

	key, err := c.key(abs)
	if err != nil {
		return nil, false, err
	}

	if useCache {
		entry, err := readEntry(path)
		switch {
		case err == nil && c.matches(entry.Key, key):
			train, test := entry.Split.Sizes()
			logger.Info("split loaded from cache",
				logging.Int("train", train),
				logging.Int("test", test),
				logging.String("cached_at", entry.CreatedAt.Format(time.RFC3339)))
			return entry.Split, true, nil
		case err == nil:
			logger.Info("split cache is stale, rebuilding",
				logging.String("reason", staleReason(entry.Key, key)))
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("no split cache, building")
		default:
			logging.WarnWithContext(logger, "split cache unreadable, rebuilding", "splitcache_corrupt",
				logging.Error(err),
				logging.String(logging.FieldImpact, "the split is rebuilt from the recordings"),
				logging.String(logging.FieldErrorHint, "run 'notepipe cache clear' if this repeats"))
		}
	}

	started := time.Now()
	built, err := c.builder.Build(ctx, abs)
	if err != nil {
		return nil, false, err
	}
	split, err = built.Partition(c.opts.Seed, c.opts.TestRatio)
	if err != nil {
		return nil, false, err
	}
	if err := writeEntry(path, Entry{Key: key, Split: split, CreatedAt: time.Now().UTC()}); err != nil {
		return nil, false, fmt.Errorf("persist split cache: %w", err)
	}
	train, test := split.Sizes()
	logger.Info("split cached",
		logging.Int("train", train),
		logging.Int("test", test),
		logging.Duration(logging.FieldDuration, time.Since(started)))
	return split, false, nil
}

func (c *Cache) lock(ctx context.Context, path string) (func(), error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("lock split cache: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("lock split cache: %s is held by another process", lock.Path())
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			c.logger.Debug("release split cache lock failed", logging.Error(err))
		}
	}, nil
}

// key describes the current inputs for folder. Under path validation only
// the folder is recorded.
func (c *Cache) key(folder string) (Key, error) {
	key := Key{
		Folder:       folder,
		Validation:   c.opts.Validation,
		SampleRate:   c.opts.SampleRate,
		Subsample:    c.opts.Subsample,
		Extension:    c.opts.Extension,
		DecodeErrors: c.opts.DecodeErrors,
		Seed:         c.opts.Seed,
		TestRatio:    c.opts.TestRatio,
	}
	if c.opts.Validation == config.ValidationPath {
		return key, nil
	}
	paths, err := corpus.ListRecordings(folder, c.opts.Extension)
	if err != nil {
		return Key{}, err
	}
	if len(paths) == 0 {
		return Key{}, &corpus.MissingDataError{Folder: folder, Extension: c.opts.Extension}
	}
	fingerprint, err := fileutil.Fingerprint(paths)
	if err != nil {
		return Key{}, fmt.Errorf("fingerprint recordings: %w", err)
	}
	key.Fingerprint = fingerprint
	return key, nil
}

func (c *Cache) matches(stored, current Key) bool {
	if c.opts.Validation == config.ValidationPath {
		return true
	}
	return stored == current
}

func staleReason(stored, current Key) string {
	switch {
	case stored.Folder != current.Folder:
		return "folder moved"
	case stored.Fingerprint != current.Fingerprint:
		return "recordings changed"
	case stored.Validation != current.Validation:
		return "validation policy changed"
	default:
		return "pipeline parameters changed"
	}
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	return decodeEntry(data)
}

func writeEntry(path string, entry Entry) error {
	data, err := encodeEntry(entry)
	if err != nil {
		return err
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}

// Status describes the cache file of a folder.
type Status struct {
	Path      string
	Exists    bool
	Size      int64
	Readable  bool
	Current   bool
	Reason    string
	CreatedAt time.Time
	Train     int
	Test      int
	Labels    int
}

// Status inspects the cache for folder without building anything.
func (c *Cache) Status(folder string) (Status, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return Status{}, fmt.Errorf("resolve dataset folder: %w", err)
	}
	st := Status{Path: c.Path(abs)}
	info, err := os.Stat(st.Path)
	if errors.Is(err, fs.ErrNotExist) {
		st.Reason = "not cached"
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("stat split cache: %w", err)
	}
	st.Exists = true
	st.Size = info.Size()

	entry, err := readEntry(st.Path)
	if err != nil {
		st.Reason = err.Error()
		return st, nil
	}
	st.Readable = true
	st.CreatedAt = entry.CreatedAt
	st.Train, st.Test = entry.Split.Sizes()
	st.Labels = entry.Split.Vocabulary.Size()

	key, err := c.key(abs)
	if err != nil {
		st.Reason = err.Error()
		return st, nil
	}
	st.Current = c.matches(entry.Key, key)
	if !st.Current {
		st.Reason = staleReason(entry.Key, key)
	}
	return st, nil
}

// Clear removes the cache file for folder. It reports whether a file was removed.
func (c *Cache) Clear(ctx context.Context, folder string) (bool, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return false, fmt.Errorf("resolve dataset folder: %w", err)
	}
	path := c.Path(abs)
	unlock, err := c.lock(ctx, path)
	if err != nil {
		return false, err
	}
	defer unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("remove split cache: %w", err)
	}
	c.logger.Info("split cache cleared", logging.String(logging.FieldFolder, abs))
	return true, nil
}
