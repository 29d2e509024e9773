package corpus

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"notepipe/internal/align"
	"notepipe/internal/config"
	"notepipe/internal/labels"
	"notepipe/internal/logging"
	"notepipe/internal/waveform"
)

// Options configures a Pipeline.
type Options struct {
	SampleRate   int
	Subsample    int
	Workers      int
	DecodeErrors string
	Extension    string
	Logger       *slog.Logger
	// Progress receives one Advance per recording leaving the Load stage.
	Progress Reporter
}

// OptionsFromConfig maps the dataset section onto pipeline options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		SampleRate:   cfg.Dataset.SampleRate,
		Subsample:    cfg.Dataset.Subsample,
		Workers:      cfg.Dataset.Workers,
		DecodeErrors: cfg.Dataset.DecodeErrors,
		Extension:    cfg.Dataset.Extension,
		Logger:       logger,
	}
}

// Record is one recording as it moves through the stages. Fields are filled
// in stage order: Path, then Codes and Recording, then Pair.
type Record struct {
	Path      string
	Codes     []int
	Recording *waveform.Recording
	Pair      align.Pair
}

// Pipeline builds a corpus from a folder of recordings.
type Pipeline struct {
	opts    Options
	loader  waveform.Loader
	logger  *slog.Logger
	skipped int
}

// NewPipeline constructs a pipeline with defaults filled in.
func NewPipeline(opts Options) *Pipeline {
	if opts.Subsample <= 0 {
		opts.Subsample = 1
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Extension == "" {
		opts.Extension = labels.Extension
	}
	if opts.DecodeErrors == "" {
		opts.DecodeErrors = config.DecodeErrorsSkip
	}
	if opts.Progress == nil {
		opts.Progress = nopReporter{}
	}
	return &Pipeline{
		opts:   opts,
		loader: waveform.NewLoader(opts.SampleRate),
		logger: logging.NewComponentLogger(opts.Logger, "corpus"),
	}
}

// Skipped returns how many recordings the last run dropped under the skip policy.
func (p *Pipeline) Skipped() int { return p.skipped }

// ListRecordings returns the recordings in folder with the configured
// extension, sorted by name.
func ListRecordings(folder, extension string) ([]string, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("read dataset folder: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), extension) {
			continue
		}
		paths = append(paths, filepath.Join(folder, entry.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// Sources yields a Record per recording in folder. An empty folder yields
// a *MissingDataError.
func (p *Pipeline) Sources(folder string) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		paths, err := ListRecordings(folder, p.opts.Extension)
		if err != nil {
			yield(Record{}, err)
			return
		}
		if len(paths) == 0 {
			yield(Record{}, &MissingDataError{Folder: folder, Extension: p.opts.Extension})
			return
		}
		for _, path := range paths {
			if !yield(Record{Path: path}, nil) {
				return
			}
		}
	}
}

// Load decodes labels and audio for each record. With more than one worker
// the input is drained first and decoded concurrently; output order always
// matches input order.
func (p *Pipeline) Load(ctx context.Context, in iter.Seq2[Record, error]) iter.Seq2[Record, error] {
	if p.opts.Workers > 1 {
		return p.loadParallel(ctx, in)
	}
	return func(yield func(Record, error) bool) {
		var pending []Record
		for rec, err := range in {
			if err != nil {
				yield(Record{}, err)
				return
			}
			pending = append(pending, rec)
		}
		p.opts.Progress.Start(len(pending))
		defer p.opts.Progress.Finish()
		for _, rec := range pending {
			if err := ctx.Err(); err != nil {
				yield(Record{}, err)
				return
			}
			loaded, err := p.loadOne(rec)
			p.opts.Progress.Advance(rec.Path)
			if err != nil {
				if err := p.reject(rec, err); err != nil {
					yield(Record{}, err)
					return
				}
				continue
			}
			if !yield(loaded, nil) {
				return
			}
		}
	}
}

func (p *Pipeline) loadOne(rec Record) (Record, error) {
	codes, err := labels.Decode(rec.Path)
	if err != nil {
		return rec, err
	}
	recording, err := p.loader.Load(rec.Path)
	if err != nil {
		return rec, err
	}
	rec.Codes = codes
	rec.Recording = recording
	return rec, nil
}

// reject applies the decode error policy to a failed record. It returns nil
// when the record is skipped. Rate mismatches and I/O errors are always fatal.
func (p *Pipeline) reject(rec Record, err error) error {
	if !skippable(err) || p.opts.DecodeErrors == config.DecodeErrorsAbort {
		return fmt.Errorf("load %s: %w", filepath.Base(rec.Path), err)
	}
	p.skipped++
	logging.WarnWithContext(p.logger, "skipping recording", "recording_skipped",
		logging.String(logging.FieldFile, filepath.Base(rec.Path)),
		logging.Error(err),
		logging.String(logging.FieldImpact, "recording excluded from the corpus"),
		logging.String(logging.FieldErrorHint, "rename the file to <code><code>...[-suffix].wav or set dataset.decode_errors"),
	)
	return nil
}

func skippable(err error) bool {
	var decodeErr *labels.DecodeError
	switch {
	case errors.Is(err, waveform.ErrSampleRateMismatch):
		return false
	case errors.As(err, &decodeErr):
		return true
	case errors.Is(err, waveform.ErrInvalidAudio), errors.Is(err, align.ErrEmptyRecording):
		return true
	default:
		return false
	}
}

// Align attaches time to every record.
func (p *Pipeline) Align(in iter.Seq2[Record, error]) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for rec, err := range in {
			if err != nil {
				yield(Record{}, err)
				return
			}
			pair, err := align.Align(rec.Recording, rec.Codes)
			if err != nil {
				if err := p.reject(rec, err); err != nil {
					yield(Record{}, err)
					return
				}
				continue
			}
			rec.Pair = pair
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Subsample thins every record's sample table by the configured stride.
func (p *Pipeline) Subsample(in iter.Seq2[Record, error]) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for rec, err := range in {
			if err != nil {
				yield(Record{}, err)
				return
			}
			pair, err := align.Subsample(rec.Pair, p.opts.Subsample)
			if err != nil {
				yield(Record{}, err)
				return
			}
			rec.Pair = pair
			// The raw recording is no longer needed downstream.
			rec.Recording = nil
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// Run composes every stage for folder.
func (p *Pipeline) Run(ctx context.Context, folder string) iter.Seq2[Record, error] {
	p.skipped = 0
	return p.Subsample(p.Align(p.Load(ctx, p.Sources(folder))))
}

// Corpus is the materialized output of a pipeline run.
type Corpus struct {
	Folder  string
	Sources []string
	X       []align.Series
	Y       []align.EventSequence
}

// Len returns the number of recordings.
func (c *Corpus) Len() int { return len(c.Sources) }

// Collect drains seq into a Corpus.
func Collect(folder string, seq iter.Seq2[Record, error]) (*Corpus, error) {
	c := &Corpus{Folder: folder}
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		c.Sources = append(c.Sources, filepath.Base(rec.Path))
		c.X = append(c.X, rec.Pair.X)
		c.Y = append(c.Y, rec.Pair.Y)
	}
	return c, nil
}

// Build runs the pipeline for folder and collects the corpus. A folder whose
// recordings were all skipped reports a *MissingDataError.
func (p *Pipeline) Build(ctx context.Context, folder string) (*Corpus, error) {
	c, err := Collect(folder, p.Run(ctx, folder))
	if err != nil {
		return nil, err
	}
	if c.Len() == 0 {
		return nil, &MissingDataError{Folder: folder, Extension: p.opts.Extension, Skipped: p.skipped}
	}
	p.logger.Info("corpus built",
		logging.String(logging.FieldFolder, folder),
		logging.Int(logging.FieldRecordings, c.Len()),
		logging.Int("skipped", p.skipped),
	)
	return c, nil
}
