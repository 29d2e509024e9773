package corpus

import (
	"io"
	"log/slog"
	"path/filepath"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"notepipe/internal/logging"
)

// Reporter observes decoding progress. Calls are serialized by the pipeline.
type Reporter interface {
	Start(total int)
	Advance(path string)
	Finish()
}

type nopReporter struct{}

func (nopReporter) Start(int)      {}
func (nopReporter) Advance(string) {}
func (nopReporter) Finish()        {}

// BarReporter draws a terminal progress bar.
type BarReporter struct {
	out      io.Writer
	progress *mpb.Progress
	bar      *mpb.Bar
}

// NewBarReporter renders to out, normally a terminal on stderr.
func NewBarReporter(out io.Writer) *BarReporter {
	return &BarReporter{out: out}
}

func (r *BarReporter) Start(total int) {
	if total <= 0 {
		return
	}
	r.progress = mpb.New(mpb.WithOutput(r.out), mpb.WithWidth(64))
	r.bar = r.progress.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name("Decoding: "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
}

func (r *BarReporter) Advance(string) {
	if r.bar != nil {
		r.bar.Increment()
	}
}

func (r *BarReporter) Finish() {
	if r.progress == nil {
		return
	}
	if !r.bar.Completed() {
		r.bar.Abort(false)
	}
	r.progress.Wait()
	r.progress, r.bar = nil, nil
}

// LogReporter emits sampled progress lines through a logger, for
// non-interactive output.
type LogReporter struct {
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	total   int
	done    int
}

// NewLogReporter logs at most once per 10% of progress.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{
		logger:  logging.NewComponentLogger(logger, "corpus"),
		sampler: logging.NewProgressSampler(10),
	}
}

func (r *LogReporter) Start(total int) {
	r.total, r.done = total, 0
	r.sampler = logging.NewProgressSampler(10)
}

func (r *LogReporter) Advance(path string) {
	r.done++
	percent := logging.Percent(r.done, r.total)
	if !r.sampler.ShouldLog(percent, "decode") {
		return
	}
	r.logger.Info("decoding recordings",
		logging.Int("done", r.done),
		logging.Int("total", r.total),
		logging.Float64("percent", percent),
		logging.String(logging.FieldFile, filepath.Base(path)),
	)
}

func (r *LogReporter) Finish() {}
