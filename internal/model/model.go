package model

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"notepipe/internal/align"
	"notepipe/internal/combiner"
	"notepipe/internal/logging"
	"notepipe/internal/window"
)

// ErrNotTrained is returned when predicting before Fit.
var ErrNotTrained = errors.New("predictor has not been trained")

// FrameOutput is a predictor's label and confidence for one window.
type FrameOutput struct {
	Label      int
	Confidence float64
}

// FramePredictor labels windows.
type FramePredictor interface {
	Predict(ctx context.Context, windows [][]float64) ([]FrameOutput, error)
}

// Trainer is implemented by predictors that learn from a dataset.
type Trainer interface {
	Fit(ctx context.Context, dataset window.Dataset) error
}

// EventCombiner reduces frames to one label per expected time.
type EventCombiner interface {
	Combine(frames []combiner.Frame, expected []float64) []int
}

// Pipeline composes windowing, frame prediction and event combination.
type Pipeline struct {
	Predictor FramePredictor
	Combiner  EventCombiner
	Params    window.Params
	Logger    *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	return logging.NewComponentLogger(p.Logger, "model")
}

// Train windows the recordings and fits the predictor when it is a Trainer.
func (p *Pipeline) Train(ctx context.Context, series []align.Series, events []align.EventSequence) error {
	trainer, ok := p.Predictor.(Trainer)
	if !ok {
		p.logger().Debug("predictor is not trainable, skipping fit")
		return nil
	}
	ds, err := window.BuildDataset(series, events, p.Params)
	if err != nil {
		return fmt.Errorf("build training set: %w", err)
	}
	if err := trainer.Fit(ctx, ds); err != nil {
		return fmt.Errorf("fit predictor: %w", err)
	}
	p.logger().Info("predictor trained",
		logging.Int("segments", ds.Len()),
		logging.Int("classes", ds.Vocabulary.Size()))
	return nil
}

// Predict labels every event of one recording. The event times come from
// events; their labels are ignored.
func (p *Pipeline) Predict(ctx context.Context, series align.Series, events align.EventSequence) ([]int, error) {
	segments, err := window.Segments(series, events, p.Params)
	if err != nil {
		return nil, err
	}
	windows, times := window.Frames(segments)
	outputs, err := p.Predictor.Predict(ctx, windows)
	if err != nil {
		return nil, fmt.Errorf("predict frames: %w", err)
	}
	if len(outputs) != len(windows) {
		return nil, fmt.Errorf("predictor returned %d outputs for %d windows", len(outputs), len(windows))
	}
	frames := make([]combiner.Frame, len(outputs))
	for i, out := range outputs {
		frames[i] = combiner.Frame{Time: times[i], Label: out.Label, Confidence: out.Confidence}
	}
	return p.Combiner.Combine(frames, events.Times()), nil
}

// PredictSet runs Predict over parallel slices of recordings and events.
func (p *Pipeline) PredictSet(ctx context.Context, series []align.Series, events []align.EventSequence) ([][]int, error) {
	if len(series) != len(events) {
		return nil, fmt.Errorf("%d recordings but %d event sequences", len(series), len(events))
	}
	preds := make([][]int, len(series))
	for i := range series {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pred, err := p.Predict(ctx, series[i], events[i])
		if err != nil {
			return nil, fmt.Errorf("recording %d: %w", i, err)
		}
		preds[i] = pred
	}
	return preds, nil
}
