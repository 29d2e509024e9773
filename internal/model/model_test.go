package model

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"notepipe/internal/align"
	"notepipe/internal/combiner"
	"notepipe/internal/window"
)

const testRate = 64.0

// toneSeries concatenates one sinusoid per label; label l uses FFT bin bins[l].
func toneSeries(labels []int, bins map[int]int, perEvent int) (align.Series, align.EventSequence) {
	n := perEvent * len(labels)
	times := make([]float64, n)
	samples := make([]float64, n)
	events := make(align.EventSequence, len(labels))
	for e, label := range labels {
		for i := 0; i < perEvent; i++ {
			idx := e*perEvent + i
			times[idx] = float64(idx) / testRate
			samples[idx] = 1000 * math.Sin(2*math.Pi*float64(bins[label])*float64(i)/32)
		}
		events[e] = align.Event{Label: label, Time: (float64(e) + 0.5) * float64(perEvent) / testRate}
	}
	return align.Series{Time: times, Channels: [][]float64{samples}}, events
}

func TestCentroidSeparatesTones(t *testing.T) {
	bins := map[int]int{10: 2, 20: 6, 30: 12}
	params := window.Params{BlockSize: 32, Downsample: 1}
	p := &Pipeline{
		Predictor: NewCentroid(),
		Combiner:  combiner.New(combiner.Config{LeftEpsilon: 0.5, RightEpsilon: 0.5}),
		Params:    params,
	}

	var series []align.Series
	var events []align.EventSequence
	for _, labels := range [][]int{{10, 20}, {30, 10}, {20, 30}} {
		s, e := toneSeries(labels, bins, 128)
		series = append(series, s)
		events = append(events, e)
	}
	if err := p.Train(context.Background(), series, events); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if got := p.Predictor.(*Centroid).Labels(); !slices.Equal(got, []int{10, 20, 30}) {
		t.Fatalf("trained labels = %v", got)
	}

	s, e := toneSeries([]int{30, 20, 10}, bins, 128)
	pred, err := p.Predict(context.Background(), s, e)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if !slices.Equal(pred, []int{30, 20, 10}) {
		t.Fatalf("Predict = %v, want [30 20 10]", pred)
	}
}

func TestCentroidPredictBeforeFit(t *testing.T) {
	if _, err := NewCentroid().Predict(context.Background(), [][]float64{{1}}); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestCentroidRejectsWrongWidth(t *testing.T) {
	c := NewCentroid()
	ds := window.Dataset{
		X:          [][][]float64{{{1, 0, 0, 0}}},
		Y:          []int{0},
		Vocabulary: window.NewVocabulary([]int{5}),
	}
	if err := c.Fit(context.Background(), ds); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, err := c.Predict(context.Background(), [][]float64{{1, 2}}); err == nil {
		t.Fatal("expected width error")
	}
	out, err := c.Predict(context.Background(), [][]float64{{1, 0, 0, 0}})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if out[0].Label != 5 || out[0].Confidence != 1 {
		t.Fatalf("unexpected output: %+v", out[0])
	}
}

func TestCentroidFitEmpty(t *testing.T) {
	if err := NewCentroid().Fit(context.Background(), window.Dataset{}); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

// signPredictor labels windows by the sign of their first value.
type signPredictor struct{ calls int }

func (s *signPredictor) Predict(_ context.Context, windows [][]float64) ([]FrameOutput, error) {
	s.calls++
	out := make([]FrameOutput, len(windows))
	for i, w := range windows {
		label := 1
		if w[0] < 0 {
			label = 2
		}
		out[i] = FrameOutput{Label: label, Confidence: 1}
	}
	return out, nil
}

type shortPredictor struct{}

func (shortPredictor) Predict(context.Context, [][]float64) ([]FrameOutput, error) {
	return nil, nil
}

func TestPipelineWithUntrainablePredictor(t *testing.T) {
	predictor := &signPredictor{}
	p := &Pipeline{
		Predictor: predictor,
		Combiner:  combiner.New(combiner.Config{LeftEpsilon: 0.05, RightEpsilon: 0.05}),
		Params:    window.Params{BlockSize: 2, Downsample: 1},
	}
	series := align.Series{
		Time:     []float64{0, 0.25, 0.5, 0.75},
		Channels: [][]float64{{1, 1, -1, -1}},
	}
	events := align.EventSequence{{Label: 1, Time: 0.125}, {Label: 2, Time: 0.625}}
	if err := p.Train(context.Background(), []align.Series{series}, []align.EventSequence{events}); err != nil {
		t.Fatalf("Train: %v", err)
	}
	preds, err := p.PredictSet(context.Background(), []align.Series{series}, []align.EventSequence{events})
	if err != nil {
		t.Fatalf("PredictSet: %v", err)
	}
	if !slices.Equal(preds[0], []int{1, 2}) {
		t.Fatalf("PredictSet = %v", preds)
	}
	if predictor.calls != 1 {
		t.Fatalf("expected one predictor call per recording, got %d", predictor.calls)
	}
}

func TestPipelineErrors(t *testing.T) {
	p := &Pipeline{
		Predictor: shortPredictor{},
		Combiner:  combiner.New(combiner.Config{}),
		Params:    window.Params{BlockSize: 2, Downsample: 1},
	}
	series := align.Series{Time: []float64{0, 1}, Channels: [][]float64{{1, 2}}}
	events := align.EventSequence{{Label: 1, Time: 0.5}}
	if _, err := p.Predict(context.Background(), series, events); err == nil {
		t.Fatal("expected output count error")
	}
	if _, err := p.PredictSet(context.Background(), []align.Series{series}, nil); err == nil {
		t.Fatal("expected length error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.PredictSet(ctx, []align.Series{series}, []align.EventSequence{events}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
