package align

import (
	"errors"
	"fmt"

	"notepipe/internal/waveform"
)

// Centering places each event at the centre of its uniform slot.
const Centering = 0.5

var (
	// ErrEmptyRecording is returned when a recording has no samples.
	ErrEmptyRecording = errors.New("recording has no samples")
	// ErrNoEvents is returned when a recording carries no labels.
	ErrNoEvents = errors.New("no events to align")
)

// Event is one labelled note with its estimated onset time in seconds.
type Event struct {
	Label int
	Time  float64
}

// EventSequence is the ordered list of events in a recording.
type EventSequence []Event

// Labels returns the label of every event in order.
func (s EventSequence) Labels() []int {
	out := make([]int, len(s))
	for i, ev := range s {
		out[i] = ev.Label
	}
	return out
}

// Times returns the time of every event in order.
func (s EventSequence) Times() []float64 {
	out := make([]float64, len(s))
	for i, ev := range s {
		out[i] = ev.Time
	}
	return out
}

// Series is a time-indexed sample table. Channels are channel-major and each
// has len(Time) rows.
type Series struct {
	Time     []float64
	Channels [][]float64
}

// Len returns the number of rows.
func (s Series) Len() int { return len(s.Time) }

// Mono returns channel 0.
func (s Series) Mono() []float64 {
	if len(s.Channels) == 0 {
		return nil
	}
	return s.Channels[0]
}

// Pair couples a recording's samples with its events.
type Pair struct {
	X Series
	Y EventSequence
}

// Align builds the time column for rec and spaces codes uniformly across its
// duration. Sample i is stamped i/sampleRate; event i is stamped
// (i+Centering)*D/len(codes) where D is the recording duration.
func Align(rec *waveform.Recording, codes []int) (Pair, error) {
	n := rec.Len()
	if n == 0 {
		return Pair{}, ErrEmptyRecording
	}
	if len(codes) == 0 {
		return Pair{}, ErrNoEvents
	}
	if rec.SampleRate <= 0 {
		return Pair{}, fmt.Errorf("invalid sample rate %d", rec.SampleRate)
	}

	rate := float64(rec.SampleRate)
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / rate
	}

	channels := make([][]float64, rec.NumChannels())
	for ch, samples := range rec.Channels {
		channels[ch] = append([]float64(nil), samples...)
	}

	duration := float64(n) / rate
	slot := duration / float64(len(codes))
	events := make(EventSequence, len(codes))
	for i, code := range codes {
		events[i] = Event{Label: code, Time: (float64(i) + Centering) * slot}
	}

	return Pair{X: Series{Time: times, Channels: channels}, Y: events}, nil
}

// Subsample keeps rows 0, stride, 2*stride, ... of p.X. Events are untouched.
func Subsample(p Pair, stride int) (Pair, error) {
	if stride < 1 {
		return Pair{}, fmt.Errorf("subsample stride must be >= 1, got %d", stride)
	}
	rows := (p.X.Len() + stride - 1) / stride
	times := make([]float64, 0, rows)
	for i := 0; i < p.X.Len(); i += stride {
		times = append(times, p.X.Time[i])
	}
	channels := make([][]float64, len(p.X.Channels))
	for ch, samples := range p.X.Channels {
		kept := make([]float64, 0, rows)
		for i := 0; i < len(samples); i += stride {
			kept = append(kept, samples[i])
		}
		channels[ch] = kept
	}
	return Pair{
		X: Series{Time: times, Channels: channels},
		Y: append(EventSequence(nil), p.Y...),
	}, nil
}
