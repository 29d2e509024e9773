package window

import (
	"errors"
	"fmt"

	"notepipe/internal/align"
)

// ErrInvalidGeometry is returned for unusable block/downsample combinations.
var ErrInvalidGeometry = errors.New("invalid window geometry")

// Params controls window geometry.
type Params struct {
	BlockSize  int
	Downsample int
}

// Width returns the number of values per window.
func (p Params) Width() int {
	if p.Downsample <= 0 {
		return 0
	}
	return p.BlockSize / p.Downsample
}

// Validate reports whether the geometry can produce windows.
func (p Params) Validate() error {
	if p.BlockSize <= 0 || p.Downsample <= 0 {
		return fmt.Errorf("%w: block size %d, downsample %d", ErrInvalidGeometry, p.BlockSize, p.Downsample)
	}
	if p.BlockSize%p.Downsample != 0 {
		return fmt.Errorf("%w: block size %d is not a multiple of downsample %d", ErrInvalidGeometry, p.BlockSize, p.Downsample)
	}
	return nil
}

// Bounds is a half-open sample range [Start, End).
type Bounds struct {
	Start int
	End   int
}

// Len returns End-Start.
func (b Bounds) Len() int { return b.End - b.Start }

// Split divides samples into events equal segments of samples/events each.
// Trailing samples that do not fill a segment belong to no event.
func Split(samples, events int) []Bounds {
	if samples <= 0 || events <= 0 {
		return nil
	}
	length := samples / events
	out := make([]Bounds, events)
	for i := range out {
		out[i] = Bounds{Start: i * length, End: (i + 1) * length}
	}
	return out
}

// Window slices segment into blocks of blockSize, keeps every downsample-th
// value of each block starting at offset 0 and zero-pads the result to
// blockSize/downsample.
func Window(segment []float64, blockSize, downsample int) ([][]float64, error) {
	p := Params{BlockSize: blockSize, Downsample: downsample}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	width := p.Width()
	windows := make([][]float64, 0, (len(segment)+blockSize-1)/blockSize)
	for _, block := range blocks(len(segment), blockSize) {
		w := make([]float64, width)
		j := 0
		for i := block.Start; i < block.End; i += downsample {
			w[j] = segment[i]
			j++
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func blocks(n, blockSize int) []Bounds {
	out := make([]Bounds, 0, (n+blockSize-1)/blockSize)
	for s := 0; s < n; s += blockSize {
		out = append(out, Bounds{Start: s, End: min(s+blockSize, n)})
	}
	return out
}

// Segment is the windowed slice of a recording attributed to one event.
type Segment struct {
	Label   int
	Start   int
	End     int
	Windows [][]float64
	// Times holds the mid-point of each window's block.
	Times []float64
}

// Segments splits channel 0 of series into one segment per event and
// windows each of them.
func Segments(series align.Series, events align.EventSequence, p Params) ([]Segment, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, align.ErrNoEvents
	}
	mono := series.Mono()
	if len(mono) == 0 {
		return nil, align.ErrEmptyRecording
	}
	if len(series.Time) != len(mono) {
		return nil, fmt.Errorf("series has %d time rows for %d samples", len(series.Time), len(mono))
	}

	bounds := Split(len(mono), len(events))
	segments := make([]Segment, len(bounds))
	for i, b := range bounds {
		windows, err := Window(mono[b.Start:b.End], p.BlockSize, p.Downsample)
		if err != nil {
			return nil, err
		}
		times := make([]float64, 0, len(windows))
		for _, blk := range blocks(b.Len(), p.BlockSize) {
			first := series.Time[b.Start+blk.Start]
			last := series.Time[b.Start+blk.End-1]
			times = append(times, (first+last)/2)
		}
		segments[i] = Segment{
			Label:   events[i].Label,
			Start:   b.Start,
			End:     b.End,
			Windows: windows,
			Times:   times,
		}
	}
	return segments, nil
}

// Frames flattens segments into the window list and per-window timestamps of
// a whole recording, in time order.
func Frames(segments []Segment) ([][]float64, []float64) {
	var windows [][]float64
	var times []float64
	for _, seg := range segments {
		windows = append(windows, seg.Windows...)
		times = append(times, seg.Times...)
	}
	return windows, times
}
