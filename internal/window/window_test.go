package window

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"notepipe/internal/align"
)

func ramp(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}

func series(n int, rate float64) align.Series {
	times := make([]float64, n)
	for i := range times {
		times[i] = float64(i) / rate
	}
	return align.Series{Time: times, Channels: [][]float64{ramp(n)}}
}

func TestSplitDropsRemainder(t *testing.T) {
	got := Split(10, 3)
	want := []Bounds{{0, 3}, {3, 6}, {6, 9}}
	if !slices.Equal(got, want) {
		t.Fatalf("Split(10,3) = %v, want %v", got, want)
	}
	if Split(10, 0) != nil {
		t.Fatal("expected nil for zero events")
	}
}

func TestWindowSliceSelectPad(t *testing.T) {
	windows, err := Window(ramp(10), 4, 2)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	want := [][]float64{{0, 2}, {4, 6}, {8, 0}}
	if len(windows) != len(want) {
		t.Fatalf("expected %d windows, got %d", len(want), len(windows))
	}
	for i := range want {
		if !slices.Equal(windows[i], want[i]) {
			t.Fatalf("window %d = %v, want %v", i, windows[i], want[i])
		}
	}
}

func TestWindowReconstructsDecimatedSegment(t *testing.T) {
	const block, down = 512, 4
	for _, n := range []int{1, 511, 512, 513, 44100} {
		t.Run(fmt.Sprintf("len=%d", n), func(t *testing.T) {
			segment := make([]float64, n)
			for i := range segment {
				segment[i] = float64(i + 1)
			}
			windows, err := Window(segment, block, down)
			if err != nil {
				t.Fatalf("Window: %v", err)
			}
			if want := (n + block - 1) / block; len(windows) != want {
				t.Fatalf("expected %d windows, got %d", want, len(windows))
			}

			var flat []float64
			for i, w := range windows {
				if len(w) != block/down {
					t.Fatalf("window %d has %d values, want %d", i, len(w), block/down)
				}
				flat = append(flat, w...)
			}
			var decimated []float64
			for i := 0; i < n; i += down {
				decimated = append(decimated, segment[i])
			}
			if !slices.Equal(flat[:len(decimated)], decimated) {
				t.Fatal("windows do not reconstruct the decimated segment")
			}
			for i, v := range flat[len(decimated):] {
				if v != 0 {
					t.Fatalf("padding value %d = %v, want 0", i, v)
				}
			}
		})
	}
}

func TestWindowPadsShortBlock(t *testing.T) {
	windows, err := Window([]float64{7, 8, 9}, 8, 2)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(windows) != 1 || !slices.Equal(windows[0], []float64{7, 9, 0, 0}) {
		t.Fatalf("unexpected windows: %v", windows)
	}
}

func TestWindowWidthConstant(t *testing.T) {
	windows, err := Window(ramp(1037), 512, 4)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(windows) != 3 {
		t.Fatalf("expected 3 windows, got %d", len(windows))
	}
	for i, w := range windows {
		if len(w) != 128 {
			t.Fatalf("window %d width %d", i, len(w))
		}
	}
}

func TestWindowRejectsBadGeometry(t *testing.T) {
	if _, err := Window(ramp(10), 10, 3); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
	if _, err := Window(ramp(10), 0, 1); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("expected ErrInvalidGeometry, got %v", err)
	}
}

func TestSegments(t *testing.T) {
	s := series(10, 10)
	events := align.EventSequence{{Label: 4, Time: 0.25}, {Label: 9, Time: 0.75}}
	segments, err := Segments(s, events, Params{BlockSize: 4, Downsample: 2})
	if err != nil {
		t.Fatalf("Segments: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segments))
	}
	first, second := segments[0], segments[1]
	if first.Label != 4 || first.Start != 0 || first.End != 5 {
		t.Fatalf("unexpected first segment: %+v", first)
	}
	if second.Label != 9 || second.Start != 5 || second.End != 10 {
		t.Fatalf("unexpected second segment: %+v", second)
	}
	if !slices.Equal(second.Windows[0], []float64{5, 7}) || !slices.Equal(second.Windows[1], []float64{9, 0}) {
		t.Fatalf("unexpected windows: %v", second.Windows)
	}
	// blocks [5,8] and [9,9]
	if !slices.Equal(second.Times, []float64{0.65, 0.9}) {
		t.Fatalf("unexpected window times: %v", second.Times)
	}

	windows, times := Frames(segments)
	if len(windows) != 4 || len(times) != 4 {
		t.Fatalf("Frames returned %d windows, %d times", len(windows), len(times))
	}
	if !slices.IsSorted(times) {
		t.Fatalf("frame times not sorted: %v", times)
	}
}

func TestSegmentsErrors(t *testing.T) {
	p := Params{BlockSize: 4, Downsample: 2}
	if _, err := Segments(series(10, 10), nil, p); !errors.Is(err, align.ErrNoEvents) {
		t.Fatalf("expected ErrNoEvents, got %v", err)
	}
	if _, err := Segments(align.Series{}, align.EventSequence{{Label: 1}}, p); !errors.Is(err, align.ErrEmptyRecording) {
		t.Fatalf("expected ErrEmptyRecording, got %v", err)
	}
	bad := series(10, 10)
	bad.Time = bad.Time[:5]
	if _, err := Segments(bad, align.EventSequence{{Label: 1}}, p); err == nil {
		t.Fatal("expected error for mismatched time column")
	}
}

func TestVocabulary(t *testing.T) {
	v := NewVocabulary([]int{12, 3, 12, 7})
	if !slices.Equal(v.Labels, []int{3, 7, 12}) {
		t.Fatalf("Labels = %v", v.Labels)
	}
	if i, ok := v.Index(12); !ok || i != 2 {
		t.Fatalf("Index(12) = %d, %v", i, ok)
	}
	if _, ok := v.Index(5); ok {
		t.Fatal("Index(5) should be missing")
	}
	if l, ok := v.Label(1); !ok || l != 7 {
		t.Fatalf("Label(1) = %d, %v", l, ok)
	}
	if _, ok := v.Label(3); ok {
		t.Fatal("Label(3) should be out of range")
	}
	hot, err := v.OneHot(7)
	if err != nil || !slices.Equal(hot, []float64{0, 1, 0}) {
		t.Fatalf("OneHot(7) = %v, %v", hot, err)
	}
	if _, err := v.OneHot(99); err == nil {
		t.Fatal("expected error for unknown label")
	}
}

func TestBuildDataset(t *testing.T) {
	ds, err := BuildDataset(
		[]align.Series{series(8, 8), series(12, 8)},
		[]align.EventSequence{{{Label: 5}, {Label: 2}}, {{Label: 2}, {Label: 8}, {Label: 5}}},
		Params{BlockSize: 2, Downsample: 1},
	)
	if err != nil {
		t.Fatalf("BuildDataset: %v", err)
	}
	if ds.Len() != 5 {
		t.Fatalf("expected 5 segments, got %d", ds.Len())
	}
	if !slices.Equal(ds.Y, []int{1, 0, 0, 2, 1}) {
		t.Fatalf("Y = %v", ds.Y)
	}
	if len(ds.X[0]) != 2 || len(ds.X[0][0]) != 2 {
		t.Fatalf("unexpected window shape: %v", ds.X[0])
	}
	if _, err := BuildDataset([]align.Series{series(4, 4)}, nil, Params{BlockSize: 2, Downsample: 1}); err == nil {
		t.Fatal("expected error for mismatched inputs")
	}
}
