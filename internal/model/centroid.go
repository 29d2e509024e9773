package model

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"notepipe/internal/window"
)

// Centroid is a nearest-centroid classifier over normalized FFT magnitude
// spectra. It predicts the label whose mean spectrum is closest to the
// window's spectrum.
type Centroid struct {
	width     int
	labels    []int
	centroids [][]float64
}

// NewCentroid returns an untrained predictor.
func NewCentroid() *Centroid {
	return &Centroid{}
}

// Fit averages the spectra of every window per class.
func (c *Centroid) Fit(ctx context.Context, ds window.Dataset) error {
	if ds.Len() == 0 || ds.Vocabulary.Size() == 0 {
		return fmt.Errorf("empty training set")
	}
	width := 0
	for _, seq := range ds.X {
		if len(seq) > 0 {
			width = len(seq[0])
			break
		}
	}
	if width == 0 {
		return fmt.Errorf("training set has no windows")
	}

	fft := fourier.NewFFT(width)
	taper := hann(width)
	sums := make([][]float64, ds.Vocabulary.Size())
	counts := make([]int, ds.Vocabulary.Size())
	for i, seq := range ds.X {
		if err := ctx.Err(); err != nil {
			return err
		}
		class := ds.Y[i]
		for _, w := range seq {
			spectrum := magnitudes(fft, taper, w)
			if sums[class] == nil {
				sums[class] = make([]float64, len(spectrum))
			}
			for k, v := range spectrum {
				sums[class][k] += v
			}
			counts[class]++
		}
	}

	c.width = width
	c.labels = c.labels[:0]
	c.centroids = c.centroids[:0]
	for class, sum := range sums {
		if counts[class] == 0 {
			continue
		}
		for k := range sum {
			sum[k] /= float64(counts[class])
		}
		label, _ := ds.Vocabulary.Label(class)
		c.labels = append(c.labels, label)
		c.centroids = append(c.centroids, sum)
	}
	return nil
}

// Predict assigns each window the nearest centroid's label. Confidence is
// 1/(1+distance).
func (c *Centroid) Predict(ctx context.Context, windows [][]float64) ([]FrameOutput, error) {
	if len(c.centroids) == 0 {
		return nil, ErrNotTrained
	}
	fft := fourier.NewFFT(c.width)
	taper := hann(c.width)
	out := make([]FrameOutput, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(w) != c.width {
			return nil, fmt.Errorf("window %d has width %d, expected %d", i, len(w), c.width)
		}
		spectrum := magnitudes(fft, taper, w)
		best, bestDist := 0, math.Inf(1)
		for j, centroid := range c.centroids {
			if d := distance(spectrum, centroid); d < bestDist {
				best, bestDist = j, d
			}
		}
		out[i] = FrameOutput{Label: c.labels[best], Confidence: 1 / (1 + bestDist)}
	}
	return out, nil
}

// Labels returns the trained labels in class order.
func (c *Centroid) Labels() []int {
	return append([]int(nil), c.labels...)
}

// magnitudes returns the unit-norm magnitude spectrum of the Hann-windowed input.
func magnitudes(fft *fourier.FFT, taper, w []float64) []float64 {
	buf := make([]float64, len(w))
	for i, v := range w {
		buf[i] = v * taper[i]
	}
	coeffs := fft.Coefficients(nil, buf)
	mags := make([]float64, len(coeffs))
	var norm float64
	for i, c := range coeffs {
		mags[i] = cmplx.Abs(c)
		norm += mags[i] * mags[i]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range mags {
			mags[i] /= norm
		}
	}
	return mags
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func hann(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
