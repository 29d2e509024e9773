package waveform

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// DefaultSampleRate is the corpus-wide expected rate.
const DefaultSampleRate = 44100

var (
	// ErrSampleRateMismatch marks recordings whose rate differs from the expected rate.
	ErrSampleRateMismatch = errors.New("sample rate mismatch")
	// ErrInvalidAudio marks files that are not decodable PCM WAV.
	ErrInvalidAudio = errors.New("invalid wav data")
)

// SampleRateMismatchError reports a recording recorded at the wrong rate.
type SampleRateMismatchError struct {
	Path string
	Got  int
	Want int
}

func (e *SampleRateMismatchError) Error() string {
	return fmt.Sprintf("%s: sample rate %d Hz, expected %d Hz", e.Path, e.Got, e.Want)
}

// Unwrap lets callers match with errors.Is(err, ErrSampleRateMismatch).
func (e *SampleRateMismatchError) Unwrap() error { return ErrSampleRateMismatch }

// Recording is a decoded waveform. Channels are channel-major; every channel
// has the same number of samples.
type Recording struct {
	Path       string
	SampleRate int
	Channels   [][]float64
}

// Len returns the number of samples per channel.
func (r *Recording) Len() int {
	if r == nil || len(r.Channels) == 0 {
		return 0
	}
	return len(r.Channels[0])
}

// NumChannels returns the channel count.
func (r *Recording) NumChannels() int {
	if r == nil {
		return 0
	}
	return len(r.Channels)
}

// Mono returns channel 0, the channel consumed by the windower.
func (r *Recording) Mono() []float64 {
	if r == nil || len(r.Channels) == 0 {
		return nil
	}
	return r.Channels[0]
}

// Duration returns the recording length in seconds.
func (r *Recording) Duration() float64 {
	if r == nil || r.SampleRate <= 0 {
		return 0
	}
	return float64(r.Len()) / float64(r.SampleRate)
}

// Loader reads recordings and enforces an expected sample rate.
type Loader struct {
	SampleRate int
}

// NewLoader returns a loader for the given rate; non-positive rates fall
// back to DefaultSampleRate.
func NewLoader(sampleRate int) Loader {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return Loader{SampleRate: sampleRate}
}

// Load decodes the recording at path.
func (l Loader) Load(path string) (*Recording, error) {
	return Load(path, l.SampleRate)
}

// Load decodes the WAV file at path. The header is checked before the body
// is read so a wrong sample rate fails without decoding the samples.
func Load(path string, expectedRate int) (*Recording, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		if derr := decoder.Err(); derr != nil {
			return nil, fmt.Errorf("%s: %w: %w", path, ErrInvalidAudio, derr)
		}
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidAudio)
	}

	rate := int(decoder.SampleRate)
	if expectedRate > 0 && rate != expectedRate {
		return nil, &SampleRateMismatchError{Path: path, Got: rate, Want: expectedRate}
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("%s: read pcm: %w: %w", path, ErrInvalidAudio, err)
	}

	numChans := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		numChans = buf.Format.NumChannels
	}
	if numChans < 1 {
		return nil, fmt.Errorf("%s: no audio channels: %w", path, ErrInvalidAudio)
	}
	return &Recording{
		Path:       path,
		SampleRate: rate,
		Channels:   deinterleave(buf.Data, numChans),
	}, nil
}

// deinterleave splits frame-interleaved PCM into per-channel slices. A
// trailing partial frame is dropped.
func deinterleave(data []int, numChans int) [][]float64 {
	frames := len(data) / numChans
	channels := make([][]float64, numChans)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}
	for i := 0; i < frames; i++ {
		base := i * numChans
		for ch := 0; ch < numChans; ch++ {
			channels[ch][i] = float64(data[base+ch])
		}
	}
	return channels
}
