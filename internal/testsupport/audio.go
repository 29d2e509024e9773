package testsupport

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"notepipe/internal/labels"
)

// SampleRate is the rate used for generated fixture recordings.
const SampleRate = 8000

// WriteWAV encodes channel-major 16-bit PCM to path.
func WriteWAV(t testing.TB, path string, sampleRate int, channels [][]int) {
	t.Helper()

	if len(channels) == 0 {
		t.Fatalf("WriteWAV %s: no channels", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	frames := len(channels[0])
	data := make([]int, 0, frames*len(channels))
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			data = append(data, ch[i])
		}
	}

	enc := wav.NewEncoder(f, sampleRate, 16, len(channels), 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: len(channels), SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close encoder %s: %v", path, err)
	}
}

// Tone returns n samples of a sine wave whose pitch is derived from code so
// each label sounds distinct.
func Tone(code, n, sampleRate int) []int {
	freq := 110.0 * math.Pow(2, float64(code%48)/12)
	out := make([]int, n)
	for i := range out {
		out[i] = int(8000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

// WriteLabeledRecording writes a mono recording named after codes into dir.
// Each code contributes samplesPerEvent samples of its tone.
func WriteLabeledRecording(t testing.TB, dir string, codes []int, suffix string, samplesPerEvent int) string {
	t.Helper()

	name, err := labels.Encode(codes, suffix)
	if err != nil {
		t.Fatalf("encode label filename: %v", err)
	}
	samples := make([]int, 0, len(codes)*samplesPerEvent)
	for _, code := range codes {
		samples = append(samples, Tone(code, samplesPerEvent, SampleRate)...)
	}
	path := filepath.Join(dir, name)
	WriteWAV(t, path, SampleRate, [][]int{samples})
	return path
}

// Ramp returns the samples start, start+1, ... start+n-1.
func Ramp(start, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = start + i
	}
	return out
}
