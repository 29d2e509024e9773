package labels

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	// CodeWidth is the number of characters used by one encoded code.
	CodeWidth = 2
	// MaxCode is the largest code representable with CodeWidth digits.
	MaxCode = 99
	// Extension is the recording file extension stripped before decoding.
	Extension = ".wav"
	// Separator marks the end of the label segment.
	Separator = "-"
)

// DecodeError reports a filename whose label segment cannot be decoded.
type DecodeError struct {
	Filename string
	Segment  string
	Reason   string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode labels from %q (segment %q): %s", e.Filename, e.Segment, e.Reason)
}

// Segment returns the label segment of a filename: the base name up to the
// first ".wav" in any letter case and then up to the first "-".
func Segment(filename string) string {
	base := filepath.Base(filename)
	if idx := indexFold(base, Extension); idx >= 0 {
		base = base[:idx]
	}
	if idx := strings.Index(base, Separator); idx >= 0 {
		base = base[:idx]
	}
	return base
}

func indexFold(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(substr)], substr) {
			return i
		}
	}
	return -1
}

// Decode returns the ordered codes encoded in filename.
func Decode(filename string) ([]int, error) {
	segment := Segment(filename)
	if segment == "" {
		return nil, &DecodeError{Filename: filename, Segment: segment, Reason: "empty label segment"}
	}
	if len(segment)%CodeWidth != 0 {
		return nil, &DecodeError{
			Filename: filename,
			Segment:  segment,
			Reason:   fmt.Sprintf("length %d is not a multiple of %d", len(segment), CodeWidth),
		}
	}

	codes := make([]int, 0, len(segment)/CodeWidth)
	for i := 0; i < len(segment); i += CodeWidth {
		chunk := segment[i : i+CodeWidth]
		code, ok := parseChunk(chunk)
		if !ok {
			return nil, &DecodeError{
				Filename: filename,
				Segment:  segment,
				Reason:   fmt.Sprintf("chunk %q at offset %d is not a two-digit code", chunk, i),
			}
		}
		codes = append(codes, code)
	}
	return codes, nil
}

// parseChunk accepts only ASCII digits; strconv.Atoi would let "+1" through.
func parseChunk(chunk string) (int, bool) {
	value := 0
	for i := 0; i < len(chunk); i++ {
		c := chunk[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		value = value*10 + int(c-'0')
	}
	return value, true
}

// Encode builds a recording filename carrying codes. A non-empty suffix is
// appended after the separator.
func Encode(codes []int, suffix string) (string, error) {
	if len(codes) == 0 {
		return "", fmt.Errorf("encode labels: no codes")
	}
	var b strings.Builder
	b.Grow(len(codes)*CodeWidth + len(suffix) + len(Extension) + 1)
	for i, code := range codes {
		if code < 0 || code > MaxCode {
			return "", fmt.Errorf("encode labels: code %d at index %d outside 0..%d", code, i, MaxCode)
		}
		fmt.Fprintf(&b, "%02d", code)
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		if indexFold(suffix, Extension) >= 0 {
			return "", fmt.Errorf("encode labels: suffix %q must not contain %q", suffix, Extension)
		}
		b.WriteString(Separator)
		b.WriteString(suffix)
	}
	b.WriteString(Extension)
	return b.String(), nil
}
