package corpus

import (
	"errors"
	"fmt"
)

// ErrMissingData marks a dataset folder without usable recordings.
var ErrMissingData = errors.New("missing data")

// MissingDataError reports a folder that yielded no recordings.
type MissingDataError struct {
	Folder    string
	Extension string
	// Skipped counts recordings dropped by the skip decode policy.
	Skipped int
}

func (e *MissingDataError) Error() string {
	if e.Skipped > 0 {
		return fmt.Sprintf("no usable %s recordings in %s (%d skipped)", e.Extension, e.Folder, e.Skipped)
	}
	return fmt.Sprintf("no %s recordings in %s", e.Extension, e.Folder)
}

// Unwrap lets callers match with errors.Is(err, ErrMissingData).
func (e *MissingDataError) Unwrap() error { return ErrMissingData }

// TooFewRecordingsError reports a corpus too small to hold out a test set.
type TooFewRecordingsError struct {
	Folder string
	Count  int
}

func (e *TooFewRecordingsError) Error() string {
	return fmt.Sprintf("need at least 2 recordings to split, %s has %d", e.Folder, e.Count)
}
