package splitcache

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"time"

	"github.com/golang/snappy"

	"notepipe/internal/corpus"
)

const (
	blobMagic   = "NPSPLIT\x00"
	blobVersion = uint16(1)
	headerLen   = len(blobMagic) + 2
)

// ErrCorrupt marks a cache file that cannot be decoded.
var ErrCorrupt = errors.New("corrupt split cache")

// Key identifies the inputs a split was built from.
type Key struct {
	Folder       string
	Validation   string
	Fingerprint  string
	SampleRate   int
	Subsample    int
	Extension    string
	DecodeErrors string
	Seed         int64
	TestRatio    float64
}

// Entry is the persisted cache payload.
type Entry struct {
	Key       Key
	Split     *corpus.Split
	CreatedAt time.Time
}

func encodeEntry(entry Entry) ([]byte, error) {
	var body bytes.Buffer
	if err := gob.NewEncoder(&body).Encode(entry); err != nil {
		return nil, fmt.Errorf("encode cache entry: %w", err)
	}
	out := make([]byte, headerLen, headerLen+body.Len()/2)
	copy(out, blobMagic)
	binary.BigEndian.PutUint16(out[len(blobMagic):], blobVersion)
	return append(out, snappy.Encode(nil, body.Bytes())...), nil
}

func decodeEntry(data []byte) (Entry, error) {
	if len(data) < headerLen || string(data[:len(blobMagic)]) != blobMagic {
		return Entry{}, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	if v := binary.BigEndian.Uint16(data[len(blobMagic):headerLen]); v != blobVersion {
		return Entry{}, fmt.Errorf("%w: unsupported version %d", ErrCorrupt, v)
	}
	body, err := snappy.Decode(nil, data[headerLen:])
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	var entry Entry
	if err := gob.NewDecoder(bytes.NewReader(body)).Decode(&entry); err != nil {
		return Entry{}, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if entry.Split == nil {
		return Entry{}, fmt.Errorf("%w: entry has no split", ErrCorrupt)
	}
	return entry, nil
}
