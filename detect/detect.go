// Package detect identifies the container of input audio files.
package detect

import (
	"fmt"
	"io"

	"github.com/mycophonic/primordium/fault"
)

// Codec represents a recognized audio codec.
type Codec uint8

const (
	// Unknown indicates the file format was not recognized.
	Unknown Codec = iota
	// FLAC is the Free Lossless Audio Codec.
	FLAC
	// WAV is RIFF/WAVE PCM.
	WAV
	// Vorbis is Ogg Vorbis.
	Vorbis
)

// String returns the human-readable name of the codec.
func (c Codec) String() string {
	switch c {
	case Unknown:
		return "unknown"
	case FLAC:
		return "FLAC"
	case WAV:
		return "WAV"
	case Vorbis:
		return "Vorbis"
	}

	return "unknown"
}

// headerSize is the minimum number of bytes needed to identify any supported codec.
// FLAC: 4 bytes at offset 0 ("fLaC").
// WAV:  "RIFF" at offset 0 and "WAVE" at offset 8.
// OGG:  4 bytes at offset 0 ("OggS").
const headerSize = 12

// Identify reads the header from rs and returns the detected audio codec.
// The reader position is reset to the start before returning.
func Identify(reader io.ReadSeeker) (Codec, error) {
	var header [headerSize]byte

	if _, err := io.ReadFull(reader, header[:]); err != nil {
		return Unknown, fmt.Errorf("%w: reading header: %w", fault.ErrReadFailure, err)
	}

	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return Unknown, fmt.Errorf("seeking to start: %w", err)
	}

	switch {
	case string(header[:4]) == "fLaC":
		return FLAC, nil
	case string(header[:4]) == "OggS":
		return Vorbis, nil
	case string(header[:4]) == "RIFF" && string(header[8:12]) == "WAVE":
		return WAV, nil
	}

	return Unknown, nil
}
