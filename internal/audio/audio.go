// Package audio opens input audio files of any supported container as planar samples.
package audio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/detect"
	"github.com/mycophonic/iamfparam/flac"
	"github.com/mycophonic/iamfparam/vorbis"
	"github.com/mycophonic/iamfparam/wav"
)

// ErrUnsupportedFormat is returned for files no decoder recognizes.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

type decodeFunc func(io.ReadSeeker) (*iamfparam.Planar, error)

// Decode identifies the container of rs and decodes it.
func Decode(rs io.ReadSeeker) (*iamfparam.Planar, detect.Codec, error) {
	codec, err := detect.Identify(rs)
	if err != nil {
		return nil, detect.Unknown, fmt.Errorf("detecting codec: %w", err)
	}

	var decode decodeFunc

	switch codec {
	case detect.FLAC:
		decode = flac.Decode
	case detect.WAV:
		decode = wav.Decode
	case detect.Vorbis:
		decode = vorbis.Decode
	case detect.Unknown:
		return nil, codec, ErrUnsupportedFormat
	}

	if decode == nil {
		return nil, codec, ErrUnsupportedFormat
	}

	samples, err := decode(rs)
	if err != nil {
		return nil, codec, fmt.Errorf("decoding %s: %w", codec, err)
	}

	return samples, codec, nil
}

// Load opens and decodes the file at path.
func Load(path string) (*iamfparam.Planar, detect.Codec, error) {
	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files
	if err != nil {
		return nil, detect.Unknown, fmt.Errorf("%w: opening %s: %w", fault.ErrReadFailure, path, err)
	}
	defer file.Close()

	samples, codec, err := Decode(file)
	if err != nil {
		return nil, codec, fmt.Errorf("%s: %w", path, err)
	}

	return samples, codec, nil
}
