package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/mycophonic/primordium/fault"

	"github.com/mycophonic/iamfparam"
)

// WAV format constants.
const (
	wavFormatPCM        = 1
	wavFormatIEEEFloat  = 3
	wavFormatExtensible = 0xFFFE
)

// GUID for PCM in WAVEFORMATEXTENSIBLE.
//
//nolint:gochecknoglobals
var wavGUIDPCM = [16]byte{
	0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00,
	0x80, 0x00, 0x00, 0xaa, 0x00, 0x38, 0x9b, 0x71,
}

var (
	ErrNotWAV          = errors.New("not a WAV file")
	ErrUnsupportedFmt  = errors.New("unsupported WAV format")
	ErrNoFmtChunk      = errors.New("missing fmt chunk")
	ErrNoDataChunk     = errors.New("missing data chunk")
	ErrInvalidBitDepth = errors.New("invalid bit depth")
	ErrTruncatedData   = errors.New("data chunk is not a whole number of frames")
)

// Decode reads a WAV file into planar samples.
func Decode(rs io.ReadSeeker) (*iamfparam.Planar, error) {
	var format iamfparam.PCMFormat

	// Read RIFF header
	var riffHeader [12]byte
	if _, err := io.ReadFull(rs, riffHeader[:]); err != nil {
		return nil, fmt.Errorf("%w: reading RIFF header: %w", fault.ErrReadFailure, err)
	}

	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, ErrNotWAV
	}

	var pcmData []byte

	fmtFound := false

	for {
		var chunkHeader [8]byte
		if _, err := io.ReadFull(rs, chunkHeader[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("%w: reading chunk header: %w", fault.ErrReadFailure, err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		switch chunkID {
		case "fmt ":
			if err := parseFmtChunk(rs, chunkSize, &format); err != nil {
				return nil, err
			}

			fmtFound = true

		case "data":
			pcmData = make([]byte, chunkSize)
			if _, err := io.ReadFull(rs, pcmData); err != nil {
				return nil, fmt.Errorf("%w: reading PCM data: %w", fault.ErrReadFailure, err)
			}

		default:
			if _, err := rs.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("skipping chunk %s: %w", chunkID, err)
			}
		}

		// Chunks are word-aligned (pad byte if odd size)
		if chunkSize%2 == 1 {
			if _, err := rs.Seek(1, io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("seeking past pad byte: %w", err)
			}
		}
	}

	if !fmtFound {
		return nil, ErrNoFmtChunk
	}

	if pcmData == nil {
		return nil, ErrNoDataChunk
	}

	return deinterleave(pcmData, format)
}

func parseFmtChunk(rs io.ReadSeeker, size uint32, format *iamfparam.PCMFormat) error {
	if size < 16 {
		return ErrUnsupportedFmt
	}

	var buf [40]byte // Max size for WAVEFORMATEXTENSIBLE

	toRead := min(size, 40)

	if _, err := io.ReadFull(rs, buf[:toRead]); err != nil {
		return fmt.Errorf("%w: reading fmt chunk: %w", fault.ErrReadFailure, err)
	}

	if size > 40 {
		if _, err := rs.Seek(int64(size-40), io.SeekCurrent); err != nil {
			return fmt.Errorf("skipping fmt chunk tail: %w", err)
		}
	}

	audioFormat := binary.LittleEndian.Uint16(buf[0:2])
	channels := binary.LittleEndian.Uint16(buf[2:4])
	sampleRate := binary.LittleEndian.Uint32(buf[4:8])
	bitsPerSample := binary.LittleEndian.Uint16(buf[14:16])

	switch audioFormat {
	case wavFormatPCM:
	case wavFormatExtensible:
		if size < 40 {
			return ErrUnsupportedFmt
		}

		var subFormat [16]byte
		copy(subFormat[:], buf[24:40])

		if subFormat != wavGUIDPCM {
			return ErrUnsupportedFmt
		}
	case wavFormatIEEEFloat:
		return fmt.Errorf("%w: IEEE float", ErrUnsupportedFmt)
	default:
		return ErrUnsupportedFmt
	}

	format.SampleRate = int(sampleRate)
	format.Channels = uint(channels)

	switch bitsPerSample {
	case 16, 24, 32:
		format.BitDepth = iamfparam.BitDepth(bitsPerSample)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, bitsPerSample)
	}

	return nil
}

// deinterleave splits little-endian interleaved PCM into one sign-extended slice per channel.
func deinterleave(pcm []byte, format iamfparam.PCMFormat) (*iamfparam.Planar, error) {
	bytesPerSample := format.BitDepth.BytesPerSample()
	nChannels := int(format.Channels) //nolint:gosec // from a uint16 field.
	frameSize := bytesPerSample * nChannels

	if frameSize == 0 || len(pcm)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes, %d bytes per frame", ErrTruncatedData, len(pcm), frameSize)
	}

	frames := len(pcm) / frameSize
	out := &iamfparam.Planar{Format: format, Channels: make([][]int32, nChannels)}

	for ch := range out.Channels {
		out.Channels[ch] = make([]int32, frames)
	}

	pos := 0

	for i := range frames {
		for ch := range nChannels {
			var sample int32

			switch format.BitDepth {
			case iamfparam.Depth16:
				sample = int32(int16(binary.LittleEndian.Uint16(pcm[pos:]))) //nolint:gosec // reinterpretation.
			case iamfparam.Depth24:
				sample = int32(uint32(pcm[pos])|uint32(pcm[pos+1])<<8|uint32(pcm[pos+2])<<16) << 8 >> 8 //nolint:gosec
			default:
				sample = int32(binary.LittleEndian.Uint32(pcm[pos:])) //nolint:gosec // reinterpretation.
			}

			out.Channels[ch][i] = sample
			pos += bytesPerSample
		}
	}

	return out, nil
}
