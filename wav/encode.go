package wav

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mycophonic/iamfparam"
)

// Encode writes planar samples as a WAV file.
func Encode(w io.Writer, audio *iamfparam.Planar) error {
	format := audio.Format

	switch format.BitDepth {
	case iamfparam.Depth16, iamfparam.Depth24, iamfparam.Depth32:
	default:
		return fmt.Errorf("%w: %d (must be 16, 24, or 32)", ErrInvalidBitDepth, format.BitDepth)
	}

	pcm := interleave(audio)

	channels := uint16(len(audio.Channels))                             //nolint:gosec // channel counts are small.
	sampleRate := uint32(format.SampleRate)                             //nolint:gosec // positive sample rate.
	bitsPerSample := uint16(format.BitDepth)                            //nolint:gosec // 16, 24 or 32.
	byteRate := sampleRate * uint32(channels) * uint32(bitsPerSample) / 8 //nolint:mnd
	blockAlign := channels * bitsPerSample / 8                          //nolint:mnd
	dataSize := uint32(len(pcm))                                        //nolint:gosec // WAV is limited to 4 GiB.

	header := fmtHeader{
		channels:      channels,
		sampleRate:    sampleRate,
		bitsPerSample: bitsPerSample,
		byteRate:      byteRate,
		blockAlign:    blockAlign,
		dataSize:      dataSize,
	}

	// Use WAVEFORMATEXTENSIBLE for >2 channels or >16 bits
	if channels > 2 || bitsPerSample > 16 {
		return writeWAVExtensible(w, pcm, header)
	}

	return writeWAVSimple(w, pcm, header)
}

type fmtHeader struct {
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
	byteRate      uint32
	blockAlign    uint16
	dataSize      uint32
}

func interleave(audio *iamfparam.Planar) []byte {
	bytesPerSample := audio.Format.BitDepth.BytesPerSample()
	frames := audio.Frames()
	pcm := make([]byte, frames*len(audio.Channels)*bytesPerSample)
	pos := 0

	for i := range frames {
		for _, channel := range audio.Channels {
			s := channel[i]

			for b := range bytesPerSample {
				pcm[pos+b] = byte(s >> (8 * b))
			}

			pos += bytesPerSample
		}
	}

	return pcm
}

func writeWAVSimple(w io.Writer, pcm []byte, h fmtHeader) error {
	var header [44]byte

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], h.dataSize+36)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], h.channels)
	binary.LittleEndian.PutUint32(header[24:28], h.sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], h.byteRate)
	binary.LittleEndian.PutUint16(header[32:34], h.blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], h.bitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], h.dataSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("writing PCM data: %w", err)
	}

	return nil
}

func writeWAVExtensible(w io.Writer, pcm []byte, h fmtHeader) error {
	// WAVEFORMATEXTENSIBLE: fmt chunk is 40 bytes instead of 16
	fmtChunkSize := uint32(40)
	headerSize := 12 + 8 + fmtChunkSize + 8 // RIFF + fmt header + fmt data + data header
	fileSize := headerSize + h.dataSize - 8

	var header [68]byte

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], fileSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], fmtChunkSize)

	binary.LittleEndian.PutUint16(header[20:22], wavFormatExtensible)
	binary.LittleEndian.PutUint16(header[22:24], h.channels)
	binary.LittleEndian.PutUint32(header[24:28], h.sampleRate)
	binary.LittleEndian.PutUint32(header[28:32], h.byteRate)
	binary.LittleEndian.PutUint16(header[32:34], h.blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], h.bitsPerSample)
	binary.LittleEndian.PutUint16(header[36:38], 22) // cbSize

	binary.LittleEndian.PutUint16(header[38:40], h.bitsPerSample) // validBitsPerSample
	binary.LittleEndian.PutUint32(header[40:44], channelMask(h.channels))
	copy(header[44:60], wavGUIDPCM[:])

	copy(header[60:64], "data")
	binary.LittleEndian.PutUint32(header[64:68], h.dataSize)

	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing WAV header: %w", err)
	}

	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("writing PCM data: %w", err)
	}

	return nil
}

// channelMask returns the speaker mask for the channel counts of IAMF loudspeaker layouts.
func channelMask(channels uint16) uint32 {
	switch channels {
	case 1:
		return 0x4 // FC
	case 2:
		return 0x3 // FL | FR
	case 6:
		return 0x3F // 5.1
	case 8:
		return 0x63F // 7.1
	case 10:
		return 0x2D63F // 7.1.2
	case 12:
		return 0x2D63F | 0x9000 // 7.1.4
	default:
		return 0 // Unspecified
	}
}
