package iamfparam

import (
	"errors"
	"fmt"
	"math"
)

// Error taxonomy. Every error produced while resolving or generating parameter blocks wraps one of these.
var (
	// ErrNotFound reports a reference to an unregistered parameter id or audio element.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument reports malformed or internally inconsistent caller input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInternal reports a collaborator contract violation.
	ErrInternal = errors.New("internal error")
)

// ChannelNumbers describes the channel composition of one layer of a scalable channel layout.
// Values are compared field by field, never by total channel count.
type ChannelNumbers struct {
	Surround int
	Height   int
	LFE      int
}

// String renders the composition as surround.lfe.height, e.g. "5.1.2".
func (c ChannelNumbers) String() string {
	return fmt.Sprintf("%d.%d.%d", c.Surround, c.LFE, c.Height)
}

// ParamKind is the kind of a parameter definition.
type ParamKind uint8

// Parameter definition kinds accepted by the generator. Values match the bitstream encoding.
const (
	MixGain   ParamKind = 0
	Demixing  ParamKind = 1
	ReconGain ParamKind = 2
)

// String returns the configuration name of the kind.
func (k ParamKind) String() string {
	switch k {
	case MixGain:
		return "mix_gain"
	case Demixing:
		return "demixing"
	case ReconGain:
		return "recon_gain"
	}

	return fmt.Sprintf("extension(%d)", uint8(k))
}

// Valid reports whether k is one of the three supported kinds.
func (k ParamKind) Valid() bool {
	return k == MixGain || k == Demixing || k == ReconGain
}

// ParseParamKind converts a configuration name to a ParamKind.
func ParseParamKind(name string) (ParamKind, error) {
	switch name {
	case "mix_gain":
		return MixGain, nil
	case "demixing":
		return Demixing, nil
	case "recon_gain":
		return ReconGain, nil
	default:
		return 0, fmt.Errorf("%w: unsupported parameter kind %q", ErrInvalidArgument, name)
	}
}

// BitDepth represents the bit depth of PCM audio samples.
type BitDepth uint

// Standard PCM bit depths.
const (
	Depth8  BitDepth = 8
	Depth16 BitDepth = 16
	Depth24 BitDepth = 24
	Depth32 BitDepth = 32
)

// BytesPerSample returns the byte width of one sample in little-endian PCM.
func (b BitDepth) BytesPerSample() int {
	return int(b) / 8 //nolint:mnd
}

// PCMFormat describes the format of raw PCM audio data.
type PCMFormat struct {
	SampleRate int
	BitDepth   BitDepth
	Channels   uint
}

var errUnsupportedBitDepth = errors.New("unsupported bit depth")

// ToBitDepth converts a numeric bit depth to the BitDepth type.
func ToBitDepth(bps uint8) (BitDepth, error) {
	switch BitDepth(bps) {
	case Depth8:
		return Depth8, nil
	case Depth16:
		return Depth16, nil
	case Depth24:
		return Depth24, nil
	case Depth32:
		return Depth32, nil
	default:
		return 0, fmt.Errorf("%d-bit: %w", bps, errUnsupportedBitDepth)
	}
}

// Planar holds decoded audio with one slice of right-justified signed samples per channel.
type Planar struct {
	Format   PCMFormat
	Channels [][]int32
}

// Frames returns the number of samples per channel.
func (p *Planar) Frames() int {
	if len(p.Channels) == 0 {
		return 0
	}

	return len(p.Channels[0])
}

// Float returns sample i of channel ch scaled to [-1, 1].
func (p *Planar) Float(ch, i int) float64 {
	scale := math.Ldexp(1, int(p.Format.BitDepth)-1)

	return float64(p.Channels[ch][i]) / scale
}
