// Package paramblock models parameter block records as handed to a bitstream writer: the OBU header
// fields, the subblock layout and the per-kind subblock payloads, plus the [start, end) timestamps of
// the block.
package paramblock

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
)

var (
	// ErrDuration is returned for a zero-duration block.
	ErrDuration = errors.New("parameter block duration must be positive")
	// ErrSubblockCount is returned when the subblock count cannot be derived.
	ErrSubblockCount = errors.New("invalid number of subblocks")
)

// Header holds the OBU header fields carried by a parameter block.
type Header struct {
	RedundantCopy  bool
	TrimmingStatus bool
	Extension      []byte
}

// Payload is the data of one subblock. It is implemented by *MixGain, *DemixingInfo and
// *ReconGainInfo only.
type Payload interface {
	Kind() iamfparam.ParamKind
	payload()
}

// Subblock is one subblock of a parameter block.
type Subblock struct {
	// Duration is meaningful when the record includes subblock durations.
	Duration uint32
	Payload  Payload
}

// Record is a generated parameter block with its time range. End is exclusive.
type Record struct {
	Header                   Header
	ParameterID              uint32
	Kind                     iamfparam.ParamKind
	Duration                 uint32
	ConstantSubblockDuration uint32
	// IncludeSubblockDuration reports whether each subblock carries its own duration.
	IncludeSubblockDuration bool
	Subblocks               []Subblock
	Start                   int64
	End                     int64
}

// LogValue implements slog.LogValuer.
func (r Record) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Uint64("parameter_id", uint64(r.ParameterID)),
		slog.String("kind", r.Kind.String()),
		slog.Uint64("duration", uint64(r.Duration)),
		slog.Uint64("constant_subblock_duration", uint64(r.ConstantSubblockDuration)),
		slog.Int("num_subblocks", len(r.Subblocks)),
		slog.Int64("start_timestamp", r.Start),
		slog.Int64("end_timestamp", r.End),
	)
}

// NumSubblocks returns the number of subblocks of a block.
//
// With a constant subblock duration the count is ceil(duration / constant) and numSubblocks is ignored;
// otherwise numSubblocks is used as is.
func NumSubblocks(duration, constantSubblockDuration, numSubblocks uint32) (int, error) {
	if duration == 0 {
		return 0, fmt.Errorf("%w: %w", iamfparam.ErrInvalidArgument, ErrDuration)
	}

	if constantSubblockDuration != 0 {
		return int((uint64(duration) + uint64(constantSubblockDuration) - 1) / uint64(constantSubblockDuration)), nil
	}

	if numSubblocks == 0 {
		return 0, fmt.Errorf("%w: %w: zero subblocks without a constant subblock duration",
			iamfparam.ErrInvalidArgument, ErrSubblockCount)
	}

	return int(numSubblocks), nil
}

// SubblockDuration returns the duration of subblock idx under a constant subblock duration. The last
// subblock is truncated to the remainder of the block.
func SubblockDuration(idx int, duration, constantSubblockDuration uint32) uint32 {
	start := uint64(idx) * uint64(constantSubblockDuration)
	if start+uint64(constantSubblockDuration) > uint64(duration) {
		return uint32(uint64(duration) - start) //nolint:gosec // start < duration for every valid idx.
	}

	return constantSubblockDuration
}

// Animation is the shape of a mix gain subblock.
type Animation uint8

// Animation shapes.
const (
	AnimateStep   Animation = 0
	AnimateLinear Animation = 1
	AnimateBezier Animation = 2
)

// String returns the configuration name of the animation.
func (a Animation) String() string {
	switch a {
	case AnimateStep:
		return "step"
	case AnimateLinear:
		return "linear"
	case AnimateBezier:
		return "bezier"
	}

	return fmt.Sprintf("unknown(%d)", uint8(a))
}

// ParseAnimation converts a configuration name to an Animation.
func ParseAnimation(name string) (Animation, error) {
	switch name {
	case "step":
		return AnimateStep, nil
	case "linear":
		return AnimateLinear, nil
	case "bezier":
		return AnimateBezier, nil
	}

	return 0, fmt.Errorf("%w: unsupported animation %q", iamfparam.ErrInvalidArgument, name)
}

// MixGain is a mix gain subblock. End applies to linear and bezier animations, Control and
// ControlRelativeTime to bezier only.
type MixGain struct {
	Animation           Animation
	Start               int16
	End                 int16
	Control             int16
	ControlRelativeTime uint8
}

// Kind implements Payload.
func (*MixGain) Kind() iamfparam.ParamKind { return iamfparam.MixGain }
func (*MixGain) payload()                  {}

// DMixPMode is the 3-bit pre-defined demixing mode.
type DMixPMode uint8

// Demixing modes.
const (
	DMixPMode1         DMixPMode = 0
	DMixPMode2         DMixPMode = 1
	DMixPMode3         DMixPMode = 2
	DMixPModeReservedA DMixPMode = 3
	DMixPMode1N        DMixPMode = 4
	DMixPMode2N        DMixPMode = 5
	DMixPMode3N        DMixPMode = 6
	DMixPModeReservedB DMixPMode = 7
)

// DemixingInfo is a demixing subblock.
type DemixingInfo struct {
	Mode     DMixPMode
	Reserved uint8 // 5 bits
}

// Kind implements Payload.
func (*DemixingInfo) Kind() iamfparam.ParamKind { return iamfparam.Demixing }
func (*DemixingInfo) payload()                  {}

// ReconGainInfo is a recon gain subblock: one element per layer of the audio element.
type ReconGainInfo struct {
	Elements []demix.ReconGain
}

// Kind implements Payload.
func (*ReconGainInfo) Kind() iamfparam.ParamKind { return iamfparam.ReconGain }
func (*ReconGainInfo) payload()                  {}
