package generator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/paramblock"
)

var (
	// ErrOverflow is returned when a value does not fit its bitstream width.
	ErrOverflow = errors.New("value out of range")
	// ErrKindMismatch is returned when a subblock payload does not match the parameter's kind.
	ErrKindMismatch = errors.New("subblock kind does not match parameter kind")
	// ErrSingleSubblock is returned when a demixing or recon gain block has more than one subblock.
	ErrSingleSubblock = errors.New("only one subblock is allowed")
	// ErrSubblockSum is returned when explicit subblock durations do not add up to the block duration.
	ErrSubblockSum = errors.New("subblock durations do not sum to block duration")
)

const (
	maxDMixPMode = 7
	maxReserved  = 1<<5 - 1
)

func narrowInt16(name string, value int32) (int16, error) {
	if value < math.MinInt16 || value > math.MaxInt16 {
		return 0, fmt.Errorf("%w: %w: %s %d does not fit 16 bits", iamfparam.ErrInvalidArgument, ErrOverflow, name, value)
	}

	return int16(value), nil
}

func narrowUint8(name string, value uint32) (uint8, error) {
	if value > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %w: %s %d does not fit 8 bits", iamfparam.ErrInvalidArgument, ErrOverflow, name, value)
	}

	return uint8(value), nil
}

func mixGainSubblock(data *MixGainData) (*paramblock.MixGain, error) {
	out := &paramblock.MixGain{Animation: data.Animation}

	var err error

	switch data.Animation {
	case paramblock.AnimateStep:
		out.Start, err = narrowInt16("start_point_value", data.Start)
	case paramblock.AnimateLinear:
		if out.Start, err = narrowInt16("start_point_value", data.Start); err == nil {
			out.End, err = narrowInt16("end_point_value", data.End)
		}
	case paramblock.AnimateBezier:
		if out.Start, err = narrowInt16("start_point_value", data.Start); err != nil {
			break
		}

		if out.End, err = narrowInt16("end_point_value", data.End); err != nil {
			break
		}

		if out.Control, err = narrowInt16("control_point_value", data.Control); err != nil {
			break
		}

		out.ControlRelativeTime, err = narrowUint8("control_point_relative_time", data.ControlRelativeTime)
	default:
		err = fmt.Errorf("%w: unrecognized animation type %s", iamfparam.ErrInvalidArgument, data.Animation)
	}

	if err != nil {
		return nil, err
	}

	return out, nil
}

func demixingSubblock(data *DemixingData) (*paramblock.DemixingInfo, error) {
	if data.Mode > maxDMixPMode {
		return nil, fmt.Errorf("%w: %w: dmixp_mode %d does not fit 3 bits",
			iamfparam.ErrInvalidArgument, ErrOverflow, data.Mode)
	}

	if data.Reserved > maxReserved {
		return nil, fmt.Errorf("%w: %w: reserved %d does not fit 5 bits",
			iamfparam.ErrInvalidArgument, ErrOverflow, data.Reserved)
	}

	return &paramblock.DemixingInfo{
		Mode:     paramblock.DMixPMode(data.Mode),
		Reserved: uint8(data.Reserved),
	}, nil
}

// subblock converts subblock idx of a block starting at start.
func (g *Generator) subblock(
	idx int,
	data SubblockData,
	meta PerIDMetadata,
	start int64,
	gains GainComputer,
) (paramblock.Payload, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: subblock %d has no data", iamfparam.ErrInvalidArgument, idx)
	}

	if data.Kind() != meta.Kind {
		return nil, fmt.Errorf("%w: %w: subblock %d is %s, parameter is %s",
			iamfparam.ErrInvalidArgument, ErrKindMismatch, idx, data.Kind(), meta.Kind)
	}

	switch data := data.(type) {
	case *MixGainData:
		return mixGainSubblock(data)
	case *DemixingData:
		if idx > 0 {
			return nil, fmt.Errorf("%w: %w: demixing subblock %d", iamfparam.ErrInvalidArgument, ErrSingleSubblock, idx)
		}

		return demixingSubblock(data)
	case *ReconGainData:
		if idx > 0 {
			return nil, fmt.Errorf("%w: %w: recon gain subblock %d", iamfparam.ErrInvalidArgument, ErrSingleSubblock, idx)
		}

		return g.reconGainSubblock(data, meta, start, gains)
	}

	return nil, fmt.Errorf("%w: subblock %d: unsupported parameter kind %s", iamfparam.ErrInvalidArgument, idx, meta.Kind)
}

// subblocks builds every subblock of a record whose layout fields are already set.
func (g *Generator) subblocks(
	record *paramblock.Record,
	inst Instance,
	meta PerIDMetadata,
	numSubblocks uint32,
	gains GainComputer,
) error {
	count, err := paramblock.NumSubblocks(record.Duration, record.ConstantSubblockDuration, numSubblocks)
	if err != nil {
		return fmt.Errorf("parameter %d: %w", inst.ParameterID, err)
	}

	if len(inst.Subblocks) != count {
		return fmt.Errorf("%w: parameter %d: expected %d subblocks, got %d",
			iamfparam.ErrInvalidArgument, inst.ParameterID, count, len(inst.Subblocks))
	}

	explicit := meta.Definition.SubblockDurations
	if record.ConstantSubblockDuration == 0 && !record.IncludeSubblockDuration && len(explicit) != count {
		return fmt.Errorf("%w: parameter %d: definition lists %d subblock durations, block has %d",
			iamfparam.ErrInvalidArgument, inst.ParameterID, len(explicit), count)
	}

	record.Subblocks = make([]paramblock.Subblock, count)

	var sum uint64

	for idx, sub := range inst.Subblocks {
		var duration uint32

		switch {
		case record.ConstantSubblockDuration != 0:
			duration = paramblock.SubblockDuration(idx, record.Duration, record.ConstantSubblockDuration)
		case record.IncludeSubblockDuration:
			duration = sub.Duration
		default:
			duration = explicit[idx]
		}

		sum += uint64(duration)

		payload, err := g.subblock(idx, sub.Data, meta, record.Start, gains)
		if err != nil {
			return fmt.Errorf("parameter %d: %w", inst.ParameterID, err)
		}

		record.Subblocks[idx] = paramblock.Subblock{Duration: duration, Payload: payload}
	}

	if record.ConstantSubblockDuration == 0 && sum != uint64(record.Duration) {
		return fmt.Errorf("%w: %w: parameter %d: subblocks sum to %d, block duration %d",
			iamfparam.ErrInvalidArgument, ErrSubblockSum, inst.ParameterID, sum, record.Duration)
	}

	return nil
}
