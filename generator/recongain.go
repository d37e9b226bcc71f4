package generator

import (
	"errors"
	"fmt"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
	"github.com/mycophonic/iamfparam/layout"
	"github.com/mycophonic/iamfparam/paramblock"
)

var (
	// ErrLayerCount is returned when user recon gains do not cover every layer of the audio element.
	ErrLayerCount = errors.New("recon gain layer count does not match audio element")
	// ErrPresenceMismatch is returned when computed gains disagree with the layer's recon gain flag.
	ErrPresenceMismatch = errors.New("computed recon gain presence does not match recon_gain_is_present")
)

// MismatchError reports every position where computed recon gains differ from user-supplied ones in a
// layer.
type MismatchError struct {
	Layer        int
	ComputedFlag uint16
	UserFlag     uint16
	Positions    []int
	Computed     demix.ReconGain
	User         demix.ReconGain
}

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("layer %d: computed recon gains differ from user values at positions %v",
		e.Layer, e.Positions)
	if e.ComputedFlag != e.UserFlag {
		msg += fmt.Sprintf(" (flag %#04x computed, %#04x user)", e.ComputedFlag, e.UserFlag)
	}

	return msg
}

// Unwrap makes a MismatchError match iamfparam.ErrInvalidArgument.
func (e *MismatchError) Unwrap() error {
	return iamfparam.ErrInvalidArgument
}

// reconGainSubblock emits the user gains of every layer and, unless overriding, checks them against
// gains computed at start.
func (g *Generator) reconGainSubblock(
	data *ReconGainData,
	meta PerIDMetadata,
	start int64,
	gains GainComputer,
) (*paramblock.ReconGainInfo, error) {
	userLayers := data.Layers
	if len(userLayers) == 0 && meta.NumLayers == 1 {
		userLayers = make([]ReconGainLayer, 1)
	}

	if len(userLayers) != meta.NumLayers {
		return nil, fmt.Errorf("%w: %w: audio element %d has %d layers, got %d",
			iamfparam.ErrInvalidArgument, ErrLayerCount, meta.AudioElementID, meta.NumLayers, len(userLayers))
	}

	states := layout.Accumulate(meta.ChannelNumbers)
	info := &paramblock.ReconGainInfo{Elements: make([]demix.ReconGain, meta.NumLayers)}

	for layer, user := range userLayers {
		userGain, err := demix.FromPositions(user.Gains)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", layer, err)
		}

		info.Elements[layer] = userGain

		if g.override {
			continue
		}

		var computed demix.ReconGain

		if layer > 0 {
			computed, err = g.computeLayer(states[layer], meta.ChannelNumbers[layer], meta.AudioElementID, start, gains)
			if err != nil {
				return nil, fmt.Errorf("layer %d: %w", layer, err)
			}
		}

		present := meta.ReconGainPresent[layer]
		if (computed.Flag != 0) != present {
			return nil, fmt.Errorf("%w: %w: layer %d computed flag %#04x, recon_gain_is_present %t",
				iamfparam.ErrInvalidArgument, ErrPresenceMismatch, layer, computed.Flag, present)
		}

		if !present {
			continue
		}

		if err := g.compare(layer, computed, userGain); err != nil {
			return nil, err
		}
	}

	return info, nil
}

func (g *Generator) computeLayer(
	accumulated, current iamfparam.ChannelNumbers,
	audioElementID uint32,
	start int64,
	gains GainComputer,
) (demix.ReconGain, error) {
	labels, err := demix.Derive(accumulated, current)
	if err != nil {
		return demix.ReconGain{}, err
	}

	if len(labels) == 0 {
		return demix.ReconGain{}, nil
	}

	if gains == nil {
		return demix.ReconGain{}, fmt.Errorf("%w: no gain computer", iamfparam.ErrInternal)
	}

	values := make(map[demix.Label]float64, len(labels))

	for _, label := range labels {
		value, err := gains.ReconGain(label, audioElementID, start)
		if err != nil {
			return demix.ReconGain{}, fmt.Errorf("%s: %w", label, err)
		}

		values[label] = value
	}

	return demix.Encode(values)
}

func (g *Generator) compare(layer int, computed, user demix.ReconGain) error {
	positions := computed.Diff(user)
	if computed.Flag == user.Flag && len(positions) == 0 {
		return nil
	}

	for _, pos := range positions {
		g.logger.Error("recon gain mismatch",
			"layer", layer,
			"position", pos,
			"computed", computed.Gains[pos],
			"user", user.Gains[pos],
		)
	}

	return &MismatchError{
		Layer:        layer,
		ComputedFlag: computed.Flag,
		UserFlag:     user.Flag,
		Positions:    positions,
		Computed:     computed,
		User:         user,
	}
}
