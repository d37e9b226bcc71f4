// Package layout models scalable channel layouts: the loudspeaker layout of each layer, the layer
// configuration carried in an audio element, and the channel compositions accumulated across layers.
package layout

import (
	"errors"
	"fmt"

	"github.com/mycophonic/iamfparam"
)

// Layout is the 4-bit loudspeaker layout of a channel layer.
type Layout uint8

// Loudspeaker layouts. Values 10 through 15 are reserved.
const (
	Mono     Layout = 0 // C
	Stereo   Layout = 1 // L/R
	L5_1     Layout = 2 // L/C/R/Ls/Rs/LFE
	L5_1_2   Layout = 3 // L/C/R/Ls/Rs/Ltf/Rtf/LFE
	L5_1_4   Layout = 4 // L/C/R/Ls/Rs/Ltf/Rtf/Ltr/Rtr/LFE
	L7_1     Layout = 5 // L/C/R/Lss/Rss/Lrs/Rrs/LFE
	L7_1_2   Layout = 6 // L/C/R/Lss/Rss/Lrs/Rrs/Ltf/Rtf/LFE
	L7_1_4   Layout = 7 // L/C/R/Lss/Rss/Lrs/Rrs/Ltf/Rtf/Ltb/Rtb/LFE
	L3_1_2   Layout = 8 // L/C/R/Ltf/Rtf/LFE
	Binaural Layout = 9 // L/R

	reservedBegin Layout = 10
)

// MaxLayers is the largest number of layers a scalable channel layout may declare.
const MaxLayers = 6

var (
	// ErrReservedLayout is returned for layouts in the reserved range.
	ErrReservedLayout = errors.New("reserved loudspeaker layout")
	// ErrLayerCount is returned when a topology has no layers or more than MaxLayers.
	ErrLayerCount = errors.New("invalid number of layers")
	// ErrBaseLayerReconGain is returned when the base layer declares recon gain.
	ErrBaseLayerReconGain = errors.New("base layer cannot carry recon gain")
	// ErrSubstreamCount is returned when coupled substreams outnumber substreams.
	ErrSubstreamCount = errors.New("coupled substream count exceeds substream count")
	// ErrOutputGainFlags is returned when output gain flags do not fit in 6 bits.
	ErrOutputGainFlags = errors.New("output gain flags exceed 6 bits")
)

//nolint:gochecknoglobals
var layoutNames = map[Layout]string{
	Mono:     "mono",
	Stereo:   "stereo",
	L5_1:     "5.1",
	L5_1_2:   "5.1.2",
	L5_1_4:   "5.1.4",
	L7_1:     "7.1",
	L7_1_2:   "7.1.2",
	L7_1_4:   "7.1.4",
	L3_1_2:   "3.1.2",
	Binaural: "binaural",
}

//nolint:gochecknoglobals
var layoutChannels = map[Layout]iamfparam.ChannelNumbers{
	Mono:     {Surround: 1},
	Stereo:   {Surround: 2},
	L5_1:     {Surround: 5, LFE: 1},
	L5_1_2:   {Surround: 5, Height: 2, LFE: 1},
	L5_1_4:   {Surround: 5, Height: 4, LFE: 1},
	L7_1:     {Surround: 7, LFE: 1},
	L7_1_2:   {Surround: 7, Height: 2, LFE: 1},
	L7_1_4:   {Surround: 7, Height: 4, LFE: 1},
	L3_1_2:   {Surround: 3, Height: 2, LFE: 1},
	Binaural: {Surround: 2},
}

// String returns the layout name as accepted by ParseLayout.
func (l Layout) String() string {
	if name, ok := layoutNames[l]; ok {
		return name
	}

	return fmt.Sprintf("reserved(%d)", uint8(l))
}

// ChannelNumbers returns the channel composition of the layout.
func (l Layout) ChannelNumbers() (iamfparam.ChannelNumbers, error) {
	numbers, ok := layoutChannels[l]
	if !ok {
		return iamfparam.ChannelNumbers{}, fmt.Errorf("%w: %w: %d", iamfparam.ErrInvalidArgument, ErrReservedLayout, l)
	}

	return numbers, nil
}

// ParseLayout converts a layout name ("mono", "stereo", "5.1", "7.1.4", ...) to a Layout.
func ParseLayout(name string) (Layout, error) {
	for layout, layoutName := range layoutNames {
		if layoutName == name {
			return layout, nil
		}
	}

	return 0, fmt.Errorf("%w: %w: %q", iamfparam.ErrInvalidArgument, ErrReservedLayout, name)
}

// ChannelLayer is one layer of a scalable channel layout.
type ChannelLayer struct {
	Layout                Layout
	SubstreamCount        uint8
	CoupledSubstreamCount uint8
	// ReconGainPresent declares that recon gain parameter blocks carry gains for this layer.
	ReconGainPresent  bool
	OutputGainPresent bool
	OutputGainFlags   uint8 // 6 bits
	OutputGain        int16
}

// Topology is an ordered list of channel layers. Index 0 is the base layer.
type Topology struct {
	Layers []ChannelLayer
}

// Validate checks the structural invariants of the topology.
func (t Topology) Validate() error {
	if len(t.Layers) == 0 || len(t.Layers) > MaxLayers {
		return fmt.Errorf("%w: %w: %d", iamfparam.ErrInvalidArgument, ErrLayerCount, len(t.Layers))
	}

	if t.Layers[0].ReconGainPresent {
		return fmt.Errorf("%w: %w", iamfparam.ErrInvalidArgument, ErrBaseLayerReconGain)
	}

	for idx, layer := range t.Layers {
		if layer.Layout >= reservedBegin {
			return fmt.Errorf("%w: layer %d: %w: %d", iamfparam.ErrInvalidArgument, idx, ErrReservedLayout, layer.Layout)
		}

		if layer.CoupledSubstreamCount > layer.SubstreamCount {
			return fmt.Errorf("%w: layer %d: %w", iamfparam.ErrInvalidArgument, idx, ErrSubstreamCount)
		}

		if layer.OutputGainFlags >= 1<<6 {
			return fmt.Errorf("%w: layer %d: %w", iamfparam.ErrInvalidArgument, idx, ErrOutputGainFlags)
		}
	}

	return nil
}

// ReconGainPresent returns the declared recon gain presence flag of every layer.
func (t Topology) ReconGainPresent() []bool {
	flags := make([]bool, len(t.Layers))
	for idx, layer := range t.Layers {
		flags[idx] = layer.ReconGainPresent
	}

	return flags
}

// ChannelNumbers returns the channel composition of every layer.
func (t Topology) ChannelNumbers() ([]iamfparam.ChannelNumbers, error) {
	numbers := make([]iamfparam.ChannelNumbers, len(t.Layers))

	for idx, layer := range t.Layers {
		n, err := layer.Layout.ChannelNumbers()
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", idx, err)
		}

		numbers[idx] = n
	}

	return numbers, nil
}
