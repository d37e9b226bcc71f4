// Package element holds channel-based audio elements and their registry.
package element

import (
	"fmt"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/layout"
)

// AudioElement is a channel-based audio element carrying a scalable channel layout.
type AudioElement struct {
	ID            uint32
	CodecConfigID uint32
	SubstreamIDs  []uint32
	Topology      layout.Topology
}

// Validate checks the topology and that the layers account for every substream.
func (e AudioElement) Validate() error {
	if err := e.Topology.Validate(); err != nil {
		return fmt.Errorf("audio element %d: %w", e.ID, err)
	}

	total := 0
	for _, layer := range e.Topology.Layers {
		total += int(layer.SubstreamCount)
	}

	if len(e.SubstreamIDs) != 0 && total != len(e.SubstreamIDs) {
		return fmt.Errorf("%w: audio element %d: layers declare %d substreams, element lists %d",
			iamfparam.ErrInvalidArgument, e.ID, total, len(e.SubstreamIDs))
	}

	return nil
}

// ChannelNumbersForLayers returns the channel composition of every layer.
func (e AudioElement) ChannelNumbersForLayers() ([]iamfparam.ChannelNumbers, error) {
	numbers, err := e.Topology.ChannelNumbers()
	if err != nil {
		return nil, fmt.Errorf("audio element %d: %w", e.ID, err)
	}

	return numbers, nil
}

// Registry maps audio element ids to audio elements.
type Registry map[uint32]AudioElement

// Lookup returns the audio element registered under id.
func (r Registry) Lookup(id uint32) (AudioElement, error) {
	elem, ok := r[id]
	if !ok {
		return AudioElement{}, fmt.Errorf("%w: audio element %d", iamfparam.ErrNotFound, id)
	}

	return elem, nil
}
