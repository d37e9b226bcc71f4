package generator

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/element"
	"github.com/mycophonic/iamfparam/paramdef"
)

// PerIDMetadata is what the generator needs to know about a parameter id, resolved once before any
// generation. Recon gain fields are set for ReconGain parameters only.
type PerIDMetadata struct {
	Kind       iamfparam.ParamKind
	Definition paramdef.Definition

	AudioElementID   uint32
	NumLayers        int
	ReconGainPresent []bool
	ChannelNumbers   []iamfparam.ChannelNumbers
}

func (m PerIDMetadata) clone() PerIDMetadata {
	m.Definition.SubblockDurations = slices.Clone(m.Definition.SubblockDurations)
	m.ReconGainPresent = slices.Clone(m.ReconGainPresent)
	m.ChannelNumbers = slices.Clone(m.ChannelNumbers)

	return m
}

// ErrNoTopology is returned when a recon gain parameter's audio element has no layers.
var ErrNoTopology = errors.New("audio element has no scalable channel layout")

// ResolveOne builds the metadata of a single parameter id.
func ResolveOne(parameterID uint32, elements element.Registry, defs paramdef.Registry) (PerIDMetadata, error) {
	def, err := defs.Lookup(parameterID)
	if err != nil {
		return PerIDMetadata{}, err
	}

	meta := PerIDMetadata{Kind: def.Kind, Definition: def}

	switch def.Kind {
	case iamfparam.MixGain, iamfparam.Demixing:
		return meta, nil
	case iamfparam.ReconGain:
	default:
		return PerIDMetadata{}, fmt.Errorf("%w: parameter %d: unsupported parameter kind %s",
			iamfparam.ErrInvalidArgument, parameterID, def.Kind)
	}

	elem, ok := elements[def.AudioElementID]
	if !ok {
		return PerIDMetadata{}, fmt.Errorf("%w: audio element %d associated with recon gain parameter %d not found",
			iamfparam.ErrInternal, def.AudioElementID, parameterID)
	}

	if len(elem.Topology.Layers) == 0 {
		return PerIDMetadata{}, fmt.Errorf("%w: audio element %d: %w", iamfparam.ErrInternal, elem.ID, ErrNoTopology)
	}

	numbers, err := elem.ChannelNumbersForLayers()
	if err != nil {
		return PerIDMetadata{}, err
	}

	meta.AudioElementID = elem.ID
	meta.NumLayers = len(elem.Topology.Layers)
	meta.ReconGainPresent = elem.Topology.ReconGainPresent()
	meta.ChannelNumbers = numbers

	return meta, nil
}

// Resolve builds the metadata of every registered parameter definition. The returned map is the
// only input a Generator accepts.
func Resolve(elements element.Registry, defs paramdef.Registry) (map[uint32]PerIDMetadata, error) {
	ids := lo.Keys(defs)
	slices.Sort(ids)

	metadata := make(map[uint32]PerIDMetadata, len(ids))

	for _, id := range ids {
		meta, err := ResolveOne(id, elements, defs)
		if err != nil {
			return nil, err
		}

		metadata[id] = meta
	}

	return metadata, nil
}
