package element_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/element"
	"github.com/mycophonic/iamfparam/layout"
)

func stereoTo512() element.AudioElement {
	return element.AudioElement{
		ID:           300,
		SubstreamIDs: []uint32{0, 1, 2, 3},
		Topology: layout.Topology{Layers: []layout.ChannelLayer{
			{Layout: layout.Stereo, SubstreamCount: 1, CoupledSubstreamCount: 1},
			{Layout: layout.L5_1_2, SubstreamCount: 3, CoupledSubstreamCount: 2, ReconGainPresent: true},
		}},
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	elem := stereoTo512()
	require.NoError(t, elem.Validate())

	elem.SubstreamIDs = elem.SubstreamIDs[:3]
	err := elem.Validate()
	require.True(t, errors.Is(err, iamfparam.ErrInvalidArgument))
}

func TestChannelNumbersForLayers(t *testing.T) {
	t.Parallel()

	numbers, err := stereoTo512().ChannelNumbersForLayers()
	require.NoError(t, err)
	require.Equal(t, []iamfparam.ChannelNumbers{
		{Surround: 2},
		{Surround: 5, Height: 2, LFE: 1},
	}, numbers)
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	registry := element.Registry{300: stereoTo512()}

	elem, err := registry.Lookup(300)
	require.NoError(t, err)
	require.Equal(t, uint32(300), elem.ID)

	_, err = registry.Lookup(301)
	require.True(t, errors.Is(err, iamfparam.ErrNotFound))
}
