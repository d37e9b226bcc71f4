package layout

import "github.com/mycophonic/iamfparam"

// Accumulate folds per-layer compositions into the accumulated state seen before each layer.
//
// The result has len(layers)+1 entries: states[0] is the empty composition and states[i+1] is the
// composition reached after layer i. Layer i is demixed against states[i].
func Accumulate(layers []iamfparam.ChannelNumbers) []iamfparam.ChannelNumbers {
	states := make([]iamfparam.ChannelNumbers, len(layers)+1)

	for idx, layer := range layers {
		states[idx+1] = combine(states[idx], layer)
	}

	return states
}

// combine advances the accumulated state by one layer. Every layer carries its full composition,
// so the previous state is replaced.
func combine(_ iamfparam.ChannelNumbers, layer iamfparam.ChannelNumbers) iamfparam.ChannelNumbers {
	return layer
}

// Monotonic reports whether surround and height counts never decrease from one layer to the next.
func Monotonic(layers []iamfparam.ChannelNumbers) bool {
	for idx := 1; idx < len(layers); idx++ {
		if layers[idx].Surround < layers[idx-1].Surround || layers[idx].Height < layers[idx-1].Height {
			return false
		}
	}

	return true
}
