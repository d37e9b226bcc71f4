// Package demix derives which channels of a scalable channel layout are reconstructed by demixing,
// and encodes their recon gains into the fixed 12-position gain array of a recon gain element.
package demix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mycophonic/iamfparam"
)

// Label names a demixed channel.
type Label string

// Demixed channel labels. The numeric suffix is the surround (or height) count of the layer the
// channel belongs to.
const (
	R2   Label = "D_R2"
	L3   Label = "D_L3"
	R3   Label = "D_R3"
	L5   Label = "D_L5"
	R5   Label = "D_R5"
	Ls5  Label = "D_Ls5"
	Rs5  Label = "D_Rs5"
	L7   Label = "D_L7"
	R7   Label = "D_R7"
	Lrs7 Label = "D_Lrs7"
	Rrs7 Label = "D_Rrs7"
	Ltf2 Label = "D_Ltf2"
	Rtf2 Label = "D_Rtf2"
	Ltf4 Label = "D_Ltf4"
	Rtf4 Label = "D_Rtf4"
	Ltb4 Label = "D_Ltb4"
	Rtb4 Label = "D_Rtb4"
)

// Channel returns the label without its demixing prefix ("D_Ls5" -> "Ls5").
func (l Label) Channel() string {
	return strings.TrimPrefix(string(l), "D_")
}

// maxSurround is the widest surround count a layer can declare.
const maxSurround = 7

// ErrSurroundCount is returned when a layer declares more surround channels than supported.
var ErrSurroundCount = errors.New("unsupported number of surround channels")

// Derive returns the channels of the current layer that are reconstructed by demixing, given the
// composition accumulated over the previous layers.
//
// Surround labels come first, in ascending surround count, followed by height labels.
func Derive(accumulated, current iamfparam.ChannelNumbers) ([]Label, error) {
	var labels []Label

	for surround := accumulated.Surround + 1; surround <= current.Surround; surround++ {
		switch surround {
		case 2:
			// Mono to stereo.
			if accumulated.Surround == 1 {
				labels = append(labels, R2)
			}
		case 3:
			labels = append(labels, L3, R3)
		case 5:
			labels = append(labels, Ls5, Rs5)
		case maxSurround:
			labels = append(labels, L7, R7, Lrs7, Rrs7)
		default:
			if surround > maxSurround {
				return nil, fmt.Errorf("%w: %w: %d", iamfparam.ErrInvalidArgument, ErrSurroundCount, surround)
			}
		}
	}

	if accumulated.Height == 2 {
		switch {
		case current.Height == 4:
			labels = append(labels, Ltb4, Rtb4)
		case current.Height == 2 && accumulated.Surround == 3 && current.Surround > 3:
			labels = append(labels, Ltf2, Rtf2)
		}
	}

	return labels, nil
}
