package demix

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/mycophonic/iamfparam"
)

// NumPositions is the number of gain positions in a recon gain element.
const NumPositions = 12

// Positions that never carry a gain: the center and LFE channels are never demixed.
const (
	PositionCenter = 1
	PositionLFE    = 11
)

var (
	// ErrUnknownLabel is returned for a label with no bit position.
	ErrUnknownLabel = errors.New("unrecognized demixed channel label")
	// ErrGainRange is returned for a gain outside [0, 1].
	ErrGainRange = errors.New("recon gain outside [0, 1]")
	// ErrPosition is returned for a bit position outside the table or on a reserved position.
	ErrPosition = errors.New("invalid recon gain bit position")
)

//nolint:gochecknoglobals
var bitPositions = map[Label]int{
	L7: 0, L5: 0, L3: 0,
	R7: 2, R5: 2, R3: 2, R2: 2,
	Ls5:  3,
	Rs5:  4,
	Ltf4: 5, Ltf2: 5,
	Rtf4: 6, Rtf2: 6,
	Lrs7: 7,
	Rrs7: 8,
	Ltb4: 9,
	Rtb4: 10,
}

// BitPosition returns the gain position of a demixed channel.
func BitPosition(label Label) (int, error) {
	pos, ok := bitPositions[label]
	if !ok {
		return 0, fmt.Errorf("%w: %w: %q", iamfparam.ErrInvalidArgument, ErrUnknownLabel, label)
	}

	return pos, nil
}

// ReconGain is one layer's recon gain element: a gain byte per position and the presence bitmask.
type ReconGain struct {
	Gains [NumPositions]uint8
	Flag  uint16
}

// Present reports whether position pos carries a gain.
func (r ReconGain) Present(pos int) bool {
	return r.Flag&(1<<pos) != 0
}

// Positions returns the positions carrying a gain, ascending.
func (r ReconGain) Positions() []int {
	var positions []int

	for pos := range NumPositions {
		if r.Present(pos) {
			positions = append(positions, pos)
		}
	}

	return positions
}

// Diff returns every gain position whose byte differs from other, ascending.
func (r ReconGain) Diff(other ReconGain) []int {
	var diff []int

	for pos := range NumPositions {
		if r.Gains[pos] != other.Gains[pos] {
			diff = append(diff, pos)
		}
	}

	return diff
}

// Quantize converts a gain in [0, 1] to its byte value.
func Quantize(gain float64) (uint8, error) {
	if math.IsNaN(gain) || gain < 0 || gain > 1 {
		return 0, fmt.Errorf("%w: %w: %v", iamfparam.ErrInvalidArgument, ErrGainRange, gain)
	}

	return uint8(math.Round(gain * math.MaxUint8)), nil
}

// Encode builds a recon gain element from per-label gains.
func Encode(gains map[Label]float64) (ReconGain, error) {
	var element ReconGain

	labels := make([]Label, 0, len(gains))
	for label := range gains {
		labels = append(labels, label)
	}

	slices.Sort(labels)

	for _, label := range labels {
		pos, err := BitPosition(label)
		if err != nil {
			return ReconGain{}, err
		}

		value, err := Quantize(gains[label])
		if err != nil {
			return ReconGain{}, fmt.Errorf("%s: %w", label, err)
		}

		element.Flag |= 1 << pos
		element.Gains[pos] = value
	}

	return element, nil
}

// Position is a user-supplied gain byte at a bit position.
type Position struct {
	Bit   int
	Value uint8
}

// FromPositions builds a recon gain element from explicit bit positions.
func FromPositions(positions []Position) (ReconGain, error) {
	var element ReconGain

	for _, p := range positions {
		if p.Bit < 0 || p.Bit >= NumPositions || p.Bit == PositionCenter || p.Bit == PositionLFE {
			return ReconGain{}, fmt.Errorf("%w: %w: %d", iamfparam.ErrInvalidArgument, ErrPosition, p.Bit)
		}

		element.Flag |= 1 << p.Bit
		element.Gains[p.Bit] = p.Value
	}

	return element, nil
}
