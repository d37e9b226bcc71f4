// Package paramdef holds parameter definitions: the static, per-id attributes shared by every
// parameter block carrying that id.
package paramdef

import (
	"errors"
	"fmt"

	"github.com/mycophonic/iamfparam"
)

// Mode selects where a parameter block takes its duration and subblock layout from.
type Mode uint8

const (
	// ModeFixed takes duration and subblocking from the definition.
	ModeFixed Mode = 0
	// ModeVariable takes duration and subblocking from each parameter block.
	ModeVariable Mode = 1
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	if m == ModeVariable {
		return "variable"
	}

	return "fixed"
}

// ParseMode converts a configuration name to a Mode. An empty name is fixed mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "fixed":
		return ModeFixed, nil
	case "variable":
		return ModeVariable, nil
	}

	return 0, fmt.Errorf("%w: unsupported parameter definition mode %q", iamfparam.ErrInvalidArgument, name)
}

var (
	// ErrDuration is returned when a fixed-mode definition has no duration.
	ErrDuration = errors.New("fixed-mode definition requires a duration")
	// ErrSubblockDurations is returned when explicit subblock durations do not add up.
	ErrSubblockDurations = errors.New("subblock durations do not sum to the duration")
)

// Definition is the static definition of a parameter id.
type Definition struct {
	ParameterID uint32
	Kind        iamfparam.ParamKind
	Rate        uint32
	Mode        Mode
	// Duration, ConstantSubblockDuration and SubblockDurations apply in ModeFixed only.
	Duration                 uint32
	ConstantSubblockDuration uint32
	SubblockDurations        []uint32
	// AudioElementID is the owning audio element of a recon gain parameter.
	AudioElementID uint32
	// DefaultMixGain applies to mix gain parameters.
	DefaultMixGain int16
}

// Validate checks the definition is self-consistent.
func (d Definition) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("%w: parameter %d: unsupported kind %s", iamfparam.ErrInvalidArgument, d.ParameterID, d.Kind)
	}

	if d.Mode != ModeFixed {
		return nil
	}

	if d.Duration == 0 {
		return fmt.Errorf("%w: parameter %d: %w", iamfparam.ErrInvalidArgument, d.ParameterID, ErrDuration)
	}

	if d.ConstantSubblockDuration != 0 {
		return nil
	}

	var sum uint64
	for _, duration := range d.SubblockDurations {
		sum += uint64(duration)
	}

	if sum != uint64(d.Duration) {
		return fmt.Errorf("%w: parameter %d: %w: %d != %d",
			iamfparam.ErrInvalidArgument, d.ParameterID, ErrSubblockDurations, sum, d.Duration)
	}

	return nil
}

// Registry maps parameter ids to their definitions.
type Registry map[uint32]Definition

// Lookup returns the definition registered under id.
func (r Registry) Lookup(id uint32) (Definition, error) {
	def, ok := r[id]
	if !ok {
		return Definition{}, fmt.Errorf("%w: parameter definition %d", iamfparam.ErrNotFound, id)
	}

	return def, nil
}
