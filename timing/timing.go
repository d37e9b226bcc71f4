// Package timing hands out contiguous, non-overlapping time ranges per parameter id.
package timing

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mycophonic/iamfparam"
)

var (
	// ErrZeroDuration is returned when a range of zero duration is requested.
	ErrZeroDuration = errors.New("duration must be positive")
	// ErrOverlap is returned when a requested start falls before the end of the previous range.
	ErrOverlap = errors.New("range overlaps the previous range")
	// ErrGap is returned when a requested start falls after the end of the previous range.
	ErrGap = errors.New("range leaves a gap after the previous range")
)

// Module tracks the next timestamp of every parameter id. It is safe for concurrent use.
type Module struct {
	mu   sync.Mutex
	next map[uint32]int64
}

// New returns an empty Module.
func New() *Module {
	return &Module{next: make(map[uint32]int64)}
}

// NextRange returns the [start, end) range of the next block of parameterID.
//
// The first range of an id starts at requestedStart. Every later range must start exactly where the
// previous one ended.
func (m *Module) NextRange(parameterID uint32, requestedStart int64, duration uint32) (int64, int64, error) {
	if duration == 0 {
		return 0, 0, fmt.Errorf("%w: parameter %d: %w", iamfparam.ErrInvalidArgument, parameterID, ErrZeroDuration)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if expected, ok := m.next[parameterID]; ok {
		switch {
		case requestedStart < expected:
			return 0, 0, fmt.Errorf("%w: parameter %d: %w: start %d, previous end %d",
				iamfparam.ErrInvalidArgument, parameterID, ErrOverlap, requestedStart, expected)
		case requestedStart > expected:
			return 0, 0, fmt.Errorf("%w: parameter %d: %w: start %d, previous end %d",
				iamfparam.ErrInvalidArgument, parameterID, ErrGap, requestedStart, expected)
		}
	}

	end := requestedStart + int64(duration)
	m.next[parameterID] = end

	return requestedStart, end, nil
}

// Next returns the start of the next range of parameterID and whether the id has been seen.
func (m *Module) Next(parameterID uint32) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next, ok := m.next[parameterID]

	return next, ok
}
