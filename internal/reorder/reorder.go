// Package reorder releases asynchronously produced frames in index order.
package reorder

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"
)

var (
	// ErrTimeout is returned when the head-of-line frame does not complete in time.
	ErrTimeout = errors.New("timed out waiting for frame")
	// ErrUnknownFrame is returned when data arrives for an index that was never expected.
	ErrUnknownFrame = errors.New("unexpected frame index")
	// ErrDuplicateFrame is returned when an index is expected twice.
	ErrDuplicateFrame = errors.New("frame index already expected")
)

// Frame is a completed frame.
type Frame struct {
	Index   int
	Data    []byte
	Samples int
}

type pending struct {
	expected int
	samples  int
	data     []byte
}

// Buffer collects frame pieces that may arrive out of order from several goroutines.
type Buffer struct {
	mu      sync.Mutex
	frames  map[int]*pending
	arrival chan struct{}
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{
		frames:  make(map[int]*pending),
		arrival: make(chan struct{}),
	}
}

// Expect registers frame index as complete once it holds samples samples.
func (b *Buffer) Expect(index, samples int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.frames[index]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateFrame, index)
	}

	b.frames[index] = &pending{expected: samples}

	return nil
}

// Append adds a piece of frame index covering samples samples.
func (b *Buffer) Append(index int, data []byte, samples int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	frame, ok := b.frames[index]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownFrame, index)
	}

	frame.data = append(frame.data, data...)
	frame.samples += samples

	// Wake every waiter.
	close(b.arrival)
	b.arrival = make(chan struct{})

	return nil
}

// Len returns the number of frames not yet released.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.frames)
}

// Drain waits for every expected frame and returns them in ascending index order. The timeout bounds
// the whole wait.
func (b *Buffer) Drain(ctx context.Context, timeout time.Duration) ([]Frame, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var out []Frame

	for {
		b.mu.Lock()

		if len(b.frames) == 0 {
			b.mu.Unlock()

			return out, nil
		}

		head := slices.Min(lo.Keys(b.frames))
		frame := b.frames[head]

		if frame.samples >= frame.expected {
			delete(b.frames, head)
			b.mu.Unlock()

			out = append(out, Frame{Index: head, Data: frame.data, Samples: frame.samples})

			continue
		}

		have, want := frame.samples, frame.expected
		arrival := b.arrival
		b.mu.Unlock()

		select {
		case <-arrival:
		case <-timer.C:
			return out, fmt.Errorf("%w: frame %d has %d of %d samples", ErrTimeout, head, have, want)
		case <-ctx.Done():
			return out, ctx.Err()
		}
	}
}
