// Package recongain estimates per-channel reconstruction gains by comparing original channel audio
// against the channels recovered by demixing the decoded base layers.
package recongain

import (
	"errors"
	"fmt"

	"github.com/mycophonic/iamfparam"
)

var (
	// ErrInsufficientData is returned when no samples exist for an element, timestamp or channel.
	ErrInsufficientData = errors.New("insufficient sample data")
	// ErrChannelLabels is returned when the label list does not match the channel count.
	ErrChannelLabels = errors.New("channel labels do not match channel count")
	// ErrFrameSize is returned for a non-positive frame size.
	ErrFrameSize = errors.New("samples per frame must be positive")
)

// Frame holds one temporal unit of samples in [-1, 1], keyed by channel label ("L7", "Ls5", ...).
type Frame map[string][]float64

// LabeledFrames holds frames per audio element id, then per start timestamp.
type LabeledFrames map[uint32]map[int64]Frame

// Add stores the frames of an audio element, replacing frames already stored at the same timestamps.
func (l LabeledFrames) Add(audioElementID uint32, frames map[int64]Frame) {
	existing, ok := l[audioElementID]
	if !ok {
		l[audioElementID] = frames

		return
	}

	for ts, frame := range frames {
		existing[ts] = frame
	}
}

// Lookup returns the samples of a channel at a timestamp.
func (l LabeledFrames) Lookup(audioElementID uint32, timestamp int64, channel string) ([]float64, error) {
	frames, ok := l[audioElementID]
	if !ok {
		return nil, fmt.Errorf("%w: %w: no frames for audio element %d",
			iamfparam.ErrInvalidArgument, ErrInsufficientData, audioElementID)
	}

	frame, ok := frames[timestamp]
	if !ok {
		return nil, fmt.Errorf("%w: %w: audio element %d has no frame at timestamp %d",
			iamfparam.ErrInvalidArgument, ErrInsufficientData, audioElementID, timestamp)
	}

	samples, ok := frame[channel]
	if !ok || len(samples) == 0 {
		return nil, fmt.Errorf("%w: %w: audio element %d has no channel %s at timestamp %d",
			iamfparam.ErrInvalidArgument, ErrInsufficientData, audioElementID, channel, timestamp)
	}

	return samples, nil
}

// Split cuts planar audio into frames of samplesPerFrame samples, keyed by start timestamp in samples.
// The last frame may be shorter.
func Split(audio *iamfparam.Planar, channelLabels []string, samplesPerFrame int) (map[int64]Frame, error) {
	if samplesPerFrame <= 0 {
		return nil, fmt.Errorf("%w: %w: %d", iamfparam.ErrInvalidArgument, ErrFrameSize, samplesPerFrame)
	}

	if len(channelLabels) != len(audio.Channels) {
		return nil, fmt.Errorf("%w: %w: %d labels for %d channels",
			iamfparam.ErrInvalidArgument, ErrChannelLabels, len(channelLabels), len(audio.Channels))
	}

	total := audio.Frames()
	frames := make(map[int64]Frame, (total+samplesPerFrame-1)/samplesPerFrame)

	for start := 0; start < total; start += samplesPerFrame {
		end := min(start+samplesPerFrame, total)
		frame := make(Frame, len(channelLabels))

		for ch, label := range channelLabels {
			samples := make([]float64, end-start)
			for i := range samples {
				samples[i] = audio.Float(ch, start+i)
			}

			frame[label] = samples
		}

		frames[int64(start)] = frame
	}

	return frames, nil
}
