package recongain

import (
	"log/slog"
	"math"

	"github.com/mycophonic/iamfparam/demix"
)

// Mean power under which a channel is treated as silent (-80 dBFS).
const silenceThreshold = 1e-8

// Computer estimates recon gains from original and decoded frames.
type Computer struct {
	original LabeledFrames
	decoded  LabeledFrames
	logger   *slog.Logger
	verbose  bool
}

// New returns a Computer. A nil logger discards output.
func New(original, decoded LabeledFrames, logger *slog.Logger) *Computer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Computer{original: original, decoded: decoded, logger: logger}
}

// SetVerbose toggles logging of every computed gain.
func (c *Computer) SetVerbose(verbose bool) {
	c.verbose = verbose
}

// ReconGain returns the gain in [0, 1] to apply to demixed channel label of an audio element, for the
// frame starting at timestamp.
func (c *Computer) ReconGain(label demix.Label, audioElementID uint32, timestamp int64) (float64, error) {
	channel := label.Channel()

	original, err := c.original.Lookup(audioElementID, timestamp, channel)
	if err != nil {
		return 0, err
	}

	decoded, err := c.decoded.Lookup(audioElementID, timestamp, channel)
	if err != nil {
		return 0, err
	}

	gain := Gain(original, decoded)

	if c.verbose {
		c.logger.Info("computed recon gain",
			"label", label,
			"audio_element_id", audioElementID,
			"timestamp", timestamp,
			"gain", gain,
		)
	}

	return gain, nil
}

// Gain compares the energy of the original and decoded samples of a channel.
func Gain(original, decoded []float64) float64 {
	eo := meanPower(original)
	if eo < silenceThreshold {
		return 0
	}

	ed := meanPower(decoded)
	if ed < silenceThreshold {
		return 1
	}

	return min(1, math.Sqrt(eo/ed))
}

func meanPower(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += s * s
	}

	return sum / float64(len(samples))
}
