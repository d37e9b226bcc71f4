package tests_test

import (
	"fmt"
	"os"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/wav"
)

// matchingGains are the layer 1 gains computed for the fixture audio (0.25 original over 0.5 decoded).
const matchingGains = "[{bit: 0, value: 128}, {bit: 2, value: 128}, {bit: 3, value: 128}, {bit: 4, value: 128}]"

// mismatchedGains differ from the computed gains at positions 3 and 7.
const mismatchedGains = "[{bit: 0, value: 128}, {bit: 2, value: 128}, {bit: 3, value: 7}, {bit: 4, value: 128}, " +
	"{bit: 7, value: 9}]"

const sessionTemplate = `
samples_per_frame: 8
audio_elements:
  - id: 1
    layers:
      - {layout: stereo, substream_count: 1, coupled_substream_count: 1}
      - {layout: "5.1", substream_count: 3, coupled_substream_count: 1, recon_gain_present: true}
    samples:
      original: original.wav
      decoded: decoded.wav
      channel_labels: [L3, R3, Ls5, Rs5]
param_definitions:
  - {parameter_id: 100, kind: recon_gain, rate: 48000, duration: 8, constant_subblock_duration: 8, audio_element_id: 1}
  - {parameter_id: 200, kind: mix_gain, rate: 48000, duration: 8, constant_subblock_duration: 8}
parameter_blocks:
  - parameter_id: 100
    start_timestamp: 0
    subblocks:
      - recon_gain: {layers: [{gains: []}, {gains: %[1]s}]}
  - parameter_id: 100
    start_timestamp: 8
    subblocks:
      - recon_gain: {layers: [{gains: []}, {gains: %[1]s}]}
  - parameter_id: 200
    start_timestamp: 0
    subblocks:
      - mix_gain: {animation: linear, start: -512, end: 0}
`

func planar(channels, frames int, value int32) *iamfparam.Planar {
	audio := &iamfparam.Planar{
		Format: iamfparam.PCMFormat{
			SampleRate: 48000,
			BitDepth:   iamfparam.Depth16,
			Channels:   uint(channels), //nolint:gosec // small test value.
		},
		Channels: make([][]int32, channels),
	}

	for ch := range audio.Channels {
		audio.Channels[ch] = make([]int32, frames)
		for i := range frames {
			audio.Channels[ch][i] = value
		}
	}

	return audio
}

func writeWAV(path string, audio *iamfparam.Planar) error {
	file, err := os.Create(path) //nolint:gosec // test fixture path.
	if err != nil {
		return err
	}
	defer file.Close()

	return wav.Encode(file, audio)
}

// writeSession writes a session file and its sample files in the test temp directory.
func writeSession(data test.Data, helpers test.Helpers, gains string) {
	// Original channels sit at half the decoded amplitude: every computed gain is 0.5.
	files := map[string]*iamfparam.Planar{
		"original.wav": planar(4, 16, 8192),
		"decoded.wav":  planar(4, 16, 16384),
	}

	for name, audio := range files {
		if err := writeWAV(data.Temp().Path(name), audio); err != nil {
			helpers.T().Log("writing " + name + ": " + err.Error())
			helpers.T().Fail()
		}
	}

	body := fmt.Sprintf(sessionTemplate, gains)
	if err := os.WriteFile(data.Temp().Path("session.yaml"), []byte(body), 0o600); err != nil {
		helpers.T().Log("writing session: " + err.Error())
		helpers.T().Fail()
	}
}
