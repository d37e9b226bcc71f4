package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/session"
	"github.com/mycophonic/iamfparam/wav"
)

const unitsYAML = `
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
    start_timestamp: 8
    subblocks:
      - recon_gain: {layers: [{gains: []}, {gains: [{bit: 0, value: 128}, {bit: 2, value: 128}, {bit: 3, value: 128}, {bit: 4, value: 128}]}]}
  - parameter_id: 200
    start_timestamp: 8
    subblocks:
      - mix_gain: {animation: step, start: 0}
  - parameter_id: 100
    start_timestamp: 0
    subblocks:
      - recon_gain: {layers: [{gains: []}, {gains: [{bit: 0, value: 128}, {bit: 2, value: 128}, {bit: 3, value: 128}, {bit: 4, value: 128}]}]}
  - parameter_id: 200
    start_timestamp: 0
    subblocks:
      - mix_gain: {animation: step, start: -256}
`

func constantAudio(value int32) *iamfparam.Planar {
	audio := &iamfparam.Planar{
		Format:   iamfparam.PCMFormat{SampleRate: 48000, BitDepth: iamfparam.Depth16, Channels: 4},
		Channels: make([][]int32, 4),
	}

	for ch := range audio.Channels {
		audio.Channels[ch] = make([]int32, 16)
		for i := range audio.Channels[ch] {
			audio.Channels[ch][i] = value
		}
	}

	return audio
}

func loadUnitsSession(t *testing.T) *session.Session {
	t.Helper()

	dir := t.TempDir()

	for name, value := range map[string]int32{"original.wav": 8192, "decoded.wav": 16384} {
		file, err := os.Create(filepath.Join(dir, name))
		require.NoError(t, err)
		require.NoError(t, wav.Encode(file, constantAudio(value)))
		require.NoError(t, file.Close())
	}

	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(unitsYAML), 0o600))

	sess, err := session.Load(path)
	require.NoError(t, err)

	return sess
}

func TestGeneratePerTemporalUnit(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelInfo}))

	records, err := generate(context.Background(), loadUnitsSession(t), logger)
	require.NoError(t, err)
	require.Equal(t, 4, len(records))

	kinds := make([]iamfparam.ParamKind, len(records))
	starts := make([]int64, len(records))

	for idx, record := range records {
		kinds[idx] = record.Kind
		starts[idx] = record.Start
	}

	require.Equal(t, []iamfparam.ParamKind{
		iamfparam.MixGain, iamfparam.ReconGain, iamfparam.MixGain, iamfparam.ReconGain,
	}, kinds)
	require.Equal(t, []int64{0, 0, 8, 8}, starts)

	// Each unit gets its own gain computer, verbose for its first block: four labels per unit.
	require.Equal(t, 8, strings.Count(logs.String(), `"msg":"computed recon gain"`))
}
