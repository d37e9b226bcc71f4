package paramblock_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/paramblock"
)

func TestNumSubblocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                     string
		duration, constant, nsub uint32
		want                     int
		wantErr                  error
	}{
		{"constant divides", 64, 16, 0, 4, nil},
		{"constant rounds up", 65, 16, 0, 5, nil},
		{"constant ignores explicit count", 32, 32, 7, 1, nil},
		{"maximum duration rounds up", math.MaxUint32, 2, 0, 1 << 31, nil},
		{"maximum duration and constant", math.MaxUint32, math.MaxUint32, 0, 1, nil},
		{"explicit", 64, 0, 3, 3, nil},
		{"explicit zero", 64, 0, 0, 0, paramblock.ErrSubblockCount},
		{"zero duration", 0, 16, 0, 0, paramblock.ErrDuration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := paramblock.NumSubblocks(tt.duration, tt.constant, tt.nsub)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				require.True(t, errors.Is(err, iamfparam.ErrInvalidArgument))

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSubblockDuration(t *testing.T) {
	t.Parallel()

	require.Equal(t, uint32(16), paramblock.SubblockDuration(0, 65, 16))
	require.Equal(t, uint32(16), paramblock.SubblockDuration(3, 65, 16))
	require.Equal(t, uint32(1), paramblock.SubblockDuration(4, 65, 16))
}

func TestPayloadKinds(t *testing.T) {
	t.Parallel()

	payloads := map[iamfparam.ParamKind]paramblock.Payload{
		iamfparam.MixGain:   &paramblock.MixGain{},
		iamfparam.Demixing:  &paramblock.DemixingInfo{},
		iamfparam.ReconGain: &paramblock.ReconGainInfo{},
	}

	for kind, payload := range payloads {
		require.Equal(t, kind, payload.Kind())
	}
}

func TestParseAnimation(t *testing.T) {
	t.Parallel()

	for _, want := range []paramblock.Animation{
		paramblock.AnimateStep, paramblock.AnimateLinear, paramblock.AnimateBezier,
	} {
		got, err := paramblock.ParseAnimation(want.String())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := paramblock.ParseAnimation("cubic")
	require.True(t, errors.Is(err, iamfparam.ErrInvalidArgument))
}

func TestRecordLogValue(t *testing.T) {
	t.Parallel()

	record := paramblock.Record{ParameterID: 9, Kind: iamfparam.Demixing, Duration: 8, Start: 8, End: 16}
	attrs := record.LogValue().Group()

	got := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		got[attr.Key] = attr.Value.String()
	}

	require.Equal(t, "9", got["parameter_id"])
	require.Equal(t, "demixing", got["kind"])
	require.Equal(t, "8", got["start_timestamp"])
	require.Equal(t, "16", got["end_timestamp"])
}
