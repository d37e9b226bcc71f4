package paramdef_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/paramdef"
)

func TestDefinitionValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     paramdef.Definition
		wantErr error
	}{
		{
			name: "fixed constant subblocks",
			def:  paramdef.Definition{Kind: iamfparam.MixGain, Duration: 64, ConstantSubblockDuration: 32},
		},
		{
			name: "fixed explicit subblocks",
			def: paramdef.Definition{
				Kind: iamfparam.MixGain, Duration: 64, SubblockDurations: []uint32{16, 48},
			},
		},
		{
			name: "variable ignores duration",
			def:  paramdef.Definition{Kind: iamfparam.Demixing, Mode: paramdef.ModeVariable},
		},
		{
			name:    "fixed without duration",
			def:     paramdef.Definition{Kind: iamfparam.ReconGain},
			wantErr: paramdef.ErrDuration,
		},
		{
			name: "explicit subblocks do not add up",
			def: paramdef.Definition{
				Kind: iamfparam.MixGain, Duration: 64, SubblockDurations: []uint32{16, 16},
			},
			wantErr: paramdef.ErrSubblockDurations,
		},
		{
			name:    "extension kind",
			def:     paramdef.Definition{Kind: iamfparam.ParamKind(3), Duration: 8, ConstantSubblockDuration: 8},
			wantErr: iamfparam.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.def.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)

				return
			}

			require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			require.True(t, errors.Is(err, iamfparam.ErrInvalidArgument))
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	t.Parallel()

	registry := paramdef.Registry{7: {ParameterID: 7, Kind: iamfparam.MixGain}}

	def, err := registry.Lookup(7)
	require.NoError(t, err)
	require.Equal(t, iamfparam.MixGain, def.Kind)

	_, err = registry.Lookup(8)
	require.True(t, errors.Is(err, iamfparam.ErrNotFound))
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for _, want := range []paramdef.Mode{paramdef.ModeFixed, paramdef.ModeVariable} {
		got, err := paramdef.ParseMode(want.String())
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	mode, err := paramdef.ParseMode("")
	require.NoError(t, err)
	require.Equal(t, paramdef.ModeFixed, mode)

	_, err = paramdef.ParseMode("adaptive")
	require.True(t, errors.Is(err, iamfparam.ErrInvalidArgument))
}
