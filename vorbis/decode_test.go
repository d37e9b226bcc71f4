package vorbis_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mycophonic/primordium/fault"
	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam/vorbis"
)

func TestDecodeGarbage(t *testing.T) {
	t.Parallel()

	_, err := vorbis.Decode(bytes.NewReader([]byte("OggS not really a vorbis stream")))
	require.True(t, errors.Is(err, fault.ErrReadFailure))
}
