package flac

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/internal/reorder"
)

func TestFinishDoesNotWaitForStalledFrames(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(Config{SampleRate: 48000, BitDepth: iamfparam.Depth16, Channels: 1, SamplesPerFrame: 4})
	require.NoError(t, err)

	stalled := make(chan struct{})
	t.Cleanup(func() { close(stalled) })

	require.NoError(t, enc.pending.Expect(0, 4))
	enc.group.Go(func() error {
		<-stalled

		return nil
	})

	done := make(chan error, 1)

	go func() {
		_, err := enc.Finish(context.Background(), 20*time.Millisecond)
		done <- err
	}()

	select {
	case err := <-done:
		require.True(t, errors.Is(err, reorder.ErrTimeout), "got %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("Finish blocked on a stalled frame")
	}
}

func TestFinishReportsEncodeFailure(t *testing.T) {
	t.Parallel()

	enc, err := NewEncoder(Config{SampleRate: 48000, BitDepth: iamfparam.Depth16, Channels: 1, SamplesPerFrame: 4})
	require.NoError(t, err)

	errBroken := errors.New("broken frame")

	require.NoError(t, enc.pending.Expect(0, 4))
	enc.group.Go(func() error { return errBroken })

	_, err = enc.Finish(context.Background(), 5*time.Second)
	require.True(t, errors.Is(err, errBroken), "got %v", err)
}
