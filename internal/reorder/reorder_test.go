package reorder_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mycophonic/iamfparam/internal/reorder"
)

func TestDrainShuffledArrival(t *testing.T) {
	t.Parallel()

	const frames = 32

	buf := reorder.New()
	for idx := range frames {
		require.NoError(t, buf.Expect(idx, 2))
	}

	order := rand.Perm(frames)

	var wg sync.WaitGroup

	for _, idx := range order {
		wg.Add(1)

		go func() {
			defer wg.Done()

			// Each frame arrives in two pieces.
			for piece := range 2 {
				if err := buf.Append(idx, []byte{byte(idx), byte(piece)}, 1); err != nil {
					t.Errorf("append %d: %v", idx, err)
				}
			}
		}()
	}

	out, err := buf.Drain(context.Background(), 5*time.Second)
	require.NoError(t, err)
	wg.Wait()

	require.Equal(t, frames, len(out))

	for idx, frame := range out {
		require.Equal(t, idx, frame.Index)
		require.Equal(t, 2, frame.Samples)
		require.Equal(t, 4, len(frame.Data))
	}

	require.Equal(t, 0, buf.Len())
}

func TestDrainTimeout(t *testing.T) {
	t.Parallel()

	buf := reorder.New()
	require.NoError(t, buf.Expect(0, 1))
	require.NoError(t, buf.Expect(1, 1))
	require.NoError(t, buf.Append(0, []byte{1}, 1))

	out, err := buf.Drain(context.Background(), 20*time.Millisecond)
	require.True(t, errors.Is(err, reorder.ErrTimeout))
	require.Equal(t, 1, len(out))
	require.Equal(t, 0, out[0].Index)
}

func TestDrainContextCanceled(t *testing.T) {
	t.Parallel()

	buf := reorder.New()
	require.NoError(t, buf.Expect(0, 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := buf.Drain(ctx, time.Minute)
	require.True(t, errors.Is(err, context.Canceled))
}

func TestUnknownAndDuplicate(t *testing.T) {
	t.Parallel()

	buf := reorder.New()

	err := buf.Append(3, nil, 1)
	require.True(t, errors.Is(err, reorder.ErrUnknownFrame))

	require.NoError(t, buf.Expect(3, 1))
	require.True(t, errors.Is(buf.Expect(3, 1), reorder.ErrDuplicateFrame))
}
