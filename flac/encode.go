package flac

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // FLAC STREAMINFO carries an MD5 signature.
	"errors"
	"fmt"
	"hash"
	"io"
	"time"

	goflac "github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"golang.org/x/sync/errgroup"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/internal/reorder"
)

var (
	// ErrConfig is returned for an encoder configuration FLAC cannot carry.
	ErrConfig = errors.New("invalid encoder configuration")
	// ErrFrameShape is returned when frame samples do not match the configuration.
	ErrFrameShape = errors.New("frame does not match encoder configuration")
)

const maxChannels = 8

//nolint:gochecknoglobals
var channelAssignments = [maxChannels + 1]frame.Channels{
	1: frame.ChannelsMono,
	2: frame.ChannelsLR,
	3: frame.ChannelsLRC,
	4: frame.ChannelsLRLsRs,
	5: frame.ChannelsLRCLsRs,
	6: frame.ChannelsLRCLfeLsRs,
	7: frame.ChannelsLRCLfeCsSlSr,
	8: frame.ChannelsLRCLfeLsRsSlSr,
}

// Config describes the substream to encode.
type Config struct {
	SampleRate      int
	BitDepth        iamfparam.BitDepth
	Channels        int
	SamplesPerFrame int
}

func (c Config) validate() error {
	switch {
	case c.SampleRate <= 0 || c.SampleRate >= 1<<20:
		return fmt.Errorf("%w: sample rate %d", ErrConfig, c.SampleRate)
	case c.Channels < 1 || c.Channels > maxChannels:
		return fmt.Errorf("%w: %d channels", ErrConfig, c.Channels)
	case c.SamplesPerFrame <= 0 || c.SamplesPerFrame > 1<<16-1:
		return fmt.Errorf("%w: %d samples per frame", ErrConfig, c.SamplesPerFrame)
	}

	switch c.BitDepth {
	case iamfparam.Depth8, iamfparam.Depth16, iamfparam.Depth24:
		return nil
	default:
		return fmt.Errorf("%w: %w: %d", ErrConfig, ErrBitDepth, c.BitDepth)
	}
}

// Frame is one encoded FLAC frame.
type Frame struct {
	Index   int
	Samples int
	Data    []byte
}

// Encoder encodes frames concurrently. Frames complete in any order and are released in submission
// order by Finish. EncodeFrame and Finish must be called from a single goroutine.
type Encoder struct {
	cfg      Config
	group    *errgroup.Group
	groupCtx context.Context //nolint:containedctx // cancels Finish when an encode fails.
	pending  *reorder.Buffer
	next     int
	total    uint64
	md5sum   hash.Hash
}

// NewEncoder returns an Encoder for cfg.
func NewEncoder(cfg Config) (*Encoder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	group, groupCtx := errgroup.WithContext(context.Background())

	return &Encoder{
		cfg:      cfg,
		group:    group,
		groupCtx: groupCtx,
		pending:  reorder.New(),
		md5sum:   md5.New(), //nolint:gosec // see import.
	}, nil
}

// EncodeFrame submits one frame: a slice of samples per channel, at most SamplesPerFrame long.
func (e *Encoder) EncodeFrame(samples [][]int32) error {
	if len(samples) != e.cfg.Channels {
		return fmt.Errorf("%w: %d channels, expected %d", ErrFrameShape, len(samples), e.cfg.Channels)
	}

	n := len(samples[0])
	if n == 0 || n > e.cfg.SamplesPerFrame {
		return fmt.Errorf("%w: %d samples, expected 1 to %d", ErrFrameShape, n, e.cfg.SamplesPerFrame)
	}

	owned := make([][]int32, len(samples))

	for ch, channel := range samples {
		if len(channel) != n {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d", ErrFrameShape, ch, len(channel), n)
		}

		owned[ch] = append([]int32(nil), channel...)
	}

	index := e.next
	if err := e.pending.Expect(index, n); err != nil {
		return err
	}

	e.next++
	e.total += uint64(n)
	e.hash(owned)

	e.group.Go(func() error {
		return e.encode(index, owned)
	})

	return nil
}

// hash feeds interleaved little-endian samples to the stream MD5.
func (e *Encoder) hash(samples [][]int32) {
	width := e.cfg.BitDepth.BytesPerSample()
	buf := make([]byte, 0, len(samples)*len(samples[0])*width)

	for i := range samples[0] {
		for _, channel := range samples {
			for b := range width {
				buf = append(buf, byte(channel[i]>>(8*b)))
			}
		}
	}

	e.md5sum.Write(buf)
}

func (e *Encoder) streamInfo(nSamples uint64, sum [md5.Size]byte) *meta.StreamInfo {
	return &meta.StreamInfo{
		BlockSizeMin:  uint16(e.cfg.SamplesPerFrame), //nolint:gosec // validated.
		BlockSizeMax:  uint16(e.cfg.SamplesPerFrame), //nolint:gosec // validated.
		SampleRate:    uint32(e.cfg.SampleRate),      //nolint:gosec // validated.
		NChannels:     uint8(e.cfg.Channels),         //nolint:gosec // validated.
		BitsPerSample: uint8(e.cfg.BitDepth),         //nolint:gosec // validated.
		NSamples:      nSamples,
		MD5sum:        sum,
	}
}

// encode produces the bytes of one frame. A throwaway stream is written and its header discarded.
func (e *Encoder) encode(index int, samples [][]int32) error {
	n := len(samples[0])

	var buf bytes.Buffer

	enc, err := goflac.NewEncoder(&buf, e.streamInfo(0, [md5.Size]byte{}))
	if err != nil {
		return fmt.Errorf("frame %d: %w", index, err)
	}

	headerLen := buf.Len()

	audioFrame := &frame.Frame{
		Header: frame.Header{
			HasFixedBlockSize: true,
			BlockSize:         uint16(n), //nolint:gosec // bounded by SamplesPerFrame.
			SampleRate:        uint32(e.cfg.SampleRate), //nolint:gosec // validated.
			Channels:          channelAssignments[e.cfg.Channels],
			BitsPerSample:     uint8(e.cfg.BitDepth), //nolint:gosec // validated.
			Num:               uint64(index),          //nolint:gosec // non-negative.
		},
	}

	for _, channel := range samples {
		audioFrame.Subframes = append(audioFrame.Subframes, &frame.Subframe{
			SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
			Samples:   channel,
			NSamples:  n,
		})
	}

	if err := enc.WriteFrame(audioFrame); err != nil {
		return fmt.Errorf("frame %d: %w", index, err)
	}

	return e.pending.Append(index, bytes.Clone(buf.Bytes()[headerLen:]), n)
}

// Finish waits up to timeout for every submitted frame and returns them in order. On timeout it
// returns reorder.ErrTimeout without waiting for encodes still in flight.
func (e *Encoder) Finish(ctx context.Context, timeout time.Duration) ([]Frame, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := context.AfterFunc(e.groupCtx, cancel)
	defer stop()

	drained, drainErr := e.pending.Drain(ctx, timeout)
	if drainErr != nil {
		// Stalled encodes are not waited for: the group is only joined once every frame has arrived.
		if cause := context.Cause(e.groupCtx); cause != nil {
			return nil, cause
		}

		return nil, drainErr
	}

	if err := e.group.Wait(); err != nil {
		return nil, err
	}

	frames := make([]Frame, len(drained))
	for i, f := range drained {
		frames[i] = Frame{Index: f.Index, Samples: f.Samples, Data: f.Data}
	}

	return frames, nil
}

// WriteStream writes a complete FLAC stream: signature, STREAMINFO and frames.
func (e *Encoder) WriteStream(w io.Writer, frames []Frame) error {
	var sum [md5.Size]byte

	copy(sum[:], e.md5sum.Sum(nil))

	// The encoder is only used for the stream header; frames are already encoded.
	if _, err := goflac.NewEncoder(w, e.streamInfo(e.total, sum)); err != nil {
		return fmt.Errorf("writing stream header: %w", err)
	}

	for _, f := range frames {
		if _, err := w.Write(f.Data); err != nil {
			return fmt.Errorf("writing frame %d: %w", f.Index, err)
		}
	}

	return nil
}
