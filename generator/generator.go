// Package generator turns buffered parameter block metadata into parameter block records: it resolves
// the time range of each block, converts subblocks to their bitstream widths and, for recon gain
// parameters, checks user gains against gains computed from the audio.
package generator

import (
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
	"github.com/mycophonic/iamfparam/paramblock"
	"github.com/mycophonic/iamfparam/paramdef"
	"github.com/mycophonic/iamfparam/recongain"
)

// Sequencer hands out the [start, end) range of the next block of a parameter id.
type Sequencer interface {
	NextRange(parameterID uint32, requestedStart int64, duration uint32) (int64, int64, error)
}

// GainComputer computes the recon gain of a demixed channel at a timestamp.
type GainComputer interface {
	ReconGain(label demix.Label, audioElementID uint32, timestamp int64) (float64, error)
	SetVerbose(verbose bool)
}

// GainComputerFactory builds the GainComputer of one recon gain generation.
type GainComputerFactory func(original, decoded recongain.LabeledFrames) GainComputer

// Option configures a Generator.
type Option func(*Generator)

// WithOverride skips recon gain validation: user gains are emitted as is.
func WithOverride(override bool) Option {
	return func(g *Generator) { g.override = override }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// WithGainComputerFactory replaces the energy-based gain computer.
func WithGainComputerFactory(factory GainComputerFactory) Option {
	return func(g *Generator) { g.newGainComputer = factory }
}

// Generator buffers parameter block metadata per kind and generates records on demand.
// It is not safe for concurrent use.
type Generator struct {
	metadata        map[uint32]PerIDMetadata
	override        bool
	logger          *slog.Logger
	newGainComputer GainComputerFactory
	queues          map[iamfparam.ParamKind][]Instance
}

// New returns a Generator over a copy of resolved metadata (see Resolve).
func New(metadata map[uint32]PerIDMetadata, opts ...Option) *Generator {
	g := &Generator{
		metadata: lo.MapValues(metadata, func(meta PerIDMetadata, _ uint32) PerIDMetadata { return meta.clone() }),
		logger:   slog.New(slog.DiscardHandler),
		queues:   make(map[iamfparam.ParamKind][]Instance),
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.newGainComputer == nil {
		logger := g.logger
		g.newGainComputer = func(original, decoded recongain.LabeledFrames) GainComputer {
			return recongain.New(original, decoded, logger)
		}
	}

	return g
}

// AddMetadata buffers a block for generation and returns its duration.
func (g *Generator) AddMetadata(inst Instance) (uint32, error) {
	meta, ok := g.metadata[inst.ParameterID]
	if !ok {
		return 0, fmt.Errorf("%w: parameter id %d", iamfparam.ErrNotFound, inst.ParameterID)
	}

	g.queues[meta.Kind] = append(g.queues[meta.Kind], inst)

	return ResolveDuration(meta.Definition, inst), nil
}

// Pending returns the number of buffered blocks of a kind.
func (g *Generator) Pending(kind iamfparam.ParamKind) int {
	return len(g.queues[kind])
}

// GenerateDemixing generates every buffered demixing block.
func (g *Generator) GenerateDemixing(seq Sequencer) ([]paramblock.Record, error) {
	return g.generate(iamfparam.Demixing, seq, nil)
}

// GenerateMixGain generates every buffered mix gain block.
func (g *Generator) GenerateMixGain(seq Sequencer) ([]paramblock.Record, error) {
	return g.generate(iamfparam.MixGain, seq, nil)
}

// GenerateReconGain generates every buffered recon gain block, computing gains from the original and
// decoded frames.
func (g *Generator) GenerateReconGain(
	original, decoded recongain.LabeledFrames,
	seq Sequencer,
) ([]paramblock.Record, error) {
	gains := g.newGainComputer(original, decoded)
	gains.SetVerbose(true)

	return g.generate(iamfparam.ReconGain, seq, gains)
}

// generate drains the queue of kind in arrival order. The queue is cleared even on failure.
func (g *Generator) generate(kind iamfparam.ParamKind, seq Sequencer, gains GainComputer) ([]paramblock.Record, error) {
	queue := g.queues[kind]
	delete(g.queues, kind)

	records := make([]paramblock.Record, 0, len(queue))

	for _, inst := range queue {
		record, err := g.record(inst, seq, gains)
		if err != nil {
			return nil, err
		}

		if gains != nil {
			gains.SetVerbose(false)
		}

		records = append(records, record)
	}

	g.logRecords(kind, records)

	return records, nil
}

func (g *Generator) record(inst Instance, seq Sequencer, gains GainComputer) (paramblock.Record, error) {
	meta, ok := g.metadata[inst.ParameterID]
	if !ok {
		return paramblock.Record{}, fmt.Errorf("%w: parameter id %d", iamfparam.ErrNotFound, inst.ParameterID)
	}

	def := meta.Definition

	record := paramblock.Record{
		Header:      inst.Header,
		ParameterID: inst.ParameterID,
		Kind:        meta.Kind,
	}

	var numSubblocks uint32

	if def.Mode == paramdef.ModeVariable {
		record.Duration = inst.Duration
		record.ConstantSubblockDuration = inst.ConstantSubblockDuration
		record.IncludeSubblockDuration = inst.ConstantSubblockDuration == 0
		numSubblocks = inst.NumSubblocks
	} else {
		record.Duration = def.Duration
		record.ConstantSubblockDuration = def.ConstantSubblockDuration
		numSubblocks = uint32(len(def.SubblockDurations)) //nolint:gosec // bounded by the definition.
	}

	start, end, err := seq.NextRange(inst.ParameterID, inst.StartTimestamp, record.Duration)
	if err != nil {
		return paramblock.Record{}, err
	}

	record.Start = start
	record.End = end

	if err := g.subblocks(&record, inst, meta, numSubblocks, gains); err != nil {
		return paramblock.Record{}, err
	}

	return record, nil
}

func (g *Generator) logRecords(kind iamfparam.ParamKind, records []paramblock.Record) {
	if len(records) == 0 {
		return
	}

	g.logger.Info("generated parameter blocks", "kind", kind, "count", len(records))
	g.logger.Info("first parameter block", "record", records[0])

	if len(records) > 1 {
		g.logger.Info("last parameter block", "record", records[len(records)-1])
	}
}
