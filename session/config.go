package session

// Config is the on-disk session description.
type Config struct {
	OverrideComputedReconGains bool              `mapstructure:"override_computed_recon_gains"`
	SamplesPerFrame            int               `mapstructure:"samples_per_frame"`
	AudioElements              []AudioElement    `mapstructure:"audio_elements"`
	ParamDefinitions           []ParamDefinition `mapstructure:"param_definitions"`
	ParameterBlocks            []ParameterBlock  `mapstructure:"parameter_blocks"`
}

// AudioElement describes a channel-based audio element and, optionally, its sample files.
type AudioElement struct {
	ID            uint32         `mapstructure:"id"`
	CodecConfigID uint32         `mapstructure:"codec_config_id"`
	SubstreamIDs  []uint32       `mapstructure:"substream_ids"`
	Layers        []ChannelLayer `mapstructure:"layers"`
	Samples       *Samples       `mapstructure:"samples"`
}

// ChannelLayer describes one layer of a scalable channel layout.
type ChannelLayer struct {
	Layout                string `mapstructure:"layout"`
	SubstreamCount        uint8  `mapstructure:"substream_count"`
	CoupledSubstreamCount uint8  `mapstructure:"coupled_substream_count"`
	ReconGainPresent      bool   `mapstructure:"recon_gain_present"`
	OutputGainPresent     bool   `mapstructure:"output_gain_present"`
	OutputGainFlags       uint8  `mapstructure:"output_gain_flags"`
	OutputGain            int16  `mapstructure:"output_gain"`
}

// Samples names the original and decoded audio files of an audio element. ChannelLabels names the
// channels of both files, in file order.
type Samples struct {
	Original      string   `mapstructure:"original"`
	Decoded       string   `mapstructure:"decoded"`
	ChannelLabels []string `mapstructure:"channel_labels"`
}

// ParamDefinition describes a parameter id.
type ParamDefinition struct {
	ParameterID              uint32   `mapstructure:"parameter_id"`
	Kind                     string   `mapstructure:"kind"`
	Rate                     uint32   `mapstructure:"rate"`
	Mode                     string   `mapstructure:"mode"`
	Duration                 uint32   `mapstructure:"duration"`
	ConstantSubblockDuration uint32   `mapstructure:"constant_subblock_duration"`
	SubblockDurations        []uint32 `mapstructure:"subblock_durations"`
	AudioElementID           uint32   `mapstructure:"audio_element_id"`
	DefaultMixGain           int16    `mapstructure:"default_mix_gain"`
}

// ParameterBlock is the user metadata of one parameter block.
type ParameterBlock struct {
	ParameterID              uint32     `mapstructure:"parameter_id"`
	StartTimestamp           int64      `mapstructure:"start_timestamp"`
	Duration                 uint32     `mapstructure:"duration"`
	ConstantSubblockDuration uint32     `mapstructure:"constant_subblock_duration"`
	NumSubblocks             uint32     `mapstructure:"num_subblocks"`
	RedundantCopy            bool       `mapstructure:"redundant_copy"`
	TrimmingStatus           bool       `mapstructure:"trimming_status"`
	Subblocks                []Subblock `mapstructure:"subblocks"`
}

// Subblock carries exactly one of its payloads.
type Subblock struct {
	Duration  uint32     `mapstructure:"duration"`
	MixGain   *MixGain   `mapstructure:"mix_gain"`
	Demixing  *Demixing  `mapstructure:"demixing"`
	ReconGain *ReconGain `mapstructure:"recon_gain"`
}

// MixGain is a mix gain subblock.
type MixGain struct {
	Animation           string `mapstructure:"animation"`
	Start               int32  `mapstructure:"start"`
	End                 int32  `mapstructure:"end"`
	Control             int32  `mapstructure:"control"`
	ControlRelativeTime uint32 `mapstructure:"control_relative_time"`
}

// Demixing is a demixing subblock.
type Demixing struct {
	Mode     uint32 `mapstructure:"mode"`
	Reserved uint32 `mapstructure:"reserved"`
}

// ReconGain is a recon gain subblock: user gains per layer.
type ReconGain struct {
	Layers []ReconGainLayer `mapstructure:"layers"`
}

// ReconGainLayer lists the gains of one layer.
type ReconGainLayer struct {
	Gains []Gain `mapstructure:"gains"`
}

// Gain is a gain byte at a bit position.
type Gain struct {
	Bit   int   `mapstructure:"bit"`
	Value uint8 `mapstructure:"value"`
}
