package generator

import (
	"github.com/mycophonic/iamfparam"
	"github.com/mycophonic/iamfparam/demix"
	"github.com/mycophonic/iamfparam/paramblock"
	"github.com/mycophonic/iamfparam/paramdef"
)

// Instance is the user metadata of one parameter block, as buffered before generation.
type Instance struct {
	ParameterID    uint32
	Header         paramblock.Header
	StartTimestamp int64
	// Duration, ConstantSubblockDuration and NumSubblocks are used in variable mode only.
	Duration                 uint32
	ConstantSubblockDuration uint32
	NumSubblocks             uint32
	Subblocks                []SubblockInstance
}

// SubblockInstance is the user metadata of one subblock.
type SubblockInstance struct {
	// Duration is used when the block carries explicit subblock durations.
	Duration uint32
	Data     SubblockData
}

// SubblockData is the payload of a subblock instance. It is implemented by *MixGainData,
// *DemixingData and *ReconGainData only.
type SubblockData interface {
	Kind() iamfparam.ParamKind
	subblockData()
}

// MixGainData holds mix gain values before narrowing to their bitstream widths.
type MixGainData struct {
	Animation           paramblock.Animation
	Start               int32
	End                 int32
	Control             int32
	ControlRelativeTime uint32
}

// Kind implements SubblockData.
func (*MixGainData) Kind() iamfparam.ParamKind { return iamfparam.MixGain }
func (*MixGainData) subblockData()             {}

// DemixingData holds a demixing mode before range checks.
type DemixingData struct {
	Mode     uint32
	Reserved uint32
}

// Kind implements SubblockData.
func (*DemixingData) Kind() iamfparam.ParamKind { return iamfparam.Demixing }
func (*DemixingData) subblockData()             {}

// ReconGainData holds the user-supplied gains of every layer.
type ReconGainData struct {
	Layers []ReconGainLayer
}

// ReconGainLayer is the user-supplied gains of one layer, keyed by bit position.
type ReconGainLayer struct {
	Gains []demix.Position
}

// Kind implements SubblockData.
func (*ReconGainData) Kind() iamfparam.ParamKind { return iamfparam.ReconGain }
func (*ReconGainData) subblockData()             {}

// ResolveDuration returns the duration of a block: the definition's in fixed mode, the instance's in
// variable mode.
func ResolveDuration(def paramdef.Definition, inst Instance) uint32 {
	if def.Mode == paramdef.ModeVariable {
		return inst.Duration
	}

	return def.Duration
}
