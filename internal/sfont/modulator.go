package sfont

// Controller identifies a modulator source or secondary source. The low
// bits distinguish general controllers (CC numbers, when the controller
// palette bit is 0) from MIDI continuous controllers; bit 7 of the raw SF2
// encoding selects the palette. We keep it simple and store the resolved
// meaning directly, matching how Alextopher-sf/hydra.go keeps ModSrcOper as
// a raw SFModulator but adding named constants for the ones spec.md's
// default-modulator table actually needs.
type Controller uint16

const (
	CtrlNoController        Controller = 0
	CtrlNoteOnVelocity      Controller = 2
	CtrlNoteOnKeyNumber     Controller = 3
	CtrlPolyPressure        Controller = 10
	CtrlChannelPressure     Controller = 13
	CtrlPitchWheel          Controller = 14
	CtrlPitchWheelSensitivity Controller = 16

	// MIDI CC-indexed controllers are encoded as 0x80|ccNumber so they don't
	// collide with the general-controller ids above.
	ctrlCCBase Controller = 0x80
)

func ccController(cc uint8) Controller { return ctrlCCBase + Controller(cc) }

var (
	CtrlCC1  = ccController(1)  // modulation wheel
	CtrlCC7  = ccController(7)  // channel volume
	CtrlCC10 = ccController(10) // pan
	CtrlCC11 = ccController(11) // expression
	CtrlCC91 = ccController(91) // reverb send
	CtrlCC93 = ccController(93) // chorus send
)

// Transform is applied to a modulator source value before scaling by amount.
type Transform uint16

const (
	TransformLinear    Transform = 0
	TransformConcave   Transform = 1
	TransformConvex    Transform = 2
	TransformSwitch    Transform = 3
)

// Modulator is the runtime mapping from a controller to a generator,
// matching spec.md §3's tuple exactly. Field layout mirrors
// Alextopher-sf/hydra.go's Modulator (10-byte wire record: src, dest,
// amount, amtSrc, transform) so the binary.Read decode in hydra.go needs no
// reshaping.
type Modulator struct {
	Source            Controller
	SourceIsBipolar   bool
	SourceIsNegative  bool
	SourceTransform   Transform
	Destination       Generator
	Amount            int16
	Secondary         Controller
	SecondaryIsBipolar  bool
	SecondaryIsNegative bool
	SecondaryTransform  Transform
}

// Key returns the (source, destination, secondary) identity used to collapse
// duplicate modulators per spec.md §4.2 ("Duplicate modulators... are
// collapsed by replacement").
func (m Modulator) Key() ModKey {
	return ModKey{Src: m.Source, Dst: m.Destination, Sec: m.Secondary}
}

// ModKey identifies a modulator for duplicate-collapsing purposes.
type ModKey struct {
	Src, Sec Controller
	Dst      Generator
}

// DefaultModulators returns the 10 SF2.0 default modulators, always implicit
// per spec.md §3 ("The 10 SF2 default modulators are always implicit").
func DefaultModulators() []Modulator {
	return []Modulator{
		{Source: CtrlNoteOnVelocity, SourceIsNegative: true, SourceTransform: TransformConcave, Destination: GenInitialAttenuation, Amount: 960},
		{Source: CtrlNoteOnVelocity, SourceIsNegative: true, SourceTransform: TransformConcave, Destination: GenInitialFilterFc, Amount: -2400},
		{Source: CtrlChannelPressure, Destination: GenVibLfoToPitch, Amount: 50},
		{Source: CtrlCC1, Destination: GenVibLfoToPitch, Amount: 50},
		{Source: CtrlCC7, SourceIsNegative: true, SourceTransform: TransformConcave, Destination: GenInitialAttenuation, Amount: 960},
		{Source: CtrlCC10, SourceIsBipolar: true, Destination: GenPan, Amount: 1000},
		{Source: CtrlCC11, SourceIsNegative: true, SourceTransform: TransformConcave, Destination: GenInitialAttenuation, Amount: 960},
		{Source: CtrlCC91, Destination: GenReverbEffectsSend, Amount: 200},
		{Source: CtrlCC93, Destination: GenChorusEffectsSend, Amount: 200},
		{Source: CtrlPitchWheel, SourceIsBipolar: true, Secondary: CtrlPitchWheelSensitivity, Destination: GenFineTune, Amount: 12700},
	}
}
