package sfont

// Generator identifies one of the 58 SoundFont 2.0 generator kinds (IDs 0-58
// inclusive; 59 is the reserved terminal "oper" used only by the EOP/EOI/EOS
// sentinel record and never stored). Grounded on Alextopher-sf/hydra.go's
// SFGenerator type, expanded into the full named enumeration with defaults
// and additive classification the teacher repo never implemented.
type Generator uint16

const (
	GenStartAddrsOffset            Generator = 0
	GenEndAddrsOffset               Generator = 1
	GenStartloopAddrsOffset         Generator = 2
	GenEndloopAddrsOffset           Generator = 3
	GenStartAddrsCoarseOffset       Generator = 4
	GenModLfoToPitch                Generator = 5
	GenVibLfoToPitch                Generator = 6
	GenModEnvToPitch                Generator = 7
	GenInitialFilterFc              Generator = 8
	GenInitialFilterQ               Generator = 9
	GenModLfoToFilterFc             Generator = 10
	GenModEnvToFilterFc             Generator = 11
	GenEndAddrsCoarseOffset         Generator = 12
	GenModLfoToVolume               Generator = 13
	GenUnused1                      Generator = 14
	GenChorusEffectsSend            Generator = 15
	GenReverbEffectsSend            Generator = 16
	GenPan                          Generator = 17
	GenUnused2                      Generator = 18
	GenUnused3                      Generator = 19
	GenUnused4                      Generator = 20
	GenDelayModLFO                  Generator = 21
	GenFreqModLFO                   Generator = 22
	GenDelayVibLFO                  Generator = 23
	GenFreqVibLFO                   Generator = 24
	GenDelayModEnv                  Generator = 25
	GenAttackModEnv                 Generator = 26
	GenHoldModEnv                   Generator = 27
	GenDecayModEnv                  Generator = 28
	GenSustainModEnv                Generator = 29
	GenReleaseModEnv                Generator = 30
	GenKeynumToModEnvHold           Generator = 31
	GenKeynumToModEnvDecay          Generator = 32
	GenDelayVolEnv                  Generator = 33
	GenAttackVolEnv                 Generator = 34
	GenHoldVolEnv                   Generator = 35
	GenDecayVolEnv                  Generator = 36
	GenSustainVolEnv                Generator = 37
	GenReleaseVolEnv                Generator = 38
	GenKeynumToVolEnvHold           Generator = 39
	GenKeynumToVolEnvDecay          Generator = 40
	GenInstrument                   Generator = 41
	GenReserved1                    Generator = 42
	GenKeyRange                     Generator = 43
	GenVelRange                     Generator = 44
	GenStartloopAddrsCoarseOffset   Generator = 45
	GenKeynum                       Generator = 46
	GenVelocity                     Generator = 47
	GenInitialAttenuation           Generator = 48
	GenReserved2                    Generator = 49
	GenEndloopAddrsCoarseOffset     Generator = 50
	GenCoarseTune                   Generator = 51
	GenFineTune                     Generator = 52
	GenSampleID                     Generator = 53
	GenSampleModes                  Generator = 54
	GenReserved3                    Generator = 55
	GenScaleTuning                  Generator = 56
	GenExclusiveClass               Generator = 57
	GenOverridingRootKey            Generator = 58

	// NumGenerators is one past the highest valid generator id.
	NumGenerators = 59
)

// SampleMode bits for the sampleModes (54) generator.
const (
	SampleModeNoLoop           = 0
	SampleModeLoopContinuous   = 1
	SampleModeLoopUntilRelease = 3
)

// Range is a [lo, hi] inclusive range used by the key-range and velocity-
// range generators. Stored separately from the generator value set per
// spec.md §4.1 ("extracted and stored as zone range constraints, not as
// runtime-applied generators").
type Range struct {
	Lo, Hi uint8
}

func (r Range) contains(v int) bool {
	return v >= int(r.Lo) && v <= int(r.Hi)
}

var fullRange = Range{Lo: 0, Hi: 127}

// GeneratorSet is a dense, sparse-by-presence map from generator id to its
// signed 16-bit raw value. Only generators actually written by a zone are
// present; absent entries mean "use default" per spec.md §3.
type GeneratorSet struct {
	present [NumGenerators]bool
	values  [NumGenerators]int16
}

func (g *GeneratorSet) Set(id Generator, v int16) {
	if int(id) >= NumGenerators {
		return
	}
	g.present[id] = true
	g.values[id] = v
}

func (g *GeneratorSet) Has(id Generator) bool {
	return int(id) < NumGenerators && g.present[id]
}

// Get returns the generator's value, falling back to the SF2.0 default.
func (g *GeneratorSet) Get(id Generator) int16 {
	if g.Has(id) {
		return g.values[id]
	}
	return defaultGeneratorValue[id]
}

// AddAbsolute overlays src on top of g: every present value in src replaces
// g's value outright. Used for instrument-zone-over-global-zone overlay and
// for instrument-zone-over-defaults.
func (g *GeneratorSet) AddAbsolute(src *GeneratorSet) {
	for i := 0; i < NumGenerators; i++ {
		if src.present[i] {
			g.present[i] = true
			g.values[i] = src.values[i]
		}
	}
}

// AddAdditive overlays src on top of g additively for generators classified
// as additive by SF2.0 (spec.md §4.2 step 3c); non-additive generators
// (ranges, links) in src are ignored since they never apply at preset level.
// A generator g does not yet carry starts from its SF2 default before the
// preset value is added.
func (g *GeneratorSet) AddAdditive(src *GeneratorSet) {
	for i := 0; i < NumGenerators; i++ {
		if !src.present[i] || !additiveGenerator[i] {
			continue
		}
		if !g.present[i] {
			g.values[i] = defaultGeneratorValue[i]
		}
		g.present[i] = true
		g.values[i] += src.values[i]
	}
}

// Clone returns an independent copy.
func (g *GeneratorSet) Clone() *GeneratorSet {
	c := *g
	return &c
}

// additiveGenerator classifies which generators merge additively when
// applied from a preset zone on top of an instrument-resolved base, per
// spec.md §4.2: "most pitch/time/level offsets; key/velocity ranges and
// sample link generators never merge this way." Link and structural
// generators (instrument, sampleID, keyRange, velRange, sampleModes,
// exclusiveClass, overridingRootKey, keynum, velocity, reserved) are
// absolute-only and excluded here.
var additiveGenerator = func() [NumGenerators]bool {
	var a [NumGenerators]bool
	for i := range a {
		a[i] = true
	}
	for _, id := range []Generator{
		GenInstrument, GenSampleID, GenKeyRange, GenVelRange,
		GenSampleModes, GenExclusiveClass, GenOverridingRootKey,
		GenKeynum, GenVelocity,
		GenReserved1, GenReserved2, GenReserved3,
		GenUnused1, GenUnused2, GenUnused3, GenUnused4,
	} {
		a[id] = false
	}
	return a
}()

// defaultGeneratorValue holds the SF2.0-specified default for every
// generator that isn't zero by default.
var defaultGeneratorValue = func() [NumGenerators]int16 {
	var d [NumGenerators]int16
	d[GenInitialFilterFc] = 13500 // absolute cents -> ~20kHz, i.e. "no filtering"
	d[GenDelayModLFO] = -12000
	d[GenDelayVibLFO] = -12000
	d[GenDelayModEnv] = -12000
	d[GenAttackModEnv] = -12000
	d[GenHoldModEnv] = -12000
	d[GenDecayModEnv] = -12000
	d[GenReleaseModEnv] = -12000
	d[GenDelayVolEnv] = -12000
	d[GenAttackVolEnv] = -12000
	d[GenHoldVolEnv] = -12000
	d[GenDecayVolEnv] = -12000
	d[GenReleaseVolEnv] = -12000
	d[GenKeynum] = -1
	d[GenVelocity] = -1
	d[GenScaleTuning] = 100
	d[GenOverridingRootKey] = -1
	return d
}()
