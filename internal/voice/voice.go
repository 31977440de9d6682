// Package voice implements a single EMU8000 voice: its envelopes, LFOs,
// resonant filter, 4-point interpolated sample playback, and per-sample
// gain/pan computation (spec.md §4.3).
package voice

import (
	"math"

	"github.com/spetrequin/awe-synth-sub005/internal/sfont"
)

// State is the voice's lifecycle phase as observed by the voice manager —
// distinct from the envelope's internal stage, since a voice can be
// "sounding" across several envelope stages and the manager only needs to
// know idle/active/releasing for stealing decisions (spec.md §4.4).
type State int

const (
	Idle State = iota
	Sounding
	Releasing
)

// Voice is one of the engine's fixed pool of monaural render units.
type Voice struct {
	sampleRate       float64
	outputSampleRate float64

	state State

	channel  int
	note     int
	velocity int

	sample     *sfont.Sample
	generators *sfont.GeneratorSet
	modulators []sfont.Modulator

	exclusiveClass int16

	position    float64 // fractional sample cursor, relative to the sample's own Start=0
	startOffset float64
	loopStart   float64
	loopEnd     float64
	endPos      float64
	loopOnly    bool // sampleModes has the loop bit set
	loopDuringRelease bool

	baseCents float64 // static pitch offset computed once at start()

	volEnv *envelope
	modEnv *envelope
	lfo1   lfo // modulation LFO
	lfo2   lfo // vibrato LFO

	filt *filter

	pan float64 // [-1, 1], from the pan generator/modulator, recomputed live

	startedAt uint64 // engine sample-clock at note-on, for oldest-voice stealing
}

// New allocates a voice bound to a fixed output sample rate; it is reused
// across notes via Start.
func New(outputSampleRate float64) *Voice {
	return &Voice{
		outputSampleRate: outputSampleRate,
		volEnv:           newEnvelope(kindVolume, outputSampleRate),
		modEnv:           newEnvelope(kindModulation, outputSampleRate),
		filt:             newFilter(outputSampleRate),
		state:            Idle,
	}
}

// Start seeds the voice from a resolver.VoiceSpec-shaped input (passed as
// its three constituent fields to avoid an import cycle with
// internal/resolver) and begins playback (spec.md §4.3 "Start contract").
func (v *Voice) Start(channel, note, velocity int, sample *sfont.Sample, generators *sfont.GeneratorSet, modulators []sfont.Modulator, currentSampleTime uint64) {
	v.channel = channel
	v.note = note
	v.velocity = velocity
	v.sample = sample
	v.generators = generators
	v.modulators = modulators
	v.exclusiveClass = generators.Get(sfont.GenExclusiveClass)
	v.startedAt = currentSampleTime
	v.sampleRate = float64(sample.SampleRate)
	v.state = Sounding

	rootKey := int(sample.OriginalPitch)
	if ov := generators.Get(sfont.GenOverridingRootKey); ov >= 0 {
		rootKey = int(ov)
	}
	scaleTuning := float64(generators.Get(sfont.GenScaleTuning))
	v.baseCents = float64(note+int(generators.Get(sfont.GenCoarseTune)))*100 +
		float64(generators.Get(sfont.GenFineTune)) +
		float64(sample.PitchCorrection) +
		float64(note-rootKey)*scaleTuning

	v.startOffset = float64(sample.Start) +
		float64(generators.Get(sfont.GenStartAddrsCoarseOffset))*32768 +
		float64(generators.Get(sfont.GenStartAddrsOffset))
	v.endPos = float64(sample.End) +
		float64(generators.Get(sfont.GenEndAddrsCoarseOffset))*32768 +
		float64(generators.Get(sfont.GenEndAddrsOffset))
	v.loopStart = float64(sample.LoopStart) +
		float64(generators.Get(sfont.GenStartloopAddrsCoarseOffset))*32768 +
		float64(generators.Get(sfont.GenStartloopAddrsOffset))
	v.loopEnd = float64(sample.LoopEnd) +
		float64(generators.Get(sfont.GenEndloopAddrsCoarseOffset))*32768 +
		float64(generators.Get(sfont.GenEndloopAddrsOffset))
	v.position = v.startOffset

	mode := generators.Get(sfont.GenSampleModes)
	v.loopOnly = mode == sfont.SampleModeLoopContinuous || mode == sfont.SampleModeLoopUntilRelease
	v.loopDuringRelease = mode == sfont.SampleModeLoopContinuous

	v.volEnv.start(
		generators.Get(sfont.GenDelayVolEnv), generators.Get(sfont.GenAttackVolEnv),
		generators.Get(sfont.GenHoldVolEnv), generators.Get(sfont.GenDecayVolEnv),
		float64(generators.Get(sfont.GenSustainVolEnv)), generators.Get(sfont.GenReleaseVolEnv),
		generators.Get(sfont.GenKeynumToVolEnvHold), generators.Get(sfont.GenKeynumToVolEnvDecay), note,
	)
	v.modEnv.start(
		generators.Get(sfont.GenDelayModEnv), generators.Get(sfont.GenAttackModEnv),
		generators.Get(sfont.GenHoldModEnv), generators.Get(sfont.GenDecayModEnv),
		float64(generators.Get(sfont.GenSustainModEnv)), generators.Get(sfont.GenReleaseModEnv),
		generators.Get(sfont.GenKeynumToModEnvHold), generators.Get(sfont.GenKeynumToModEnvDecay), note,
	)

	v.lfo1.setRate(generators.Get(sfont.GenFreqModLFO), v.outputSampleRate)
	v.lfo1.setDelay(generators.Get(sfont.GenDelayModLFO), v.outputSampleRate)
	v.lfo2.setRate(generators.Get(sfont.GenFreqVibLFO), v.outputSampleRate)
	v.lfo2.setDelay(generators.Get(sfont.GenDelayVibLFO), v.outputSampleRate)

	v.filt.reset()
}

// NoteOff signals a release, honoring a pending sustain-pedal hold at the
// voice-manager layer (the manager simply defers calling NoteOff rather
// than this method knowing about the pedal).
func (v *Voice) NoteOff() {
	if v.state != Sounding {
		return
	}
	v.state = Releasing
	v.volEnv.noteOff()
	v.modEnv.noteOff()
}

// ForceFastRelease overrides the release stage with a short fixed time
// constant, used for exclusive-class mute-group cutoffs (spec.md §9 Open
// Question, resolved in SPEC_FULL.md as a fixed 6 ms ramp).
func (v *Voice) ForceFastRelease(seconds float64) {
	v.volEnv.releaseSamples = secondsToSamples(seconds, v.outputSampleRate)
	v.modEnv.releaseSamples = v.volEnv.releaseSamples
	v.NoteOff()
}

// Kill immediately finalizes the voice with no release tail (CC120 "all
// sound off", spec.md §4.4).
func (v *Voice) Kill() { v.state = Idle }

func (v *Voice) Active() bool { return v.state != Idle }
func (v *Voice) Releasing() bool { return v.state == Releasing }
func (v *Voice) EnvelopeLevel() float64 { return v.volEnv.level }
func (v *Voice) Velocity() int { return v.velocity }
func (v *Voice) Note() int { return v.note }
func (v *Voice) Channel() int { return v.channel }
func (v *Voice) ExclusiveClass() int16 { return v.exclusiveClass }
func (v *Voice) StartedAt() uint64 { return v.startedAt }

// Step renders one sample, returning (left, right, reverbSend, chorusSend).
// cv supplies the current channel controller state; pitchBendCents is the
// channel's current pitch bend already converted to cents (bend *
// pitchBendRangeCents, spec.md §4.3 step 3).
func (v *Voice) Step(cv ChannelView, pitchBendCents, channelVolume, channelExpression float64) (float64, float64, float64, float64) {
	if v.state == Idle {
		return 0, 0, 0, 0
	}

	lfo1Val := v.lfo1.next()
	lfo2Val := v.lfo2.next()

	volLevel := v.volEnv.advance()
	modLevel := v.modEnv.advance()
	if v.volEnv.finished() {
		v.state = Idle
		return 0, 0, 0, 0
	}

	vibLfoToPitch := float64(v.generators.Get(sfont.GenVibLfoToPitch)) +
		sumModulators(v.modulators, sfont.GenVibLfoToPitch, cv, v.velocity, v.note)
	modLfoToPitch := float64(v.generators.Get(sfont.GenModLfoToPitch))
	modEnvToPitch := float64(v.generators.Get(sfont.GenModEnvToPitch))

	totalCents := v.baseCents +
		vibLfoToPitch*lfo2Val +
		modLfoToPitch*lfo1Val +
		modEnvToPitch*modLevel +
		pitchBendCents

	increment := math.Pow(2, totalCents/1200.0) * (v.sampleRate / v.outputSampleRate)
	v.position += increment

	if v.loopOnly && v.loopEnd > v.loopStart && (v.loopDuringRelease || v.state != Releasing) {
		for v.position >= v.loopEnd {
			v.position -= v.loopEnd - v.loopStart
		}
	} else if v.position >= v.endPos {
		v.state = Idle
		return 0, 0, 0, 0
	}

	idx := int(math.Floor(v.position))
	frac := v.position - float64(idx)
	loopActive := v.loopOnly && (v.loopDuringRelease || v.state != Releasing)
	sPrev := v.sample.At(idx-1, loopActive)
	s0 := v.sample.At(idx, loopActive)
	s1 := v.sample.At(idx+1, loopActive)
	s2 := v.sample.At(idx+2, loopActive)
	raw := interpolate4pt(frac, float64(sPrev), float64(s0), float64(s1), float64(s2)) / 32768.0

	baseFc := float64(v.generators.Get(sfont.GenInitialFilterFc)) +
		sumModulators(v.modulators, sfont.GenInitialFilterFc, cv, v.velocity, v.note)
	fcCents := baseFc +
		float64(v.generators.Get(sfont.GenModLfoToFilterFc))*lfo1Val +
		float64(v.generators.Get(sfont.GenModEnvToFilterFc))*modLevel
	cutoffHz := 8.176 * math.Pow(2, fcCents/1200.0)
	q := qFromCentibels(v.generators.Get(sfont.GenInitialFilterQ))
	v.filt.setCoefficients(cutoffHz, q)
	filtered := v.filt.process(raw)

	attenuationCB := float64(v.generators.Get(sfont.GenInitialAttenuation)) +
		sumModulators(v.modulators, sfont.GenInitialAttenuation, cv, v.velocity, v.note)
	attenuationLinear := math.Pow(10, -attenuationCB/200.0)
	modLfoToVolume := float64(v.generators.Get(sfont.GenModLfoToVolume))
	tremolo := math.Pow(10, (modLfoToVolume*lfo1Val)/-200.0)

	gain := volLevel * attenuationLinear * tremolo * channelVolume * channelExpression
	out := filtered * gain

	panGen := float64(v.generators.Get(sfont.GenPan)) + sumModulators(v.modulators, sfont.GenPan, cv, v.velocity, v.note)
	v.pan = clampPan(panGen / 500.0) // pan generator: 0.1%-units over [-500, 500]

	angle := (v.pan + 1) / 2 * (math.Pi / 2)
	left := out * math.Cos(angle)
	right := out * math.Sin(angle)

	reverbSend := (float64(v.generators.Get(sfont.GenReverbEffectsSend)) +
		sumModulators(v.modulators, sfont.GenReverbEffectsSend, cv, v.velocity, v.note)) / 1000.0
	chorusSend := (float64(v.generators.Get(sfont.GenChorusEffectsSend)) +
		sumModulators(v.modulators, sfont.GenChorusEffectsSend, cv, v.velocity, v.note)) / 1000.0

	return left, right, out * clamp01(reverbSend), out * clamp01(chorusSend)
}

func clampPan(p float64) float64 {
	if p < -1 {
		return -1
	}
	if p > 1 {
		return 1
	}
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
