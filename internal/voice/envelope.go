package voice

import "math"

// stage is one of the six envelope stages, traversed in order
// Delay->Attack->Hold->Decay->Sustain->Release->Finished (spec.md §4.3
// "Envelope state machine"). Grounded on wavetable/engine.go's envState,
// generalized from the teacher's 4-stage Attack/Decay/Sustain/Release to
// the full 6-stage SF2 machine and from a linear attack ramp to the
// FluidSynth-compatible (elapsed/attack)^2 curve.
type stage int

const (
	stageDelay stage = iota
	stageAttack
	stageHold
	stageDecay
	stageSustain
	stageRelease
	stageFinished
)

// kind distinguishes the volume envelope (whose decay/sustain/release
// operate in centibels of attenuation, 0=full 1440=silent, per spec.md
// §4.3) from the modulation envelope (whose decay/sustain operate in the
// SF2 sustainModEnv's native 0.1%-of-full-scale units, 0=full 1000=silent
// — a linear fraction rather than a log-domain one, since SF2 defines
// sustainModEnv as a direct percentage rather than a centibel value).
type kind int

const (
	kindVolume kind = iota
	kindModulation
)

// inaudibleFloorUnits is the accumulated-attenuation threshold, in the
// envelope's own units, at which Release is considered Finished (spec.md
// §4.3: "volume envelope below an inaudibility floor, e.g. -100 dB", i.e.
// 1000 cB) — and, for the volume envelope, the sustain-target threshold
// above which Decay skips Sustain and free-runs to silence instead
// (spec.md §4.3: "if that target equals or exceeds 1000 cB").
const inaudibleFloorUnits = 1000

// fullScaleUnits is the envelope's own full attenuation range: volume
// envelopes express it as 1440 centibels (144 dB), modulation envelopes as
// 1000 permille (full depth).
func (k kind) fullScaleUnits() float64 {
	if k == kindVolume {
		return 1440
	}
	return 1000
}

func (k kind) unitsToLevel(units float64) float64 {
	if k == kindVolume {
		return math.Pow(10, -units/200.0)
	}
	frac := 1.0 - units/1000.0
	if frac < 0 {
		frac = 0
	}
	return frac
}

// envelope implements the six-stage machine for either the volume or the
// modulation envelope of a single voice.
type envelope struct {
	k          kind
	sampleRate float64

	stage   stage
	samples int // samples elapsed in the current stage

	delaySamples, attackSamples, holdSamples, decaySamples, releaseSamples int

	sustainUnits float64 // target attenuation for Decay->Sustain
	naturalDecay bool    // sustain target at/above inaudibleFloorUnits

	unitPos       float64 // current position in attenuation-unit space, 0 (full) .. fullScaleUnits (silent)
	unitPerSample float64 // current stage's ramp rate in units/sample (Decay/Release only)
	level         float64 // cached linear output level, refreshed every advance()
}

func newEnvelope(k kind, sampleRate float64) *envelope {
	return &envelope{k: k, sampleRate: sampleRate, stage: stageFinished}
}

func timecentsToSeconds(tc int16) float64 {
	return math.Pow(2, float64(tc)/1200.0)
}

func secondsToSamples(sec, sampleRate float64) int {
	if sec <= 0 {
		return 0
	}
	n := int(sec * sampleRate)
	if n < 0 {
		return 0
	}
	return n
}

// start begins the envelope at Delay, computing stage durations from SF2
// absolute-timecent generator values plus the keynum-to-hold/decay scaling
// (spec.md §4.3: "Key-number-to-hold and key-number-to-decay generators
// scale those times per key relative to key 60, in cents-per-key").
func (e *envelope) start(delayTC, attackTC, holdTC, decayTC int16, sustainUnits float64, releaseTC int16, keyToHoldCents, keyToDecayCents int16, note int) {
	keyOffset := float64(note - 60)
	holdTCAdj := float64(holdTC) - float64(keyToHoldCents)*keyOffset
	decayTCAdj := float64(decayTC) - float64(keyToDecayCents)*keyOffset

	e.delaySamples = secondsToSamples(timecentsToSeconds(delayTC), e.sampleRate)
	e.attackSamples = secondsToSamples(timecentsToSeconds(attackTC), e.sampleRate)
	e.holdSamples = secondsToSamples(math.Pow(2, holdTCAdj/1200.0), e.sampleRate)
	e.decaySamples = secondsToSamples(math.Pow(2, decayTCAdj/1200.0), e.sampleRate)
	e.releaseSamples = secondsToSamples(timecentsToSeconds(releaseTC), e.sampleRate)

	if sustainUnits < 0 {
		sustainUnits = 0
	}
	e.sustainUnits = sustainUnits
	e.naturalDecay = sustainUnits >= inaudibleFloorUnits

	e.stage = stageDelay
	e.samples = 0
	e.unitPos = e.k.fullScaleUnits() // placeholder; Attack recomputes from linear level
	e.level = 0
}

// noteOff forces an immediate transition to Release from the current level,
// with no click (spec.md §4.3: "At any stage, note-off forces transition to
// Release starting from the current level").
func (e *envelope) noteOff() {
	if e.stage == stageRelease || e.stage == stageFinished {
		return
	}
	if e.stage == stageAttack || e.stage == stageHold {
		e.unitPos = e.k.unitsFromLevel(e.level)
	}
	e.beginRelease()
}

func (k kind) unitsFromLevel(level float64) float64 {
	if level <= 0 {
		return k.fullScaleUnits()
	}
	if k == kindVolume {
		return -200.0 * math.Log10(level)
	}
	return (1 - level) * 1000.0
}

func (e *envelope) beginRelease() {
	e.stage = stageRelease
	e.samples = 0
	if e.releaseSamples <= 0 {
		e.unitPerSample = e.k.fullScaleUnits() - e.unitPos
	} else {
		e.unitPerSample = e.k.fullScaleUnits() / float64(e.releaseSamples)
	}
}

func (e *envelope) finished() bool {
	return e.stage == stageFinished
}

// advance steps the envelope by one sample and returns its linear output
// level in [0, 1].
func (e *envelope) advance() float64 {
	switch e.stage {
	case stageDelay:
		if e.samples >= e.delaySamples {
			e.stage = stageAttack
			e.samples = 0
		} else {
			e.samples++
			e.level = 0
			return e.level
		}
		fallthrough
	case stageAttack:
		if e.attackSamples <= 0 {
			e.level = 1
			e.stage = stageHold
			e.samples = 0
		} else {
			frac := float64(e.samples) / float64(e.attackSamples)
			if frac >= 1 {
				e.level = 1
				e.stage = stageHold
				e.samples = 0
			} else {
				e.level = frac * frac
				e.samples++
				return e.level
			}
		}
		fallthrough
	case stageHold:
		if e.samples >= e.holdSamples {
			e.stage = stageDecay
			e.samples = 0
			e.unitPos = 0
			if e.decaySamples <= 0 {
				e.unitPerSample = e.k.fullScaleUnits()
			} else {
				e.unitPerSample = e.k.fullScaleUnits() / float64(e.decaySamples)
			}
		} else {
			e.samples++
			e.level = 1
			return e.level
		}
		fallthrough
	case stageDecay:
		e.unitPos += e.unitPerSample
		if !e.naturalDecay && e.unitPos >= e.sustainUnits {
			e.unitPos = e.sustainUnits
			e.stage = stageSustain
		}
		if e.unitPos >= e.k.fullScaleUnits() {
			e.unitPos = e.k.fullScaleUnits()
			e.stage = stageFinished
		}
		e.level = e.k.unitsToLevel(e.unitPos)
		return e.level
	case stageSustain:
		e.level = e.k.unitsToLevel(e.unitPos)
		return e.level
	case stageRelease:
		e.unitPos += e.unitPerSample
		if e.unitPos >= inaudibleFloorUnits {
			e.unitPos = e.k.fullScaleUnits()
			e.stage = stageFinished
			e.level = 0
			return e.level
		}
		e.level = e.k.unitsToLevel(e.unitPos)
		return e.level
	case stageFinished:
		e.level = 0
		return 0
	}
	return e.level
}
