// Package voicemgr owns the fixed 32-voice pool: allocation, the voice
// stealing ladder (see allocate), exclusive-class mute groups, sustain-pedal
// latch handling, CC120/CC123, and per-sample mixing (spec.md §4.4).
//
// Grounded on wavetable/engine.go's stealVoice (idle-scan-then-lowest-
// level-scan) and advanceEnv, generalized from the teacher's single
// idle-or-quietest criterion to a multi-step ladder and extended
// with exclusive-class/sustain-pedal/CC120/CC123 logic the teacher has no
// equivalent of (MML has no notion of mute groups or a sustain pedal).
package voicemgr

import (
	"sync/atomic"

	"github.com/spetrequin/awe-synth-sub005/internal/channel"
	"github.com/spetrequin/awe-synth-sub005/internal/resolver"
	"github.com/spetrequin/awe-synth-sub005/internal/voice"
)

// NumVoices is the hard polyphony cap (spec.md: "Dynamic polyphony beyond
// 32 voices is forbidden — 32 is a hard cap").
const NumVoices = 32

// exclusiveReleaseSeconds is the fixed fast-release time constant used to
// mute an exclusive-class group member when a new member of the same
// group starts (spec.md §9 Open Question, resolved in SPEC_FULL.md).
const exclusiveReleaseSeconds = 0.006

// Manager owns the 32-voice pool.
//
// Voices are kept as an array of *voice.Voice (array-of-structs, following
// wavetable/engine.go's own `[]voice` layout) rather than a true
// structure-of-arrays split of the hot fields spec.md §9 suggests as a
// cache-behavior optimization: at 32 elements the steal/mix scan is
// already a tiny, branch-predictable loop, and voice.Voice already groups
// its own hot fields (state, position, envelope pointers) contiguously.
// Splitting them across parallel arrays would require voice.Voice to
// expose its envelope/filter internals to this package, which costs more
// in API surface than it would plausibly save at this N. Recorded as a
// deliberate Open-Question resolution in DESIGN.md.
type Manager struct {
	voices         [NumVoices]*voice.Voice
	pendingRelease [NumVoices]bool

	// steals is read from outside the render goroutine via Steals() for
	// telemetry (spec.md §7 "observable via counters" / §9 "telemetry
	// counters must be atomic integers with relaxed ordering").
	steals atomic.Uint64
}

// New allocates a voice pool bound to a fixed output sample rate.
func New(outputSampleRate float64) *Manager {
	m := &Manager{}
	for i := range m.voices {
		m.voices[i] = voice.New(outputSampleRate)
	}
	return m
}

// Steals returns the number of note-on allocations that required stealing
// an in-use voice (spec.md §4.4: "Steal count is recorded").
func (m *Manager) Steals() uint64 { return m.steals.Load() }

// NoteOn allocates one voice per resolver.VoiceSpec and registers each
// under note in ch's active-note map for later note-off routing. Each
// spec's exclusive class, if non-zero, first fast-releases every other
// currently playing voice on channelIndex sharing that class (spec.md
// §4.4 "Exclusive class handling").
func (m *Manager) NoteOn(ch *channel.State, channelIndex, note, velocity int, specs []resolver.VoiceSpec, currentSampleTime uint64) {
	for _, spec := range specs {
		if spec.ExclusiveClass != 0 {
			m.muteExclusiveClass(channelIndex, spec.ExclusiveClass)
		}
		idx := m.allocate()
		v := m.voices[idx]
		v.Start(channelIndex, note, velocity, spec.Sample, spec.Generators, spec.Modulators, currentSampleTime)
		m.pendingRelease[idx] = false
		ch.RegisterNoteVoice(note, idx)
	}
}

func (m *Manager) muteExclusiveClass(channelIndex int, exclusiveClass int16) {
	for _, v := range m.voices {
		if v.Active() && v.Channel() == channelIndex && v.ExclusiveClass() == exclusiveClass {
			v.ForceFastRelease(exclusiveReleaseSeconds)
		}
	}
}

// allocate picks a voice slot: the first idle voice; otherwise the
// releasing voice with the lowest envelope level; otherwise, across all
// voices, the lowest velocity×envelope level, ties going to the lowest
// slot. That third scan is not limited to voices in the Sustain stage and
// always finds a voice, so the oldest-voice scan after it is never reached.
// Each step is a single bounded scan of the fixed 32-element array — no
// unbounded search regardless of polyphony pressure.
func (m *Manager) allocate() int {
	for i, v := range m.voices {
		if !v.Active() {
			return i
		}
	}

	m.steals.Add(1)

	bestIdx := -1
	bestLevel := 0.0
	for i, v := range m.voices {
		if !v.Releasing() {
			continue
		}
		if bestIdx == -1 || v.EnvelopeLevel() < bestLevel {
			bestIdx, bestLevel = i, v.EnvelopeLevel()
		}
	}
	if bestIdx != -1 {
		return bestIdx
	}

	bestIdx = -1
	bestScore := 0.0
	for i, v := range m.voices {
		score := float64(v.Velocity()) * v.EnvelopeLevel()
		if bestIdx == -1 || score < bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx != -1 {
		return bestIdx
	}

	oldestIdx := 0
	for i, v := range m.voices {
		if v.StartedAt() < m.voices[oldestIdx].StartedAt() {
			oldestIdx = i
		}
	}
	return oldestIdx
}

// NoteOff routes a note-off to every voice registered against note on
// channelIndex: if the channel's sustain pedal is latched, the voice is
// marked pending-release instead of released immediately (spec.md §4.4
// "Note-off routing").
func (m *Manager) NoteOff(ch *channel.State, note int) {
	for _, idx := range ch.TakeNoteVoices(note) {
		v := m.voices[idx]
		if !v.Active() {
			continue
		}
		if ch.SustainLatched() {
			m.pendingRelease[idx] = true
			continue
		}
		v.NoteOff()
	}
}

// SetSustain reacts to a CC64 transition on channelIndex: going from
// latched to unlatched releases every voice on that channel currently
// marked pending-release (spec.md §4.4 "Sustain pedal").
func (m *Manager) SetSustain(channelIndex int, latched bool) {
	if latched {
		return
	}
	for i, v := range m.voices {
		if m.pendingRelease[i] && v.Channel() == channelIndex {
			v.NoteOff()
			m.pendingRelease[i] = false
		}
	}
}

// AllNotesOff implements CC123: every active voice on channelIndex
// transitions to Release (spec.md §4.4).
func (m *Manager) AllNotesOff(channelIndex int) {
	for i, v := range m.voices {
		if v.Active() && v.Channel() == channelIndex {
			v.NoteOff()
			m.pendingRelease[i] = false
		}
	}
}

// AllSoundOff implements CC120: every active voice on channelIndex is
// immediately finalized with no release tail (spec.md §4.4).
func (m *Manager) AllSoundOff(channelIndex int) {
	for i, v := range m.voices {
		if v.Active() && v.Channel() == channelIndex {
			v.Kill()
			m.pendingRelease[i] = false
		}
	}
}

// Step renders one sample across every active voice, summing to a stereo
// pair plus the reverb/chorus send buses (spec.md §4.4 "Mix"). bank
// supplies each voice's owning channel's live controller state.
func (m *Manager) Step(bank *channel.Bank) (left, right, reverbSend, chorusSend float64) {
	for _, v := range m.voices {
		if !v.Active() {
			continue
		}
		ch := bank[v.Channel()]
		l, r, rs, cs := v.Step(ch, ch.PitchBendCents(), ch.CC(7), ch.CC(11))
		left += l
		right += r
		reverbSend += rs
		chorusSend += cs
	}
	return left, right, reverbSend, chorusSend
}

// Releasing reports whether the voice holding slot index is in its
// release tail, for callers that need to distinguish sustained-off from
// fully released without reaching into voice internals.
func (m *Manager) Releasing(index int) bool {
	return m.voices[index].Releasing()
}

// ActiveVoiceCount reports how many voices are not Idle, used to detect
// when playback (including release tails) has fully ended.
func (m *Manager) ActiveVoiceCount() int {
	n := 0
	for _, v := range m.voices {
		if v.Active() {
			n++
		}
	}
	return n
}
