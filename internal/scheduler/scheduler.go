// Package scheduler turns a stream of MIDI events — live, queued through a
// lock-free ring, or pre-sequenced on a Track — into mutations of a
// channel.Bank and voicemgr.Manager, sample-accurately (spec.md §4.5).
//
// Grounded on sequencer.go's Process/dispatchTick: the same tickFrac/
// tickInt fractional accumulator drives how many ticks elapse per output
// sample, and the same per-tick "pop every event due at or before this
// tick, apply it, advance" loop drives Track playback here.
package scheduler

import (
	"github.com/spetrequin/awe-synth-sub005/internal/channel"
	"github.com/spetrequin/awe-synth-sub005/internal/resolver"
	"github.com/spetrequin/awe-synth-sub005/internal/voicemgr"
)

// ResolveFunc resolves a (bank, program, note, velocity) into the voice
// specs to start, decoupling the scheduler from internal/sfont — the
// scheduler only needs resolver.VoiceSpec, a plain data struct, and the
// engine package supplies a closure over its loaded *sfont.Bank.
type ResolveFunc func(bank, program uint16, note, velocity int) []resolver.VoiceSpec

// Scheduler dispatches MIDI events against a channel.Bank and
// voicemgr.Manager, either drained live from a Queue or advanced from an
// optionally loaded Track.
type Scheduler struct {
	channels *channel.Bank
	voices   *voicemgr.Manager
	resolve  ResolveFunc
	queue    *Queue

	sampleRate float64
	sampleTime uint64

	track      *Track
	trackIndex int
	tickFrac   float64
	tickInt    uint64
}

// New wires a Scheduler to the channel/voice state it mutates and the
// resolver it calls into on NoteOn.
func New(channels *channel.Bank, voices *voicemgr.Manager, resolve ResolveFunc, sampleRate float64) *Scheduler {
	return &Scheduler{
		channels:   channels,
		voices:     voices,
		resolve:    resolve,
		queue:      &Queue{},
		sampleRate: sampleRate,
	}
}

// Enqueue submits a live event for later dispatch from AdvanceSample. Safe
// to call from a producer goroutine distinct from the one calling
// AdvanceSample (spec.md §4.5: "single-producer/single-consumer").
func (s *Scheduler) Enqueue(ev MIDIEvent) { s.queue.Push(ev) }

// QueueDrops returns how many live events have been discarded because the
// queue was full (spec.md §4.5 telemetry).
func (s *Scheduler) QueueDrops() uint64 { return s.queue.Drops() }

// LoadTrack installs a pre-sequenced Track to play back alongside any live
// queued events, starting from its first event. Passing nil unloads the
// current track.
func (s *Scheduler) LoadTrack(t *Track) {
	s.track = t
	s.trackIndex = 0
	s.tickFrac = 0
	s.tickInt = 0
}

// AdvanceSample dispatches every event due at the current sample — first
// the live queue, popping only while its head's SampleTimestamp is at or
// before the current sample clock (spec.md §4.5 "while the queue head
// event has timestamp <= engine_sample_clock + n, pop and dispatch it"; a
// zero timestamp, the default for callers that don't stamp their own
// events, is always due), then any loaded Track events whose tick has
// arrived — and moves the sample clock forward by one.
func (s *Scheduler) AdvanceSample() {
	for {
		ev, ok := s.queue.Peek()
		if !ok || ev.SampleTimestamp > s.sampleTime {
			break
		}
		s.queue.Pop()
		s.dispatch(ev)
	}

	if s.track != nil {
		s.advanceTrack()
	}

	s.sampleTime++
}

// advanceTrack accumulates ticks for the current sample using the track's
// tempo at the current tick, then dispatches every track event at or
// before the resulting tick — mirroring sequencer.go's dispatchTick loop,
// generalized from a single fixed ticksPerSamp to a tempo-map lookup.
func (s *Scheduler) advanceTrack() {
	ticksPerSample := s.track.Tempo.ticksPerSample(s.tickInt, s.track.TicksPerQuarterNote, s.sampleRate)
	s.tickFrac += ticksPerSample
	for s.tickFrac >= 1 {
		s.tickFrac -= 1
		s.tickInt++
	}

	for s.trackIndex < len(s.track.Events) && s.track.Events[s.trackIndex].Tick <= s.tickInt {
		ev := s.track.Events[s.trackIndex]
		s.dispatch(MIDIEvent{
			SampleTimestamp: s.sampleTime,
			Channel:         ev.Channel,
			Kind:            ev.Kind,
			Data1:           ev.Data1,
			Data2:           ev.Data2,
		})
		s.trackIndex++
	}
}

// dispatch applies one decoded MIDI event to channel/voice state (spec.md
// §4.5 dispatch table).
func (s *Scheduler) dispatch(ev MIDIEvent) {
	if int(ev.Channel) >= len(s.channels) {
		return
	}
	ch := s.channels[ev.Channel]

	switch ev.Kind {
	case EventNoteOn:
		if ev.Data2 == 0 {
			// Velocity-zero Note On is a Note Off, per MIDI running-status
			// convention.
			s.voices.NoteOff(ch, int(ev.Data1))
			return
		}
		bank, program := ch.SelectedBankProgram(int(ev.Channel))
		specs := s.resolve(bank, program, int(ev.Data1), int(ev.Data2))
		if len(specs) == 0 {
			return
		}
		s.voices.NoteOn(ch, int(ev.Channel), int(ev.Data1), int(ev.Data2), specs, s.sampleTime)

	case EventNoteOff:
		s.voices.NoteOff(ch, int(ev.Data1))

	case EventControlChange:
		s.applyCC(ch, int(ev.Channel), ev.Data1, ev.Data2)

	case EventProgramChange:
		ch.ProgramChange(ev.Data1)

	case EventPitchBend:
		s.applyPitchBend(ch, ev.Data1, ev.Data2)

	case EventChannelPressure:
		ch.SetChannelPressure(ev.Data1)

	case EventPolyPressure, EventSysEx, EventMeta:
		// Accepted, no engine-wide effect beyond ordinary CC messages
		// (spec.md §4.5: "SysEx / Meta -> engine-specific").
	}
}

// applyCC handles the controller numbers with scheduler-level meaning
// (bank select, sustain, the two all-X-off messages, Reset All
// Controllers) and otherwise stores the raw value for voices' per-sample
// modulator evaluation to pick up live (spec.md §4.5 live-update CC set).
func (s *Scheduler) applyCC(ch *channel.State, channelIndex int, number, value uint8) {
	switch number {
	case 0:
		ch.SelectBankMSB(value)
	case 32:
		ch.SelectBankLSB(value)
	case 64:
		wasLatched := ch.SustainLatched()
		ch.SetCC(number, value)
		if wasLatched && !ch.SustainLatched() {
			s.voices.SetSustain(channelIndex, false)
		}
	case 120:
		ch.SetCC(number, value)
		s.voices.AllSoundOff(channelIndex)
	case 121:
		ch.ResetControllers()
	case 123:
		ch.SetCC(number, value)
		s.voices.AllNotesOff(channelIndex)
	default:
		ch.SetCC(number, value)
	}
}

// applyPitchBend combines the 14-bit LSB/MSB pair into a signed value
// centered at 0 (spec.md §4.3 step 3 input: "-8192..8191").
func (s *Scheduler) applyPitchBend(ch *channel.State, lsb, msb uint8) {
	raw := int16(uint16(msb)<<7 | uint16(lsb))
	ch.SetPitchBend(raw - 8192)
}
