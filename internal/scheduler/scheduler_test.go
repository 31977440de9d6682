package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetrequin/awe-synth-sub005/internal/channel"
	"github.com/spetrequin/awe-synth-sub005/internal/resolver"
	"github.com/spetrequin/awe-synth-sub005/internal/sfont"
	"github.com/spetrequin/awe-synth-sub005/internal/voicemgr"
)

func loopedSample(length int, sampleRate uint32) *sfont.Sample {
	data := make([]int16, length+2)
	for i := 0; i < length; i++ {
		data[i] = int16((i % 2) * 10000)
	}
	return &sfont.Sample{
		Name:          "test",
		Data:          data,
		Start:         0,
		End:           uint32(length),
		LoopStart:     0,
		LoopEnd:       uint32(length),
		OriginalPitch: 60,
		SampleRate:    sampleRate,
	}
}

func alwaysResolve(bank, program uint16, note, velocity int) []resolver.VoiceSpec {
	g := &sfont.GeneratorSet{}
	g.Set(sfont.GenSampleModes, sfont.SampleModeLoopContinuous)
	g.Set(sfont.GenSustainVolEnv, 50)
	return []resolver.VoiceSpec{{Sample: loopedSample(4096, 44100), Generators: g}}
}

func newTestScheduler() (*Scheduler, *channel.Bank, *voicemgr.Manager) {
	channels := channel.NewBank()
	voices := voicemgr.New(44100)
	s := New(channels, voices, alwaysResolve, 44100)
	return s, channels, voices
}

func TestDispatch_NoteOnStartsVoice(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})
	assert.Equal(t, 1, voices.ActiveVoiceCount())
}

func TestDispatch_NoteOnVelocityZeroIsNoteOff(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})
	require.Equal(t, 1, voices.ActiveVoiceCount())

	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 0})
	assert.True(t, voices.Releasing(0), "velocity-zero Note On should release, not kill")
}

func TestDispatch_NoteOffReleasesVoice(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOff, Data1: 60})
	require.Equal(t, 1, voices.ActiveVoiceCount())
	assert.True(t, voices.Releasing(0))
}

func TestDispatch_SustainHoldsNoteOffThenReleasesOnUnlatch(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 64, Data2: 127})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOff, Data1: 60})
	require.Equal(t, 1, voices.ActiveVoiceCount())
	assert.False(t, voices.Releasing(0), "sustain should hold the note out of Release")

	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 64, Data2: 0})
	assert.True(t, voices.Releasing(0))
}

func TestDispatch_AllSoundOffKillsImmediately(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 120, Data2: 0})
	assert.Equal(t, 0, voices.ActiveVoiceCount())
}

func TestDispatch_AllNotesOffTransitionsToRelease(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 123, Data2: 0})
	require.Equal(t, 1, voices.ActiveVoiceCount())
	assert.True(t, voices.Releasing(0))
}

func TestDispatch_ResetAllControllersPreservesNoteMap(t *testing.T) {
	s, channels, voices := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 7, Data2: 10})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})

	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 121, Data2: 0})
	assert.InDelta(t, 100.0/127.0, channels[0].CC(7), 1e-9, "CC121 should restore default CC7")

	s.dispatch(MIDIEvent{Channel: 0, Kind: EventNoteOff, Data1: 60})
	require.Equal(t, 1, voices.ActiveVoiceCount())
	assert.True(t, voices.Releasing(0), "note-off routing should still find the voice started before the reset")
}

func TestDispatch_ProgramChangeAndBankSelectFeedResolve(t *testing.T) {
	s, channels, _ := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 0, Data2: 1})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventControlChange, Data1: 32, Data2: 2})
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventProgramChange, Data1: 5})

	bank, program := channels[0].SelectedBankProgram(0)
	assert.Equal(t, uint16(1*128+2), bank)
	assert.Equal(t, uint16(5), program)
}

func TestDispatch_PitchBendCombinesAndCenters(t *testing.T) {
	s, channels, _ := newTestScheduler()
	s.dispatch(MIDIEvent{Channel: 0, Kind: EventPitchBend, Data1: 0, Data2: 64}) // 64<<7 = 8192 -> centered
	assert.InDelta(t, 0, channels[0].PitchBendCents(), 1e-9)

	s.dispatch(MIDIEvent{Channel: 0, Kind: EventPitchBend, Data1: 0x7F, Data2: 0x7F}) // max, +8191
	assert.Greater(t, channels[0].PitchBendCents(), 0.0)
}

func TestEnqueue_DispatchesOnAdvanceSample(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.Enqueue(MIDIEvent{Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})
	s.AdvanceSample()
	assert.Equal(t, 1, voices.ActiveVoiceCount())
}

func TestEnqueue_EventWithFutureTimestampWaitsForItsSample(t *testing.T) {
	s, _, voices := newTestScheduler()
	s.Enqueue(MIDIEvent{SampleTimestamp: 3, Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100})

	for i := 0; i < 3; i++ {
		s.AdvanceSample()
		assert.Equal(t, 0, voices.ActiveVoiceCount(), "event timestamped for sample 3 must not dispatch early")
	}

	s.AdvanceSample()
	assert.Equal(t, 1, voices.ActiveVoiceCount(), "event timestamped for sample 3 should dispatch once the clock reaches it")
}

func TestEnqueue_EventsDispatchInTimestampOrderWithinABuffer(t *testing.T) {
	s, channels, _ := newTestScheduler()
	// A single producer enqueues in non-decreasing timestamp order;
	// AdvanceSample must still gate each one by its own timestamp rather
	// than dispatching the whole queue as soon as any buffer is rendered.
	s.Enqueue(MIDIEvent{SampleTimestamp: 0, Channel: 0, Kind: EventControlChange, Data1: 7, Data2: 10})
	s.Enqueue(MIDIEvent{SampleTimestamp: 2, Channel: 0, Kind: EventControlChange, Data1: 7, Data2: 40})

	s.AdvanceSample() // sample 0: only the sample-0 event is due
	assert.InDelta(t, 10.0/127.0, channels[0].CC(7), 1e-9)

	s.AdvanceSample() // sample 1: still waiting on the sample-2 event
	assert.InDelta(t, 10.0/127.0, channels[0].CC(7), 1e-9)

	s.AdvanceSample() // sample 2: now due
	assert.InDelta(t, 40.0/127.0, channels[0].CC(7), 1e-9)
}

func TestQueue_PeekDoesNotRemove(t *testing.T) {
	var q Queue
	q.Push(MIDIEvent{Data1: 5})

	first, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, uint8(5), first.Data1)
	assert.Equal(t, 1, q.Len(), "Peek must not advance the tail cursor")

	popped, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, uint8(5), popped.Data1)
}

func TestQueue_DropsOldestWhenFull(t *testing.T) {
	var q Queue
	for i := 0; i < QueueCapacity+10; i++ {
		q.Push(MIDIEvent{Data1: uint8(i)})
	}
	assert.Equal(t, uint64(10), q.Drops())
	assert.Equal(t, QueueCapacity, q.Len())

	first, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, uint8(10), first.Data1, "the oldest 10 events should have been dropped")
}

func TestTrack_EventsDispatchAtTheirTick(t *testing.T) {
	s, _, voices := newTestScheduler()
	track := NewTrack(480)
	track.Events = []TrackEvent{
		{Tick: 0, Channel: 0, Kind: EventNoteOn, Data1: 60, Data2: 100},
	}
	s.LoadTrack(track)

	s.AdvanceSample()
	assert.Equal(t, 1, voices.ActiveVoiceCount())
}

func TestTempoMap_LooksUpPiecewiseConstantTempo(t *testing.T) {
	tm := NewTempoMap(500000) // 120 BPM
	tm.AddChange(1000, 250000) // 240 BPM from tick 1000

	assert.Equal(t, uint32(500000), tm.microsecondsPerQuarterAt(0))
	assert.Equal(t, uint32(500000), tm.microsecondsPerQuarterAt(999))
	assert.Equal(t, uint32(250000), tm.microsecondsPerQuarterAt(1000))
	assert.Equal(t, uint32(250000), tm.microsecondsPerQuarterAt(5000))
}
