package scheduler

// EventKind identifies the decoded MIDI message kind (spec.md §3 "MIDI
// event"). Mirrors the status-nibble taxonomy (0x8-0xE) plus SysEx/Meta.
type EventKind int

const (
	EventNoteOn EventKind = iota
	EventNoteOff
	EventControlChange
	EventProgramChange
	EventPitchBend
	EventChannelPressure
	EventPolyPressure
	EventSysEx
	EventMeta
)

// MIDIEvent is a fully decoded, timestamped MIDI message (spec.md §3:
// "(sample_timestamp: u64, channel: 0..15, kind, d1, d2)"). Running status
// expansion and SysEx byte framing are the producer's concern; by the time
// an event reaches the scheduler it is already decoded.
type MIDIEvent struct {
	SampleTimestamp uint64
	Channel         uint8
	Kind            EventKind
	Data1           uint8
	Data2           uint8
}
