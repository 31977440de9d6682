package scheduler

// TempoMap is a piecewise-constant map of absolute MIDI tick to tempo,
// supplementing the optional pre-sequenced Track the same way a Standard
// MIDI File's tempo-change meta events do (spec.md §4.5 "tempo-driven
// sequencing"; the single-BPM-field assumption baked into sequencer.go's
// Sequencer is generalized here since a real MIDI file can change tempo
// mid-track). Grounded on sequencer.go's `ticksPerSamp` field and the way
// EventTempo recomputes it in applyEvent, lifted out into its own
// queryable map instead of a single mutable field.
type TempoMap struct {
	changes []tempoChange // sorted ascending by tick; changes[0].tick == 0
}

type tempoChange struct {
	tick                       uint64
	microsecondsPerQuarterNote uint32
}

// defaultMicrosecondsPerQuarterNote is 120 BPM, MIDI's implicit default
// tempo absent any Set Tempo meta event.
const defaultMicrosecondsPerQuarterNote = 500000

// NewTempoMap returns a map with a single tempo in effect from tick 0.
func NewTempoMap(initialMicrosecondsPerQuarterNote uint32) *TempoMap {
	if initialMicrosecondsPerQuarterNote == 0 {
		initialMicrosecondsPerQuarterNote = defaultMicrosecondsPerQuarterNote
	}
	return &TempoMap{changes: []tempoChange{{tick: 0, microsecondsPerQuarterNote: initialMicrosecondsPerQuarterNote}}}
}

// AddChange records a tempo change taking effect at tick. Changes must be
// added in non-decreasing tick order (the order a Standard MIDI File's
// meta-events naturally arrive in when read forward).
func (m *TempoMap) AddChange(tick uint64, microsecondsPerQuarterNote uint32) {
	if len(m.changes) > 0 && tick == m.changes[len(m.changes)-1].tick {
		m.changes[len(m.changes)-1].microsecondsPerQuarterNote = microsecondsPerQuarterNote
		return
	}
	m.changes = append(m.changes, tempoChange{tick: tick, microsecondsPerQuarterNote: microsecondsPerQuarterNote})
}

// microsecondsPerQuarterAt returns the tempo in effect at tick, via a
// linear scan forward from the first change — tempo maps carry at most a
// few dozen changes even in long files, so this stays cheap without a
// binary search.
func (m *TempoMap) microsecondsPerQuarterAt(tick uint64) uint32 {
	current := m.changes[0].microsecondsPerQuarterNote
	for _, c := range m.changes {
		if c.tick > tick {
			break
		}
		current = c.microsecondsPerQuarterNote
	}
	return current
}

// ticksPerSample converts the tempo at tick into a ticks-per-output-sample
// rate, the same quantity sequencer.go's `ticksPerSamp` field holds
// (`(bpm * resolution) / (240 * sampleRate)`, rewritten in terms of
// microseconds-per-quarter-note and ticks-per-quarter-note instead of BPM).
func (m *TempoMap) ticksPerSample(tick uint64, ticksPerQuarterNote uint16, sampleRate float64) float64 {
	usPerQuarter := float64(m.microsecondsPerQuarterAt(tick))
	if usPerQuarter <= 0 || sampleRate <= 0 {
		return 0
	}
	secondsPerTick := usPerQuarter / 1e6 / float64(ticksPerQuarterNote)
	return 1.0 / (secondsPerTick * sampleRate)
}

// TrackEvent is one pre-sequenced event, timed by absolute tick rather
// than sample (SPEC_FULL.md §4.5 domain-stack addition: a pre-sequenced
// track complementing the live Queue).
type TrackEvent struct {
	Tick    uint64
	Channel uint8
	Kind    EventKind
	Data1   uint8
	Data2   uint8
}

// Track is a pre-sequenced list of events plus the tempo map and
// resolution needed to convert its ticks to samples. Events must be
// sorted ascending by Tick; Scheduler.advanceTrack relies on that order
// to advance a single cursor rather than re-scanning.
type Track struct {
	Events              []TrackEvent
	Tempo               *TempoMap
	TicksPerQuarterNote uint16
}

// NewTrack returns an empty track at the given resolution, defaulting to
// 120 BPM until a tempo change is added.
func NewTrack(ticksPerQuarterNote uint16) *Track {
	return &Track{Tempo: NewTempoMap(0), TicksPerQuarterNote: ticksPerQuarterNote}
}
