// Package channel holds the 16-channel MIDI controller state the scheduler
// mutates and the voice manager/voices read (spec.md §3 "Channel State",
// §4.5 event dispatch). Grounded on sequencer.go's runtimeState: same idea
// of a plain struct of current-value fields reset to GM defaults at score
// (here, engine) start, indexed by channel instead of by MML track.
package channel

const numChannels = 16

// drumChannel is the zero-indexed channel (MIDI channel 10) that defaults
// to bank 128 when no Bank Select has been received (spec.md §4.5).
const drumChannel = 9

const rpnNull = 0x7F

// State is one channel's live controller state.
type State struct {
	bankMSB, bankLSB uint8
	bankSelected     bool
	program          uint8

	cc [128]uint8

	pitchBend               int16 // -8192..8191, 0 = centered
	pitchBendRangeSemitones uint8
	pitchBendRangeCents     uint8 // fractional part of the range, via RPN0 data-entry LSB

	channelPressure uint8

	sustainLatched bool

	rpnMSB, rpnLSB   uint8
	nrpnMSB, nrpnLSB uint8
	rpnActive        bool // true if the last selector was RPN, false if NRPN, undefined if neither is selected

	noteVoices map[int][]int // note -> voice indices started for it, for note-off routing
}

// NewState returns a channel reset to GM power-on defaults.
func NewState() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores GM default controller values (spec.md §6 reset()
// "equivalent to GM Reset") and, unlike ResetControllers, also clears
// bank/program selection and the active-note map.
func (s *State) Reset() {
	s.bankMSB, s.bankLSB = 0, 0
	s.bankSelected = false
	s.program = 0
	s.noteVoices = make(map[int][]int)
	s.ResetControllers()
}

// ResetControllers restores CC/pitch-bend/pressure/sustain state to GM
// defaults without touching bank/program selection or the active-note
// map — the CC121 "Reset All Controllers" behavior spec.md §4.5 calls out
// as distinct from a full engine reset ("restores channel default CC
// values").
func (s *State) ResetControllers() {
	for i := range s.cc {
		s.cc[i] = 0
	}
	s.cc[7] = 100  // channel volume
	s.cc[10] = 64  // pan, centered
	s.cc[11] = 127 // expression
	s.pitchBend = 0
	s.pitchBendRangeSemitones = 2
	s.pitchBendRangeCents = 0
	s.channelPressure = 0
	s.sustainLatched = false
	s.rpnMSB, s.rpnLSB = rpnNull, rpnNull
	s.nrpnMSB, s.nrpnLSB = rpnNull, rpnNull
	s.rpnActive = false
}

// CC returns a controller's current value normalized to [0, 1], satisfying
// voice.ChannelView.
func (s *State) CC(number uint8) float64 {
	if number >= 128 {
		return 0
	}
	return float64(s.cc[number]) / 127.0
}

// ChannelPressure satisfies voice.ChannelView.
func (s *State) ChannelPressure() float64 {
	return float64(s.channelPressure) / 127.0
}

// SetCC records a controller change. The live-update CC set (1, 7, 10, 11,
// 64, 91, 93) is re-evaluated by the caller re-stepping affected voices
// through their modulators (spec.md §4.5) — SetCC itself only updates the
// stored value; CC64 additionally latches or releases sustain here since
// that's channel-local bookkeeping, not a per-voice modulator effect.
func (s *State) SetCC(number, value uint8) {
	if number >= 128 {
		return
	}
	s.cc[number] = value
	switch number {
	case 6:
		s.applyDataEntry(true, value)
	case 38:
		s.applyDataEntry(false, value)
	case 64:
		s.sustainLatched = value >= 64
	case 98:
		s.nrpnLSB = value
		s.rpnActive = false
	case 99:
		s.nrpnMSB = value
		s.rpnActive = false
	case 100:
		s.rpnLSB = value
		s.rpnActive = true
	case 101:
		s.rpnMSB = value
		s.rpnActive = true
	}
}

// applyDataEntry handles CC6 (data entry MSB) / CC38 (data entry LSB)
// against whichever of RPN/NRPN was most recently selected. Only RPN 0
// (pitch bend range, MSB = semitones, LSB = cents) is implemented; other
// RPNs and all NRPNs are channel-local conveniences with no engine-wide
// meaning here and are accepted but ignored.
func (s *State) applyDataEntry(isMSB bool, value uint8) {
	if !s.rpnActive || s.rpnMSB != 0 || s.rpnLSB != 0 {
		return
	}
	if isMSB {
		s.pitchBendRangeSemitones = value
	} else {
		s.pitchBendRangeCents = value
	}
}

// SetPitchBend records a 14-bit-derived signed bend value.
func (s *State) SetPitchBend(value int16) {
	s.pitchBend = value
}

// PitchBendCents returns the current bend converted through the channel's
// pitch bend range (spec.md §4.3 step 3 input).
func (s *State) PitchBendCents() float64 {
	rangeCents := float64(s.pitchBendRangeSemitones)*100 + float64(s.pitchBendRangeCents)
	return (float64(s.pitchBend) / 8192.0) * rangeCents
}

// SetChannelPressure records Channel Pressure (Aftertouch).
func (s *State) SetChannelPressure(value uint8) {
	s.channelPressure = value
}

// SelectBank caches a Bank Select MSB (CC0) / LSB (CC32) pair for the next
// ProgramChange (spec.md §4.5: "cache for next ProgramChange").
func (s *State) SelectBank(msb, lsb uint8) {
	s.bankMSB, s.bankLSB = msb, lsb
	s.bankSelected = true
}

// SelectBankMSB and SelectBankLSB let the scheduler apply CC0/CC32
// independently, matching MIDI's two-message Bank Select convention.
func (s *State) SelectBankMSB(msb uint8) { s.bankMSB = msb; s.bankSelected = true }
func (s *State) SelectBankLSB(lsb uint8) { s.bankLSB = lsb; s.bankSelected = true }

// ProgramChange records the channel's selected program. Effective bank
// combines the cached Bank Select, falling back to drum bank 128 on the
// drum channel when no Bank Select has ever been received.
func (s *State) ProgramChange(program uint8) {
	s.program = program
}

// SelectedBankProgram returns the (bank, program) a subsequent NoteOn on
// this channel resolves against (spec.md §6 select_program, §4.5 bank
// default).
func (s *State) SelectedBankProgram(channelIndex int) (bank, program uint16) {
	if !s.bankSelected {
		if channelIndex == drumChannel {
			return 128, uint16(s.program)
		}
		return 0, uint16(s.program)
	}
	return uint16(s.bankMSB)*128 + uint16(s.bankLSB), uint16(s.program)
}

// SustainLatched reports whether the sustain pedal (CC64) is currently
// held down on this channel.
func (s *State) SustainLatched() bool {
	return s.sustainLatched
}

// RegisterNoteVoice records a started voice under its triggering note for
// later note-off routing (spec.md §3 "active note map").
func (s *State) RegisterNoteVoice(note, voiceIndex int) {
	s.noteVoices[note] = append(s.noteVoices[note], voiceIndex)
}

// TakeNoteVoices removes and returns every voice index registered against
// note, for the caller to transition to Release (or "pending release" if
// sustain is latched).
func (s *State) TakeNoteVoices(note int) []int {
	voices := s.noteVoices[note]
	delete(s.noteVoices, note)
	return voices
}

// AllVoices returns every still-registered voice index across every note,
// for CC123 (all notes off) and CC120 (all sound off) handling, then
// clears the map.
func (s *State) AllVoices() []int {
	var all []int
	for _, voices := range s.noteVoices {
		all = append(all, voices...)
	}
	s.noteVoices = make(map[int][]int)
	return all
}

// Bank is the fixed 16-channel state array the scheduler and voice manager
// share (spec.md §3: "16 MIDI channels").
type Bank [numChannels]*State

// NewBank allocates 16 channels at GM defaults.
func NewBank() *Bank {
	var b Bank
	for i := range b {
		b[i] = NewState()
	}
	return &b
}

// Reset restores every channel to GM defaults (spec.md §6 reset()).
func (b *Bank) Reset() {
	for _, s := range b {
		s.Reset()
	}
}
