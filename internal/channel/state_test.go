package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewState_GMDefaults(t *testing.T) {
	s := NewState()
	assert.InDelta(t, 100.0/127.0, s.CC(7), 1e-9)
	assert.InDelta(t, 64.0/127.0, s.CC(10), 1e-9)
	assert.InDelta(t, 127.0/127.0, s.CC(11), 1e-9)
	assert.Equal(t, 0.0, s.PitchBendCents())
	assert.False(t, s.SustainLatched())
}

func TestSelectedBankProgram_DrumChannelDefaultsToBank128(t *testing.T) {
	s := NewState()
	s.ProgramChange(5)
	bank, program := s.SelectedBankProgram(9)
	assert.Equal(t, uint16(128), bank)
	assert.Equal(t, uint16(5), program)

	// A non-drum channel with no Bank Select defaults to bank 0.
	bank, program = s.SelectedBankProgram(0)
	assert.Equal(t, uint16(0), bank)
	assert.Equal(t, uint16(5), program)
}

func TestSelectedBankProgram_ExplicitBankSelectOverridesDefault(t *testing.T) {
	s := NewState()
	s.SelectBank(1, 2)
	s.ProgramChange(7)
	bank, program := s.SelectedBankProgram(9) // even the drum channel honors an explicit select
	assert.Equal(t, uint16(1)*128+2, bank)
	assert.Equal(t, uint16(7), program)
}

func TestSetCC_SustainLatchesAtHalfway(t *testing.T) {
	s := NewState()
	s.SetCC(64, 63)
	assert.False(t, s.SustainLatched())
	s.SetCC(64, 64)
	assert.True(t, s.SustainLatched())
	s.SetCC(64, 0)
	assert.False(t, s.SustainLatched())
}

func TestPitchBendCents_DefaultRangeIsTwoSemitones(t *testing.T) {
	s := NewState()
	s.SetPitchBend(8191)
	assert.InDelta(t, 200.0*8191.0/8192.0, s.PitchBendCents(), 1e-6)
}

func TestRPN0_SetsPitchBendRange(t *testing.T) {
	s := NewState()
	s.SetCC(101, 0) // RPN MSB = 0
	s.SetCC(100, 0) // RPN LSB = 0 -> RPN 0, pitch bend range
	s.SetCC(6, 12)  // data entry MSB: 12 semitones
	s.SetCC(38, 50) // data entry LSB: 50 cents

	s.SetPitchBend(8192) // out of nominal range but exercises the multiplier directly
	assert.InDelta(t, 1250.0, s.PitchBendCents(), 1e-6)
}

func TestRPN0_IgnoredWhenNRPNMostRecentlySelected(t *testing.T) {
	s := NewState()
	s.SetCC(99, 1) // NRPN MSB
	s.SetCC(98, 2) // NRPN LSB
	s.SetCC(6, 12) // data entry targets the NRPN, not RPN0, so range is untouched

	s.SetPitchBend(8192)
	assert.InDelta(t, 200.0, s.PitchBendCents(), 1e-6)
}

func TestNoteVoices_RegisterAndTake(t *testing.T) {
	s := NewState()
	s.RegisterNoteVoice(60, 3)
	s.RegisterNoteVoice(60, 7)
	s.RegisterNoteVoice(64, 1)

	voices := s.TakeNoteVoices(60)
	assert.ElementsMatch(t, []int{3, 7}, voices)
	assert.Empty(t, s.TakeNoteVoices(60), "a second take should find nothing left")

	all := s.AllVoices()
	assert.ElementsMatch(t, []int{1}, all)
	assert.Empty(t, s.AllVoices())
}

func TestBank_HasSixteenIndependentChannels(t *testing.T) {
	b := NewBank()
	b[0].SetCC(7, 50)
	require.NotEqual(t, b[0].CC(7), b[1].CC(7))

	b.Reset()
	assert.InDelta(t, 100.0/127.0, b[0].CC(7), 1e-9)
}
