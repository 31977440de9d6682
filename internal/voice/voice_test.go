package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spetrequin/awe-synth-sub005/internal/sfont"
)

type stubChannelView struct{}

func (stubChannelView) CC(uint8) float64         { return 0 }
func (stubChannelView) ChannelPressure() float64 { return 0 }

func testSample(length int, sampleRate uint32) *sfont.Sample {
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
		LoopEnd:       0,
		OriginalPitch: 60,
		SampleRate:    sampleRate,
	}
}

func testGenerators() *sfont.GeneratorSet {
	g := &sfont.GeneratorSet{}
	g.Set(sfont.GenSampleModes, sfont.SampleModeNoLoop)
	return g
}

func testLoopedSample(length int, sampleRate uint32) *sfont.Sample {
	s := testSample(length, sampleRate)
	s.LoopStart = 0
	s.LoopEnd = uint32(length)
	return s
}

func TestVoice_PlaysUntilSampleEndThenIdles(t *testing.T) {
	v := New(44100)
	sample := testSample(64, 44100)
	v.Start(0, 60, 100, sample, testGenerators(), nil, 0)

	require.True(t, v.Active())

	cv := stubChannelView{}
	samplesRendered := 0
	for samplesRendered < 100000 && v.Active() {
		v.Step(cv, 0, 1, 1)
		samplesRendered++
	}
	assert.False(t, v.Active(), "voice should have finished well within the bounded loop")
}

func TestVoice_NoteOffEntersReleasingBeforeIdle(t *testing.T) {
	v := New(44100)
	// Looped so the voice survives purely on envelope state, independent of
	// how fast the pitch-driven position cursor consumes the sample.
	sample := testLoopedSample(4096, 44100)
	g := &sfont.GeneratorSet{}
	g.Set(sfont.GenSampleModes, sfont.SampleModeLoopContinuous)
	g.Set(sfont.GenSustainVolEnv, 50)    // low attenuation sustain target, well under the natural-decay floor
	g.Set(sfont.GenReleaseVolEnv, -1200) // short release, ~0.5s
	v.Start(0, 60, 100, sample, g, nil, 0)

	cv := stubChannelView{}
	// Run past attack/decay into sustain.
	for i := 0; i < 2000; i++ {
		v.Step(cv, 0, 1, 1)
	}
	require.True(t, v.Active())

	v.NoteOff()
	assert.True(t, v.Releasing())

	for i := 0; i < 100000 && v.Active(); i++ {
		v.Step(cv, 0, 1, 1)
	}
	assert.False(t, v.Active())
}

func TestVoice_SilentBeforeStartNeverPanics(t *testing.T) {
	v := New(44100)
	assert.False(t, v.Active())
	l, r, rs, cs := v.Step(stubChannelView{}, 0, 1, 1)
	assert.Equal(t, 0.0, l)
	assert.Equal(t, 0.0, r)
	assert.Equal(t, 0.0, rs)
	assert.Equal(t, 0.0, cs)
}
