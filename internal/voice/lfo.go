package voice

import "math"

// lfo is a triangle-only low-frequency oscillator with a delay stage before
// it starts running, narrowed from lfo.LFO's four waveforms (saw, square,
// triangle, random) to the EMU8000's triangle-only LFO contract, and
// extended with the delay-in-samples stage the teacher's LFO never needed
// (a plain synth engine LFO runs from note-on; an SF2 LFO waits out
// delayModLFO/delayVibLFO cents first).
type lfo struct {
	rateHz     float64
	phase      float64 // [0, 1)
	delay      int     // samples remaining before the LFO starts
	sampleRate float64
}

// setRate converts an SF2 frequency in absolute cents to Hz via
// 8.176*2^(cents/1200), clamped to [0.1, 20] Hz (spec.md §4.3 "LFO
// contract").
func (l *lfo) setRate(cents int16, sampleRate float64) {
	hz := 8.176 * math.Pow(2, float64(cents)/1200.0)
	if hz < 0.1 {
		hz = 0.1
	}
	if hz > 20 {
		hz = 20
	}
	l.rateHz = hz
	l.sampleRate = sampleRate
}

// setDelay converts an SF2 delay in absolute timecents to a sample count.
// SF2 timecents convert to seconds via 2^(cents/1200); a very negative
// value (the -12000 "no delay" default) collapses to ~0 samples.
func (l *lfo) setDelay(delayTimecents int16, sampleRate float64) {
	sec := math.Pow(2, float64(delayTimecents)/1200.0)
	l.delay = int(sec * sampleRate)
	if l.delay < 0 {
		l.delay = 0
	}
	l.phase = 0
}

// next advances the LFO by one sample and returns its triangle output in
// [-1, +1], or 0 while still in the delay stage (spec.md §4.3 step 1).
func (l *lfo) next() float64 {
	if l.delay > 0 {
		l.delay--
		return 0
	}
	var v float64
	if l.phase < 0.5 {
		v = 4.0*l.phase - 1.0
	} else {
		v = 3.0 - 4.0*l.phase
	}
	l.phase += l.rateHz / l.sampleRate
	for l.phase >= 1.0 {
		l.phase -= 1.0
	}
	return v
}
