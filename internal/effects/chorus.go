package effects

import "math"

// Chorus implements a two-voice modulated delay for chorus/flanger
// effects: two independent triangle LFOs sweep two delay taps out of
// phase, generalized from effects/chorus.go's single sine-modulated tap
// (spec.md §4.6 "a small number (e.g. 2) of modulated delay lines"),
// keeping the teacher's fractional-delay read/write structure for each
// tap.
type Chorus struct {
	bufL, bufR []float32
	pos        int
	size       int
	taps       [2]chorusTap
	feedback   float32
	wet        float32
}

type chorusTap struct {
	depth float32 // modulation depth in samples
	rate  float64 // modulation rate in radians per sample
	phase float64
}

// NewChorus creates a chorus/flanger effect.
// delayMs: together with depthMs sets the delay-line length (delayMs +
// depthMs, plus 2 samples); both taps sweep around the middle of that
// line, i.e. a centre delay of about (delayMs+depthMs)/2.
// feedback: feedback amount 0..1.
// depthMs: peak modulation deviation in ms either side of the centre delay.
// rateHz: modulation rate in Hz, clamped to the 0.5-2Hz triangle-LFO range
// spec.md §4.6 calls for; each tap runs at a slightly different rate and
// a 180-degree phase offset so the two voices don't track in lockstep.
// wet: wet/dry mix 0..1.
func NewChorus(sampleRate int, delayMs, feedback, depthMs, rateHz, wet float32) *Chorus {
	rateHz = clamp(rateHz, 0.5, 2.0)
	baseSamples := int(float64(delayMs) * float64(sampleRate) / 1000.0)
	depthSamples := float64(depthMs) * float64(sampleRate) / 1000.0
	size := baseSamples + int(depthSamples) + 2
	if size < 4 {
		size = 4
	}
	c := &Chorus{
		bufL:     make([]float32, size),
		bufR:     make([]float32, size),
		size:     size,
		feedback: clamp(feedback, 0, 0.9),
		wet:      clamp(wet, 0, 1),
	}
	c.taps[0] = chorusTap{
		depth: float32(depthSamples),
		rate:  2.0 * math.Pi * float64(rateHz) / float64(sampleRate),
	}
	c.taps[1] = chorusTap{
		depth: float32(depthSamples),
		rate:  2.0 * math.Pi * float64(rateHz*1.07) / float64(sampleRate),
		phase: math.Pi,
	}
	return c
}

// triangle returns a -1..1 triangle wave for phase in [0, 2*pi).
func triangle(phase float64) float64 {
	t := phase / (2 * math.Pi)
	t -= math.Floor(t)
	return 4*math.Abs(t-0.5) - 1
}

func (c *Chorus) Process(l, r float32) (float32, float32) {
	c.bufL[c.pos] = l
	c.bufR[c.pos] = r

	var delL, delR float32
	for i := range c.taps {
		tap := &c.taps[i]
		mod := float32(triangle(tap.phase)) * tap.depth
		tap.phase += tap.rate
		if tap.phase > 2*math.Pi {
			tap.phase -= 2 * math.Pi
		}

		delay := float32(c.size/2) + mod
		readPos := float32(c.pos) - delay
		for readPos < 0 {
			readPos += float32(c.size)
		}
		idx := int(readPos)
		frac := readPos - float32(idx)
		idx2 := idx + 1
		if idx2 >= c.size {
			idx2 = 0
		}
		delL += c.bufL[idx]*(1-frac) + c.bufL[idx2]*frac
		delR += c.bufR[idx]*(1-frac) + c.bufR[idx2]*frac
	}
	delL *= 0.5
	delR *= 0.5

	c.bufL[c.pos] += delL * c.feedback
	c.bufR[c.pos] += delR * c.feedback

	c.pos++
	if c.pos >= c.size {
		c.pos = 0
	}
	return l*(1-c.wet) + delL*c.wet, r*(1-c.wet) + delR*c.wet
}

func (c *Chorus) Reset() {
	for i := range c.bufL {
		c.bufL[i] = 0
		c.bufR[i] = 0
	}
	c.pos = 0
	c.taps[0].phase = 0
	c.taps[1].phase = math.Pi
}
