package effects

// Reverb implements a Schroeder-style reverb: eight comb filters feeding
// two allpass filters, run as two independent networks (left and right)
// with offset tap lengths so the two channels decorrelate into a wider
// stereo tail rather than a single mono reverb panned center. Generalized
// from effects/reverb.go's 4-comb/2-allpass mono network to the eight taps
// with low-pass damping in the feedback path that a wavetable reverb bus
// needs to sound like decaying air rather than a metallic comb.
type Reverb struct {
	left, right reverbNetwork
	wet         float32
}

type reverbNetwork struct {
	combs   [8]combFilter
	allpass [2]allpassFilter
}

type combFilter struct {
	buf  []float32
	pos  int
	fb   float32
	damp float32
	lp   float32
}

type allpassFilter struct {
	buf []float32
	pos int
	fb  float32
}

// combRatios are prime-ish ratios (in thousandths) applied to a base delay
// length so the eight taps don't line up on shared harmonics.
var combRatios = [8]int{1000, 1117, 1271, 1437, 1559, 1657, 1783, 1931}
var allpassRatios = [2]int{347, 213}

// stereoSpread offsets the right network's tap lengths from the left's
// (in thousandths) so the two channels' combs never exactly coincide.
const stereoSpread = 1037

// NewReverb creates a reverb effect.
// roomSize: 0..1 controls delay lengths.
// damping: 0..1 controls how quickly high frequencies decay in the tail
// (0 = no damping, bright; 1 = heavily damped, dark).
// feedback: 0..1 controls overall decay time.
// wet: wet/dry mix 0..1.
func NewReverb(sampleRate int, roomSize, damping, feedback, wet float32) *Reverb {
	base := int(float32(sampleRate) * roomSize * 0.05)
	if base < 10 {
		base = 10
	}
	fb := clamp(feedback, 0, 0.95)
	damp := clamp(damping, 0, 1)
	r := &Reverb{wet: clamp(wet, 0, 1)}
	r.left = newReverbNetwork(base, 1000, fb, damp)
	r.right = newReverbNetwork(base, stereoSpread, fb, damp)
	return r
}

func newReverbNetwork(base, spreadPerMille int, fb, damp float32) reverbNetwork {
	var n reverbNetwork
	spread := base * spreadPerMille / 1000
	for i := range n.combs {
		n.combs[i] = combFilter{
			buf:  make([]float32, maxInt(spread*combRatios[i]/1000, 1)),
			fb:   fb,
			damp: damp,
		}
	}
	for i := range n.allpass {
		n.allpass[i] = allpassFilter{
			buf: make([]float32, maxInt(spread*allpassRatios[i]/1000, 1)),
			fb:  0.5,
		}
	}
	return n
}

func (n *reverbNetwork) process(in float32) float32 {
	var out float32
	for i := range n.combs {
		out += n.combs[i].process(in)
	}
	out *= 1.0 / float32(len(n.combs))
	for i := range n.allpass {
		out = n.allpass[i].process(out)
	}
	return out
}

func (n *reverbNetwork) reset() {
	for i := range n.combs {
		for j := range n.combs[i].buf {
			n.combs[i].buf[j] = 0
		}
		n.combs[i].pos = 0
		n.combs[i].lp = 0
	}
	for i := range n.allpass {
		for j := range n.allpass[i].buf {
			n.allpass[i].buf[j] = 0
		}
		n.allpass[i].pos = 0
	}
}

func (r *Reverb) Process(l, r2 float32) (float32, float32) {
	outL := r.left.process(l)
	outR := r.right.process(r2)
	return l*(1-r.wet) + outL*r.wet, r2*(1-r.wet) + outR*r.wet
}

func (r *Reverb) Reset() {
	r.left.reset()
	r.right.reset()
}

func (c *combFilter) process(in float32) float32 {
	out := c.buf[c.pos]
	c.lp = out*(1-c.damp) + c.lp*c.damp
	c.buf[c.pos] = in + c.lp*c.fb
	c.pos++
	if c.pos >= len(c.buf) {
		c.pos = 0
	}
	return out
}

func (a *allpassFilter) process(in float32) float32 {
	bufOut := a.buf[a.pos]
	out := -in + bufOut
	a.buf[a.pos] = in + bufOut*a.fb
	a.pos++
	if a.pos >= len(a.buf) {
		a.pos = 0
	}
	return out
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
