package effects

import (
	"math"
	"testing"
)

func TestDelayProducesOutput(t *testing.T) {
	d := NewDelay(44100, 100, 0.5, 0, 0.5)
	// Feed a pulse and check delayed output appears
	d.Process(1.0, 1.0)
	for i := 0; i < 4409; i++ { // ~100ms at 44100Hz
		d.Process(0, 0)
	}
	l, r := d.Process(0, 0)
	if math.Abs(float64(l)) < 0.01 || math.Abs(float64(r)) < 0.01 {
		t.Errorf("expected delayed output, got l=%f r=%f", l, r)
	}
}

func TestReverbProducesOutput(t *testing.T) {
	r := NewReverb(44100, 0.5, 0.4, 0.7, 0.5)
	// Feed impulse
	r.Process(1.0, 1.0)
	// After some samples, reverb tail should be present
	var maxOut float32
	for i := 0; i < 10000; i++ {
		l, _ := r.Process(0, 0)
		if l > maxOut {
			maxOut = l
		}
	}
	if maxOut < 0.001 {
		t.Error("expected reverb tail")
	}
}

func TestReverbHeavyDampingDecaysFaster(t *testing.T) {
	bright := NewReverb(44100, 0.5, 0.0, 0.7, 1.0)
	dark := NewReverb(44100, 0.5, 0.95, 0.7, 1.0)
	bright.Process(1.0, 1.0)
	dark.Process(1.0, 1.0)

	var brightEnergy, darkEnergy float64
	for i := 0; i < 20000; i++ {
		bl, _ := bright.Process(0, 0)
		dl, _ := dark.Process(0, 0)
		brightEnergy += float64(bl) * float64(bl)
		darkEnergy += float64(dl) * float64(dl)
	}
	if darkEnergy >= brightEnergy {
		t.Errorf("heavily damped reverb should carry less tail energy: bright=%f dark=%f", brightEnergy, darkEnergy)
	}
}

func TestReverbLeftAndRightDecorrelate(t *testing.T) {
	r := NewReverb(44100, 0.5, 0.4, 0.7, 1.0)
	r.Process(1.0, 1.0)
	sawDifference := false
	for i := 0; i < 5000; i++ {
		l, right := r.Process(0, 0)
		if l != right {
			sawDifference = true
			break
		}
	}
	if !sawDifference {
		t.Error("left and right reverb networks should decorrelate via offset tap lengths")
	}
}

func TestChorusProducesModulatedOutput(t *testing.T) {
	c := NewChorus(44100, 15, 0.2, 3, 0.8, 1.0)
	sawNonZero := false
	for i := 0; i < 2000; i++ {
		l, _ := c.Process(1.0, 1.0)
		if l != 0 {
			sawNonZero = true
			break
		}
	}
	if !sawNonZero {
		t.Error("expected chorus to eventually produce output once its delay line fills")
	}
}

func TestBusMixesReverbAndChorusSends(t *testing.T) {
	b := NewBus(44100, DefaultBusParams())
	sawNonZero := false
	for i := 0; i < 2000; i++ {
		l, r := b.Process(1.0, 1.0)
		if l != 0 || r != 0 {
			sawNonZero = true
			break
		}
	}
	if !sawNonZero {
		t.Error("expected the bus to eventually produce non-zero wet output")
	}
}

func TestDistortionClips(t *testing.T) {
	d := NewDistortion(44100, 10, 0.5, 0)
	l, r := d.Process(0.5, 0.5)
	// With high pregain, tanh should compress the signal
	if math.Abs(float64(l)) > 1.0 || math.Abs(float64(r)) > 1.0 {
		t.Error("distortion output should be bounded")
	}
	if math.Abs(float64(l)) < 0.01 {
		t.Error("expected non-zero distortion output")
	}
}

func TestChainAppliesEffectsInOrder(t *testing.T) {
	c := NewChain(
		NewDistortion(44100, 2, 1, 0),
		NewDelay(44100, 10, 0, 0, 0.5),
	)
	l, r := c.Process(0.5, 0.5)
	if l == 0 || r == 0 {
		t.Error("chain should produce output")
	}
	// Distortion first (tanh(0.5*2)), then the delay's 50% dry path; the
	// reverse order would give tanh(0.25*2) instead.
	want := math.Tanh(1.0) * 0.5
	if math.Abs(float64(l)-want) > 1e-6 || math.Abs(float64(r)-want) > 1e-6 {
		t.Errorf("expected distortion then delay = %f, got l=%f r=%f", want, l, r)
	}
}

func TestEQ3BandUnityGain(t *testing.T) {
	eq := NewEQ3Band(44100, 1.0, 1.0, 1.0, 300, 3000)
	// With unity gains, output should approximate input after warmup
	for i := 0; i < 1000; i++ {
		eq.Process(0.5, 0.5)
	}
	l, r := eq.Process(0.5, 0.5)
	if math.Abs(float64(l)-0.5) > 0.1 || math.Abs(float64(r)-0.5) > 0.1 {
		t.Errorf("expected ~0.5 with unity gains, got l=%f r=%f", l, r)
	}
}

func TestCompressorReducesLoud(t *testing.T) {
	c := NewCompressor(44100, -10, 4, 1, 50, 0)
	// Feed loud signal repeatedly to let envelope settle
	var out float32
	for i := 0; i < 1000; i++ {
		out, _ = c.Process(1.0, 1.0)
	}
	if out >= 1.0 {
		t.Errorf("compressor should reduce loud signals, got %f", out)
	}
}
