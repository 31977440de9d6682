package voice

import "github.com/spetrequin/awe-synth-sub005/internal/sfont"

// ChannelView is the live MIDI channel state a Voice reads every sample to
// evaluate modulators whose source is a continuous controller (spec.md
// §4.5's live-update CC set: 1, 7, 10, 11, 64, 91, 93; 64 — sustain pedal —
// is consumed at the voice-manager layer instead of here). Implemented by
// internal/channel.State.
type ChannelView interface {
	CC(number uint8) float64       // normalized [0, 1]
	ChannelPressure() float64      // normalized [0, 1]
}

// controllerRaw resolves a Controller to its current normalized [0, 1]
// value. Pitch-wheel sources resolve to 0 here: spec.md §4.3 step 3 folds
// pitch bend into the pitch computation directly (`pitchBend *
// pitchBendRangeCents`), so the pitch-wheel default modulator's
// contribution would double-count it; this evaluator intentionally treats
// it as inert. Polyphonic key pressure has no per-key channel state
// tracked at this layer and also resolves to 0.
func controllerRaw(ctrl sfont.Controller, cv ChannelView, velocity, keynum int) float64 {
	switch {
	case ctrl == sfont.CtrlNoController:
		return 1.0
	case ctrl == sfont.CtrlNoteOnVelocity:
		return float64(velocity) / 127.0
	case ctrl == sfont.CtrlNoteOnKeyNumber:
		return float64(keynum) / 127.0
	case ctrl == sfont.CtrlChannelPressure:
		return cv.ChannelPressure()
	case ctrl == sfont.CtrlPolyPressure, ctrl == sfont.CtrlPitchWheel, ctrl == sfont.CtrlPitchWheelSensitivity:
		return 0
	case ctrl >= 0x80:
		return cv.CC(uint8(ctrl - 0x80))
	default:
		return 0
	}
}

// shapeSource applies direction, transform, and polarity to a raw [0, 1]
// controller reading, in that order — a simplified but monotonic stand-in
// for the SF2.01 appendix's exact concave/convex amplitude-response curves
// (those model perceptual loudness with tabulated dB curves; here concave
// and convex are approximated with x^2 / mirrored-x^2, which preserves the
// "biases low values down / up" shape used for velocity-to-volume curves
// without needing the lookup tables).
func shapeSource(raw float64, bipolar, negative bool, transform sfont.Transform) float64 {
	if negative {
		raw = 1 - raw
	}
	switch transform {
	case sfont.TransformConcave:
		raw = raw * raw
	case sfont.TransformConvex:
		raw = 1 - (1-raw)*(1-raw)
	case sfont.TransformSwitch:
		if raw < 0.5 {
			raw = 0
		} else {
			raw = 1
		}
	}
	if bipolar {
		return raw*2 - 1
	}
	return raw
}

func modulatorValue(m sfont.Modulator, cv ChannelView, velocity, keynum int) float64 {
	raw := controllerRaw(m.Source, cv, velocity, keynum)
	shaped := shapeSource(raw, m.SourceIsBipolar, m.SourceIsNegative, m.SourceTransform)
	return shaped * float64(m.Amount)
}

// sumModulators returns the live additive contribution, in the
// destination's native generator units, of every modulator in mods that
// targets dest.
func sumModulators(mods []sfont.Modulator, dest sfont.Generator, cv ChannelView, velocity, keynum int) float64 {
	var total float64
	for _, m := range mods {
		if m.Destination != dest {
			continue
		}
		total += modulatorValue(m, cv, velocity, keynum)
	}
	return total
}
