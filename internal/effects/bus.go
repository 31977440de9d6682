package effects

// BusParams holds the global reverb/chorus bus's intrinsic parameters.
// spec.md §9 leaves host/bank control of these as an open question;
// SPEC_FULL.md resolves it by keeping them fixed defaults with an unwired
// override hook on Engine, rather than inventing a CC/bank surface the
// spec never names.
type BusParams struct {
	RoomSize       float32 // 0..1
	Damping        float32 // 0..1
	ReverbFeedback float32 // 0..1

	ChorusDelayMs  float32
	ChorusFeedback float32
	ChorusDepthMs  float32
	ChorusRateHz   float32
}

// DefaultBusParams returns a moderate room with a gentle two-voice chorus.
func DefaultBusParams() BusParams {
	return BusParams{
		RoomSize:       0.5,
		Damping:        0.4,
		ReverbFeedback: 0.7,

		ChorusDelayMs:  15,
		ChorusFeedback: 0.2,
		ChorusDepthMs:  3,
		ChorusRateHz:   0.8,
	}
}

// Bus is the global send effects bus (spec.md §4.6): every voice's reverb
// and chorus sends accumulate into one mono value each per sample, which
// the bus turns into a stereo wet signal for the engine to add on top of
// the dry voice mix. Built fully wet (wet=1) since the dry path is already
// present in the voice mix the engine sums separately.
type Bus struct {
	reverb *Reverb
	chorus *Chorus
}

// NewBus constructs a bus tuned to params at sampleRate.
func NewBus(sampleRate int, params BusParams) *Bus {
	return &Bus{
		reverb: NewReverb(sampleRate, params.RoomSize, params.Damping, params.ReverbFeedback, 1.0),
		chorus: NewChorus(sampleRate, params.ChorusDelayMs, params.ChorusFeedback, params.ChorusDepthMs, params.ChorusRateHz, 1.0),
	}
}

// Process turns this sample's accumulated mono reverb/chorus sends into a
// stereo wet contribution to add onto the dry mix.
func (b *Bus) Process(reverbSend, chorusSend float64) (wetL, wetR float64) {
	rl, rr := b.reverb.Process(float32(reverbSend), float32(reverbSend))
	cl, cr := b.chorus.Process(float32(chorusSend), float32(chorusSend))
	return float64(rl + cl), float64(rr + cr)
}

// Reset clears both networks' internal state (spec.md §6 reset()).
func (b *Bus) Reset() {
	b.reverb.Reset()
	b.chorus.Reset()
}
