package sfont

import "fmt"

// SampleType distinguishes mono, stereo-left/right, and linked samples.
// Grounded on Alextopher-sf/hydra.go's SfSampleType constants.
type SampleType uint16

const (
	SampleMono SampleType = 1
	SampleRight SampleType = 2
	SampleLeft  SampleType = 4
	SampleLinked SampleType = 8
)

// interpolationPad is how many extra zero samples are appended after End so
// the 4-point interpolator's (spec.md §4.3 step 7) s[i+1] and s[i+2] taps
// past End read zeros from Data itself. Only 2 are kept, not the SF2 PCM
// pool's 46-sample zero tail.
const interpolationPad = 2

// Sample is immutable after load (spec.md §3). Data is an owned copy of
// this sample's PCM region sliced from the sdta pool, plus a small trailing
// pad so interpolation never reads out of bounds.
type Sample struct {
	ID              int
	Name            string
	Data            []int16 // owned; len(Data) == (End-Start) + interpolationPad
	Start           uint32  // always 0: Data is already sliced to this sample's region
	End             uint32  // == len(Data) - interpolationPad
	LoopStart       uint32
	LoopEnd         uint32
	OriginalPitch   uint8
	PitchCorrection int8
	SampleRate      uint32
	Type            SampleType
	LinkIndex       uint16
}

// At returns the sample value at relative index idx, honoring wrap-around
// for looped reads: idx beyond LoopEnd wraps back by (LoopEnd-LoopStart)
// when loop is true. Any index outside Data (negative, or past the padded
// tail) reads as 0.
func (s *Sample) At(idx int, loop bool) int16 {
	if loop && s.LoopEnd > s.LoopStart {
		lo, hi := int(s.LoopStart), int(s.LoopEnd)
		for idx >= hi {
			idx -= hi - lo
		}
	}
	if idx < 0 {
		return 0
	}
	if idx >= len(s.Data) {
		return 0
	}
	return s.Data[idx]
}

// buildSample validates and slices one sample header's PCM region out of
// the raw little-endian 16-bit pool. Returns (nil, *ParseError of kind
// InvalidSampleRange) when the header violates the Sample invariant
// (spec.md §3) — the caller skips the sample
// and any zone referencing it, logging a warning (spec.md §4.1).
func buildSample(id int, rec sampleHeaderRecord, pool []int16) (*Sample, error) {
	start, end := rec.Start, rec.End
	loopStart, loopEnd := rec.StartLoop, rec.EndLoop
	if !(start <= loopStart && loopStart < loopEnd && loopEnd <= end && end <= uint32(len(pool))) {
		return nil, errf(InvalidSampleRange, fmt.Sprintf("sample %q: invalid range start=%d loopStart=%d loopEnd=%d end=%d poolLen=%d",
			cstring(rec.Name[:]), start, loopStart, loopEnd, end, len(pool)))
	}
	if rec.SampleRate == 0 {
		return nil, errf(InvalidSampleRange, fmt.Sprintf("sample %q: sample rate must be > 0", cstring(rec.Name[:])))
	}
	data := make([]int16, (end-start)+interpolationPad)
	copy(data, pool[start:end])
	originalPitch := rec.OriginalPitch
	if originalPitch > 127 {
		originalPitch = 60
	}
	return &Sample{
		ID:              id,
		Name:            cstring(rec.Name[:]),
		Data:            data,
		Start:           0,
		End:             end - start,
		LoopStart:       loopStart - start,
		LoopEnd:         loopEnd - start,
		OriginalPitch:   originalPitch,
		PitchCorrection: rec.PitchCorrection,
		SampleRate:      rec.SampleRate,
		Type:            SampleType(rec.SampleType &^ 0x8000),
		LinkIndex:       rec.SampleLink,
	}, nil
}

// decodeSdtaPool reads the 16-bit little-endian PCM pool out of the sdta
// smpl sub-chunk. An optional sm24 24-bit low-byte extension is recognized
// and ignored: its data is neither decoded nor checked.
func decodeSdtaPool(c chunk) ([]int16, error) {
	r, err := listForm(c, "sdta")
	if err != nil {
		return nil, err
	}
	var pool []int16
	have24 := false
	for {
		sub, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch sub.idString() {
		case "smpl":
			if len(sub.data)%2 != 0 {
				return nil, errf(TruncatedChunk, "smpl chunk length is not a multiple of 2")
			}
			pool = make([]int16, len(sub.data)/2)
			for i := range pool {
				pool[i] = int16(uint16(sub.data[2*i]) | uint16(sub.data[2*i+1])<<8)
			}
		case "sm24":
			have24 = true
		}
	}
	_ = have24 // 24-bit extension acknowledged but not applied (spec targets 16-bit PCM)
	if pool == nil {
		return nil, errf(InvalidContainer, "sdta chunk missing required smpl sub-chunk")
	}
	return pool, nil
}
