package sfont

import "encoding/binary"

// testBankBuilder is an unused placeholder type. The helper functions in
// this file (buildMinimalBank, buildBankWithNoPresets) assemble a minimal
// but structurally valid SF2 byte buffer in memory, the way a real
// SoundFont would lay one out: one sample, one instrument with a single
// zone, one preset with a single zone. parse_test.go uses them to exercise
// Parse without needing a real .sf2 fixture file on disk (the parser takes
// no file path, spec.md §4.1).
type testBankBuilder struct {
	sampleData []int16
}

func name20(s string) [20]byte {
	var b [20]byte
	copy(b[:], s)
	return b
}

func u16le(v uint16) []byte {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, v)
	return b
}

func u32le(v uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return b
}

func i16le(v int16) []byte { return u16le(uint16(v)) }

func riffChunkBytes(id string, data []byte) []byte {
	out := make([]byte, 0, 8+len(data)+1)
	out = append(out, []byte(id)...)
	out = append(out, u32le(uint32(len(data)))...)
	out = append(out, data...)
	if len(data)%2 == 1 {
		out = append(out, 0)
	}
	return out
}

func listChunkBytes(id string, form string, subchunks ...[]byte) []byte {
	data := []byte(form)
	for _, s := range subchunks {
		data = append(data, s...)
	}
	return riffChunkBytes("LIST", data)
}

// buildMinimalBank produces a complete one-sample/one-instrument/one-preset
// SoundFont with a short alternating-value (square) waveform named "sine",
// at 44100 Hz and tagged as original pitch 69 (A4).
func buildMinimalBank(sampleLen int) []byte {
	return buildBank(sampleLen, true)
}

// buildBankWithNoPresets produces the same sample/instrument data but an
// empty phdr table (only its terminal sentinel record), exercising the
// EmptyBank fatal-error path without any manual byte patching of nested
// RIFF chunk sizes.
func buildBankWithNoPresets(sampleLen int) []byte {
	return buildBank(sampleLen, false)
}

func buildBank(sampleLen int, includePreset bool) []byte {
	pcm := make([]int16, sampleLen)
	for i := range pcm {
		pcm[i] = int16((i%2)*2000 - 1000) // cheap non-silent alternating waveform
	}
	pcmBytes := make([]byte, len(pcm)*2)
	for i, v := range pcm {
		binary.LittleEndian.PutUint16(pcmBytes[2*i:], uint16(v))
	}

	info := listChunkBytes("LIST", "INFO",
		riffChunkBytes("ifil", append(u16le(2), u16le(0)...)),
		riffChunkBytes("isng", []byte("EMU8000\x00")),
		riffChunkBytes("INAM", []byte("test bank\x00")),
	)

	sdta := listChunkBytes("LIST", "sdta",
		riffChunkBytes("smpl", pcmBytes),
	)

	// shdr: one real sample + terminal sentinel.
	shdr := riffChunkBytes("shdr",
		append(
			sampleHeaderBytes("sine", 0, uint32(sampleLen), 8, uint32(sampleLen-8), 44100, 69, 0, 0, uint16(SampleMono)),
			sampleHeaderBytes("EOS", 0, 0, 0, 0, 0, 0, 0, 0, 0)...,
		),
	)

	// One instrument zone linking to sample 0 (igen: sampleID=0), then terminal.
	igen := riffChunkBytes("igen", append(
		generatorBytes(GenSampleID, 0),
		generatorBytes(0, 0)..., // terminal sentinel record (ignored)
	))
	ibag := riffChunkBytes("ibag", append(bagBytes(0, 0), bagBytes(1, 0)...))
	imod := riffChunkBytes("imod", []byte{}) // no modulators; chunk may be empty? keep one terminal record instead
	imod = riffChunkBytes("imod", modulatorTerminal())
	inst := riffChunkBytes("inst", append(
		instrumentHeaderBytes("lead", 0),
		instrumentHeaderBytes("EOI", 1)...,
	))

	// One preset zone linking to instrument 0 (pgen: instrument=0), then terminal.
	var pgen, pbag, pmod, phdr []byte
	if includePreset {
		pgen = riffChunkBytes("pgen", append(
			generatorBytes(GenInstrument, 0),
			generatorBytes(0, 0)...,
		))
		pbag = riffChunkBytes("pbag", append(bagBytes(0, 0), bagBytes(1, 0)...))
		pmod = riffChunkBytes("pmod", modulatorTerminal())
		phdr = riffChunkBytes("phdr", append(
			presetHeaderBytes("lead preset", 0, 0, 0),
			presetHeaderBytes("EOP", 0, 0, 1)...,
		))
	} else {
		pgen = riffChunkBytes("pgen", generatorBytes(0, 0))
		pbag = riffChunkBytes("pbag", bagBytes(0, 0))
		pmod = riffChunkBytes("pmod", modulatorTerminal())
		phdr = riffChunkBytes("phdr", presetHeaderBytes("EOP", 0, 0, 0))
	}

	pdta := listChunkBytes("LIST", "pdta", phdr, pbag, pmod, pgen, inst, ibag, imod, igen, shdr)

	sfbk := listChunkBytes("LIST", "sfbk", info, sdta, pdta)
	// The outer chunk must have id "RIFF" with form "sfbk"; listChunkBytes
	// always emits id "LIST", so splice the outer id by hand.
	sfbk = append([]byte("RIFF"), sfbk[4:]...)
	return sfbk
}

func sampleHeaderBytes(nameStr string, start, end, loopStart, loopEnd, rate uint32, origPitch uint8, pitchCorr int8, sampleLink uint16, sampleType uint16) []byte {
	b := make([]byte, 0, sampleHeaderSize)
	b = append(b, name20(nameStr)[:]...)
	b = append(b, u32le(start)...)
	b = append(b, u32le(end)...)
	b = append(b, u32le(loopStart)...)
	b = append(b, u32le(loopEnd)...)
	b = append(b, u32le(rate)...)
	b = append(b, byte(origPitch), byte(pitchCorr))
	b = append(b, u16le(sampleLink)...)
	b = append(b, u16le(sampleType)...)
	return b
}

func instrumentHeaderBytes(nameStr string, bagNdx uint16) []byte {
	b := make([]byte, 0, instHeaderSize)
	b = append(b, name20(nameStr)[:]...)
	b = append(b, u16le(bagNdx)...)
	return b
}

func presetHeaderBytes(nameStr string, preset, bank uint16, bagNdx uint16) []byte {
	b := make([]byte, 0, presetHeaderSize)
	b = append(b, name20(nameStr)[:]...)
	b = append(b, u16le(preset)...)
	b = append(b, u16le(bank)...)
	b = append(b, u16le(bagNdx)...)
	b = append(b, u32le(0)...) // Library
	b = append(b, u32le(0)...) // Genre
	b = append(b, u32le(0)...) // Morphology
	return b
}

func bagBytes(genNdx, modNdx uint16) []byte {
	b := make([]byte, 0, bagSize)
	b = append(b, u16le(genNdx)...)
	b = append(b, u16le(modNdx)...)
	return b
}

func generatorBytes(gen Generator, amount int16) []byte {
	b := make([]byte, 0, generatorSize)
	b = append(b, u16le(uint16(gen))...)
	b = append(b, i16le(amount)...)
	return b
}

func modulatorTerminal() []byte {
	b := make([]byte, 0, modulatorSize)
	b = append(b, u16le(0)...)
	b = append(b, u16le(0)...)
	b = append(b, i16le(0)...)
	b = append(b, u16le(0)...)
	b = append(b, u16le(0)...)
	return b
}
