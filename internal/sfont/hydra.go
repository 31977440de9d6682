package sfont

import (
	"encoding/binary"
	"fmt"
)

// The nine fixed-record pdta tables, decoded in the strict order spec.md
// §4.1 requires. Record shapes are grounded on Alextopher-sf/hydra.go's
// PresetHeader/Instrument/SampleHeader/Modulator/Generator structs and its
// binary.Read-based decode of each sub-chunk.

type presetHeaderRecord struct {
	Name         [20]byte
	Preset       uint16
	Bank         uint16
	PresetBagNdx uint16
	Library      uint32
	Genre        uint32
	Morphology   uint32
}

type bagRecord struct {
	GenNdx uint16
	ModNdx uint16
}

type modulatorRecord struct {
	SrcOper   uint16
	DestOper  uint16
	Amount    int16
	AmtSrcOper uint16
	TransOper uint16
}

type generatorRecord struct {
	Oper   uint16
	Amount int16
}

type instrumentHeaderRecord struct {
	Name       [20]byte
	InstBagNdx uint16
}

type sampleHeaderRecord struct {
	Name            [20]byte
	Start           uint32
	End             uint32
	StartLoop       uint32
	EndLoop         uint32
	SampleRate      uint32
	OriginalPitch   uint8
	PitchCorrection int8
	SampleLink      uint16
	SampleType      uint16
}

// hydra is the fully decoded pdta section: nine tables, each including its
// terminal sentinel record, exactly as the file stores them.
type hydra struct {
	presets     []presetHeaderRecord
	presetBags  []bagRecord
	presetMods  []modulatorRecord
	presetGens  []generatorRecord
	insts       []instrumentHeaderRecord
	instBags    []bagRecord
	instMods    []modulatorRecord
	instGens    []generatorRecord
	samples     []sampleHeaderRecord
}

// pdtaOrder is the strict order spec.md §4.1 requires the nine sub-chunks
// to appear in.
var pdtaOrder = []string{"phdr", "pbag", "pmod", "pgen", "inst", "ibag", "imod", "igen", "shdr"}

const (
	presetHeaderSize = 38
	bagSize          = 4
	modulatorSize    = 10
	generatorSize    = 4
	instHeaderSize   = 22
	sampleHeaderSize = 46
)

func parsePdta(c chunk) (*hydra, error) {
	r, err := listForm(c, "pdta")
	if err != nil {
		return nil, err
	}
	h := &hydra{}
	for _, want := range pdtaOrder {
		sub, ok, err := r.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errf(InvalidContainer, fmt.Sprintf("pdta missing required sub-chunk %q", want))
		}
		if sub.idString() != want {
			return nil, errf(InvalidContainer, fmt.Sprintf("pdta sub-chunks out of order: expected %q, found %q", want, sub.idString()))
		}
		if err := h.decode(sub); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *hydra) decode(c chunk) error {
	switch c.idString() {
	case "phdr":
		n, err := fixedRecordCount(c, presetHeaderSize)
		if err != nil {
			return err
		}
		h.presets = make([]presetHeaderRecord, n)
		return readRecords(c.data, h.presets)
	case "pbag":
		n, err := fixedRecordCount(c, bagSize)
		if err != nil {
			return err
		}
		h.presetBags = make([]bagRecord, n)
		return readRecords(c.data, h.presetBags)
	case "pmod":
		n, err := fixedRecordCount(c, modulatorSize)
		if err != nil {
			return err
		}
		h.presetMods = make([]modulatorRecord, n)
		return readRecords(c.data, h.presetMods)
	case "pgen":
		n, err := fixedRecordCount(c, generatorSize)
		if err != nil {
			return err
		}
		h.presetGens = make([]generatorRecord, n)
		return readRecords(c.data, h.presetGens)
	case "inst":
		n, err := fixedRecordCount(c, instHeaderSize)
		if err != nil {
			return err
		}
		h.insts = make([]instrumentHeaderRecord, n)
		return readRecords(c.data, h.insts)
	case "ibag":
		n, err := fixedRecordCount(c, bagSize)
		if err != nil {
			return err
		}
		h.instBags = make([]bagRecord, n)
		return readRecords(c.data, h.instBags)
	case "imod":
		n, err := fixedRecordCount(c, modulatorSize)
		if err != nil {
			return err
		}
		h.instMods = make([]modulatorRecord, n)
		return readRecords(c.data, h.instMods)
	case "igen":
		n, err := fixedRecordCount(c, generatorSize)
		if err != nil {
			return err
		}
		h.instGens = make([]generatorRecord, n)
		return readRecords(c.data, h.instGens)
	case "shdr":
		n, err := fixedRecordCount(c, sampleHeaderSize)
		if err != nil {
			return err
		}
		h.samples = make([]sampleHeaderRecord, n)
		return readRecords(c.data, h.samples)
	default:
		return errf(InvalidContainer, fmt.Sprintf("unexpected pdta sub-chunk %q", c.idString()))
	}
}

func fixedRecordCount(c chunk, recSize int) (int, error) {
	if len(c.data)%recSize != 0 {
		return 0, errf(TruncatedChunk, fmt.Sprintf("chunk %q size %d is not a multiple of record size %d", c.idString(), len(c.data), recSize))
	}
	n := len(c.data) / recSize
	if n < 1 {
		return 0, errf(InconsistentIndex, fmt.Sprintf("chunk %q has no records, not even a terminal sentinel", c.idString()))
	}
	return n, nil
}

func readRecords(data []byte, out any) error {
	r := bytesReader(data)
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return errf(TruncatedChunk, "failed decoding fixed-size record table: "+err.Error())
	}
	return nil
}

// bagRange returns the [genStart, genEnd) and [modStart, modEnd) index
// ranges for bag i, derived from bag i's start index and bag i+1's start
// index per spec.md §4.1. bags must include the terminal sentinel record.
func bagRange(bags []bagRecord, i int) (genLo, genHi, modLo, modHi int, err error) {
	if i < 0 || i+1 >= len(bags) {
		return 0, 0, 0, 0, errf(InconsistentIndex, fmt.Sprintf("bag index %d out of range (have %d bags)", i, len(bags)))
	}
	genLo = int(bags[i].GenNdx)
	genHi = int(bags[i+1].GenNdx)
	modLo = int(bags[i].ModNdx)
	modHi = int(bags[i+1].ModNdx)
	if genHi < genLo || modHi < modLo {
		return 0, 0, 0, 0, errf(InconsistentIndex, fmt.Sprintf("bag %d has decreasing gen/mod index range", i))
	}
	return genLo, genHi, modLo, modHi, nil
}
