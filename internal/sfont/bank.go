package sfont

import "fmt"

// Zone is a key/velocity region of a preset or instrument, carrying a
// generator set and modulator set (spec.md §3). InstrumentIndex/SampleIndex
// are -1 when the zone doesn't link to one: a global zone has both at -1, a
// preset zone always has SampleIndex -1, and an instrument zone always has
// InstrumentIndex -1.
type Zone struct {
	Generators      *GeneratorSet
	Modulators      []Modulator
	KeyRange        Range
	VelRange        Range
	InstrumentIndex int
	SampleIndex     int
}

// InRange reports whether the zone's key and velocity ranges both contain
// the given note and velocity.
func (z *Zone) InRange(note, velocity int) bool {
	return z.KeyRange.contains(note) && z.VelRange.contains(velocity)
}

// Instrument is an ordered list of instrument zones; GlobalZone, if present,
// supplies defaults for every other zone (spec.md §3).
type Instrument struct {
	Name       string
	GlobalZone *Zone
	Zones      []Zone
}

// Preset is (bank, program, name) plus its ordered preset zones.
type Preset struct {
	Bank       uint16
	Program    uint16
	Name       string
	GlobalZone *Zone
	Zones      []Zone
}

// presetKey packs (bank, program) into the Bank.Presets map key.
func presetKey(bank, program uint16) uint32 {
	return uint32(bank)<<16 | uint32(program)
}

// Bank is the fully parsed, resolved catalog: Presets -> Instrument Zones ->
// Sample Zones, read-only after load (spec.md §2 item 2).
type Bank struct {
	Info        BankInfo
	Presets     map[uint32]*Preset
	Instruments []*Instrument
	Samples     []*Sample
}

// Lookup finds a preset by (bank, program), falling back to bank 0 per
// spec.md §4.2 step 1.
func (b *Bank) Lookup(bank, program uint16) (*Preset, bool) {
	if p, ok := b.Presets[presetKey(bank, program)]; ok {
		return p, true
	}
	if bank != 0 {
		if p, ok := b.Presets[presetKey(0, program)]; ok {
			return p, true
		}
	}
	return nil, false
}

// buildZones decodes the generator/modulator ranges for records [lo, hi) of
// a bag-indexed zone list into Zone values, splitting off a leading global
// zone when the first zone carries no link generator (spec.md §4.1's
// "first zone ... is global" rule applies uniformly to presets and
// instruments via the linkGen parameter: GenInstrument for presets,
// GenSampleID for instruments).
func buildZones(bags []bagRecord, bagLo, bagHi int, gens []generatorRecord, mods []modulatorRecord, linkGen Generator, sampleCount, instCount int) (global *Zone, zones []Zone, err error) {
	for bi := bagLo; bi < bagHi; bi++ {
		genLo, genHi, modLo, modHi, rerr := bagRange(bags, bi)
		if rerr != nil {
			return nil, nil, rerr
		}
		if genHi > len(gens) || modHi > len(mods) {
			return nil, nil, errf(InconsistentIndex, fmt.Sprintf("zone %d generator/modulator range exceeds table length", bi))
		}
		z := &Zone{
			Generators:      &GeneratorSet{},
			KeyRange:        fullRange,
			VelRange:        fullRange,
			InstrumentIndex: -1,
			SampleIndex:     -1,
		}
		linkValue := int32(-1)
		hasLink := false
		for gi := genLo; gi < genHi; gi++ {
			rec := gens[gi]
			id := Generator(rec.Oper)
			if id == GenKeyRange {
				z.KeyRange = Range{Lo: uint8(rec.Amount & 0xFF), Hi: uint8((rec.Amount >> 8) & 0xFF)}
				continue
			}
			if id == GenVelRange {
				z.VelRange = Range{Lo: uint8(rec.Amount & 0xFF), Hi: uint8((rec.Amount >> 8) & 0xFF)}
				continue
			}
			if int(id) >= NumGenerators {
				continue // unknown generator id: ignored; no warning is logged
			}
			z.Generators.Set(id, rec.Amount)
			if id == linkGen {
				linkValue = int32(uint16(rec.Amount))
				hasLink = true
			}
		}
		for mi := modLo; mi < modHi; mi++ {
			rec := mods[mi]
			z.Modulators = append(z.Modulators, decodeModulator(rec))
		}
		if !hasLink {
			if bi == bagLo && global == nil {
				global = z
				continue
			}
			// A non-first zone with no link (whether or not it carries
			// ranges) is dropped and never emitted (spec.md §4.2 edge case).
			continue
		}
		if linkGen == GenInstrument {
			if int(linkValue) < 0 || int(linkValue) >= instCount {
				return nil, nil, errf(DanglingReference, fmt.Sprintf("preset zone references instrument %d, have %d instruments", linkValue, instCount))
			}
			z.InstrumentIndex = int(linkValue)
		} else {
			if int(linkValue) < 0 || int(linkValue) >= sampleCount {
				return nil, nil, errf(DanglingReference, fmt.Sprintf("instrument zone references sample %d, have %d samples", linkValue, sampleCount))
			}
			z.SampleIndex = int(linkValue)
		}
		zones = append(zones, *z)
	}
	return global, zones, nil
}

func decodeModulator(rec modulatorRecord) Modulator {
	src, srcBipolar, srcNeg, srcTransform := decodeModSrc(rec.SrcOper)
	amtSrc, amtBipolar, amtNeg, _ := decodeModSrc(rec.AmtSrcOper)
	return Modulator{
		Source:              src,
		SourceIsBipolar:     srcBipolar,
		SourceIsNegative:    srcNeg,
		SourceTransform:     srcTransform,
		Destination:         Generator(rec.DestOper),
		Amount:              rec.Amount,
		Secondary:           amtSrc,
		SecondaryIsBipolar:  amtBipolar,
		SecondaryIsNegative: amtNeg,
		SecondaryTransform:  Transform((rec.TransOper)),
	}
}

// decodeModSrc unpacks the SF2 10-bit packed modulator-source field: bits
// 0-6 the controller palette index, bit 7 general/CC select, bit 8 D
// (direction, 1=negative), bit 9 P (polarity, 1=bipolar), bits 10-15 the
// curve type.
func decodeModSrc(raw uint16) (ctrl Controller, bipolar, negative bool, transform Transform) {
	index := raw & 0x7F
	isCC := raw&0x0080 != 0
	negative = raw&0x0100 != 0
	bipolar = raw&0x0200 != 0
	transform = Transform((raw >> 10) & 0x3F)
	if isCC {
		ctrl = ccController(uint8(index))
	} else {
		ctrl = Controller(index)
	}
	return
}
