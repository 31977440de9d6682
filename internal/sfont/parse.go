package sfont

import (
	"fmt"
	"log/slog"
)

// ParseOptions configures non-fatal warning behavior. Logger defaults to
// slog.Default() when nil.
type ParseOptions struct {
	Logger *slog.Logger
}

// Parse decodes a complete SoundFont 2.0 file from an in-memory buffer into
// a Bank. The parser does no I/O (spec.md §4.1 "Input. A byte buffer"); on
// any fatal structural problem it returns one of the typed *ParseError
// values and never a partially populated Bank (spec.md "Parser errors are
// fatal for the file; they never produce partial banks exposed to the
// engine").
func Parse(data []byte, opts ParseOptions) (*Bank, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	top := newChunkReader(data)
	riffChunk, err := top.expect("RIFF")
	if err != nil {
		return nil, err
	}
	inner, err := listForm(riffChunk, "sfbk")
	if err != nil {
		return nil, err
	}

	var (
		info  BankInfo
		pool  []int16
		h     *hydra
		sawInfo, sawSdta, sawPdta bool
	)
	for {
		c, ok, err := inner.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		switch c.idString() {
		case "LIST":
			if len(c.data) < 4 {
				return nil, errf(InvalidContainer, "LIST chunk too short for a form type")
			}
			switch string(c.data[:4]) {
			case "INFO":
				if info, err = parseInfo(c); err != nil {
					return nil, err
				}
				sawInfo = true
			case "sdta":
				if pool, err = decodeSdtaPool(c); err != nil {
					return nil, err
				}
				sawSdta = true
			case "pdta":
				if h, err = parsePdta(c); err != nil {
					return nil, err
				}
				sawPdta = true
			default:
				logger.Warn("sfont: ignoring unknown top-level LIST form", "form", string(c.data[:4]))
			}
		default:
			logger.Warn("sfont: ignoring unknown top-level chunk", "id", c.idString())
		}
	}
	if !sawInfo {
		return nil, errf(InvalidContainer, "missing required INFO chunk")
	}
	if !sawSdta {
		return nil, errf(InvalidContainer, "missing required sdta chunk")
	}
	if !sawPdta {
		return nil, errf(InvalidContainer, "missing required pdta chunk")
	}

	return assembleBank(info, pool, h, logger)
}

func assembleBank(info BankInfo, pool []int16, h *hydra, logger *slog.Logger) (*Bank, error) {
	if len(h.samples) < 1 {
		return nil, errf(InconsistentIndex, "shdr table has no terminal sentinel record")
	}
	samples := make([]*Sample, len(h.samples)-1)
	for i := 0; i < len(h.samples)-1; i++ {
		s, err := buildSample(i, h.samples[i], pool)
		if err != nil {
			logger.Warn("sfont: skipping invalid sample", "index", i, "name", cstring(h.samples[i].Name[:]), "error", err)
			continue
		}
		samples[i] = s
	}

	instruments := make([]*Instrument, len(h.insts)-1)
	for i := 0; i < len(h.insts)-1; i++ {
		rec := h.insts[i]
		bagLo := int(rec.InstBagNdx)
		bagHi := int(h.insts[i+1].InstBagNdx)
		global, zones, err := buildZones(h.instBags, bagLo, bagHi, h.instGens, h.instMods, GenSampleID, len(samples), 0)
		if err != nil {
			return nil, err
		}
		zones = filterValidSampleZones(zones, samples, logger)
		instruments[i] = &Instrument{
			Name:       cstring(rec.Name[:]),
			GlobalZone: global,
			Zones:      zones,
		}
	}

	presets := make(map[uint32]*Preset)
	if len(h.presets) < 1 {
		return nil, errf(InconsistentIndex, "phdr table has no terminal sentinel record")
	}
	if len(h.presets) < 2 {
		return nil, errf(EmptyBank, "bank declares zero presets")
	}
	for i := 0; i < len(h.presets)-1; i++ {
		rec := h.presets[i]
		bagLo := int(rec.PresetBagNdx)
		bagHi := int(h.presets[i+1].PresetBagNdx)
		global, zones, err := buildZones(h.presetBags, bagLo, bagHi, h.presetGens, h.presetMods, GenInstrument, 0, len(instruments))
		if err != nil {
			return nil, err
		}
		p := &Preset{
			Bank:       rec.Bank,
			Program:    rec.Preset,
			Name:       cstring(rec.Name[:]),
			GlobalZone: global,
			Zones:      zones,
		}
		key := presetKey(p.Bank, p.Program)
		if _, dup := presets[key]; dup {
			logger.Warn("sfont: duplicate (bank, program), keeping first", "bank", p.Bank, "program", p.Program)
			continue
		}
		presets[key] = p
	}

	return &Bank{Info: info, Presets: presets, Instruments: instruments, Samples: samples}, nil
}

// filterValidSampleZones drops instrument zones that link to a sample that
// failed validation (spec.md §4.1: "any zone referencing it is skipped with
// a logged warning").
func filterValidSampleZones(zones []Zone, samples []*Sample, logger *slog.Logger) []Zone {
	out := zones[:0]
	for _, z := range zones {
		if z.SampleIndex >= 0 && (z.SampleIndex >= len(samples) || samples[z.SampleIndex] == nil) {
			logger.Warn("sfont: skipping zone with missing/invalid sample link", "sampleIndex", z.SampleIndex)
			continue
		}
		out = append(out, z)
	}
	return out
}

func init() {
	// Sanity-checked at package init: the interpolation pad must be able to
	// cover the widest lookahead the 4-point interpolator uses (s[i+2]).
	if interpolationPad < 2 {
		panic(fmt.Sprintf("sfont: interpolationPad %d too small for 4-point interpolation", interpolationPad))
	}
}
