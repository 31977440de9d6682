// Package resolver implements the preset resolution algorithm: given a
// (bank, program, note, velocity), it produces the merged generator and
// modulator sets each matching zone pair must seed a voice with.
//
// This package has no direct teacher precedent; it's new code implementing
// the SF2.0 merge algorithm exactly, built on top of internal/sfont's
// GeneratorSet/Modulator types.
package resolver

import "github.com/spetrequin/awe-synth-sub005/internal/sfont"

// VoiceSpec is one (sample, merged generators, merged modulators) triple
// that Resolve emits; the caller starts one voice per VoiceSpec.
type VoiceSpec struct {
	Sample          *sfont.Sample
	Generators      *sfont.GeneratorSet
	Modulators      []sfont.Modulator
	ExclusiveClass  int16
}

// Resolve returns the voice set for one NoteOn. Returns nil (no error) when
// (bank, program) doesn't exist after the bank-0 fallback, or when no zone
// matches (note, velocity) — both are normal no-ops, not failures.
func Resolve(bank *sfont.Bank, bankNum, program uint16, note, velocity int) []VoiceSpec {
	preset, ok := bank.Lookup(bankNum, program)
	if !ok {
		return nil
	}

	var pGlobalGen *sfont.GeneratorSet
	var pGlobalMod []sfont.Modulator
	if preset.GlobalZone != nil {
		pGlobalGen = preset.GlobalZone.Generators
		pGlobalMod = preset.GlobalZone.Modulators
	}

	var specs []VoiceSpec
	for _, pz := range preset.Zones {
		if !pz.InRange(note, velocity) {
			continue
		}
		if pz.InstrumentIndex < 0 || pz.InstrumentIndex >= len(bank.Instruments) {
			continue
		}
		inst := bank.Instruments[pz.InstrumentIndex]

		var iGlobalGen *sfont.GeneratorSet
		var iGlobalMod []sfont.Modulator
		if inst.GlobalZone != nil {
			iGlobalGen = inst.GlobalZone.Generators
			iGlobalMod = inst.GlobalZone.Modulators
		}

		for _, iz := range inst.Zones {
			if !iz.InRange(note, velocity) {
				continue
			}
			if iz.SampleIndex < 0 || iz.SampleIndex >= len(bank.Samples) {
				continue
			}
			sample := bank.Samples[iz.SampleIndex]
			if sample == nil {
				continue
			}

			snapshot := baseSnapshot(iGlobalGen, iz.Generators)
			applyPresetAdditive(snapshot, pGlobalGen)
			applyPresetAdditive(snapshot, pz.Generators)

			mods := mergeModulators(iGlobalMod, iz.Modulators, pGlobalMod, pz.Modulators)

			specs = append(specs, VoiceSpec{
				Sample:         sample,
				Generators:     snapshot,
				Modulators:     mods,
				ExclusiveClass: snapshot.Get(sfont.GenExclusiveClass),
			})
		}
	}
	return specs
}

// baseSnapshot builds the absolute-override base: SF2 defaults, then the
// instrument global zone, then the instrument zone itself (spec.md §4.2
// step 3c, first sentence).
func baseSnapshot(instGlobal, instZone *sfont.GeneratorSet) *sfont.GeneratorSet {
	snapshot := &sfont.GeneratorSet{}
	if instGlobal != nil {
		snapshot.AddAbsolute(instGlobal)
	}
	snapshot.AddAbsolute(instZone)
	return snapshot
}

// applyPresetAdditive overlays a preset-level generator set additively; nil
// is a no-op (an absent global zone contributes nothing).
func applyPresetAdditive(snapshot, preset *sfont.GeneratorSet) {
	if preset == nil {
		return
	}
	snapshot.AddAdditive(preset)
}

// mergeModulators builds the runtime modulator list: the 10 implicit
// defaults, then instrument global, instrument zone, preset global, preset
// zone, each later entry replacing an earlier one with the same (source,
// destination, secondary) key (spec.md §4.2 step 3c, second sentence).
func mergeModulators(layers ...[]sfont.Modulator) []sfont.Modulator {
	order := make([]sfont.ModKey, 0, 16)
	byKey := make(map[sfont.ModKey]sfont.Modulator, 16)

	put := func(m sfont.Modulator) {
		k := m.Key()
		if _, exists := byKey[k]; !exists {
			order = append(order, k)
		}
		byKey[k] = m
	}

	for _, m := range sfont.DefaultModulators() {
		put(m)
	}
	for _, layer := range layers {
		for _, m := range layer {
			put(m)
		}
	}

	out := make([]sfont.Modulator, len(order))
	for i, k := range order {
		out[i] = byKey[k]
	}
	return out
}
