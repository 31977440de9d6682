package awesynth

import "errors"

// Misconfiguration errors, returned synchronously to the caller and never
// surfaced inside the render path (spec.md §7 "Propagation").
var (
	// ErrUnknownBankProgram is returned by SelectProgram when the loaded
	// bank has no preset at the requested (bank, program).
	ErrUnknownBankProgram = errors.New("awesynth: unknown bank/program")

	// ErrUnloadedBank is returned by Render when no SoundFont has been
	// installed via LoadBank yet.
	ErrUnloadedBank = errors.New("awesynth: no SoundFont bank loaded")
)
