// Package awesynth implements an EMU8000-style SoundFont 2.0 wavetable
// synthesizer: load a bank, select programs per channel, feed it decoded
// MIDI events, and render deterministic stereo float32 audio (spec.md §1,
// §6 "External Interfaces").
//
// Grounded on player.go's Player: the same control-plane versus lock-free
// render-path split, here with no mutex (the bank, bus and master chain
// are swapped through atomic pointers),
// generalized from driving one MML-parsed VoiceEngine to driving the
// sfont/resolver/channel/voicemgr/scheduler/effects pipeline from a
// loaded SF2 bank and an enqueued MIDI event stream.
package awesynth

import (
	"fmt"
	"sync/atomic"

	"github.com/spetrequin/awe-synth-sub005/internal/channel"
	"github.com/spetrequin/awe-synth-sub005/internal/effects"
	"github.com/spetrequin/awe-synth-sub005/internal/resolver"
	"github.com/spetrequin/awe-synth-sub005/internal/scheduler"
	"github.com/spetrequin/awe-synth-sub005/internal/sfont"
	"github.com/spetrequin/awe-synth-sub005/internal/voicemgr"
)

// Re-exported so callers never need to import internal/scheduler directly
// to build an event for Enqueue.
type (
	MIDIEvent = scheduler.MIDIEvent
	EventKind = scheduler.EventKind
)

const (
	EventNoteOn          = scheduler.EventNoteOn
	EventNoteOff         = scheduler.EventNoteOff
	EventControlChange   = scheduler.EventControlChange
	EventProgramChange   = scheduler.EventProgramChange
	EventPitchBend       = scheduler.EventPitchBend
	EventChannelPressure = scheduler.EventChannelPressure
	EventPolyPressure    = scheduler.EventPolyPressure
	EventSysEx           = scheduler.EventSysEx
	EventMeta            = scheduler.EventMeta
)

// Engine is the top-level synthesizer: one loaded bank, 16 channels, a
// 32-voice pool, the MIDI scheduler, and the global effects bus.
//
// Shared resources split exactly along spec.md §5's render-context vs.
// producer-context line: bank is an atomic pointer flipped on LoadBank,
// channels/voices are owned and mutated exclusively by whatever goroutine
// calls Render, and the event queue inside scheduler is lock-free SPSC.
type Engine struct {
	sampleRate float64

	bank atomic.Pointer[sfont.Bank]

	channels  *channel.Bank
	voices    *voicemgr.Manager
	scheduler *scheduler.Scheduler

	bus         atomic.Pointer[effects.Bus]
	masterChain atomic.Pointer[effects.Chain]
}

// New constructs an engine at sampleRate, preallocating its 32 voices,
// 16 channels, and effects bus (spec.md §6 "new(sample_rate)").
func New(sampleRate int) (*Engine, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("awesynth: sampleRate must be positive, got %d", sampleRate)
	}
	sr := float64(sampleRate)

	e := &Engine{
		sampleRate: sr,
		channels:   channel.NewBank(),
		voices:     voicemgr.New(sr),
	}
	e.bus.Store(effects.NewBus(sampleRate, effects.DefaultBusParams()))
	e.masterChain.Store(effects.NewChain())
	e.scheduler = scheduler.New(e.channels, e.voices, e.resolve, sr)
	return e, nil
}

func (e *Engine) resolve(bankNum, program uint16, note, velocity int) []resolver.VoiceSpec {
	b := e.bank.Load()
	if b == nil {
		return nil
	}
	return resolver.Resolve(b, bankNum, program, note, velocity)
}

// LoadBank parses data as a SoundFont 2.0 file and installs it as the
// engine's active bank via a single atomic pointer store — in-flight
// Render calls either see the old bank or the new one, never a partial
// one (spec.md §6 "load_bank(bytes)", §5 "single atomic pointer flip").
func (e *Engine) LoadBank(data []byte) error {
	b, err := sfont.Parse(data, sfont.ParseOptions{})
	if err != nil {
		return err
	}
	e.bank.Store(b)
	return nil
}

// SelectProgram sets channelIndex's program, returning ErrUnknownBankProgram
// if the loaded bank has no preset at (bank, program) and ErrUnloadedBank
// if no bank has been loaded yet (spec.md §6, §7).
func (e *Engine) SelectProgram(channelIndex int, bank, program uint16) error {
	if channelIndex < 0 || channelIndex >= len(e.channels) {
		return fmt.Errorf("awesynth: channel %d out of range", channelIndex)
	}
	b := e.bank.Load()
	if b == nil {
		return ErrUnloadedBank
	}
	if _, ok := b.Lookup(bank, program); !ok {
		return ErrUnknownBankProgram
	}
	ch := e.channels[channelIndex]
	ch.SelectBank(uint8(bank/128), uint8(bank%128))
	ch.ProgramChange(uint8(program))
	return nil
}

// Enqueue submits a decoded MIDI event to the scheduler's lock-free queue,
// reporting whether an older queued event was dropped to make room for it
// (spec.md §6 "enqueue(event) ... returns enqueued/dropped").
func (e *Engine) Enqueue(ev MIDIEvent) (dropped bool) {
	before := e.scheduler.QueueDrops()
	e.scheduler.Enqueue(ev)
	return e.scheduler.QueueDrops() != before
}

// SetMasterChain installs an optional post-bus effects chain (SPEC_FULL.md
// §4.6's master chain addition: EQ/compressor/distortion/delay stages
// positioned after the reverb/chorus mix). Passing nil restores the
// identity pass. Swapped in via an atomic pointer so it's safe to call
// concurrently with Render.
func (e *Engine) SetMasterChain(chain *effects.Chain) {
	if chain == nil {
		chain = effects.NewChain()
	}
	e.masterChain.Store(chain)
}

// SetBusParams rebuilds the global reverb/chorus bus from params. An
// unwired override hook for spec.md §9's open question on host/bank
// control of bus intrinsics — no Engine operation the spec defines calls
// this; it exists for a future caller that wants to override the fixed
// defaults.
func (e *Engine) SetBusParams(params effects.BusParams) {
	e.bus.Store(effects.NewBus(int(e.sampleRate), params))
}

// ActiveVoiceCount returns how many of the 32 voices are not Idle,
// including release tails. Grounded on wavetable/engine.go's
// ActiveVoiceCount, used by cmd/sfplay to know when a finished note list's
// release tails have fully decayed before it stops the stream.
func (e *Engine) ActiveVoiceCount() int {
	return e.voices.ActiveVoiceCount()
}

// Reset clears every channel's controller state and kills every voice
// immediately, equivalent to a GM Reset plus an all-sound-off across every
// channel (spec.md §6 "reset()"). The loaded bank is left installed.
func (e *Engine) Reset() {
	e.channels.Reset()
	for i := range e.channels {
		e.voices.AllSoundOff(i)
	}
	e.bus.Load().Reset()
	e.masterChain.Load().Reset()
}

// Render produces frames of interleaved stereo float32 samples into
// stereoOut (spec.md §6 "render(stereo_out[], frames)"), advancing the
// scheduler one sample at a time so every queued and tracked event
// dispatches at its exact sample position. Deterministic given the
// engine's current state and the events it has consumed so far.
func (e *Engine) Render(stereoOut []float32, frames int) error {
	if e.bank.Load() == nil {
		return ErrUnloadedBank
	}

	n := frames
	if max := len(stereoOut) / 2; n > max {
		n = max
	}

	bus := e.bus.Load()
	chain := e.masterChain.Load()

	for i := 0; i < n; i++ {
		e.scheduler.AdvanceSample()

		left, right, reverbSend, chorusSend := e.voices.Step(e.channels)
		wetL, wetR := bus.Process(reverbSend, chorusSend)
		left += wetL
		right += wetR

		fl, fr := chain.Process(float32(left), float32(right))
		stereoOut[i*2] = clampSample(fl)
		stereoOut[i*2+1] = clampSample(fr)
	}
	return nil
}

func clampSample(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
