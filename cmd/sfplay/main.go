// Command sfplay loads a SoundFont 2.0 bank and auditions a fixed note
// list through it, streaming the render live via the shared ebiten audio
// context (internal/audio). Replaces cmd/play_mml: there is no text score
// to parse here, only a bank to load and a channel to drive with MIDI
// events.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	awesynth "github.com/spetrequin/awe-synth-sub005"
	"github.com/spetrequin/awe-synth-sub005/internal/audio"
)

const defaultNotes = "60,64,67,72" // C major arpeggio up to the octave

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 44100, "output sample rate")
		soundfont   = flag.String("soundfont", "", "path to a .sf2 file (required)")
		bank        = flag.Int("bank", 0, "SF2 bank number")
		program     = flag.Int("program", 0, "SF2 program number")
		channelNum  = flag.Int("channel", 0, "MIDI channel (0-15)")
		notesFlag   = flag.String("notes", defaultNotes, "comma-separated MIDI note numbers to play in sequence")
		velocity    = flag.Int("velocity", 100, "note-on velocity (1-127)")
		noteMs      = flag.Int("note-ms", 500, "how long each note is held before its note-off")
		gapMs       = flag.Int("gap-ms", 100, "silence between notes")
	)
	flag.Parse()

	if strings.TrimSpace(*soundfont) == "" {
		log.Fatal("sfplay: -soundfont is required")
	}
	if *channelNum < 0 || *channelNum > 15 {
		log.Fatalf("sfplay: -channel %d out of range 0-15", *channelNum)
	}
	notes, err := parseNotes(*notesFlag)
	if err != nil {
		log.Fatal(err)
	}

	data, err := os.ReadFile(*soundfont)
	if err != nil {
		log.Fatal(err)
	}

	engine, err := awesynth.New(*sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	if err := engine.LoadBank(data); err != nil {
		log.Fatal(err)
	}
	if err := engine.SelectProgram(*channelNum, uint16(*bank), uint16(*program)); err != nil {
		log.Fatal(err)
	}

	source := &engineSource{engine: engine}
	player, err := audio.NewPlayer(*sampleRate, source)
	if err != nil {
		log.Fatal(err)
	}
	player.Play()

	go sequence(engine, source, uint8(*channelNum), notes, uint8(clampByte(*velocity)), *noteMs, *gapMs)

	for player.IsPlaying() {
		time.Sleep(50 * time.Millisecond)
	}
}

// engineSource adapts *awesynth.Engine to audio.FinishingSource: Process
// renders one audio callback's worth of frames, and finished is set once
// the note sequence has ended and every voice (including release tails)
// has fully decayed.
type engineSource struct {
	engine   *awesynth.Engine
	finished atomic.Bool
}

func (s *engineSource) Process(dst []float32) {
	_ = s.engine.Render(dst, len(dst)/2)
}

func (s *engineSource) Finished() bool {
	return s.finished.Load()
}

func sequence(engine *awesynth.Engine, source *engineSource, channelNum uint8, notes []uint8, velocity uint8, noteMs, gapMs int) {
	for _, note := range notes {
		engine.Enqueue(awesynth.MIDIEvent{Channel: channelNum, Kind: awesynth.EventNoteOn, Data1: note, Data2: velocity})
		time.Sleep(time.Duration(noteMs) * time.Millisecond)
		engine.Enqueue(awesynth.MIDIEvent{Channel: channelNum, Kind: awesynth.EventNoteOff, Data1: note})
		time.Sleep(time.Duration(gapMs) * time.Millisecond)
		fmt.Printf("played note %d\n", note)
	}
	for engine.ActiveVoiceCount() > 0 {
		time.Sleep(50 * time.Millisecond)
	}
	source.finished.Store(true)
}

func parseNotes(s string) ([]uint8, error) {
	fields := strings.Split(s, ",")
	notes := make([]uint8, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("sfplay: invalid note %q: %w", f, err)
		}
		if n < 0 || n > 127 {
			return nil, fmt.Errorf("sfplay: note %d out of MIDI range 0-127", n)
		}
		notes = append(notes, uint8(n))
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("sfplay: -notes produced an empty note list")
	}
	return notes, nil
}

func clampByte(v int) int {
	if v < 1 {
		return 1
	}
	if v > 127 {
		return 127
	}
	return v
}
