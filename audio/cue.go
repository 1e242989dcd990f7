// Package audio provides a minimal cue player used as a loop observer.
// The speaker is process-global; initialization failure degrades silent
// rather than blocking the loop.
package audio

import (
	"io"
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/frameloop/events"
)

const cueSampleRate = beep.SampleRate(44100)

// Cue tone frequencies in Hz
const (
	freqPaused      = 440
	freqResumed     = 660
	freqPerfModeOn  = 220
	freqPerfModeOff = 880
)

// CuePlayer plays short sine cues on loop transitions
type CuePlayer struct {
	enabled bool
	logger  *log.Logger
}

// NewCuePlayer initializes the speaker
// On failure the player stays silent and the loop runs without sound
func NewCuePlayer(logger *log.Logger) *CuePlayer {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	p := &CuePlayer{logger: logger}
	if err := speaker.Init(cueSampleRate, cueSampleRate.N(time.Second/10)); err != nil {
		logger.Printf("speaker init failed, cues disabled: %v", err)
		return p
	}
	p.enabled = true
	return p
}

// Play emits one sine tone of the given frequency and duration
func (p *CuePlayer) Play(freq float64, dur time.Duration) {
	if !p.enabled {
		return
	}

	sine, err := generators.SineTone(cueSampleRate, freq)
	if err != nil {
		p.logger.Printf("tone generation failed: %v", err)
		return
	}
	speaker.Play(beep.Take(cueSampleRate.N(dur), sine))
}

// Close releases the speaker
func (p *CuePlayer) Close() {
	if p.enabled {
		speaker.Close()
		p.enabled = false
	}
}

// HandleLoopEvent maps loop transitions to cues
func (p *CuePlayer) HandleLoopEvent(event events.Event) {
	switch event.Type {
	case events.EventPaused:
		p.Play(freqPaused, 60*time.Millisecond)
	case events.EventResumed:
		p.Play(freqResumed, 60*time.Millisecond)
	case events.EventPerfModeChanged:
		if payload, ok := event.Payload.(*events.PerfModePayload); ok && payload.Active {
			p.Play(freqPerfModeOn, 120*time.Millisecond)
		} else {
			p.Play(freqPerfModeOff, 120*time.Millisecond)
		}
	}
}

// EventTypes declares interest for router registration
func (p *CuePlayer) EventTypes() []events.EventType {
	return []events.EventType{events.EventPaused, events.EventResumed, events.EventPerfModeChanged}
}
