// internal/guide/tts/tts.go
package tts

import (
	"errors"

	"mlstudio/internal/domain/voice"
)

var (
	// ErrUnavailable means no narration capability exists on this platform.
	ErrUnavailable = errors.New("narration engine unavailable")
	// ErrCancelled is reported to an utterance's OnError when Cancel cut it short.
	ErrCancelled = errors.New("utterance cancelled")
)

type Config struct {
	Type      string
	Speed     float64
	Volume    float64
	Voice     string // engine default voice, used when an utterance names none
	Language  string
	CachePath string
}

// Utterance is one narration request handed to an engine.
type Utterance struct {
	Text    string
	VoiceID string // empty selects the engine default
}

// Callbacks receive the lifecycle of a single utterance. Engines invoke them
// from their own goroutines; any of them may be nil.
type Callbacks struct {
	OnStart func()
	OnEnd   func()
	OnError func(error)
}

func (c Callbacks) start() {
	if c.OnStart != nil {
		c.OnStart()
	}
}

func (c Callbacks) end() {
	if c.OnEnd != nil {
		c.OnEnd()
	}
}

func (c Callbacks) fail(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// Engine interface for text-to-speech functionality
type Engine interface {
	// ListVoices returns the voices known right now; the list may be empty
	// until the engine finishes loading it.
	ListVoices() []voice.Voice
	// OnVoicesChanged registers fn to run whenever the voice list changes.
	OnVoicesChanged(fn func()) (cancel func())
	// Speak starts narrating u and returns without waiting for it to finish.
	Speak(u Utterance, cb Callbacks) error
	// Cancel stops whatever is currently being spoken.
	Cancel() error
	Close() error
}
