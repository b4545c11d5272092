package tts

import (
	"sync"

	"mlstudio/internal/domain/voice"

	"github.com/sirupsen/logrus"
)

// voiceHub keeps an engine's voice list and notifies listeners when it changes.
type voiceHub struct {
	mu       sync.RWMutex
	voices   []voice.Voice
	nextID   int
	handlers map[int]func()
}

func (h *voiceHub) ListVoices() []voice.Voice {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]voice.Voice, len(h.voices))
	copy(out, h.voices)
	return out
}

func (h *voiceHub) OnVoicesChanged(fn func()) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.handlers == nil {
		h.handlers = make(map[int]func())
	}
	id := h.nextID
	h.nextID++
	h.handlers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
		})
	}
}

func (h *voiceHub) lookup(id string) (voice.Voice, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return voice.Find(h.voices, id)
}

// publish replaces the voice list and runs every handler outside the lock.
func (h *voiceHub) publish(voices []voice.Voice) {
	h.mu.Lock()
	h.voices = voice.Dedupe(voices)
	handlers := make([]func(), 0, len(h.handlers))
	for _, fn := range h.handlers {
		handlers = append(handlers, fn)
	}
	h.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// loadAsync fills the voice list in the background, the way platform speech
// engines only expose their voices some time after startup.
func (h *voiceHub) loadAsync(engine string, list func() ([]voice.Voice, error)) {
	go func() {
		voices, err := list()
		if err != nil {
			logrus.WithError(err).WithField("engine", engine).Warn("failed to list voices")
			return
		}
		logrus.WithFields(logrus.Fields{
			"engine": engine,
			"voices": len(voices),
		}).Debug("voice list loaded")
		h.publish(voices)
	}()
}
