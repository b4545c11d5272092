package tts

import (
	"strings"
	"sync"
	"time"

	"mlstudio/internal/domain/voice"

	"github.com/fatih/color"
)

// MockTTSEngine simulates narration: it prints what it would say and reports
// completion after a reading time derived from the word count.
type MockTTSEngine struct {
	voiceHub

	speed      float64
	wordsPerMs float64
	quiet      bool

	mu      sync.Mutex
	current *mockRun
}

type mockRun struct {
	stop chan struct{}
}

var mockVoices = []voice.Voice{
	{ID: "mock-es-neural", Language: "es-ES"},
	{ID: "mock-es", Language: "es-MX"},
	{ID: "mock-en", Language: "en-US"},
}

func NewMockTTSEngine(c Config) *MockTTSEngine {
	speed := c.Speed
	if speed <= 0 {
		speed = 1.0
	}
	m := &MockTTSEngine{
		speed:      speed,
		wordsPerMs: 150.0 / float64(time.Minute/time.Millisecond),
	}
	m.loadAsync(EngineTypeMock.String(), func() ([]voice.Voice, error) {
		// voices show up a moment after startup, like a browser's speech engine
		time.Sleep(50 * time.Millisecond)
		return mockVoices, nil
	})
	return m
}

// Quiet stops the engine from printing what it narrates.
func (m *MockTTSEngine) Quiet() *MockTTSEngine {
	m.quiet = true
	return m
}

func (m *MockTTSEngine) Speak(u Utterance, cb Callbacks) error {
	words := len(strings.Fields(u.Text))
	duration := time.Duration(float64(words)/m.wordsPerMs/m.speed) * time.Millisecond

	m.mu.Lock()
	m.stopLocked()
	run := &mockRun{stop: make(chan struct{})}
	m.current = run
	m.mu.Unlock()

	go func() {
		cb.start()

		timer := time.NewTimer(duration)
		defer timer.Stop()

		select {
		case <-timer.C:
			m.mu.Lock()
			current := m.current == run
			if current {
				m.current = nil
			}
			m.mu.Unlock()

			if current {
				cb.end()
			} else {
				cb.fail(ErrCancelled)
			}
		case <-run.stop:
			cb.fail(ErrCancelled)
		}
	}()

	if !m.quiet {
		voiceName := u.VoiceID
		if voiceName == "" {
			voiceName = "default"
		}
		color.Yellow("🔊 [%s] %s (simulated for %v)", voiceName, u.Text, duration.Round(time.Second))
	}

	return nil
}

func (m *MockTTSEngine) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
	return nil
}

func (m *MockTTSEngine) Close() error {
	return m.Cancel()
}

func (m *MockTTSEngine) stopLocked() {
	run := m.current
	if run == nil {
		return
	}
	m.current = nil
	close(run.stop)
}
