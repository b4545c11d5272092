package tts

import (
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"mlstudio/internal/domain/voice"
)

func TestNewEngineUnsupported(t *testing.T) {
	if _, err := NewEngine(Config{Type: "gramophone"}); err == nil {
		t.Fatal("expected an error for an unknown engine type")
	}
}

func TestNewEngineWrongPlatform(t *testing.T) {
	typ := EngineTypeSAPI
	if runtime.GOOS == "windows" {
		typ = EngineTypeSay
	}
	_, err := NewEngine(Config{Type: typ.String()})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("NewEngine(%s) error = %v, want ErrUnavailable", typ, err)
	}
}

func TestGetAvailableEngines(t *testing.T) {
	engines := GetAvailableEngines()
	if engines[0] != EngineTypeMock {
		t.Errorf("first engine = %s, want mock", engines[0])
	}
	if engines[len(engines)-1] != EngineTypeESpeak {
		t.Errorf("last engine = %s, want espeak", engines[len(engines)-1])
	}
}

func TestVoiceHub(t *testing.T) {
	var hub voiceHub
	calls := 0
	cancel := hub.OnVoicesChanged(func() { calls++ })

	hub.publish([]voice.Voice{{ID: "a"}, {ID: "a"}, {ID: "b"}})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if got := hub.ListVoices(); len(got) != 2 {
		t.Errorf("ListVoices() = %v, want 2 deduplicated voices", got)
	}

	cancel()
	cancel()
	hub.publish(nil)
	if calls != 1 {
		t.Errorf("handler ran after cancel: calls = %d", calls)
	}
	if got := hub.ListVoices(); len(got) != 0 {
		t.Errorf("ListVoices() = %v, want empty", got)
	}
}

type lifecycle struct {
	mu     sync.Mutex
	events []string
	done   chan struct{}
}

func newLifecycle() *lifecycle {
	return &lifecycle{done: make(chan struct{})}
}

func (l *lifecycle) callbacks() Callbacks {
	record := func(ev string) {
		l.mu.Lock()
		l.events = append(l.events, ev)
		l.mu.Unlock()
	}
	return Callbacks{
		OnStart: func() { record("start") },
		OnEnd:   func() { record("end"); close(l.done) },
		OnError: func(err error) {
			if errors.Is(err, ErrCancelled) {
				record("cancelled")
			} else {
				record("error")
			}
			close(l.done)
		},
	}
}

func (l *lifecycle) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-l.done:
	case <-time.After(2 * time.Second):
		t.Fatal("utterance never finished")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func TestMockEngineCompletes(t *testing.T) {
	engine := NewMockTTSEngine(Config{Speed: 1000}).Quiet()
	defer engine.Close()

	l := newLifecycle()
	if err := engine.Speak(Utterance{Text: "hola mundo"}, l.callbacks()); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	got := l.wait(t)
	if len(got) != 2 || got[0] != "start" || got[1] != "end" {
		t.Errorf("events = %v, want [start end]", got)
	}
}

func TestMockEngineCancel(t *testing.T) {
	engine := NewMockTTSEngine(Config{Speed: 0.001}).Quiet()
	defer engine.Close()

	first := newLifecycle()
	if err := engine.Speak(Utterance{Text: "una frase bastante larga"}, first.callbacks()); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	second := newLifecycle()
	if err := engine.Speak(Utterance{Text: "otra frase larga"}, second.callbacks()); err != nil {
		t.Fatalf("Speak: %v", err)
	}
	if got := first.wait(t); got[len(got)-1] != "cancelled" {
		t.Errorf("first utterance events = %v, want cancelled", got)
	}

	if err := engine.Cancel(); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := second.wait(t); got[len(got)-1] != "cancelled" {
		t.Errorf("second utterance events = %v, want cancelled", got)
	}
}

func TestMockEngineLoadsVoicesLater(t *testing.T) {
	engine := NewMockTTSEngine(Config{}).Quiet()
	defer engine.Close()

	changed := make(chan struct{}, 1)
	engine.OnVoicesChanged(func() { changed <- struct{}{} })

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("voices never arrived")
	}
	if got := engine.ListVoices(); len(got) != len(mockVoices) {
		t.Errorf("ListVoices() = %v", got)
	}
}
