package narrator

import (
	"sync"

	"mlstudio/internal/domain/voice"
	"mlstudio/internal/guide/catalog"
	"mlstudio/internal/guide/tts"
)

// fakeEngine records every call and lets the test fire lifecycle callbacks.
type fakeEngine struct {
	mu        sync.Mutex
	voices    []voice.Voice
	handlers  []func()
	spoken    []tts.Utterance
	callbacks []tts.Callbacks
	cancels   int
	speakErr  error
	syncStart bool
}

func (f *fakeEngine) ListVoices() []voice.Voice {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]voice.Voice(nil), f.voices...)
}

func (f *fakeEngine) OnVoicesChanged(fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers = append(f.handlers, fn)
	return func() {}
}

func (f *fakeEngine) Speak(u tts.Utterance, cb tts.Callbacks) error {
	f.mu.Lock()
	if f.speakErr != nil {
		err := f.speakErr
		f.mu.Unlock()
		return err
	}
	f.spoken = append(f.spoken, u)
	f.callbacks = append(f.callbacks, cb)
	syncStart := f.syncStart
	f.mu.Unlock()

	if syncStart {
		cb.OnStart()
	}
	return nil
}

func (f *fakeEngine) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	return nil
}

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) setVoices(voices ...voice.Voice) {
	f.mu.Lock()
	f.voices = voices
	handlers := append([]func(){}, f.handlers...)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn()
	}
}

func (f *fakeEngine) calls() (spoken []tts.Utterance, cancels int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tts.Utterance(nil), f.spoken...), f.cancels
}

func (f *fakeEngine) utterance(i int) tts.Callbacks {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.callbacks[i]
}

type fakePrefs struct {
	mu     sync.Mutex
	stored *string
	saves  []*string
}

func (p *fakePrefs) Load() *string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stored
}

func (p *fakePrefs) Save(id *string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stored = id
	p.saves = append(p.saves, id)
}

func (p *fakePrefs) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.saves)
}

func ptr(s string) *string { return &s }

func newNarrator(engine *fakeEngine, prefs *fakePrefs) *Narrator {
	return New(engine, catalog.New(engine), prefs, Config{Enabled: true})
}

// gatedPrefs holds the save of one value until release is closed.
type gatedPrefs struct {
	fakePrefs
	gateOn  string
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (p *gatedPrefs) Save(id *string) {
	if id != nil && *id == p.gateOn {
		p.once.Do(func() { close(p.entered) })
		<-p.release
	}
	p.fakePrefs.Save(id)
}

// racingCatalog hands subscribers a newer snapshot while a reader is still
// taking the older one.
type racingCatalog struct {
	subscribers []func(catalog.Changed)
	stale       catalog.Changed
	fresh       catalog.Changed
}

func (c *racingCatalog) Subscribe(fn func(catalog.Changed)) func() {
	c.subscribers = append(c.subscribers, fn)
	return func() {}
}

func (c *racingCatalog) Snapshot() catalog.Changed {
	for _, fn := range c.subscribers {
		fn(c.fresh)
	}
	return c.stale
}
