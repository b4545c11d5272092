package catalog

import (
	"sync"

	"mlstudio/internal/domain/voice"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// Changed is emitted every time the catalog is re-read after the engine
// reported a change in its voice list. Seq grows with every refresh, so a
// receiver can drop a snapshot older than one it already applied.
type Changed struct {
	Seq    uint64
	Voices []voice.Voice
}

// Source is the part of a narration engine (tts.Engine) the catalog needs.
type Source interface {
	ListVoices() []voice.Voice
	OnVoicesChanged(fn func()) (cancel func())
}

// Catalog tracks the voices installed in a narration engine. The list may be
// empty on first access and fill in later.
type Catalog struct {
	source Source
	unhook func()

	// refresh keeps reads of the engine and their sequence numbers in order.
	refresh sync.Mutex

	mu          sync.RWMutex
	seq         uint64
	voices      []voice.Voice
	subscribers map[string]func(Changed)
}

// New registers with the engine's change notification once and takes a first
// snapshot. A nil source yields a catalog that stays empty.
func New(source Source) *Catalog {
	c := &Catalog{
		source:      source,
		subscribers: make(map[string]func(Changed)),
	}
	if source == nil {
		return c
	}
	c.unhook = source.OnVoicesChanged(c.onEngineChange)
	c.Refresh()
	return c
}

// Refresh re-reads the engine's voices and stores the snapshot.
func (c *Catalog) Refresh() []voice.Voice {
	if c.source == nil {
		return nil
	}
	return c.refreshSnapshot().Voices
}

func (c *Catalog) refreshSnapshot() Changed {
	c.refresh.Lock()
	defer c.refresh.Unlock()

	voices := voice.Dedupe(c.source.ListVoices())

	c.mu.Lock()
	c.seq++
	c.voices = voices
	ev := Changed{Seq: c.seq, Voices: copyVoices(voices)}
	c.mu.Unlock()

	return ev
}

// Voices returns the last snapshot.
func (c *Catalog) Voices() []voice.Voice {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyVoices(c.voices)
}

// Snapshot returns the last snapshot with its sequence number.
func (c *Catalog) Snapshot() Changed {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Changed{Seq: c.seq, Voices: copyVoices(c.voices)}
}

// Subscribe registers fn for every catalog change.
func (c *Catalog) Subscribe(fn func(Changed)) (cancel func()) {
	id := xid.New().String()

	c.mu.Lock()
	c.subscribers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subscribers, id)
		c.mu.Unlock()
	}
}

// Close stops listening to the engine.
func (c *Catalog) Close() {
	if c.unhook != nil {
		c.unhook()
	}
	c.mu.Lock()
	c.subscribers = make(map[string]func(Changed))
	c.mu.Unlock()
}

func (c *Catalog) onEngineChange() {
	ev := c.refreshSnapshot()
	logrus.WithFields(logrus.Fields{
		"voices": len(ev.Voices),
		"seq":    ev.Seq,
	}).Debug("voice catalog changed")

	c.mu.RLock()
	subscribers := make([]func(Changed), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		subscribers = append(subscribers, fn)
	}
	c.mu.RUnlock()

	for _, fn := range subscribers {
		fn(Changed{Seq: ev.Seq, Voices: copyVoices(ev.Voices)})
	}
}

func copyVoices(voices []voice.Voice) []voice.Voice {
	out := make([]voice.Voice, len(voices))
	copy(out, voices)
	return out
}
