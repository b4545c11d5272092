package narrator

import (
	"errors"
	"strings"
	"sync"

	"mlstudio/internal/domain/voice"
	"mlstudio/internal/guide/catalog"
	"mlstudio/internal/guide/tts"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

type State int

const (
	Disabled State = iota
	Idle
	Speaking
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Idle:
		return "idle"
	case Speaking:
		return "speaking"
	default:
		return "unknown"
	}
}

// VoiceCatalog supplies the installed voices and tells when they change.
type VoiceCatalog interface {
	Snapshot() catalog.Changed
	Subscribe(fn func(catalog.Changed)) (cancel func())
}

// Preferences persists the selected voice identifier.
type Preferences interface {
	Load() *string
	Save(id *string)
}

type Config struct {
	Enabled bool
	Ranker  Ranker
}

// Snapshot is the state a UI shows: toggle, speaking indicator, voice picker.
type Snapshot struct {
	State         State
	Enabled       bool
	Speaking      bool
	Available     bool
	Voices        []voice.Voice
	SelectedVoice string
}

// Narrator owns the narration state machine. At most one utterance is active;
// each one is tagged with a token and engine callbacks carrying any other
// token are ignored.
type Narrator struct {
	engine  tts.Engine
	catalog VoiceCatalog
	prefs   Preferences
	rank    Ranker
	unsub   func()

	// op serializes the operations that talk to the engine.
	op sync.Mutex

	// persist orders preference writes the same way as selection changes.
	persist sync.Mutex

	mu        sync.Mutex
	enabled   bool
	speaking  bool
	active    uint64 // token of the submitted utterance, 0 when none
	lastToken uint64
	selected  *string
	explicit  bool // selected by the user or loaded from storage
	voices    []voice.Voice
	voicesSeq uint64
	welcomed  bool
	closed    bool
	watchers  map[string]func(Snapshot)
}

// New builds a narrator. A nil engine means narration is unavailable and
// every operation is a no-op.
func New(engine tts.Engine, voices VoiceCatalog, prefs Preferences, cfg Config) *Narrator {
	rank := cfg.Ranker
	if rank == nil {
		rank = LocaleRanker("es", DefaultQualityHints)
	}

	n := &Narrator{
		engine:   engine,
		catalog:  voices,
		prefs:    prefs,
		rank:     rank,
		enabled:  cfg.Enabled,
		watchers: make(map[string]func(Snapshot)),
	}

	if prefs != nil {
		if id := prefs.Load(); id != nil {
			n.selected = id
			n.explicit = true
		}
	}

	if voices != nil {
		n.unsub = voices.Subscribe(n.updateVoices)
		n.updateVoices(voices.Snapshot())
	}

	return n
}

// Available reports whether a narration engine is present.
func (n *Narrator) Available() bool {
	return n.engine != nil
}

func (n *Narrator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stateLocked()
}

func (n *Narrator) stateLocked() State {
	switch {
	case n.engine == nil || !n.enabled:
		return Disabled
	case n.speaking:
		return Speaking
	default:
		return Idle
	}
}

func (n *Narrator) Enabled() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.enabled
}

func (n *Narrator) Speaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.speaking
}

func (n *Narrator) Voices() []voice.Voice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]voice.Voice(nil), n.voices...)
}

// SelectedVoice returns the selected voice identifier, or nil.
func (n *Narrator) SelectedVoice() *string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.selected == nil {
		return nil
	}
	id := *n.selected
	return &id
}

func (n *Narrator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshotLocked()
}

func (n *Narrator) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     n.stateLocked(),
		Enabled:   n.enabled,
		Speaking:  n.speaking,
		Available: n.engine != nil,
		Voices:    append([]voice.Voice(nil), n.voices...),
	}
	if n.selected != nil {
		s.SelectedVoice = *n.selected
	}
	return s
}

// Watch calls fn with a fresh snapshot after every state change.
func (n *Narrator) Watch(fn func(Snapshot)) (cancel func()) {
	id := xid.New().String()

	n.mu.Lock()
	n.watchers[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.watchers, id)
		n.mu.Unlock()
	}
}

// SetEnabled turns narration on or off. Turning it off silences the active
// utterance at once; turning it on speaks nothing by itself.
func (n *Narrator) SetEnabled(enabled bool) {
	n.op.Lock()
	defer n.op.Unlock()

	n.mu.Lock()
	if n.enabled == enabled {
		n.mu.Unlock()
		return
	}
	n.enabled = enabled
	hadActive := false
	if !enabled {
		hadActive = n.releaseLocked()
	}
	n.mu.Unlock()

	logrus.WithField("enabled", enabled).Debug("narration toggled")
	if hadActive {
		n.cancelEngine()
	}
	n.notify()
}

// Speak narrates text, replacing whatever is being said. It does nothing while
// disabled, without an engine, or for empty text.
func (n *Narrator) Speak(text string) {
	n.speak(text)
}

// SpeakWelcome narrates text only the first time it actually gets spoken
// during the narrator's life.
func (n *Narrator) SpeakWelcome(text string) {
	n.mu.Lock()
	welcomed := n.welcomed
	n.mu.Unlock()
	if welcomed {
		return
	}

	if n.speak(text) {
		n.mu.Lock()
		n.welcomed = true
		n.mu.Unlock()
	}
}

func (n *Narrator) HasSpokenWelcome() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.welcomed
}

func (n *Narrator) speak(text string) bool {
	n.op.Lock()
	defer n.op.Unlock()

	n.mu.Lock()
	if n.closed || !n.enabled || n.engine == nil || strings.TrimSpace(text) == "" {
		n.mu.Unlock()
		return false
	}

	hadActive := n.releaseLocked()
	n.lastToken++
	token := n.lastToken
	n.active = token

	// a selection with no match in the catalog falls back to the engine default
	var voiceID string
	if n.selected != nil {
		if v, ok := voice.Find(n.voices, *n.selected); ok {
			voiceID = v.ID
		}
	}
	n.mu.Unlock()

	if hadActive {
		n.cancelEngine()
	}

	err := n.engine.Speak(tts.Utterance{Text: text, VoiceID: voiceID}, n.callbacks(token))
	if err != nil {
		logrus.WithError(err).Warn("narration engine rejected utterance")
		n.finish(token, nil)
		return false
	}

	logrus.WithFields(logrus.Fields{
		"voice": voiceID,
		"chars": len(text),
	}).Debug("utterance submitted")
	return true
}

// Stop silences the active utterance; the narrator is idle when Stop returns.
func (n *Narrator) Stop() {
	n.op.Lock()
	defer n.op.Unlock()

	n.mu.Lock()
	hadActive := n.releaseLocked()
	n.mu.Unlock()

	if hadActive {
		n.cancelEngine()
		n.notify()
	}
}

// SelectVoice stores the user's choice; nil or "" clears it. The active
// utterance keeps its voice.
func (n *Narrator) SelectVoice(id *string) {
	var selected *string
	if id != nil && *id != "" {
		v := *id
		selected = &v
	}

	n.persist.Lock()
	n.mu.Lock()
	n.selected = selected
	n.explicit = selected != nil
	n.mu.Unlock()

	if n.prefs != nil {
		n.prefs.Save(selected)
	}
	n.persist.Unlock()

	n.notify()
}

// Close cancels the active utterance and stops following the catalog.
func (n *Narrator) Close() {
	n.op.Lock()
	defer n.op.Unlock()

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.closed = true
	hadActive := n.releaseLocked()
	n.mu.Unlock()

	if n.unsub != nil {
		n.unsub()
	}
	if hadActive {
		n.cancelEngine()
	}
}

// releaseLocked forgets the active utterance and reports whether there was one.
func (n *Narrator) releaseLocked() bool {
	hadActive := n.active != 0
	n.active = 0
	n.speaking = false
	return hadActive
}

func (n *Narrator) cancelEngine() {
	if err := n.engine.Cancel(); err != nil {
		logrus.WithError(err).Debug("narration engine cancel failed")
	}
}

func (n *Narrator) callbacks(token uint64) tts.Callbacks {
	return tts.Callbacks{
		OnStart: func() { n.started(token) },
		OnEnd:   func() { n.finish(token, nil) },
		OnError: func(err error) { n.finish(token, err) },
	}
}

func (n *Narrator) started(token uint64) {
	n.mu.Lock()
	if n.active != token || !n.enabled {
		n.mu.Unlock()
		return
	}
	n.speaking = true
	n.mu.Unlock()

	n.notify()
}

// finish handles completion and engine errors alike.
func (n *Narrator) finish(token uint64, err error) {
	if err != nil && !errors.Is(err, tts.ErrCancelled) {
		logrus.WithError(err).Debug("utterance failed")
	}

	n.mu.Lock()
	if n.active != token {
		n.mu.Unlock()
		return
	}
	n.releaseLocked()
	n.mu.Unlock()

	n.notify()
}

// updateVoices takes a catalog snapshot and runs automatic selection. An
// explicit selection is never replaced; an automatic one is replaced only
// once it no longer names a voice in the catalog. Snapshots older than the
// one already applied are dropped.
func (n *Narrator) updateVoices(ev catalog.Changed) {
	n.persist.Lock()

	n.mu.Lock()
	if ev.Seq < n.voicesSeq {
		n.mu.Unlock()
		n.persist.Unlock()
		logrus.WithField("seq", ev.Seq).Debug("stale voice catalog snapshot dropped")
		return
	}
	n.voicesSeq = ev.Seq
	n.voices = append([]voice.Voice(nil), ev.Voices...)

	var chosen *string
	stale := n.selected != nil && !n.explicit && !hasVoice(n.voices, *n.selected)
	if n.selected == nil || stale {
		if v, ok := pick(n.voices, n.rank); ok {
			id := v.ID
			n.selected = &id
			n.explicit = false
			chosen = &id
		}
	}
	n.mu.Unlock()

	if chosen != nil {
		logrus.WithField("voice", *chosen).Info("voice selected automatically")
		if n.prefs != nil {
			n.prefs.Save(chosen)
		}
	}
	n.persist.Unlock()

	n.notify()
}

func hasVoice(voices []voice.Voice, id string) bool {
	_, ok := voice.Find(voices, id)
	return ok
}

func (n *Narrator) notify() {
	n.mu.Lock()
	if len(n.watchers) == 0 {
		n.mu.Unlock()
		return
	}
	snap := n.snapshotLocked()
	watchers := make([]func(Snapshot), 0, len(n.watchers))
	for _, fn := range n.watchers {
		watchers = append(watchers, fn)
	}
	n.mu.Unlock()

	for _, fn := range watchers {
		fn(snap)
	}
}
