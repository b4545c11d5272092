package preference

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// VoiceKey is the key the selected voice identifier is stored under.
const VoiceKey = "voiceName"

const defaultTimeout = 3 * time.Second

// Store persists the selected voice. Reads and writes never fail from the
// caller's point of view: a broken backend only means the preference is lost.
type Store struct {
	backend Backend
	timeout time.Duration

	mu      sync.Mutex
	latest  *string
	dirty   bool
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	closing sync.Once
}

// NewStore starts the background writer for backend.
func NewStore(backend Backend) *Store {
	s := &Store{
		backend: backend,
		timeout: defaultTimeout,
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

// Load returns the stored voice identifier, or nil when nothing usable is stored.
func (s *Store) Load() *string {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	v, ok, err := s.backend.Get(ctx, VoiceKey)
	if err != nil {
		logrus.WithError(err).Warn("failed to read voice preference")
		return nil
	}
	if !ok || v == "" {
		return nil
	}
	return &v
}

// Save records id for writing and returns at once. Only the most recent value
// is written when saves pile up. A nil id removes the preference.
func (s *Store) Save(id *string) {
	s.mu.Lock()
	if id != nil {
		v := *id
		s.latest = &v
	} else {
		s.latest = nil
	}
	s.dirty = true
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Close writes any pending value and stops the writer.
func (s *Store) Close() {
	s.closing.Do(func() {
		close(s.quit)
	})
	<-s.done
}

func (s *Store) run() {
	defer close(s.done)
	for {
		select {
		case <-s.wake:
			s.flush()
		case <-s.quit:
			s.flush()
			return
		}
	}
}

func (s *Store) flush() {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return
	}
	value := s.latest
	s.dirty = false
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var err error
	if value == nil {
		err = s.backend.Remove(ctx, VoiceKey)
	} else {
		err = s.backend.Set(ctx, VoiceKey, *value)
	}
	if err != nil {
		logrus.WithError(err).Warn("failed to save voice preference")
	}
}
