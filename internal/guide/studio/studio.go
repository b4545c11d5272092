package studio

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mlstudio/internal/config"
	"mlstudio/internal/domain/guide"
	"mlstudio/internal/guide/catalog"
	"mlstudio/internal/guide/narrator"
	"mlstudio/internal/guide/preference"
	"mlstudio/internal/guide/route"
	"mlstudio/internal/guide/tts"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Studio wires the voice guide together for the ML Studio shell.
type Studio struct {
	cfg   *config.Config
	texts guide.Texts

	Engine   tts.Engine
	Catalog  *catalog.Catalog
	Prefs    *preference.Store
	Narrator *narrator.Narrator
	Routes   *route.Binding

	redis     *redis.Client
	ctx       context.Context
	Cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewStudio builds the guide from configuration. A platform without any speech
// engine still gets a working studio whose narration is silent.
func NewStudio(cfg *config.Config) (*Studio, error) {
	engine, err := tts.NewEngine(tts.Config{
		Type:      cfg.TTS.Type,
		Speed:     cfg.TTS.Speed,
		Volume:    cfg.TTS.Volume,
		Voice:     cfg.TTS.Voice,
		Language:  cfg.TTS.Language,
		CachePath: cfg.TTS.CachePath,
	})
	if errors.Is(err, tts.ErrUnavailable) {
		logrus.WithError(err).Warn("voice guide unavailable, narration disabled")
		engine = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to create tts engine: %w", err)
	}

	backend, rdb := newBackend(cfg.Preference)
	s := newStudio(cfg, engine, backend)
	s.redis = rdb
	return s, nil
}

func newStudio(cfg *config.Config, engine tts.Engine, backend preference.Backend) *Studio {
	texts := guide.DefaultTexts().Merge(cfg.Guide.Texts)

	voices := catalog.New(engine)

	prefs := preference.NewStore(backend)
	hints := cfg.Guide.QualityHints
	if len(hints) == 0 {
		hints = narrator.DefaultQualityHints
	}
	n := narrator.New(engine, voices, prefs, narrator.Config{
		Enabled: cfg.Guide.Enabled,
		Ranker:  narrator.LocaleRanker(cfg.Guide.Locale, hints),
	})

	ctx, cancel := context.WithCancel(context.Background())
	return &Studio{
		cfg:      cfg,
		texts:    texts,
		Engine:   engine,
		Catalog:  voices,
		Prefs:    prefs,
		Narrator: n,
		Routes:   route.NewBinding(n, texts),
		ctx:      ctx,
		Cancel:   cancel,
	}
}

func newBackend(cfg config.PreferenceConfig) (preference.Backend, *redis.Client) {
	switch cfg.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("redis unavailable, voice preference will not be kept")
		}
		return preference.NewRedisBackend(rdb, cfg.Redis.Namespace), rdb

	case "memory":
		return preference.NewMemoryBackend(), nil

	default:
		return preference.NewFileBackend(cfg.Path), nil
	}
}

// Close stops narration and releases the engine and storage.
func (s *Studio) Close() {
	s.closeOnce.Do(s.close)
}

func (s *Studio) close() {
	s.Cancel()
	s.Narrator.Close()
	s.Catalog.Close()
	s.Prefs.Close()

	if s.Engine != nil {
		if err := s.Engine.Close(); err != nil {
			logrus.WithError(err).Debug("failed to close tts engine")
		}
	}
	if s.redis != nil {
		s.redis.Close()
	}
}

// waitForVoices gives an engine that loads its voices late a chance to report them.
func (s *Studio) waitForVoices(timeout time.Duration) {
	if s.Engine == nil || len(s.Catalog.Voices()) > 0 {
		return
	}

	changed := make(chan struct{}, 1)
	cancel := s.Catalog.Subscribe(func(ev catalog.Changed) {
		if len(ev.Voices) == 0 {
			return
		}
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer cancel()

	if len(s.Catalog.Voices()) > 0 {
		return
	}
	select {
	case <-changed:
	case <-time.After(timeout):
	case <-s.ctx.Done():
	}
}

// speakAndWait narrates text and blocks until the narration ends. It gives up
// when the engine has not started speaking within startTimeout.
func (s *Studio) speakAndWait(text string, startTimeout time.Duration) {
	if s.Narrator.State() == narrator.Disabled {
		return
	}

	states := make(chan narrator.State, 16)
	cancel := s.Narrator.Watch(func(snap narrator.Snapshot) {
		select {
		case states <- snap.State:
		default:
		}
	})
	defer cancel()

	s.Narrator.Speak(text)

	started := false
	timeout := time.After(startTimeout)
	for {
		select {
		case st := <-states:
			switch {
			case st == narrator.Speaking:
				started = true
			case started || st == narrator.Disabled:
				return
			}
		case <-timeout:
			if !started {
				return
			}
		case <-s.ctx.Done():
			return
		}
	}
}
