package tts

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mlstudio/internal/domain/voice"

	"cloud.google.com/go/texttospeech/apiv1"
	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/sirupsen/logrus"
	texttospeechpb "google.golang.org/genproto/googleapis/cloud/texttospeech/v1"
)

const (
	googleSampleRate = beep.SampleRate(24000)
	googleChunkLimit = 4800 // a little under the 5000 byte request limit
)

type GoogleTTSEngine struct {
	voiceHub

	client   *texttospeech.Client
	ctx      context.Context
	cancel   context.CancelFunc
	config   Config
	cacheDir string

	mu          sync.Mutex
	current     *googleRun
	speakerInit bool
}

type googleRun struct {
	cancel context.CancelFunc
}

func newGoogleTTSEngine(config Config) (*GoogleTTSEngine, error) {
	ctx, cancel := context.WithCancel(context.Background())
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to create TTS client: %w", err)
	}

	if err := os.MkdirAll(config.CachePath, 0755); err != nil {
		cancel()
		client.Close()
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}

	g := &GoogleTTSEngine{
		client:   client,
		ctx:      ctx,
		cancel:   cancel,
		config:   config,
		cacheDir: config.CachePath,
	}
	g.loadAsync(EngineTypeGoogle.String(), g.listVoices)

	return g, nil
}

func (g *GoogleTTSEngine) listVoices() ([]voice.Voice, error) {
	resp, err := g.client.ListVoices(g.ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, err
	}
	voices := make([]voice.Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		lang := ""
		if len(v.LanguageCodes) > 0 {
			lang = v.LanguageCodes[0]
		}
		voices = append(voices, voice.Voice{ID: v.Name, Language: lang})
	}
	return voices, nil
}

func (g *GoogleTTSEngine) Speak(u Utterance, cb Callbacks) error {
	g.mu.Lock()
	if g.ctx.Err() != nil {
		g.mu.Unlock()
		return fmt.Errorf("google tts: engine closed")
	}
	g.stopLocked()

	ctx, cancel := context.WithCancel(g.ctx)
	run := &googleRun{cancel: cancel}
	g.current = run
	g.mu.Unlock()

	go g.narrate(ctx, run, u, cb)
	return nil
}

func (g *GoogleTTSEngine) narrate(ctx context.Context, run *googleRun, u Utterance, cb Callbacks) {
	defer g.finish(run)

	paths, err := g.synthesize(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			cb.fail(ErrCancelled)
			return
		}
		cb.fail(err)
		return
	}

	streamer, closers, err := g.open(paths)
	if err != nil {
		cb.fail(err)
		return
	}
	defer closeAll(closers)

	if err := g.initSpeaker(); err != nil {
		cb.fail(err)
		return
	}

	finished := make(chan struct{})
	g.mu.Lock()
	if ctx.Err() != nil {
		g.mu.Unlock()
		cb.fail(ErrCancelled)
		return
	}
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		close(finished)
	})))
	g.mu.Unlock()

	cb.start()

	select {
	case <-finished:
		cb.end()
	case <-ctx.Done():
		cb.fail(ErrCancelled)
	}
}

// synthesize returns the MP3 chunk files for u, generating the ones not cached yet.
func (g *GoogleTTSEngine) synthesize(ctx context.Context, u Utterance) ([]string, error) {
	voiceName := u.VoiceID
	if voiceName == "" && g.config.Voice != "default" {
		voiceName = g.config.Voice
	}
	lang := g.config.Language
	if v, ok := g.lookup(voiceName); ok && v.Language != "" {
		lang = v.Language
	}

	contentHash := md5Sum(u.Text + voiceName)[:12]
	chunks := splitIntoChunks(u.Text, googleChunkLimit)
	paths := make([]string, 0, len(chunks))

	for i, chunk := range chunks {
		path := filepath.Join(g.cacheDir, fmt.Sprintf("%s_%d.mp3", contentHash, i))
		paths = append(paths, path)

		if _, err := os.Stat(path); err == nil {
			continue
		}

		req := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: lang,
				Name:         voiceName,
			},
			AudioConfig: g.audioConfig(voiceName),
		}
		resp, err := g.client.SynthesizeSpeech(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to synthesize chunk %d: %w", i, err)
		}
		if err := os.WriteFile(path, resp.AudioContent, 0644); err != nil {
			return nil, fmt.Errorf("failed to write MP3 chunk %d to %s: %w", i, path, err)
		}

		logrus.WithFields(logrus.Fields{
			"chunk": i + 1,
			"of":    len(chunks),
			"path":  path,
		}).Debug("cached audio chunk")
	}

	return paths, nil
}

func (g *GoogleTTSEngine) audioConfig(voiceName string) *texttospeechpb.AudioConfig {
	cfg := &texttospeechpb.AudioConfig{
		AudioEncoding:   texttospeechpb.AudioEncoding_MP3,
		SampleRateHertz: int32(googleSampleRate),
	}
	// Chirp voices don't support speakingRate
	if !strings.Contains(strings.ToLower(voiceName), "chirp") && g.config.Speed > 0 {
		cfg.SpeakingRate = g.config.Speed
	}
	return cfg
}

// open decodes the chunk files into one streamer at the speaker's sample rate.
func (g *GoogleTTSEngine) open(paths []string) (beep.Streamer, []beep.StreamSeekCloser, error) {
	streamers := make([]beep.Streamer, 0, len(paths))
	closers := make([]beep.StreamSeekCloser, 0, len(paths))

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("failed to open cached MP3 %s: %w", path, err)
		}
		s, format, err := mp3.Decode(f)
		if err != nil {
			f.Close()
			closeAll(closers)
			return nil, nil, fmt.Errorf("failed to decode MP3 %s: %w", path, err)
		}
		closers = append(closers, s)

		var st beep.Streamer = s
		if format.SampleRate != googleSampleRate {
			st = beep.Resample(4, format.SampleRate, googleSampleRate, s)
		}
		streamers = append(streamers, st)
	}

	return volumeStreamer(beep.Seq(streamers...), g.config.Volume), closers, nil
}

func volumeStreamer(s beep.Streamer, volume float64) beep.Streamer {
	if volume == 1.0 || volume < 0 {
		return s
	}
	if volume == 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(volume)}
}

func (g *GoogleTTSEngine) initSpeaker() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.speakerInit {
		return nil
	}
	if err := speaker.Init(googleSampleRate, googleSampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialise speaker: %w", err)
	}
	g.speakerInit = true
	return nil
}

func (g *GoogleTTSEngine) finish(run *googleRun) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == run {
		g.current = nil
	}
	run.cancel()
}

func (g *GoogleTTSEngine) Cancel() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.stopLocked()
	return nil
}

func (g *GoogleTTSEngine) stopLocked() {
	if g.current == nil {
		return
	}
	g.current.cancel()
	g.current = nil
	if g.speakerInit {
		speaker.Clear()
	}
}

func (g *GoogleTTSEngine) Close() error {
	g.mu.Lock()
	g.stopLocked()
	g.mu.Unlock()

	g.cancel()
	return g.client.Close()
}

// CacheStats reports the number and size of cached MP3 files.
func (g *GoogleTTSEngine) CacheStats() (files int64, sizeMB float64, err error) {
	var totalSize int64

	err = filepath.Walk(g.cacheDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() && strings.HasSuffix(strings.ToLower(info.Name()), ".mp3") {
			files++
			totalSize += info.Size()
		}
		return nil
	})

	return files, float64(totalSize) / (1024 * 1024), err
}

// ClearCache removes all cached files
func (g *GoogleTTSEngine) ClearCache() error {
	return os.RemoveAll(g.cacheDir)
}

func closeAll(closers []beep.StreamSeekCloser) {
	for _, c := range closers {
		c.Close()
	}
}

func md5Sum(s string) string {
	h := md5.New()
	io.WriteString(h, s)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// splitIntoChunks cuts text at rune boundaries into pieces of about limit bytes.
func splitIntoChunks(text string, limit int) []string {
	var chunks []string
	start := 0
	for i := range text {
		if i-start >= limit {
			chunks = append(chunks, text[start:i])
			start = i
		}
	}
	if start < len(text) {
		chunks = append(chunks, text[start:])
	}
	return chunks
}
