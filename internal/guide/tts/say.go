package tts

import (
	"fmt"
	"os/exec"
	"strings"

	"mlstudio/internal/domain/voice"
)

// SayEngine narrates through the macOS built-in 'say' command, which fronts
// the AVFoundation speech synthesizer.
type SayEngine struct {
	commandEngine
	config Config
	path   string
}

// newSayEngine creates a new macOS 'say' TTS engine
func newSayEngine(config Config) (*SayEngine, error) {
	path, err := exec.LookPath("say")
	if err != nil {
		return nil, fmt.Errorf("'say' command not found: %w", ErrUnavailable)
	}

	engine := &SayEngine{
		config: config,
		path:   path,
	}
	engine.name = EngineTypeSay.String()
	engine.command = engine.buildCommand
	engine.loadAsync(engine.name, engine.listVoices)

	return engine, nil
}

func (s *SayEngine) buildCommand(u Utterance) (*exec.Cmd, error) {
	return exec.Command(s.path, sayArgs(s.config, u)...), nil
}

func sayArgs(config Config, u Utterance) []string {
	args := []string{}

	v := u.VoiceID
	if v == "" {
		v = config.Voice
	}
	if v != "" && v != "default" {
		args = append(args, "-v", v)
	}

	// words per minute, ~175 by default
	speed := config.Speed
	if speed <= 0 {
		speed = 1.0
	}
	args = append(args, "-r", fmt.Sprintf("%.0f", 175*speed))

	return append(args, "--", u.Text)
}

func (s *SayEngine) listVoices() ([]voice.Voice, error) {
	output, err := exec.Command(s.path, "-v", "?").Output()
	if err != nil {
		return nil, err
	}
	return parseSayVoices(string(output)), nil
}

// parseSayVoices reads lines like "Monica    es_ES    # Hola, me llamo Mónica."
// Voice names may contain spaces; the locale is the last column before '#'.
func parseSayVoices(output string) []voice.Voice {
	voices := make([]voice.Voice, 0)

	for _, line := range strings.Split(output, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		locale := fields[len(fields)-1]
		name := strings.TrimSpace(strings.TrimSuffix(line, locale))

		voices = append(voices, voice.Voice{
			ID:       name,
			Language: strings.ReplaceAll(locale, "_", "-"),
		})
	}

	return voices
}
