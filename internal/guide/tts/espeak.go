// Cross-platform eSpeak implementation
package tts

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"mlstudio/internal/domain/voice"
)

// ESpeakEngine implements TTS using eSpeak/eSpeak-NG
type ESpeakEngine struct {
	commandEngine
	config Config
	path   string
}

// newESpeakEngine creates a new eSpeak TTS engine
func newESpeakEngine(config Config) (*ESpeakEngine, error) {
	espeakPath, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}

	if err := exec.Command(espeakPath, "--version").Run(); err != nil {
		return nil, fmt.Errorf("eSpeak test failed: %w", err)
	}

	engine := &ESpeakEngine{
		config: config,
		path:   espeakPath,
	}
	engine.name = EngineTypeESpeak.String()
	engine.command = engine.buildCommand
	engine.loadAsync(engine.name, engine.listVoices)

	return engine, nil
}

func findESpeakExecutable() (string, error) {
	candidates := []string{"espeak-ng", "espeak"}

	for _, candidate := range candidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("eSpeak executable not found in PATH: %w", ErrUnavailable)
}

func (e *ESpeakEngine) buildCommand(u Utterance) (*exec.Cmd, error) {
	return exec.Command(e.path, espeakArgs(e.config, u)...), nil
}

func espeakArgs(config Config, u Utterance) []string {
	args := []string{}

	v := u.VoiceID
	if v == "" {
		v = config.Voice
	}
	if v != "" && v != "default" {
		args = append(args, "-v", v)
	}

	// words per minute, eSpeak default is 175
	speed := config.Speed
	if speed <= 0 {
		speed = 1.0
	}
	args = append(args, "-s", strconv.Itoa(int(175*speed)))

	// amplitude 0-200, default 100
	volume := config.Volume
	if volume < 0 {
		volume = 0
	}
	args = append(args, "-a", strconv.Itoa(int(100*volume)))

	// "--" keeps text starting with a dash from being read as a flag
	return append(args, "--", u.Text)
}

func (e *ESpeakEngine) listVoices() ([]voice.Voice, error) {
	output, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return nil, err
	}
	return parseESpeakVoices(string(output)), nil
}

func parseESpeakVoices(output string) []voice.Voice {
	lines := strings.Split(output, "\n")
	voices := make([]voice.Voice, 0)

	for i, line := range lines {
		// Skip header line
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}

		// Pty Language Age/Gender VoiceName File Other Languages
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, voice.Voice{ID: fields[3], Language: fields[1]})
		}
	}

	return voices
}
