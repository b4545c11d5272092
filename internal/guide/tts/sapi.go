// internal/guide/tts/sapi.go
package tts

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"mlstudio/internal/domain/voice"
)

const (
	sapiTextEnv  = "MLSTUDIO_TTS_TEXT"
	sapiVoiceEnv = "MLSTUDIO_TTS_VOICE"
)

// SAPIEngine implements Windows SAPI TTS through PowerShell's System.Speech.
type SAPIEngine struct {
	commandEngine
	config Config
	path   string
}

// newSAPIEngine creates a new Windows SAPI TTS engine
func newSAPIEngine(config Config) (*SAPIEngine, error) {
	path, err := exec.LookPath("powershell")
	if err != nil {
		return nil, fmt.Errorf("powershell not found: %w", ErrUnavailable)
	}

	engine := &SAPIEngine{
		config: config,
		path:   path,
	}
	engine.name = EngineTypeSAPI.String()
	engine.command = engine.buildCommand
	engine.loadAsync(engine.name, engine.listVoices)

	return engine, nil
}

func (s *SAPIEngine) buildCommand(u Utterance) (*exec.Cmd, error) {
	v := u.VoiceID
	if v == "" && s.config.Voice != "default" {
		v = s.config.Voice
	}

	cmd := exec.Command(s.path, "-NoProfile", "-Command", sapiSpeakScript(s.config))
	// text and voice travel through the environment so nothing needs quoting
	cmd.Env = append(os.Environ(), sapiTextEnv+"="+u.Text, sapiVoiceEnv+"="+v)
	return cmd, nil
}

func sapiSpeakScript(config Config) string {
	speed := config.Speed
	if speed <= 0 {
		speed = 1.0
	}
	volume := config.Volume
	if volume < 0 || volume > 1.0 {
		volume = 1.0
	}

	return fmt.Sprintf(`Add-Type -AssemblyName System.Speech;
$synth = New-Object System.Speech.Synthesis.SpeechSynthesizer;
if ($env:%s) { $synth.SelectVoice($env:%s) };
$synth.Rate = %d;
$synth.Volume = %d;
$synth.Speak($env:%s)`,
		sapiVoiceEnv, sapiVoiceEnv,
		clampInt(int(speed*10)-10, -10, 10), // SAPI range -10 to 10
		int(volume*100),                     // SAPI range 0 to 100
		sapiTextEnv)
}

func (s *SAPIEngine) listVoices() ([]voice.Voice, error) {
	script := `Add-Type -AssemblyName System.Speech;
(New-Object System.Speech.Synthesis.SpeechSynthesizer).GetInstalledVoices() |
ForEach-Object { $_.VoiceInfo.Name + '|' + $_.VoiceInfo.Culture.Name }`

	output, err := exec.Command(s.path, "-NoProfile", "-Command", script).Output()
	if err != nil {
		return nil, err
	}
	return parseSAPIVoices(string(output)), nil
}

// parseSAPIVoices reads "Name|culture" lines.
func parseSAPIVoices(output string) []voice.Voice {
	voices := make([]voice.Voice, 0)

	for _, line := range strings.Split(output, "\n") {
		name, culture, ok := strings.Cut(strings.TrimSpace(line), "|")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		voices = append(voices, voice.Voice{
			ID:       strings.TrimSpace(name),
			Language: strings.TrimSpace(culture),
		})
	}

	return voices
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
