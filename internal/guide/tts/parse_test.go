package tts

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"mlstudio/internal/domain/voice"
)

func TestParseESpeakVoices(t *testing.T) {
	output := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  es              --/M      Spanish_(Spain)    roa/es
 5  es-419          --/M      Spanish_(Latin_America) roa/es-419    (es-mx 6)

`
	want := []voice.Voice{
		{ID: "Afrikaans", Language: "af"},
		{ID: "Spanish_(Spain)", Language: "es"},
		{ID: "Spanish_(Latin_America)", Language: "es-419"},
	}
	if got := parseESpeakVoices(output); !reflect.DeepEqual(got, want) {
		t.Errorf("parseESpeakVoices() = %v, want %v", got, want)
	}
}

func TestParseSayVoices(t *testing.T) {
	output := `Alex                en_US    # Most people recognize me by my voice.
Bad News            en_US    # The light you see at the end of the tunnel.
Eddy (Spanish (Spain)) es_ES    # ¡Hola! Me llamo Eddy.
Monica              es_ES    # Hola, me llamo Mónica.
`
	want := []voice.Voice{
		{ID: "Alex", Language: "en-US"},
		{ID: "Bad News", Language: "en-US"},
		{ID: "Eddy (Spanish (Spain))", Language: "es-ES"},
		{ID: "Monica", Language: "es-ES"},
	}
	if got := parseSayVoices(output); !reflect.DeepEqual(got, want) {
		t.Errorf("parseSayVoices() = %v, want %v", got, want)
	}
}

func TestParseSAPIVoices(t *testing.T) {
	output := "Microsoft Helena Desktop|es-ES\r\nMicrosoft Zira Desktop|en-US\r\n\r\nbroken line\r\n"
	want := []voice.Voice{
		{ID: "Microsoft Helena Desktop", Language: "es-ES"},
		{ID: "Microsoft Zira Desktop", Language: "en-US"},
	}
	if got := parseSAPIVoices(output); !reflect.DeepEqual(got, want) {
		t.Errorf("parseSAPIVoices() = %v, want %v", got, want)
	}
}

func TestESpeakArgs(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		u      Utterance
		want   []string
	}{
		{
			name:   "engine default voice",
			config: Config{Voice: "default", Speed: 1.0, Volume: 1.0},
			u:      Utterance{Text: "hola"},
			want:   []string{"-s", "175", "-a", "100", "--", "hola"},
		},
		{
			name:   "utterance voice wins",
			config: Config{Voice: "en", Speed: 2.0, Volume: 0.5},
			u:      Utterance{Text: "-hola", VoiceID: "es"},
			want:   []string{"-v", "es", "-s", "350", "-a", "50", "--", "-hola"},
		},
		{
			name:   "configured fallback voice",
			config: Config{Voice: "es-419"},
			u:      Utterance{Text: "hola"},
			want:   []string{"-v", "es-419", "-s", "175", "-a", "0", "--", "hola"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := espeakArgs(tt.config, tt.u); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("espeakArgs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSayArgs(t *testing.T) {
	got := sayArgs(Config{Speed: 1.0}, Utterance{Text: "hola", VoiceID: "Monica"})
	want := []string{"-v", "Monica", "-r", "175", "--", "hola"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sayArgs() = %v, want %v", got, want)
	}
}

func TestSAPISpeakScript(t *testing.T) {
	script := sapiSpeakScript(Config{Speed: 3.0, Volume: 0.5})
	for _, want := range []string{"$synth.Rate = 10;", "$synth.Volume = 50;", "$env:" + sapiTextEnv} {
		if !strings.Contains(script, want) {
			t.Errorf("script missing %q:\n%s", want, script)
		}
	}
}

func TestSplitIntoChunks(t *testing.T) {
	text := strings.Repeat("ñ", 10) // 20 bytes
	chunks := splitIntoChunks(text, 6)

	if strings.Join(chunks, "") != text {
		t.Fatalf("chunks do not rebuild the text: %q", chunks)
	}
	for _, c := range chunks {
		if len(c) > 6+3 {
			t.Errorf("chunk %q is %d bytes", c, len(c))
		}
		if !strings.HasPrefix(c, "ñ") {
			t.Errorf("chunk %q split a rune", c)
		}
	}
	if got := splitIntoChunks("", 10); len(got) != 0 {
		t.Errorf("splitIntoChunks(\"\") = %q", got)
	}
}

func TestGoogleAudioCache(t *testing.T) {
	dir := t.TempDir()
	g := &GoogleTTSEngine{cacheDir: dir}

	for name, size := range map[string]int{"a_0.mp3": 1024, "a_1.MP3": 2048, "notes.txt": 10} {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0644); err != nil {
			t.Fatal(err)
		}
	}

	files, sizeMB, err := g.CacheStats()
	if err != nil {
		t.Fatalf("CacheStats: %v", err)
	}
	if files != 2 {
		t.Errorf("files = %d, want 2", files)
	}
	if want := 3072.0 / (1024 * 1024); sizeMB != want {
		t.Errorf("sizeMB = %v, want %v", sizeMB, want)
	}

	if err := g.ClearCache(); err != nil {
		t.Fatalf("ClearCache: %v", err)
	}
	if files, _, _ := g.CacheStats(); files != 0 {
		t.Errorf("files after clear = %d, want 0", files)
	}
}
