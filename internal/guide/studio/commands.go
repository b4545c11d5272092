package studio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"mlstudio/internal/cli/scheme/colours"
	"mlstudio/internal/domain/guide"
	"mlstudio/internal/domain/voice"
	"mlstudio/internal/guide/narrator"
	"mlstudio/internal/guide/tts"

	"github.com/spf13/cobra"
)

const (
	voiceLoadTimeout = 3 * time.Second
	startTimeout     = 10 * time.Second
)

func (s *Studio) ShowWelcome() {
	fmt.Println()
	colours.Title.Println("🌟 ML Studio voice guide 🌟")
	fmt.Println()
	colours.Info.Println("📚 Available commands:")
	fmt.Println("  • mlstudio voices         - List the installed voices")
	fmt.Println("  • mlstudio voice set <id> - Choose the guide's voice")
	fmt.Println("  • mlstudio voice clear    - Forget the chosen voice")
	fmt.Println("  • mlstudio say <text>     - Read a text aloud")
	fmt.Println("  • mlstudio tour           - Walk through the dashboard sections")
	fmt.Println("  • mlstudio settings       - Show the guide settings")
	fmt.Println()
	colours.Prompt.Println("✨ Ready to explore your datasets? ✨")
}

func (s *Studio) ListVoices(cmd *cobra.Command, args []string) {
	if !s.Narrator.Available() {
		colours.Warning.Println("🔇 No narration engine on this system")
		return
	}

	s.waitForVoices(voiceLoadTimeout)
	snap := s.Narrator.Snapshot()

	fmt.Println()
	colours.Title.Println("🎤 Installed voices 🎤")
	fmt.Println()

	if len(snap.Voices) == 0 {
		colours.Warning.Println("  Loading voices... none reported yet")
		return
	}

	for i, v := range snap.Voices {
		marker := "  "
		if v.ID == snap.SelectedVoice {
			marker = "★ "
		}
		fmt.Printf("%s%d. ", marker, i+1)
		colours.Voice.Printf("%s\n", v)
	}
	fmt.Println()
	colours.Success.Printf("✨ Total: %d voices\n", len(snap.Voices))
}

func (s *Studio) SetVoice(cmd *cobra.Command, args []string) {
	id := strings.Join(args, " ")
	s.waitForVoices(voiceLoadTimeout)

	if _, ok := voice.Find(s.Narrator.Voices(), id); !ok {
		colours.Warning.Printf("⚠️  '%s' is not installed right now; the engine default will be used until it is\n", id)
	}

	s.Narrator.SelectVoice(&id)
	colours.Success.Printf("✅ Guide voice set to %s\n", id)
}

func (s *Studio) ClearVoice(cmd *cobra.Command, args []string) {
	s.Narrator.SelectVoice(nil)
	colours.Success.Println("✅ Voice choice cleared, the best voice will be picked automatically")
}

func (s *Studio) Say(cmd *cobra.Command, args []string) {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		text = guide.VoiceTestPhrase
	}
	if !s.Narrator.Available() {
		colours.Warning.Println("🔇 No narration engine on this system")
		return
	}

	s.waitForVoices(voiceLoadTimeout)
	s.speakAndWait(text, startTimeout)
}

func (s *Studio) ShowSettings(cmd *cobra.Command, args []string) {
	snap := s.Narrator.Snapshot()

	fmt.Println()
	colours.Title.Println("⚙️ Voice guide settings ⚙️")
	fmt.Println()
	fmt.Printf("  • Engine: %s\n", s.cfg.TTS.Type)
	fmt.Printf("  • Available engines: %v\n", tts.GetAvailableEngines())
	fmt.Printf("  • Guide: %s\n", snap.State)
	fmt.Printf("  • Locale: %s\n", s.cfg.Guide.Locale)
	fmt.Printf("  • Speed: %.1fx\n", s.cfg.TTS.Speed)
	fmt.Printf("  • Volume: %.0f%%\n", s.cfg.TTS.Volume*100)
	fmt.Printf("  • Preferences: %s\n", s.cfg.Preference.Backend)

	selected := snap.SelectedVoice
	if selected == "" {
		selected = "automatic"
	}
	fmt.Print("  • Voice: ")
	colours.Voice.Println(selected)

	if cache, ok := s.Engine.(audioCache); ok {
		files, sizeMB, err := cache.CacheStats()
		if err != nil {
			colours.Warning.Printf("  • Audio cache: unreadable (%v)\n", err)
			return
		}
		fmt.Printf("  • Audio cache: %d files, %.1f MB\n", files, sizeMB)
	}
}

// audioCache is implemented by engines that keep synthesized audio on disk.
type audioCache interface {
	CacheStats() (files int64, sizeMB float64, err error)
	ClearCache() error
}

// ShowCacheStatus displays the size of the engine's audio cache
func (s *Studio) ShowCacheStatus(cmd *cobra.Command, args []string) {
	cache, ok := s.Engine.(audioCache)
	if !ok {
		colours.Warning.Println("ℹ️  The current engine keeps no audio cache")
		return
	}

	colours.Title.Println("📊 Audio cache status")
	files, sizeMB, err := cache.CacheStats()
	if err != nil {
		colours.Error.Printf("❌ Failed to read cache: %v\n", err)
		return
	}
	colours.Info.Printf("📁 Location: %s\n", s.cfg.TTS.CachePath)
	colours.Info.Printf("🎵 Files: %d\n", files)
	colours.Info.Printf("📏 Size: %.1f MB\n", sizeMB)
}

// ClearCache removes every synthesized file so the next narration is fetched again
func (s *Studio) ClearCache(cmd *cobra.Command, args []string) {
	cache, ok := s.Engine.(audioCache)
	if !ok {
		colours.Warning.Println("ℹ️  The current engine keeps no audio cache")
		return
	}

	if err := cache.ClearCache(); err != nil {
		colours.Error.Printf("❌ Failed to clear cache: %v\n", err)
		return
	}
	colours.Success.Println("🧹 Audio cache cleared")
}

// AddCacheCommands adds the audio cache commands to the root command
func (s *Studio) AddCacheCommands(rootCmd *cobra.Command) {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "🗄️ Manage the synthesized audio cache",
		Long:  "Inspect or clear the audio kept by engines that synthesize remotely",
	}

	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show cache size",
			Run:   s.ShowCacheStatus,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove all cached audio",
			Run:   s.ClearCache,
		},
	)

	rootCmd.AddCommand(cacheCmd)
}

func (s *Studio) Tour(cmd *cobra.Command, args []string) {
	s.RunTour(os.Stdin)
}

// RunTour plays the dashboard shell: each line read from in is a navigation or
// a control command.
func (s *Studio) RunTour(in io.Reader) {
	cancel := s.Narrator.Watch(showIndicator())
	defer cancel()

	s.waitForVoices(voiceLoadTimeout)

	fmt.Println()
	colours.Title.Println("🧭 Dashboard tour 🧭")
	colours.Info.Print("Sections: ")
	colours.Section.Println(strings.Join(sections(), ", "))
	fmt.Println("💡 Type a section or path to navigate, 's' to stop, 't' to toggle the guide,")
	fmt.Println("   'v <voice>' to change voice, 'p' to try the voice, 'l' to list voices, 'q' to quit")

	s.Narrator.SpeakWelcome(s.texts[guide.Welcome])
	s.Routes.NavigatePath("/")

	scanner := bufio.NewScanner(in)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		fmt.Println()
		colours.Section.Printf("[%s]", s.Routes.Current())
		colours.Prompt.Print(" > ")
		if !scanner.Scan() {
			return
		}
		if !s.handleTourInput(strings.TrimSpace(scanner.Text())) {
			return
		}
	}
}

// handleTourInput applies one line of tour input and reports whether to go on.
func (s *Studio) handleTourInput(input string) bool {
	command, arg, _ := strings.Cut(input, " ")

	switch strings.ToLower(command) {
	case "":
		return true
	case "q", "quit":
		s.Narrator.Stop()
		colours.Warning.Println("👋 Hasta luego!")
		return false
	case "s", "stop":
		s.Narrator.Stop()
		colours.Warning.Println("⏹️  Stopped")
	case "t", "toggle":
		enabled := !s.Narrator.Enabled()
		s.Narrator.SetEnabled(enabled)
		if enabled {
			colours.Success.Println("🔊 Voice guide on")
		} else {
			colours.Warning.Println("🔇 Voice guide off")
		}
	case "p", "probar":
		s.Narrator.Speak(guide.VoiceTestPhrase)
	case "l", "voices":
		for _, v := range s.Narrator.Voices() {
			colours.Voice.Printf("  %s\n", v)
		}
	case "v", "voice":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			s.Narrator.SelectVoice(nil)
			colours.Success.Println("✅ Automatic voice")
			return true
		}
		s.Narrator.SelectVoice(&arg)
		colours.Success.Printf("✅ Voice: %s\n", arg)
	default:
		s.Routes.NavigatePath(input)
	}
	return true
}

func showIndicator() func(narrator.Snapshot) {
	var (
		mu   sync.Mutex
		last narrator.State = -1
	)
	return func(snap narrator.Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		if snap.State == last {
			return
		}
		last = snap.State
		switch snap.State {
		case narrator.Speaking:
			colours.Speaking.Println("🎙️  speaking...")
		case narrator.Disabled:
			colours.Muted.Println("🔇 guide off")
		}
	}
}

func sections() []string {
	return []string{
		guide.RouteDashboard,
		guide.RouteDatasets,
		guide.RouteCleaning,
		guide.RouteTraining,
		guide.RouteResults,
	}
}
