package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"mlstudio/internal/cli/scheme/colours"
	"mlstudio/internal/config"
	"mlstudio/internal/guide/studio"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := config.Init(); err != nil {
		logrus.WithError(err).Fatal("failed to read config")
	}
	cfg := config.Load()

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	app, err := studio.NewStudio(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start voice guide")
	}

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		app.Close()
		fmt.Println("\n" + colours.Warning.Sprint("👋 Hasta luego!"))
		os.Exit(0)
	}()

	rootCmd := &cobra.Command{
		Use:   "mlstudio",
		Short: "🧪 ML Studio voice guide",
		Long: `
┌─────────────────────────────────────┐
│  🧪 ML Studio voice guide 🎙️         │
│  Spoken help for datasets and       │
│  machine-learning experiments       │
└─────────────────────────────────────┘

The voice guide reads a short explanation of every dashboard section
when you navigate to it, in the voice you choose.
		`,
		Run: func(cmd *cobra.Command, args []string) {
			app.ShowWelcome()
		},
	}

	voicesCmd := &cobra.Command{
		Use:   "voices",
		Short: "🎤 List installed voices",
		Long:  "Display the voices reported by the narration engine",
		Run:   app.ListVoices,
	}

	voiceCmd := &cobra.Command{
		Use:   "voice",
		Short: "🗣️ Choose the guide's voice",
	}
	voiceCmd.AddCommand(
		&cobra.Command{
			Use:   "set [voice-id]",
			Short: "Use a specific voice",
			Args:  cobra.MinimumNArgs(1),
			Run:   app.SetVoice,
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Forget the chosen voice and pick one automatically",
			Run:   app.ClearVoice,
		},
	)

	sayCmd := &cobra.Command{
		Use:   "say [text]",
		Short: "🔊 Read a text aloud",
		Long:  "Read the given text with the guide's voice, or a test phrase when none is given",
		Run:   app.Say,
	}

	tourCmd := &cobra.Command{
		Use:   "tour",
		Short: "🧭 Walk through the dashboard sections",
		Long:  "Navigate between dashboard sections and hear the guide narrate each one",
		Run:   app.Tour,
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "⚙️ Show voice guide settings",
		Run:   app.ShowSettings,
	}

	rootCmd.AddCommand(voicesCmd, voiceCmd, sayCmd, tourCmd, settingsCmd)
	app.AddCacheCommands(rootCmd)

	err = rootCmd.Execute()
	app.Close()
	if err != nil {
		colours.Error.Printf("❌ Error: %v\n", err)
		os.Exit(1)
	}
}
