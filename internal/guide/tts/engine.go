package tts

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
)

type EngineType string

const (
	EngineTypeMock   EngineType = "mock"
	EngineTypeESpeak EngineType = "espeak"
	EngineTypeSAPI   EngineType = "sapi" // Windows only
	EngineTypeSay    EngineType = "say"  // macOS only
	EngineTypeGoogle EngineType = "google"
	EngineTypeAuto   EngineType = "auto" // Automatically choose best for platform
)

func (e EngineType) String() string {
	return string(e)
}

// NewEngine creates a new TTS engine based on the provided config. With the
// auto type every engine suited to the platform is tried in order of
// preference; when none of them works the returned error wraps ErrUnavailable.
func NewEngine(config Config) (Engine, error) {
	if config.Type == "" || config.Type == EngineTypeAuto.String() {
		var errs []error
		for _, candidate := range preferredEngines() {
			engine, err := newEngine(candidate, config)
			if err == nil {
				logrus.WithField("engine", candidate).Info("narration engine selected")
				return engine, nil
			}
			logrus.WithError(err).WithField("engine", candidate).Debug("narration engine not usable")
			errs = append(errs, err)
		}
		return nil, fmt.Errorf("no usable engine for %s: %w", runtime.GOOS, errors.Join(append(errs, ErrUnavailable)...))
	}

	return newEngine(EngineType(config.Type), config)
}

func newEngine(t EngineType, config Config) (Engine, error) {
	var (
		engine Engine
		err    error
	)

	switch t {
	case EngineTypeMock:
		engine = NewMockTTSEngine(config)

	case EngineTypeGoogle:
		if !hasGoogleCredentials() {
			return nil, fmt.Errorf("google engine needs GOOGLE_APPLICATION_CREDENTIALS: %w", ErrUnavailable)
		}
		engine, err = newGoogleTTSEngine(config)

	case EngineTypeESpeak:
		engine, err = newESpeakEngine(config)

	case EngineTypeSAPI:
		if runtime.GOOS != "windows" {
			return nil, fmt.Errorf("SAPI engine only supports Windows: %w", ErrUnavailable)
		}
		engine, err = newSAPIEngine(config)

	case EngineTypeSay:
		if runtime.GOOS != "darwin" {
			return nil, fmt.Errorf("say engine only supports macOS: %w", ErrUnavailable)
		}
		engine, err = newSayEngine(config)

	default:
		return nil, fmt.Errorf("unsupported TTS engine type: %s", t)
	}

	// never hand out an interface wrapping a nil engine
	if err != nil {
		return nil, err
	}
	return engine, nil
}

// preferredEngines lists the engines to try for the current platform, best first.
func preferredEngines() []EngineType {
	var engines []EngineType

	if hasGoogleCredentials() {
		engines = append(engines, EngineTypeGoogle)
	}

	switch runtime.GOOS {
	case "windows":
		engines = append(engines, EngineTypeSAPI)
	case "darwin":
		engines = append(engines, EngineTypeSay)
	}

	return append(engines, EngineTypeESpeak)
}

// GetAvailableEngines returns engines available on the current platform
func GetAvailableEngines() []EngineType {
	return append([]EngineType{EngineTypeMock}, preferredEngines()...)
}

// hasGoogleCredentials checks if Google Cloud credentials are available
func hasGoogleCredentials() bool {
	_, ok := os.LookupEnv("GOOGLE_APPLICATION_CREDENTIALS")
	return ok
}
