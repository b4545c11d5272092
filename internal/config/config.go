package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	TTS        TTSConfig
	Guide      GuideConfig
	Preference PreferenceConfig
	LogLevel   string
}

type TTSConfig struct {
	Type      string
	Voice     string
	Language  string
	Speed     float64
	Volume    float64
	CachePath string
}

type GuideConfig struct {
	Enabled      bool
	Locale       string
	QualityHints []string
	Texts        map[string]string
}

type PreferenceConfig struct {
	Backend string // file, redis or memory
	Path    string
	Redis   RedisConfig
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	Namespace string
}

// SetDefaults registers the default of every setting with viper.
func SetDefaults() {
	home := homeDir()

	viper.SetDefault("tts.type", "auto") // Auto-select best engine
	viper.SetDefault("tts.voice", "default")
	viper.SetDefault("tts.language", "es-ES")
	viper.SetDefault("tts.speed", 1.0)
	viper.SetDefault("tts.volume", 1.0)
	viper.SetDefault("tts.cache_path", filepath.Join(home, "cache", "tts"))

	viper.SetDefault("guide.enabled", true)
	viper.SetDefault("guide.locale", "es")
	viper.SetDefault("guide.quality_hints", []string{"google", "neural", "wave", "microsoft"})
	viper.SetDefault("guide.texts", map[string]string{})

	viper.SetDefault("preference.backend", "file")
	viper.SetDefault("preference.path", filepath.Join(home, "preferences.json"))
	viper.SetDefault("preference.redis.addr", "localhost:6379")
	viper.SetDefault("preference.redis.password", "")
	viper.SetDefault("preference.redis.db", 0)
	viper.SetDefault("preference.redis.namespace", "mlstudio")

	viper.SetDefault("log.level", "info")
}

// Init points viper at mlstudio.yaml and the MLSTUDIO_* environment. A missing
// config file is not an error.
func Init() error {
	SetDefaults()

	viper.SetConfigName("mlstudio")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(homeDir())
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("mlstudio")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}
	return nil
}

// Load reads the current viper settings.
func Load() *Config {
	return &Config{
		TTS: TTSConfig{
			Type:      viper.GetString("tts.type"),
			Voice:     viper.GetString("tts.voice"),
			Language:  viper.GetString("tts.language"),
			Speed:     viper.GetFloat64("tts.speed"),
			Volume:    viper.GetFloat64("tts.volume"),
			CachePath: viper.GetString("tts.cache_path"),
		},
		Guide: GuideConfig{
			Enabled:      viper.GetBool("guide.enabled"),
			Locale:       viper.GetString("guide.locale"),
			QualityHints: viper.GetStringSlice("guide.quality_hints"),
			Texts:        viper.GetStringMapString("guide.texts"),
		},
		Preference: PreferenceConfig{
			Backend: viper.GetString("preference.backend"),
			Path:    viper.GetString("preference.path"),
			Redis: RedisConfig{
				Addr:      viper.GetString("preference.redis.addr"),
				Password:  viper.GetString("preference.redis.password"),
				DB:        viper.GetInt("preference.redis.db"),
				Namespace: viper.GetString("preference.redis.namespace"),
			},
		},
		LogLevel: viper.GetString("log.level"),
	}
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".mlstudio"
	}
	return filepath.Join(home, ".mlstudio")
}
