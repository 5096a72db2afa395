package config

import (
	"os"
	"strconv"
	"time"

	"gopitch/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Auth     AuthConfig
	Server   ServerConfig
	Models   ModelConfig
	Storage  StorageConfig
	Session  SessionConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// AuthConfig holds credential hashing and token settings
type AuthConfig struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	OpsPort string
	GinMode string
}

// ModelConfig holds settings for the external inference services
type ModelConfig struct {
	WhisperURL        string
	EmotionURL        string
	OpenAIKey         string
	OpenAIModel       string
	LLMTimeout        time.Duration
	MaxTranscriptions int64
}

// StorageConfig holds file system paths for uploaded recordings
type StorageConfig struct {
	UploadDir string
}

// SessionConfig holds real-time session tuning knobs
type SessionConfig struct {
	SampleRate        int
	MaxBufferSeconds  float64
	MinSpeechSeconds  float64
	SilenceThreshold  float64
	TrendWindowPoints int
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			TokenTTL:   getEnvDurationOrDefault("TOKEN_TTL", 24*time.Hour),
			BcryptCost: getEnvIntOrDefault("BCRYPT_COST", 10),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			OpsPort: getEnvOrDefault("OPS_PORT", "6060"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Models: ModelConfig{
			WhisperURL:        os.Getenv("WHISPER_URL"),
			EmotionURL:        os.Getenv("EMOTION_URL"),
			OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:       getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			LLMTimeout:        getEnvDurationOrDefault("LLM_TIMEOUT", 30*time.Second),
			MaxTranscriptions: int64(getEnvIntOrDefault("MAX_TRANSCRIPTIONS", 2)),
		},
		Storage: StorageConfig{
			UploadDir: getEnvOrDefault("UPLOAD_DIR", "uploads"),
		},
		Session: SessionConfig{
			SampleRate:        getEnvIntOrDefault("SESSION_SAMPLE_RATE", 16000),
			MaxBufferSeconds:  getEnvFloatOrDefault("SESSION_MAX_BUFFER_SECONDS", 30.0),
			MinSpeechSeconds:  getEnvFloatOrDefault("SESSION_MIN_SPEECH_SECONDS", 3.0),
			SilenceThreshold:  getEnvFloatOrDefault("SESSION_SILENCE_THRESHOLD", 0.01),
			TrendWindowPoints: getEnvIntOrDefault("SESSION_TREND_POINTS", 10),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Database.URL == "" {
		return errors.ConfigInvalid("DATABASE_URL is required")
	}
	if config.Auth.JWTSecret == "" {
		return errors.ConfigInvalid("JWT_SECRET is required")
	}
	if config.Session.SampleRate <= 0 {
		return errors.ConfigInvalid("SESSION_SAMPLE_RATE must be positive")
	}
	if config.Session.MaxBufferSeconds < config.Session.MinSpeechSeconds {
		return errors.ConfigInvalid("SESSION_MAX_BUFFER_SECONDS must not be below SESSION_MIN_SPEECH_SECONDS")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
