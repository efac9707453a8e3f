package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string `env:"PORT" envDefault:"3000"`
	Env  string `env:"ENV" envDefault:"development"`

	// Database
	DatabaseURL string `env:"DATABASE_URL" envDefault:"sqlite://daptic.db"`

	// Redis (optional, enables session revocation on logout)
	RedisURL string `env:"REDIS_URL"`

	// Sessions
	SecretKey  string        `env:"SECRET_KEY,required"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Gemini AI
	GeminiAPIKey      string        `env:"GOOGLE_API_KEY,required"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-2.0-flash"`
	GeminiBaseURL     string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/models"`
	GeminiTimeout     time.Duration `env:"GEMINI_TIMEOUT" envDefault:"30s"`
	GeminiVerifyModel bool          `env:"GEMINI_VERIFY_MODEL" envDefault:"false"`

	// Chat relay
	InstructionFile string `env:"INSTRUCTION_FILE" envDefault:"instruction.txt"`
	MaxPromptLength int    `env:"MAX_PROMPT_LENGTH" envDefault:"2000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

const minSecretKeyLen = 16

// Load reads the process environment (and a .env file, if present) once.
// The returned Config is handed to the components that need it.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.SecretKey) < minSecretKeyLen {
		return fmt.Errorf("SECRET_KEY must be at least %d bytes", minSecretKeyLen)
	}
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("GOOGLE_API_KEY must not be empty")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if c.GeminiTimeout <= 0 {
		return fmt.Errorf("GEMINI_TIMEOUT must be positive, got %s", c.GeminiTimeout)
	}
	if c.MaxPromptLength <= 0 {
		return fmt.Errorf("MAX_PROMPT_LENGTH must be positive, got %d", c.MaxPromptLength)
	}
	if strings.TrimSpace(c.GeminiModel) == "" {
		return fmt.Errorf("GEMINI_MODEL must not be empty")
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}

	return nil
}
