package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Provider defaults.
const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"

	DefaultGroqBaseURL   = "https://api.groq.com/openai/v1"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultModel         = "llama-3.3-70b-versatile"
	DefaultTimeout       = 60 * time.Second
	DefaultMaxSteps      = 1000
)

// Settings is the typed application configuration.
type Settings struct {
	Model     ModelSettings
	Run       RunSettings
	Log       LogSettings
	Inventory InventorySettings
}

// ModelSettings selects and tunes the chat model.
type ModelSettings struct {
	Provider    string        `validate:"oneof=groq openai"`
	BaseURL     string        `validate:"required,url"`
	APIKey      string        `validate:"required"`
	Name        string        `validate:"required"`
	Temperature float64       `validate:"gte=0,lte=2"`
	MaxTokens   int           `validate:"gte=0"`
	Timeout     time.Duration `validate:"gt=0"`
}

// RunSettings bounds workflow runs. MaxSteps 0 disables the step limit.
type RunSettings struct {
	MaxSteps int `validate:"gte=0"`
	Verbose  bool
}

// LogSettings configures the slog handler.
type LogSettings struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=text json"`
}

// InventorySettings selects the hotel availability backend.
type InventorySettings struct {
	Driver string `validate:"oneof=memory sqlite postgres"`
	DSN    string `validate:"required_unless=Driver memory"`
}

var settingsValidator = validator.New(validator.WithRequiredStructEnabled())

// Load builds Settings from, in increasing precedence: defaults, the optional
// YAML or JSON file at path, and environment variables. A .env file in the
// working directory is loaded first if present.
func Load(path string) (*Settings, error) {
	if err := LoadEnv(); err != nil {
		return nil, err
	}

	cfg := New(nil)
	if path != "" {
		var err error
		if cfg, err = FromFile(path); err != nil {
			return nil, err
		}
	}

	s := FromConfig(cfg)
	if err := s.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// FromConfig reads Settings from a Config, filling defaults for missing keys.
func FromConfig(cfg Config) *Settings {
	model := cfg.Section("model")
	run := cfg.Section("run")
	log := cfg.Section("log")
	inv := cfg.Section("inventory")

	provider := strings.ToLower(model.String("provider", ProviderGroq))
	return &Settings{
		Model: ModelSettings{
			Provider:    provider,
			BaseURL:     model.String("base_url", defaultBaseURL(provider)),
			APIKey:      model.String("api_key", ""),
			Name:        model.String("name", DefaultModel),
			Temperature: model.Float("temperature", 0),
			MaxTokens:   model.Int("max_tokens", 0),
			Timeout:     model.Duration("timeout", DefaultTimeout),
		},
		Run: RunSettings{
			MaxSteps: run.Int("max_steps", DefaultMaxSteps),
			Verbose:  run.Bool("verbose", false),
		},
		Log: LogSettings{
			Level:  strings.ToLower(log.String("level", "info")),
			Format: strings.ToLower(log.String("format", "text")),
		},
		Inventory: InventorySettings{
			Driver: strings.ToLower(inv.String("driver", "memory")),
			DSN:    inv.String("dsn", ""),
		},
	}
}

func defaultBaseURL(provider string) string {
	if provider == ProviderOpenAI {
		return DefaultOpenAIBaseURL
	}
	return DefaultGroqBaseURL
}

// applyEnv overrides settings from environment variables.
// Malformed numeric or duration values are reported, not skipped.
func (s *Settings) applyEnv() error {
	if v := os.Getenv("CHATGRAPH_PROVIDER"); v != "" {
		wasDefault := s.Model.BaseURL == defaultBaseURL(s.Model.Provider)
		s.Model.Provider = strings.ToLower(v)
		if wasDefault {
			s.Model.BaseURL = defaultBaseURL(s.Model.Provider)
		}
	}

	keyVar := "GROQ_API_KEY"
	if s.Model.Provider == ProviderOpenAI {
		keyVar = "OPENAI_API_KEY"
	}
	s.Model.APIKey = getEnvWithDefault(keyVar, s.Model.APIKey)
	s.Model.Name = getEnvWithDefault("CHATGRAPH_MODEL", s.Model.Name)
	s.Model.BaseURL = getEnvWithDefault("CHATGRAPH_BASE_URL", s.Model.BaseURL)
	timeout, timeoutErr := getEnvAsDuration("CHATGRAPH_TIMEOUT", s.Model.Timeout)
	maxSteps, stepsErr := getEnvAsInt("CHATGRAPH_MAX_STEPS", s.Run.MaxSteps)
	s.Model.Timeout, s.Run.MaxSteps = timeout, maxSteps
	s.Log.Level = strings.ToLower(getEnvWithDefault("CHATGRAPH_LOG_LEVEL", s.Log.Level))
	s.Log.Format = strings.ToLower(getEnvWithDefault("CHATGRAPH_LOG_FORMAT", s.Log.Format))
	s.Inventory.Driver = strings.ToLower(getEnvWithDefault("CHATGRAPH_INVENTORY_DRIVER", s.Inventory.Driver))
	s.Inventory.DSN = getEnvWithDefault("CHATGRAPH_INVENTORY_DSN", s.Inventory.DSN)
	return errors.Join(timeoutErr, stepsErr)
}

// Validate checks the settings against their `validate` tags.
// Field failures are joined into a single error naming each field.
func (s *Settings) Validate() error {
	err := settingsValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %q check", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
}

// LogLevel returns the slog level for Log.Level.
func (s *Settings) LogLevel() slog.Level {
	switch s.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds a logger writing to w in the configured format and level.
func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.LogLevel()}
	if s.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %q is not an integer", key, valueStr)
	}
	return value, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil {
		return defaultValue, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
