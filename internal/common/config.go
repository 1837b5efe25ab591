package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	Environment string        `toml:"environment"` // "development" or "production"
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Upload      UploadConfig  `toml:"upload"`
	Explain     ExplainConfig `toml:"explain"`
	Gemini      GeminiConfig  `toml:"gemini"`
	Claude      ClaudeConfig  `toml:"claude"`
	LLM         LLMConfig     `toml:"llm"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger    BadgerConfig    `toml:"badger"`
	Retention RetentionConfig `toml:"retention"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Directory for the analysis database
	ResetOnStartup bool   `toml:"reset_on_startup"` // Wipe the database directory before opening
}

// RetentionConfig controls the purge of old analyses
type RetentionConfig struct {
	MaxAge   string `toml:"max_age"`  // Duration string, e.g. "2160h" (90 days). Empty or "0" disables the purge
	Schedule string `toml:"schedule"` // Standard 5-field cron expression (default: "0 3 * * *")
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // debug|info|warn|error
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Console/file timestamp format (default: "15:04:05")
}

// UploadConfig limits spreadsheet uploads
type UploadConfig struct {
	MaxBytes int64 `toml:"max_bytes"` // Maximum accepted upload size (default: 10 MB)
}

// ExplainConfig controls ratio explanation generation
type ExplainConfig struct {
	CallTimeout string `toml:"call_timeout"` // Per-ratio generation timeout (default: "20s")
	MaxWords    int    `toml:"max_words"`    // Word limit requested in the prompt (default: 120)
	Model       string `toml:"model"`        // Optional model override, e.g. "claude-haiku-4-5" or "gemini-2.5-flash"
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Default model (default: "gemini-2.5-flash")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum output tokens (default: 512)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.4)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Default model (default: "claude-haiku-4-5")
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 512)
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.4)
}

// LLMProvider represents the AI provider type
type LLMProvider string

const (
	// LLMProviderGemini uses Google Gemini API
	LLMProviderGemini LLMProvider = "gemini"
	// LLMProviderClaude uses Anthropic Claude API
	LLMProviderClaude LLMProvider = "claude"
)

// LLMConfig contains configuration shared by all providers
type LLMConfig struct {
	DefaultProvider   LLMProvider `toml:"default_provider"`    // "gemini" or "claude" (default: "gemini")
	RequestsPerMinute int         `toml:"requests_per_minute"` // Outbound request budget, 0 = unlimited (default: 60)
	MaxRetries        int         `toml:"max_retries"`         // Retries on rate-limit and transient errors (default: 2)
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
			Retention: RetentionConfig{
				MaxAge:   "2160h", // 90 days
				Schedule: "0 3 * * *",
			},
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout", "file"},
			TimeFormat: "15:04:05",
		},
		Upload: UploadConfig{
			MaxBytes: 10 << 20,
		},
		Explain: ExplainConfig{
			CallTimeout: "20s",
			MaxWords:    120,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-2.5-flash",
			MaxTokens:   512,
			Temperature: 0.4,
		},
		Claude: ClaudeConfig{
			Model:       "claude-haiku-4-5",
			MaxTokens:   512,
			Temperature: 0.4,
		},
		LLM: LLMConfig{
			DefaultProvider:   LLMProviderGemini,
			RequestsPerMinute: 60,
			MaxRetries:        2,
		},
	}
}

// LoadFromFile loads configuration from a single TOML file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority: defaults -> file1 -> file2 -> ... -> env.
// Later files override earlier ones; missing keys keep their previous value.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies KENGETAL_* environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("KENGETAL_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("KENGETAL_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("KENGETAL_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Storage configuration
	if path := os.Getenv("KENGETAL_STORAGE_PATH"); path != "" {
		config.Storage.Badger.Path = path
	}
	if maxAge := os.Getenv("KENGETAL_RETENTION_MAX_AGE"); maxAge != "" {
		config.Storage.Retention.MaxAge = maxAge
	}

	// Logging configuration
	if level := os.Getenv("KENGETAL_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("KENGETAL_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		config.Logging.Output = outputs
	}

	// Explanation configuration
	if timeout := os.Getenv("KENGETAL_EXPLAIN_TIMEOUT"); timeout != "" {
		config.Explain.CallTimeout = timeout
	}
	if model := os.Getenv("KENGETAL_EXPLAIN_MODEL"); model != "" {
		config.Explain.Model = model
	}

	// LLM configuration
	if provider := os.Getenv("KENGETAL_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = LLMProvider(strings.ToLower(provider))
	}
	if model := os.Getenv("KENGETAL_GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if model := os.Getenv("KENGETAL_CLAUDE_MODEL"); model != "" {
		config.Claude.Model = model
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	switch c.LLM.DefaultProvider {
	case LLMProviderGemini, LLMProviderClaude:
	default:
		return fmt.Errorf("invalid llm.default_provider %q: expected gemini or claude", c.LLM.DefaultProvider)
	}

	if _, err := c.ExplainCallTimeout(); err != nil {
		return err
	}
	if _, err := c.RetentionMaxAge(); err != nil {
		return err
	}
	if c.Storage.Retention.Schedule != "" {
		if err := ValidateRetentionSchedule(c.Storage.Retention.Schedule); err != nil {
			return err
		}
	}
	return nil
}

// ExplainCallTimeout parses explain.call_timeout
func (c *Config) ExplainCallTimeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.Explain.CallTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid explain.call_timeout %q: %w", c.Explain.CallTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("explain.call_timeout must be positive, got %s", d)
	}
	return d, nil
}

// RetentionMaxAge parses storage.retention.max_age. Zero means the purge is disabled.
func (c *Config) RetentionMaxAge() (time.Duration, error) {
	raw := strings.TrimSpace(c.Storage.Retention.MaxAge)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid storage.retention.max_age %q: %w", raw, err)
	}
	return d, nil
}

// ValidateRetentionSchedule validates a standard 5-field cron expression
func ValidateRetentionSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid storage.retention.schedule %q: %w", schedule, err)
	}
	return nil
}

// ResolveAPIKey resolves an API key with environment variable priority.
// Resolution order: KENGETAL_* variable -> provider's standard variable -> config value.
// Returns an empty string when no key is configured.
func ResolveAPIKey(provider LLMProvider, configValue string) string {
	envNames := map[LLMProvider][]string{
		LLMProviderGemini: {"KENGETAL_GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GEMINI_API_KEY"},
		LLMProviderClaude: {"KENGETAL_CLAUDE_API_KEY", "ANTHROPIC_API_KEY"},
	}

	for _, name := range envNames[provider] {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return strings.TrimSpace(configValue)
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
