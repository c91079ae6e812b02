package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // usage.timezone must resolve without system zoneinfo

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. ROADMAP_SERVER_PORT for server.port.
const EnvPrefix = "ROADMAP"

// ErrDatabaseURLRequired is returned when the postgres usage backend is
// selected without a database URL.
var ErrDatabaseURLRequired = errors.New("database.url is required when usage.backend is postgres")

// secretKeys have no default and must be bound explicitly so that viper
// picks them up from the environment during Unmarshal.
var secretKeys = []string{
	"database.url",
	"llm.gemini_api_key",
	"research.perplexity_api_key",
	"mail.username",
	"mail.password",
}

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	cfg, err := LoadUnchecked()
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnchecked reads configuration like Load but skips validation.
// Maintenance commands use it and check only the settings they need.
func LoadUnchecked() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct tags and the cross-section rules that tags
// cannot express.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Usage.Backend == "postgres" && cfg.Database.URL == "" {
		return fmt.Errorf("config validation failed: %w", ErrDatabaseURLRequired)
	}

	if _, err := time.LoadLocation(cfg.Usage.Timezone); err != nil {
		return fmt.Errorf("config validation failed: invalid usage.timezone %q: %w", cfg.Usage.Timezone, err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("llm.model_name", "gemini-2.5-flash")
	v.SetDefault("llm.max_output_tokens", 4000)
	v.SetDefault("llm.request_timeout_seconds", 120)

	v.SetDefault("research.base_url", "https://api.perplexity.ai")
	v.SetDefault("research.model", "sonar-deep-research")
	v.SetDefault("research.max_tokens", 4096)
	v.SetDefault("research.temperature", 0.7)
	v.SetDefault("research.timeout_seconds", 300)

	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.from_name", "Goal-to-Market AI")

	v.SetDefault("usage.daily_limit", 10)
	v.SetDefault("usage.timezone", "America/Phoenix")
	v.SetDefault("usage.backend", "file")
	v.SetDefault("usage.file_path", "usage.json")

	v.SetDefault("roadmap.min_goal_length", 10)
	v.SetDefault("roadmap.max_resume_bytes", 500*1024)
	v.SetDefault("roadmap.max_resume_chars", 10000)
	v.SetDefault("roadmap.snippet_chars", 3000)
	v.SetDefault("roadmap.allowed_extensions", []string{"pdf", "docx", "txt"})

	v.SetDefault("task.worker_count", 2)
	v.SetDefault("task.queue_size", 100)

	v.SetDefault("jobs.retention_minutes", 24*60)
	v.SetDefault("jobs.sweep_interval_minutes", 10)

	v.SetDefault("ratelimit.requests_per_minute", 30)
	v.SetDefault("ratelimit.burst", 10)
}
