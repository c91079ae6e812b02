package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	LLM       LLMConfig       `mapstructure:"llm" validate:"required"`
	Research  ResearchConfig  `mapstructure:"research" validate:"required"`
	Mail      MailConfig      `mapstructure:"mail" validate:"required"`
	Usage     UsageConfig     `mapstructure:"usage" validate:"required"`
	Roadmap   RoadmapConfig   `mapstructure:"roadmap" validate:"required"`
	Task      TaskConfig      `mapstructure:"task" validate:"required"`
	Jobs      JobsConfig      `mapstructure:"jobs" validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// DatabaseConfig contains database settings. The URL is only required when
// the usage counter is stored in PostgreSQL (checked by Load).
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// LLMConfig contains settings for the roadmap-completion model.
type LLMConfig struct {
	GeminiAPIKey          string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName             string `mapstructure:"model_name" validate:"required"`
	MaxOutputTokens       int    `mapstructure:"max_output_tokens" validate:"gt=0"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gt=0"`
}

// ResearchConfig contains settings for the market-intelligence model.
type ResearchConfig struct {
	PerplexityAPIKey string  `mapstructure:"perplexity_api_key" validate:"required"`
	BaseURL          string  `mapstructure:"base_url" validate:"required,url"`
	Model            string  `mapstructure:"model" validate:"required"`
	MaxTokens        int     `mapstructure:"max_tokens" validate:"gt=0"`
	Temperature      float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TimeoutSeconds   int     `mapstructure:"timeout_seconds" validate:"gt=0"`
}

// MailConfig contains SMTP settings for report delivery.
type MailConfig struct {
	Host     string `mapstructure:"host" validate:"required,hostname"`
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username" validate:"required,email"`
	Password string `mapstructure:"password"`
	FromName string `mapstructure:"from_name" validate:"required"`
}

// UsageConfig controls the daily request quota.
type UsageConfig struct {
	DailyLimit int    `mapstructure:"daily_limit" validate:"gt=0"`
	Timezone   string `mapstructure:"timezone" validate:"required"`
	Backend    string `mapstructure:"backend" validate:"required,oneof=file postgres"`
	FilePath   string `mapstructure:"file_path" validate:"required_if=Backend file"`
}

// RoadmapConfig contains input limits for roadmap generation.
type RoadmapConfig struct {
	MinGoalLength     int      `mapstructure:"min_goal_length" validate:"gt=0"`
	MaxResumeBytes    int64    `mapstructure:"max_resume_bytes" validate:"gt=0"`
	MaxResumeChars    int      `mapstructure:"max_resume_chars" validate:"gt=0"`
	SnippetChars      int      `mapstructure:"snippet_chars" validate:"gt=0"`
	AllowedExtensions []string `mapstructure:"allowed_extensions" validate:"required,min=1"`
}

// TaskConfig contains settings for the background task runner.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gt=0"`
	QueueSize   int `mapstructure:"queue_size" validate:"gt=0"`
}

// JobsConfig controls retention of finished report jobs.
type JobsConfig struct {
	RetentionMinutes     int `mapstructure:"retention_minutes" validate:"gt=0"`
	SweepIntervalMinutes int `mapstructure:"sweep_interval_minutes" validate:"gt=0"`
}

// RateLimitConfig controls per-client throttling of the POST endpoints.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gt=0"`
	Burst             int `mapstructure:"burst" validate:"gt=0"`
}
