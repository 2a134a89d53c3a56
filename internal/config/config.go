package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm" validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs" validate:"required"`
	Learner  LearnerConfig  `mapstructure:"learner" validate:"required"`
	Tasks    TasksConfig    `mapstructure:"tasks" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat              string `mapstructure:"log_format" validate:"required,oneof=json text"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DatabaseConfig contains all database-related configuration settings.
// For the sqlite driver URL is a file path or a "file:" DSN.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL                    string `mapstructure:"url" validate:"required"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=0"`
}

// Supported LLM providers
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

// LLMConfig contains all LLM integration related settings.
type LLMConfig struct {
	Provider          string  `mapstructure:"provider" validate:"required,oneof=gemini openai none"`
	GeminiAPIKey      string  `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`
	OpenAIAPIKey      string  `mapstructure:"openai_api_key" validate:"required_if=Provider openai"`
	OpenAIBaseURL     string  `mapstructure:"openai_base_url" validate:"omitempty,url"`
	ModelName         string  `mapstructure:"model_name"`
	Temperature       float32 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"gte=0"`
	RequestsPerMinute int     `mapstructure:"requests_per_minute" validate:"gte=0"`
}

// SRSConfig overrides the scheduler thresholds. Zero keeps the built-in default.
type SRSConfig struct {
	BatchLimit       int `mapstructure:"batch_limit" validate:"gte=0,lte=500"`
	WeakHours        int `mapstructure:"weak_hours" validate:"gte=0"`
	LearningHours    int `mapstructure:"learning_hours" validate:"gte=0"`
	KnownHours       int `mapstructure:"known_hours" validate:"gte=0"`
	GraduationStreak int `mapstructure:"graduation_streak" validate:"gte=0"`
}

// LearnerConfig seeds the profile the first time the store is opened.
type LearnerConfig struct {
	Name  string `mapstructure:"name" validate:"required"`
	Level string `mapstructure:"level" validate:"required,oneof=A1 A2 B1 B2 C1 C2"`
}

// TasksConfig sizes the background enrichment worker pool.
type TasksConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"gte=1,lte=32"`
	QueueSize   int `mapstructure:"queue_size" validate:"gte=1"`
}
