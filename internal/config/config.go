package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// Store backends
	StoreAuto   = ""
	StoreMemory = "memory"
	StoreRedis  = "redis"
	StoreGCS    = "gcs"

	// Editor pass providers
	ProviderXAI       = "xai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
)

// Config holds all configuration for the application
type Config struct {
	// Server settings
	Port    string `json:"port"`
	Host    string `json:"host"`
	SiteURL string `json:"site_url"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`

	// xAI (Grok) settings
	XAIAPIKey    string `json:"-"` // Don't expose in JSON
	XAIModel     string `json:"xai_model"`
	XAIBaseURL   string `json:"xai_base_url"`
	ModelTimeout int    `json:"model_timeout_seconds"`

	// Overall limit on one generation run, independent of the caller
	GenerationTimeout int `json:"generation_timeout_seconds"`

	// Editorial pass provider
	EditorProvider  string `json:"editor_provider"`
	AnthropicAPIKey string `json:"-"` // Don't expose in JSON
	AnthropicModel  string `json:"anthropic_model"`
	GeminiAPIKey    string `json:"-"` // Don't expose in JSON
	GeminiModel     string `json:"gemini_model"`

	// Authorization
	CronSecret      string   `json:"-"` // Don't expose in JSON
	TrustedOrigins  []string `json:"trusted_origins"`
	TrustedReferers []string `json:"trusted_referers"`

	// Store settings
	StoreBackend       string `json:"store_backend"`
	KVRestAPIURL       string `json:"-"`
	KVRestAPIToken     string `json:"-"`
	RedisURL           string `json:"-"`
	EditionBucket      string `json:"edition_bucket"`
	EditionPrefix      string `json:"edition_prefix"`
	GCSCredentialsFile string `json:"-"`

	// Scheduling (cron expression, UTC). Empty disables the in-process schedule.
	GenerateSchedule string `json:"generate_schedule"`

	// Slack settings
	SlackBotToken string `json:"-"` // Don't expose in JSON
	SlackChannel  string `json:"slack_channel"`

	Pipeline PipelineConfig `json:"pipeline"`
}

// PipelineConfig holds the generation pipeline tunables
type PipelineConfig struct {
	TopicCount    int    `json:"topic_count" yaml:"topicCount"`
	MaxArticles   int    `json:"max_articles" yaml:"maxArticles"`
	BatchSize     int    `json:"batch_size" yaml:"batchSize"`
	BatchDelayMS  int    `json:"batch_delay_ms" yaml:"batchDelayMs"`
	FactCheckTopK int    `json:"fact_check_top_k" yaml:"factCheckTopK"`
	WordTarget    string `json:"word_target" yaml:"wordTarget"`
}

// fileConfig is the optional YAML file referenced by EDITION_CONFIG
type fileConfig struct {
	SiteURL          string          `yaml:"siteUrl"`
	XAIModel         string          `yaml:"xaiModel"`
	EditorProvider   string          `yaml:"editorProvider"`
	AnthropicModel   string          `yaml:"anthropicModel"`
	GeminiModel      string          `yaml:"geminiModel"`
	TrustedOrigins   []string        `yaml:"trustedOrigins"`
	TrustedReferers  []string        `yaml:"trustedReferers"`
	GenerateSchedule *string         `yaml:"generateSchedule"`
	SlackChannel     string          `yaml:"slackChannel"`
	Pipeline         *filePipeline   `yaml:"pipeline"`
}

// filePipeline uses pointers so an explicit 0 in the file is kept
type filePipeline struct {
	TopicCount    *int    `yaml:"topicCount"`
	MaxArticles   *int    `yaml:"maxArticles"`
	BatchSize     *int    `yaml:"batchSize"`
	BatchDelayMS  *int    `yaml:"batchDelayMs"`
	FactCheckTopK *int    `yaml:"factCheckTopK"`
	WordTarget    *string `yaml:"wordTarget"`
}

// DefaultTrustedOrigins are the Origin fragments allowed to trigger
// generation without the shared secret.
var DefaultTrustedOrigins = []string{"localhost", "vercel.app", "the-american-standard"}

// DefaultTrustedReferers are the Referer fragments with the same bypass.
// The product fragment is accepted from Origin only.
var DefaultTrustedReferers = []string{"localhost", "vercel.app"}

// DefaultPipeline returns the stock pipeline tunables
func DefaultPipeline() PipelineConfig {
	return PipelineConfig{
		TopicCount:    10,
		MaxArticles:   8,
		BatchSize:     3,
		BatchDelayMS:  500,
		FactCheckTopK: 3,
		WordTarget:    "350-500",
	}
}

// Load reads configuration from environment variables, .env and the optional YAML file
func Load() (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	config := &Config{
		Port:             getEnvOrDefault("PORT", "8080"),
		Host:             getEnvOrDefault("HOST", "0.0.0.0"),
		SiteURL:          "https://the-american-standard.vercel.app",
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:        getEnvOrDefault("LOG_FORMAT", "json"),
		XAIModel:         "grok-3-latest",
		XAIBaseURL:       getEnvOrDefault("XAI_BASE_URL", "https://api.x.ai/v1"),
		ModelTimeout:     getEnvOrDefaultInt("MODEL_TIMEOUT_SECONDS", 120),
		EditorProvider:   ProviderXAI,
		AnthropicModel:   "claude-haiku-4-5",
		GeminiModel:      "gemini-2.5-flash",
		TrustedOrigins:   append([]string(nil), DefaultTrustedOrigins...),
		TrustedReferers:  append([]string(nil), DefaultTrustedReferers...),
		EditionPrefix:    getEnvOrDefault("EDITION_PREFIX", "kv/"),
		GenerateSchedule: "0 6 * * *",
		SlackChannel:     "#newsroom",
		Pipeline:         DefaultPipeline(),
	}
	config.GenerationTimeout = getEnvOrDefaultInt("GENERATION_TIMEOUT_SECONDS", 300)

	if path := os.Getenv("EDITION_CONFIG"); path != "" {
		if err := config.applyFile(path); err != nil {
			return nil, err
		}
	}

	config.applyEnv()

	return config, config.Validate()
}

// applyFile merges the YAML file over the defaults
func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if file.SiteURL != "" {
		c.SiteURL = file.SiteURL
	}
	if file.XAIModel != "" {
		c.XAIModel = file.XAIModel
	}
	if file.EditorProvider != "" {
		c.EditorProvider = file.EditorProvider
	}
	if file.AnthropicModel != "" {
		c.AnthropicModel = file.AnthropicModel
	}
	if file.GeminiModel != "" {
		c.GeminiModel = file.GeminiModel
	}
	if len(file.TrustedOrigins) > 0 {
		c.TrustedOrigins = file.TrustedOrigins
	}
	if len(file.TrustedReferers) > 0 {
		c.TrustedReferers = file.TrustedReferers
	}
	if file.GenerateSchedule != nil {
		c.GenerateSchedule = *file.GenerateSchedule
	}
	if file.SlackChannel != "" {
		c.SlackChannel = file.SlackChannel
	}
	if p := file.Pipeline; p != nil {
		setInt(&c.Pipeline.TopicCount, p.TopicCount)
		setInt(&c.Pipeline.MaxArticles, p.MaxArticles)
		setInt(&c.Pipeline.BatchSize, p.BatchSize)
		setInt(&c.Pipeline.BatchDelayMS, p.BatchDelayMS)
		setInt(&c.Pipeline.FactCheckTopK, p.FactCheckTopK)
		if p.WordTarget != nil {
			c.Pipeline.WordTarget = *p.WordTarget
		}
	}
	return nil
}

// setInt copies v into dst when the file set it, zero included
func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// applyEnv applies environment overrides; env always wins over the file
func (c *Config) applyEnv() {
	c.XAIAPIKey = os.Getenv("XAI_API_KEY")
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	c.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	c.CronSecret = os.Getenv("CRON_SECRET")
	c.KVRestAPIURL = os.Getenv("KV_REST_API_URL")
	c.KVRestAPIToken = os.Getenv("KV_REST_API_TOKEN")
	c.RedisURL = os.Getenv("REDIS_URL")
	c.StoreBackend = strings.ToLower(os.Getenv("STORE_BACKEND"))
	c.EditionBucket = os.Getenv("EDITION_BUCKET")
	c.GCSCredentialsFile = os.Getenv("GCS_CREDENTIALS_FILE")
	c.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")

	c.SiteURL = getEnvOrDefault("SITE_URL", c.SiteURL)
	c.XAIModel = getEnvOrDefault("XAI_MODEL", c.XAIModel)
	c.EditorProvider = strings.ToLower(getEnvOrDefault("EDITOR_PROVIDER", c.EditorProvider))
	c.AnthropicModel = getEnvOrDefault("ANTHROPIC_MODEL", c.AnthropicModel)
	c.GeminiModel = getEnvOrDefault("GEMINI_MODEL", c.GeminiModel)
	c.SlackChannel = getEnvOrDefault("SLACK_CHANNEL", c.SlackChannel)

	if value, ok := os.LookupEnv("GENERATE_SCHEDULE"); ok {
		c.GenerateSchedule = strings.TrimSpace(value)
	}
	if value := os.Getenv("TRUSTED_ORIGINS"); value != "" {
		c.TrustedOrigins = parseStringSlice(value)
	}
	if value := os.Getenv("TRUSTED_REFERERS"); value != "" {
		c.TrustedReferers = parseStringSlice(value)
	}

	c.Pipeline.TopicCount = getEnvOrDefaultInt("PIPELINE_TOPIC_COUNT", c.Pipeline.TopicCount)
	c.Pipeline.MaxArticles = getEnvOrDefaultInt("PIPELINE_MAX_ARTICLES", c.Pipeline.MaxArticles)
	c.Pipeline.BatchSize = getEnvOrDefaultInt("PIPELINE_BATCH_SIZE", c.Pipeline.BatchSize)
	c.Pipeline.BatchDelayMS = getEnvOrDefaultInt("PIPELINE_BATCH_DELAY_MS", c.Pipeline.BatchDelayMS)
	c.Pipeline.FactCheckTopK = getEnvOrDefaultInt("PIPELINE_FACT_CHECK_TOP_K", c.Pipeline.FactCheckTopK)
}

// Validate checks structural correctness. Missing credentials are not
// errors here: the health endpoint reports them and generation refuses to run.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreAuto, StoreMemory, StoreRedis:
	case StoreGCS:
		if c.EditionBucket == "" {
			return &ConfigError{Field: "EDITION_BUCKET", Message: "required when STORE_BACKEND=gcs"}
		}
	default:
		return &ConfigError{Field: "STORE_BACKEND", Message: "must be one of memory, redis, gcs"}
	}

	if c.StoreBackend == StoreRedis && c.RedisURL == "" && !c.HostedKVConfigured() {
		return &ConfigError{Field: "REDIS_URL", Message: "required when STORE_BACKEND=redis"}
	}

	switch c.EditorProvider {
	case ProviderXAI, ProviderAnthropic, ProviderGemini:
	default:
		return &ConfigError{Field: "EDITOR_PROVIDER", Message: "must be xai, anthropic or gemini"}
	}

	if c.ModelTimeout <= 0 {
		return &ConfigError{Field: "MODEL_TIMEOUT_SECONDS", Message: "must be positive"}
	}
	if c.GenerationTimeout <= 0 {
		return &ConfigError{Field: "GENERATION_TIMEOUT_SECONDS", Message: "must be positive"}
	}

	p := c.Pipeline
	if p.TopicCount < 1 {
		return &ConfigError{Field: "pipeline.topicCount", Message: "must be at least 1"}
	}
	if p.MaxArticles < 1 {
		return &ConfigError{Field: "pipeline.maxArticles", Message: "must be at least 1"}
	}
	if p.BatchSize < 1 {
		return &ConfigError{Field: "pipeline.batchSize", Message: "must be at least 1"}
	}
	if p.BatchDelayMS < 0 {
		return &ConfigError{Field: "pipeline.batchDelayMs", Message: "must not be negative"}
	}
	if p.FactCheckTopK < 0 {
		return &ConfigError{Field: "pipeline.factCheckTopK", Message: "must not be negative"}
	}
	return nil
}

// HostedKVConfigured reports whether both hosted KV connection values are present
func (c *Config) HostedKVConfigured() bool {
	return c.KVRestAPIURL != "" && c.KVRestAPIToken != ""
}

// ModelConfigured reports whether the model API key is present
func (c *Config) ModelConfigured() bool {
	return c.XAIAPIKey != ""
}

// SlackConfigured reports whether Slack notifications are enabled
func (c *Config) SlackConfigured() bool {
	return c.SlackBotToken != ""
}

// getEnvOrDefault returns environment variable value or default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default if not set
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// parseStringSlice parses comma-separated string into slice
func parseStringSlice(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
