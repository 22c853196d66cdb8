// Package config provides environment-driven configuration for sopforge.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultPort           = "8080"
	DefaultMaxTokens      = 2000
	DefaultTemperature    = 0.7
	DefaultTimeoutSeconds = 30
	DefaultRetryAttempts  = 3
	DefaultCacheTTLHours  = 24
	DefaultCacheBackend   = "disk"
	DefaultCacheDir       = ".cache/sections"
	DefaultOutputDir      = "outputs"
	DefaultConcurrency    = 4
	DefaultMetricsPath    = "/metrics"
)

// DefaultTemplateTypes is the fixed set of template types a batch run covers
// when none are requested explicitly.
var DefaultTemplateTypes = []string{"restaurant", "healthcare", "it-onboarding", "customer-service"}

// ProviderOrder is the fixed priority order for the generation chain. It is
// a configuration decision, not an algorithmic one: the chain tries these
// names front to back and skips entries without credentials.
var ProviderOrder = []string{"groq", "huggingface", "together", "openrouter"}

// ProviderConfig holds one provider's credentials and model selection.
// A provider with an empty or placeholder API key is disabled.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Enabled reports whether the provider has usable credentials. Placeholder
// values from .env templates ("your_..._here") count as absent.
func (p ProviderConfig) Enabled() bool {
	key := strings.TrimSpace(p.APIKey)
	if key == "" {
		return false
	}
	return !strings.HasPrefix(key, "your_") || !strings.HasSuffix(key, "_here")
}

// LLMConfig holds the request parameters shared by all providers.
type LLMConfig struct {
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
	RetryAttempts int
}

// CacheConfig selects and tunes the content cache backend.
type CacheConfig struct {
	Backend  string // "memory", "disk" or "redis"
	Dir      string // disk backend root
	TTL      time.Duration
	RedisURL string
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Port      string
	MasterKey string
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled  bool
	Endpoint string
}

// NotifyConfig holds email and webhook notification settings. Notifications
// are skipped entirely when the relevant fields are empty.
type NotifyConfig struct {
	SMTPServer   string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	Recipient    string
	WebhookURL   string
}

// BatchConfig tunes the pipeline orchestrator.
type BatchConfig struct {
	Concurrency   int
	TemplateTypes []string
}

// ScheduleConfig holds cron expressions for the automation scheduler.
type ScheduleConfig struct {
	Daily       string
	WeeklyForce string
	HealthCheck string
}

// GenerationConfig holds generator behavior flags.
type GenerationConfig struct {
	UseHardcodedContent bool
	Version             string
}

// Config is the full application configuration.
type Config struct {
	Server     ServerConfig
	LLM        LLMConfig
	Providers  map[string]ProviderConfig
	Cache      CacheConfig
	Generation GenerationConfig
	OutputDir  string
	Metrics    MetricsConfig
	Notify     NotifyConfig
	Batch      BatchConfig
	Schedule   ScheduleConfig
}

// EnabledProviders returns the configured provider names in priority order,
// skipping entries without valid credentials.
func (c *Config) EnabledProviders() []string {
	var out []string
	for _, name := range ProviderOrder {
		if p, ok := c.Providers[name]; ok && p.Enabled() {
			out = append(out, name)
		}
	}
	return out
}

// Load reads configuration from the environment, with an optional .env file
// overlay for local development.
func Load() (*Config, error) {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("LLM_MAX_TOKENS", DefaultMaxTokens)
	v.SetDefault("LLM_TEMPERATURE", DefaultTemperature)
	v.SetDefault("LLM_TIMEOUT", DefaultTimeoutSeconds)
	v.SetDefault("LLM_RETRY_ATTEMPTS", DefaultRetryAttempts)
	v.SetDefault("CACHE_BACKEND", DefaultCacheBackend)
	v.SetDefault("CACHE_DIR", DefaultCacheDir)
	v.SetDefault("CACHE_DURATION_HOURS", DefaultCacheTTLHours)
	v.SetDefault("LOCAL_STORAGE_PATH", DefaultOutputDir)
	v.SetDefault("BATCH_CONCURRENCY", DefaultConcurrency)
	v.SetDefault("METRICS_ENDPOINT", DefaultMetricsPath)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("GENERATOR_VERSION", "2.0")
	v.SetDefault("SCHEDULE_DAILY", "0 2 * * *")
	v.SetDefault("SCHEDULE_WEEKLY_FORCE", "0 1 * * 0")
	v.SetDefault("SCHEDULE_HEALTH_CHECK", "0 */6 * * *")

	v.SetDefault("GROQ_MODEL", "llama-3.1-70b-versatile")
	v.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	v.SetDefault("HUGGINGFACE_MODEL", "microsoft/DialoGPT-large")
	v.SetDefault("HUGGINGFACE_BASE_URL", "https://api-inference.huggingface.co/models")
	v.SetDefault("TOGETHER_MODEL", "meta-llama/Llama-3-70b-chat-hf")
	v.SetDefault("TOGETHER_BASE_URL", "https://api.together.xyz/v1")
	v.SetDefault("OPENROUTER_MODEL", "deepseek/deepseek-chat")
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")

	cfg := &Config{
		Server: ServerConfig{
			Port:      v.GetString("PORT"),
			MasterKey: v.GetString("SOPFORGE_MASTER_KEY"),
		},
		LLM: LLMConfig{
			MaxTokens:     v.GetInt("LLM_MAX_TOKENS"),
			Temperature:   v.GetFloat64("LLM_TEMPERATURE"),
			Timeout:       time.Duration(v.GetInt("LLM_TIMEOUT")) * time.Second,
			RetryAttempts: v.GetInt("LLM_RETRY_ATTEMPTS"),
		},
		Providers: map[string]ProviderConfig{
			"groq": {
				APIKey:  v.GetString("GROQ_API_KEY"),
				Model:   v.GetString("GROQ_MODEL"),
				BaseURL: v.GetString("GROQ_BASE_URL"),
			},
			"huggingface": {
				APIKey:  v.GetString("HUGGINGFACE_API_TOKEN"),
				Model:   v.GetString("HUGGINGFACE_MODEL"),
				BaseURL: v.GetString("HUGGINGFACE_BASE_URL"),
			},
			"together": {
				APIKey:  v.GetString("TOGETHER_API_KEY"),
				Model:   v.GetString("TOGETHER_MODEL"),
				BaseURL: v.GetString("TOGETHER_BASE_URL"),
			},
			"openrouter": {
				APIKey:  v.GetString("OPENROUTER_API_KEY"),
				Model:   v.GetString("OPENROUTER_MODEL"),
				BaseURL: v.GetString("OPENROUTER_BASE_URL"),
			},
		},
		Cache: CacheConfig{
			Backend:  v.GetString("CACHE_BACKEND"),
			Dir:      v.GetString("CACHE_DIR"),
			TTL:      time.Duration(v.GetInt("CACHE_DURATION_HOURS")) * time.Hour,
			RedisURL: v.GetString("REDIS_URL"),
		},
		Generation: GenerationConfig{
			UseHardcodedContent: v.GetBool("USE_HARDCODED_CONTENT"),
			Version:             v.GetString("GENERATOR_VERSION"),
		},
		OutputDir: v.GetString("LOCAL_STORAGE_PATH"),
		Metrics: MetricsConfig{
			Enabled:  v.GetBool("METRICS_ENABLED"),
			Endpoint: v.GetString("METRICS_ENDPOINT"),
		},
		Notify: NotifyConfig{
			SMTPServer:   v.GetString("SMTP_SERVER"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			Recipient:    v.GetString("NOTIFICATION_EMAIL"),
			WebhookURL:   v.GetString("SLACK_WEBHOOK_URL"),
		},
		Batch: BatchConfig{
			Concurrency:   v.GetInt("BATCH_CONCURRENCY"),
			TemplateTypes: templateTypes(v.GetString("TEMPLATE_TYPES")),
		},
		Schedule: ScheduleConfig{
			Daily:       v.GetString("SCHEDULE_DAILY"),
			WeeklyForce: v.GetString("SCHEDULE_WEEKLY_FORCE"),
			HealthCheck: v.GetString("SCHEDULE_HEALTH_CHECK"),
		},
	}

	return cfg, nil
}

// templateTypes parses a comma-separated override list, falling back to the
// default template set.
func templateTypes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		out := make([]string, len(DefaultTemplateTypes))
		copy(out, DefaultTemplateTypes)
		return out
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
