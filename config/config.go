package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the prepwise service
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Search    SearchConfig    `mapstructure:"search"`
	Quiz      QuizConfig      `mapstructure:"quiz"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains LLM provider configurations
type LLMConfig struct {
	Providers map[string]LLMProvider `mapstructure:"providers"`
	Routing   LLMRoutingConfig       `mapstructure:"routing"`
}

// LLMProvider represents a single LLM provider configuration
type LLMProvider struct {
	Type       string              `mapstructure:"type"` // openai-compatible
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Models     map[string]LLMModel `mapstructure:"models"`
	MaxRetries int                 `mapstructure:"max_retries"`
	Timeout    time.Duration       `mapstructure:"timeout"`
}

// LLMModel represents a specific model configuration
type LLMModel struct {
	Name        string  `mapstructure:"name"`
	APIName     string  `mapstructure:"api_name"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// LLMRoutingConfig defines which model to use for different tasks
type LLMRoutingConfig struct {
	Planning   string `mapstructure:"planning"`   // query planning with tool calls
	Synthesis  string `mapstructure:"synthesis"`  // final report synthesis
	Generation string `mapstructure:"generation"` // quiz question generation
	Fallback   string `mapstructure:"fallback"`
}

// ModelFor returns the routed model for a task, falling back when unset.
func (r LLMRoutingConfig) ModelFor(task string) string {
	var m string
	switch task {
	case "planning":
		m = r.Planning
	case "synthesis":
		m = r.Synthesis
	case "generation":
		m = r.Generation
	}
	if m == "" {
		m = r.Fallback
	}
	return m
}

// SearchConfig contains web search settings
type SearchConfig struct {
	Provider     string        `mapstructure:"provider"` // tavily, serper or brave
	TavilyAPIKey string        `mapstructure:"tavily_api_key"`
	SerperAPIKey string        `mapstructure:"serper_api_key"`
	BraveAPIKey  string        `mapstructure:"brave_api_key"`
	MaxResults   int           `mapstructure:"max_results"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// APIKey returns the key for the configured provider.
func (s SearchConfig) APIKey() string {
	switch s.Provider {
	case "serper":
		return s.SerperAPIKey
	case "brave":
		return s.BraveAPIKey
	default:
		return s.TavilyAPIKey
	}
}

// QuizConfig contains quiz behaviour settings
type QuizConfig struct {
	MaxQuestions       int           `mapstructure:"max_questions"`
	SecondsPerQuestion int           `mapstructure:"seconds_per_question"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
}

// StorageConfig contains storage and persistence settings
type StorageConfig struct {
	Redis    RedisConfig    `mapstructure:"redis"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PostgresConfig contains Postgres connection settings
type PostgresConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	User     string        `mapstructure:"user"`
	Password string        `mapstructure:"password"`
	DBName   string        `mapstructure:"dbname"`
	SSLMode  string        `mapstructure:"sslmode"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// DSN builds a postgres connection string, preferring the explicit URL.
func (p PostgresConfig) DSN() (string, error) {
	if strings.TrimSpace(p.URL) != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

// TelemetryConfig contains telemetry and monitoring settings
type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// LoadConfig loads config from file, applies env overrides and validates.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	setDefaults(v)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		v.AddConfigPath(exeDir)
		v.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("PREPWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// config file is optional; env + defaults are enough to run
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.default_timeout", "2m")

	v.SetDefault("server.address", ":8090")

	v.SetDefault("llm.routing.planning", "gpt-4o-mini")
	v.SetDefault("llm.routing.synthesis", "gpt-4o-mini")
	v.SetDefault("llm.routing.generation", "gpt-4o-mini")
	v.SetDefault("llm.routing.fallback", "gpt-4o-mini")

	v.SetDefault("search.provider", "tavily")
	v.SetDefault("search.max_results", 1)
	v.SetDefault("search.timeout", "15s")

	v.SetDefault("quiz.max_questions", 30)
	v.SetDefault("quiz.seconds_per_question", 60)
	v.SetDefault("quiz.session_ttl", "2h")

	v.SetDefault("storage.redis.port", "6379")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.timeout", "5s")

	v.SetDefault("storage.postgres.sslmode", "disable")
	v.SetDefault("storage.postgres.timeout", "10s")

	v.SetDefault("telemetry.enabled", true)
}

// overrideFromEnv maps conventional secret variables onto the config.
// Explicit env always wins over file values.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		for name, p := range cfg.LLM.Providers {
			if p.APIKey == "" {
				p.APIKey = key
				cfg.LLM.Providers[name] = p
			}
		}
	}
	if key := os.Getenv("TAVILY_API_KEY"); key != "" {
		cfg.Search.TavilyAPIKey = key
	}
	if key := os.Getenv("SERPER_API_KEY"); key != "" {
		cfg.Search.SerperAPIKey = key
	}
	if key := os.Getenv("BRAVE_SEARCH_KEY"); key != "" {
		cfg.Search.BraveAPIKey = key
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.Storage.Postgres.URL = url
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		cfg.Storage.Redis.Host = host
	}
	if port := os.Getenv("REDIS_PORT"); port != "" {
		cfg.Storage.Redis.Port = port
	}
	if pass := os.Getenv("REDIS_PASSWORD"); pass != "" {
		cfg.Storage.Redis.Password = pass
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Quiz.MaxQuestions <= 0 {
		return fmt.Errorf("quiz.max_questions must be > 0")
	}
	if cfg.Quiz.SecondsPerQuestion <= 0 {
		return fmt.Errorf("quiz.seconds_per_question must be > 0")
	}
	if cfg.Search.MaxResults <= 0 {
		cfg.Search.MaxResults = 1
	}
	switch cfg.Search.Provider {
	case "tavily", "serper", "brave":
	default:
		return fmt.Errorf("search.provider must be one of tavily, serper, brave (got %q)", cfg.Search.Provider)
	}
	if len(cfg.LLM.Providers) == 0 {
		cfg.LLM.Providers = map[string]LLMProvider{
			"openai": {
				Type:   "openai",
				APIKey: os.Getenv("OPENAI_API_KEY"),
				Models: map[string]LLMModel{
					"gpt-4o-mini": {Name: "gpt-4o-mini", MaxTokens: 4096, Temperature: 0.1},
				},
				Timeout: 60 * time.Second,
			},
		}
	}
	return nil
}
