package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	AdminAPIKey string `yaml:"admin_api_key"`
	JWTSecret   string `yaml:"jwt_secret"`
	SecureAuth  bool   `yaml:"secure_auth"` // Secure flag on the admin session cookie
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // empty disables the content context
}

type RedisConfig struct {
	URL      string        `yaml:"url"` // empty selects the in-memory session store
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type AIConfig struct {
	GeminiKey    string        `yaml:"gemini_key"`
	GeminiURL    string        `yaml:"gemini_url"`
	OpenAIKey    string        `yaml:"openai_key"`
	DefaultModel string        `yaml:"default_model"`
	Timeout      time.Duration `yaml:"timeout"` // per generation call
}

// EngineConfig tunes the dialogue engine itself.
type EngineConfig struct {
	DatasetPath         string        `yaml:"dataset_path"`
	HistoryLimit        int           `yaml:"history_limit"` // turns re-sent on the free-form branch
	SessionCapacity     int           `yaml:"session_capacity"`
	SessionTTL          time.Duration `yaml:"session_ttl"`
	SweepInterval       time.Duration `yaml:"sweep_interval"`
	RephraseTemperature float64       `yaml:"rephrase_temperature"`
	FreeformTemperature float64       `yaml:"freeform_temperature"`
	RephraseMaxTokens   int           `yaml:"rephrase_max_tokens"`
	FreeformMaxTokens   int           `yaml:"freeform_max_tokens"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	AI       AIConfig       `yaml:"ai"`
	Engine   EngineConfig   `yaml:"engine"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gemini-2.0-flash"
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 20 * time.Second
	}
	if cfg.Engine.DatasetPath == "" {
		cfg.Engine.DatasetPath = "cjk_dataset.json"
	}
	if cfg.Engine.HistoryLimit <= 0 {
		cfg.Engine.HistoryLimit = 6
	}
	if cfg.Engine.SessionCapacity <= 0 {
		cfg.Engine.SessionCapacity = 1000
	}
	if cfg.Engine.SessionTTL <= 0 {
		cfg.Engine.SessionTTL = time.Hour
	}
	if cfg.Engine.SweepInterval <= 0 {
		cfg.Engine.SweepInterval = 10 * time.Minute
	}
	if cfg.Engine.RephraseTemperature <= 0 {
		cfg.Engine.RephraseTemperature = 0.2
	}
	if cfg.Engine.FreeformTemperature <= 0 {
		cfg.Engine.FreeformTemperature = 0.7
	}
	if cfg.Engine.RephraseMaxTokens <= 0 {
		cfg.Engine.RephraseMaxTokens = 150
	}
	if cfg.Engine.FreeformMaxTokens <= 0 {
		cfg.Engine.FreeformMaxTokens = 400
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = cfg.Engine.SessionTTL
	}

	// Minimal validation
	if cfg.AI.GeminiKey == "" && cfg.AI.OpenAIKey == "" && !dev {
		return nil, errors.New("ai.gemini_key or ai.openai_key is required outside dev mode")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
