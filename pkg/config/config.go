package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	ServiceName string `mapstructure:"SERVICE_NAME"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// StatsBomb open-data provider
	StatsBombBaseURL   string        `mapstructure:"STATSBOMB_BASE_URL"`
	ExternalAPITimeout time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`

	// Text generation (Gemini)
	GeminiAPIKey      string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel       string `mapstructure:"GEMINI_MODEL"`
	AIRateLimit       int    `mapstructure:"AI_RATE_LIMIT"`
	GenerationTimeout int    `mapstructure:"GENERATION_TIMEOUT"`

	// ReAct agent
	AgentMaxSteps int `mapstructure:"AGENT_MAX_STEPS"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVICE_NAME", "match-insights")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:8501")
	viper.SetDefault("STATSBOMB_BASE_URL", "https://raw.githubusercontent.com/statsbomb/open-data/master/data")
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "10s")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("AI_RATE_LIMIT", 5)          // requests per minute
	viper.SetDefault("GENERATION_TIMEOUT", 60)    // seconds
	viper.SetDefault("AGENT_MAX_STEPS", 10)

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	return &config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
