package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	ServerName   string `mapstructure:"server_name"`
	ServerPort   int    `mapstructure:"server_port"`
	Share        bool   `mapstructure:"share"`
	Backend      string `mapstructure:"backend"`
	OllamaHost   string `mapstructure:"ollama_host"`
	OllamaModel  string `mapstructure:"ollama_model"`
	ClaudeAPIKey string `mapstructure:"claude_api_key"`
	ClaudeModel  string `mapstructure:"claude_model"`
	DBPath       string `mapstructure:"db_path"`
	PhotoPath    string `mapstructure:"photo_path"`
	PromptFile   string `mapstructure:"prompt_file"`
	LogLevel     string `mapstructure:"log_level"`
	LogFile      string `mapstructure:"log_file"`
}

// Load reads configuration from the environment with fixed defaults.
// Every key is settable via the upper-cased env var of the same name
// (e.g. OLLAMA_HOST, SERVER_PORT).
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("server_name", "0.0.0.0")
	v.SetDefault("server_port", 7860)
	v.SetDefault("share", false)
	v.SetDefault("backend", "ollama")
	v.SetDefault("ollama_host", "http://localhost:11434")
	v.SetDefault("ollama_model", "qwen2.5vl:7b")
	v.SetDefault("claude_api_key", "")
	v.SetDefault("claude_model", "claude-3-5-sonnet-latest")
	v.SetDefault("db_path", "/data/fridgetetris.db")
	v.SetDefault("photo_path", "/data/photos")
	v.SetDefault("prompt_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.ServerPort < 1 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("server_port %d out of range", cfg.ServerPort)
	}

	return &cfg, nil
}

// ListenAddr combines the bind address and port into a net/http address.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerName, c.ServerPort)
}
