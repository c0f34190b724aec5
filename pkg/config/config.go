// Package config loads mailmind configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mailmind-ai/mailmind/pkg/models"
)

// Config holds all mailmind configuration.
type Config struct {
	Ollama OllamaConfig                   `yaml:"ollama"`
	Tasks  map[models.TaskKind]TaskConfig `yaml:"tasks"`
	Cache  CacheConfig                    `yaml:"cache"`
	Audit  AuditConfig                    `yaml:"audit"`
	Gmail  GmailConfig                    `yaml:"gmail"`
	Log    LogConfig                      `yaml:"log"`
}

// OllamaConfig points at the local model runtime.
type OllamaConfig struct {
	URL        string        `yaml:"url"`
	Timeout    time.Duration `yaml:"timeout"`
	Confidence float64       `yaml:"confidence"`
	RetryWait  time.Duration `yaml:"retry_wait"`
}

// TaskConfig routes a task kind to a model and its acceptance threshold.
type TaskConfig struct {
	Model     string  `yaml:"model"`
	Threshold float64 `yaml:"threshold"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Path    string        `yaml:"path"`
	TTL     time.Duration `yaml:"ttl"`
}

// AuditConfig controls the interaction log.
type AuditConfig struct {
	Path string `yaml:"path"`
}

// GmailConfig locates OAuth material and scopes the unread query.
type GmailConfig struct {
	Credentials string `yaml:"credentials"`
	Token       string `yaml:"token"`
	Query       string `yaml:"query"`
	MaxResults  int64  `yaml:"max_results"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Ollama: OllamaConfig{
			URL:        "http://localhost:11434",
			Timeout:    2 * time.Minute,
			Confidence: 0.9,
			RetryWait:  2 * time.Second,
		},
		Tasks: map[models.TaskKind]TaskConfig{
			models.TaskReply:   {Model: "llama3", Threshold: 0.85},
			models.TaskSummary: {Model: "llama3", Threshold: 0.85},
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "mailmind-cache.db",
			TTL:     24 * time.Hour,
		},
		Audit: AuditConfig{
			Path: "mailmind-interactions.log",
		},
		Gmail: GmailConfig{
			Credentials: "credentials.json",
			Token:       "token.json",
			Query:       "is:unread -in:spam -in:trash",
			MaxResults:  10,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file and expands environment variables.
// Missing sections keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for kind, task := range c.Tasks {
		if !kind.Valid() {
			return fmt.Errorf("config: unknown task kind %q", kind)
		}
		if task.Threshold < 0 || task.Threshold > 1 {
			return fmt.Errorf("config: task %s threshold %v outside [0,1]", kind, task.Threshold)
		}
		if task.Model == "" {
			return fmt.Errorf("config: task %s has no model", kind)
		}
	}
	return nil
}

// Task returns the routing for kind, falling back to defaults when the
// config omits the task.
func (c *Config) Task(kind models.TaskKind) TaskConfig {
	if task, ok := c.Tasks[kind]; ok {
		return task
	}
	return Default().Tasks[kind]
}
