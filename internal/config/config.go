// Package config loads process-wide ambient settings exactly once at
// startup into an immutable struct that is threaded through every
// component, so business logic never reads the environment ad hoc.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

const (
	// ConfigDir is the directory name under ~/.config.
	ConfigDir = "aido"
	// PolicyFile is the policy file name.
	PolicyFile = "policy.json"
	// PromptFile is the base system prompt file name.
	PromptFile = "prompt.md"
	// HistoryFile is the persisted conversation log file name.
	HistoryFile = "history.json"
)

// Runtime holds the ambient settings for one invocation. RawDepth stays a
// string so a missing or non-numeric depth can fall back to 0 instead of
// failing the whole parse.
type Runtime struct {
	APIKey        string `env:"AIDO_API_KEY"`
	BaseURL       string `env:"AIDO_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	TimeoutSec    int    `env:"AIDO_HTTP_TIMEOUT" envDefault:"60"`
	PacingMS      int    `env:"AIDO_PACING_MS" envDefault:"0"`
	RetryAttempts int    `env:"AIDO_RETRY_ATTEMPTS" envDefault:"5"`
	MaxBackoffSec int    `env:"AIDO_MAX_BACKOFF" envDefault:"20"`
	RawDepth      string `env:"AIDO_DEPTH"`
	ConfigHome    string `env:"AIDO_CONFIG_DIR"`
}

// Load parses the environment into a Runtime.
func Load() (*Runtime, error) {
	cfg := &Runtime{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// ValidateCredential fails when the secret credential is absent. This is
// checked before any remote call is attempted.
func (r *Runtime) ValidateCredential() error {
	if r.APIKey == "" {
		return fmt.Errorf("AIDO_API_KEY environment variable is required")
	}
	return nil
}

// configDir resolves the configuration directory, honoring the explicit
// override used by tests.
func (r *Runtime) configDir() (string, error) {
	if r.ConfigHome != "" {
		return r.ConfigHome, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", ConfigDir), nil
}

// PolicyPath returns the policy file location.
func (r *Runtime) PolicyPath() (string, error) {
	dir, err := r.configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PolicyFile), nil
}

// PromptPath returns the base prompt file location.
func (r *Runtime) PromptPath() (string, error) {
	dir, err := r.configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, PromptFile), nil
}

// HistoryPath returns the persist-mode history file location.
func (r *Runtime) HistoryPath() (string, error) {
	dir, err := r.configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HistoryFile), nil
}
