// Package config provides configuration loading and validation for the
// notifier CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults for the fetch-validate-deliver run.
const (
	DefaultPageURL          = "https://toto.bg/"
	DefaultSelector         = ".jackpot .sum"
	DefaultMaxRetries       = 3
	DefaultBaseDelayMs      = 2000
	DefaultRequestTimeoutMs = 30000
)

// Environment variables holding the two required credentials.
const (
	EnvBotToken = "TELEGRAM_BOT_TOKEN"
	EnvChatID   = "TELEGRAM_CHAT_ID"
)

// MissingError reports a credential absent at startup. It is fatal before
// any pipeline stage runs.
type MissingError struct {
	Name string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("config error: %s is required", e.Name)
}

// Config holds everything a run needs. Credentials come from the
// environment; the rest can be overridden by a JSON config file or flags,
// so tests never touch process environment.
type Config struct {
	// Credentials, never read from the config file.
	BotToken string `json:"-" validate:"required"`
	ChatID   string `json:"-" validate:"required"`

	PageURL  string `json:"page_url,omitempty" validate:"required,url"`
	Selector string `json:"selector,omitempty" validate:"required"`

	MaxRetries       int `json:"max_retries,omitempty" validate:"min=0"`
	BaseDelayMs      int `json:"base_delay_ms,omitempty" validate:"min=0"`
	RequestTimeoutMs int `json:"request_timeout_ms,omitempty" validate:"min=1"`

	UseBrowser bool `json:"use_browser,omitempty"`
}

// Default returns the production defaults, without credentials.
func Default() Config {
	return Config{
		PageURL:          DefaultPageURL,
		Selector:         DefaultSelector,
		MaxRetries:       DefaultMaxRetries,
		BaseDelayMs:      DefaultBaseDelayMs,
		RequestTimeoutMs: DefaultRequestTimeoutMs,
	}
}

// FromEnv returns a Config carrying only the environment credentials.
func FromEnv() Config {
	return Config{
		BotToken: os.Getenv(EnvBotToken),
		ChatID:   os.Getenv(EnvChatID),
	}
}

// Load reads configuration overrides from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. Bool fields are not merged; flags always win for those.
func (c Config) MergeWithDefaults(defaults Config) Config {
	result := c

	if result.BotToken == "" {
		result.BotToken = defaults.BotToken
	}
	if result.ChatID == "" {
		result.ChatID = defaults.ChatID
	}
	if result.PageURL == "" {
		result.PageURL = defaults.PageURL
	}
	if result.Selector == "" {
		result.Selector = defaults.Selector
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.BaseDelayMs == 0 {
		result.BaseDelayMs = defaults.BaseDelayMs
	}
	if result.RequestTimeoutMs == 0 {
		result.RequestTimeoutMs = defaults.RequestTimeoutMs
	}

	return result
}

// Validate checks that the configuration is complete. A missing credential
// surfaces as *MissingError so the caller can report it as a fatal
// configuration problem.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, verr := range verrs {
			switch verr.Field() {
			case "BotToken":
				return &MissingError{Name: EnvBotToken}
			case "ChatID":
				return &MissingError{Name: EnvChatID}
			}
		}
		return fmt.Errorf("config error: invalid %s", verrs[0].Field())
	}

	return err
}

// BaseDelay returns the backoff base delay as a duration.
func (c Config) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMs) * time.Millisecond
}

// RequestTimeout returns the per-request timeout as a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}
