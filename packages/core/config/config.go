package config

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config represents the hookshot configuration
type Config struct {
	BaseURL         string            `json:"baseURL,omitempty"`
	Database        string            `json:"database,omitempty"`
	FixturesDir     string            `json:"fixturesDir,omitempty"`    // {integration} is replaced
	ImageDir        string            `json:"imageDir,omitempty"`       // {integration} is replaced
	AdminEmail      string            `json:"adminEmail,omitempty"`     // owner of every bot
	BotAPIKey       string            `json:"botAPIKey,omitempty"`      // placeholder credential for bots
	CaptureCommand  []string          `json:"captureCommand,omitempty"` // argv template
	Timeout         int               `json:"timeout,omitempty"`        // milliseconds, 0 waits forever
	CaptureTimeout  int               `json:"captureTimeout,omitempty"` // milliseconds, 0 waits forever
	CaptureWorkDir  string            `json:"captureWorkDir,omitempty"` // cwd of the capture command
	ValidateSSL     *bool             `json:"validateSSL,omitempty"`
	Proxy           string            `json:"proxy,omitempty"`
	FollowRedirects *bool             `json:"followRedirects,omitempty"`
	MaxRedirects    int               `json:"maxRedirects,omitempty"`
	Headers         map[string]string `json:"headers,omitempty"` // sent with every replay, fixture headers win
	Verbose         *bool             `json:"verbose,omitempty"`
	NoColor         *bool             `json:"noColor,omitempty"`
	Notify          *NotifyConfig     `json:"notify,omitempty"`
	Serve           *ServeConfig      `json:"serve,omitempty"`
}

// NotifyConfig configures where bot creation is announced
type NotifyConfig struct {
	SlackWebhook string `json:"slackWebhook,omitempty"`
	SlackChannel string `json:"slackChannel,omitempty"`
	TeamsWebhook string `json:"teamsWebhook,omitempty"`
}

// ServeConfig configures the development webhook receiver
type ServeConfig struct {
	Port      int     `json:"port,omitempty"`
	RateLimit float64 `json:"rateLimit,omitempty"` // requests per second, 0 disables
	Burst     int     `json:"burst,omitempty"`
	// MaxPayloadSize is the largest accepted webhook body in bytes, 0 keeps
	// the server default
	MaxPayloadSize int64 `json:"maxPayloadSize,omitempty"`
}

// boolPtr returns a pointer to a bool value
func boolPtr(b bool) *bool {
	return &b
}

// getBool returns the value of a bool pointer, or the default if nil
func getBool(b *bool, defaultVal bool) bool {
	if b == nil {
		return defaultVal
	}
	return *b
}

// GetValidateSSL returns the validate SSL setting, defaulting to true
func (c *Config) GetValidateSSL() bool {
	return getBool(c.ValidateSSL, true)
}

// GetFollowRedirects returns the follow redirects setting, defaulting to true
func (c *Config) GetFollowRedirects() bool {
	return getBool(c.FollowRedirects, true)
}

// GetVerbose returns the verbose setting, defaulting to false
func (c *Config) GetVerbose() bool {
	return getBool(c.Verbose, false)
}

// GetNoColor returns the no color setting, defaulting to false
func (c *Config) GetNoColor() bool {
	return getBool(c.NoColor, false)
}

// TimeoutDuration returns the replay request timeout, 0 meaning none
func (c *Config) TimeoutDuration() time.Duration {
	return time.Duration(c.Timeout) * time.Millisecond
}

// CaptureTimeoutDuration returns the capture process timeout, 0 meaning none
func (c *Config) CaptureTimeoutDuration() time.Duration {
	return time.Duration(c.CaptureTimeout) * time.Millisecond
}

// FixturesDirFor returns the fixtures directory of an integration
func (c *Config) FixturesDirFor(integration string) string {
	return expandIntegration(c.FixturesDir, integration)
}

// ImageDirFor returns the default screenshot directory of an integration
func (c *Config) ImageDirFor(integration string) string {
	return expandIntegration(c.ImageDir, integration)
}

func expandIntegration(template, integration string) string {
	return filepath.FromSlash(strings.ReplaceAll(template, "{integration}", integration))
}

// ConfigFilenames contains the possible config file names
var ConfigFilenames = []string{
	".hookshot.config.json",
	"hookshot.config.json",
	".hookshotrc",
	".hookshotrc.json",
}

// LoadConfig loads configuration from the specified path or searches for config files
func LoadConfig(path string) (*Config, error) {
	if path != "" {
		return loadConfigFromFile(path)
	}

	// Search for config file in current directory
	return FindAndLoadConfig(".")
}

// FindAndLoadConfig searches for a config file in the given directory
func FindAndLoadConfig(dir string) (*Config, error) {
	for _, filename := range ConfigFilenames {
		configPath := filepath.Join(dir, filename)
		if _, err := os.Stat(configPath); err == nil {
			return loadConfigFromFile(configPath)
		}
	}

	// Return defaults if no config file found
	return DefaultConfig(), nil
}

// loadConfigFromFile loads configuration from a specific file
func loadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fileConfig Config
	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, err
	}

	return DefaultConfig().Merge(&fileConfig), nil
}

// Merge merges another config into this one, with other taking precedence
func (c *Config) Merge(other *Config) *Config {
	if other == nil {
		return c
	}

	result := *c // Copy

	if other.BaseURL != "" {
		result.BaseURL = other.BaseURL
	}
	if other.Database != "" {
		result.Database = other.Database
	}
	if other.FixturesDir != "" {
		result.FixturesDir = other.FixturesDir
	}
	if other.ImageDir != "" {
		result.ImageDir = other.ImageDir
	}
	if other.AdminEmail != "" {
		result.AdminEmail = other.AdminEmail
	}
	if other.BotAPIKey != "" {
		result.BotAPIKey = other.BotAPIKey
	}
	if len(other.CaptureCommand) > 0 {
		result.CaptureCommand = append([]string(nil), other.CaptureCommand...)
	}
	if other.Timeout > 0 {
		result.Timeout = other.Timeout
	}
	if other.CaptureTimeout > 0 {
		result.CaptureTimeout = other.CaptureTimeout
	}
	if other.CaptureWorkDir != "" {
		result.CaptureWorkDir = other.CaptureWorkDir
	}
	if other.Proxy != "" {
		result.Proxy = other.Proxy
	}
	if other.MaxRedirects > 0 {
		result.MaxRedirects = other.MaxRedirects
	}
	if len(other.Headers) > 0 {
		headers := maps.Clone(result.Headers)
		if headers == nil {
			headers = make(map[string]string, len(other.Headers))
		}
		maps.Copy(headers, other.Headers)
		result.Headers = headers
	}

	// Boolean flags - only override if explicitly set in other config
	if other.ValidateSSL != nil {
		result.ValidateSSL = other.ValidateSSL
	}
	if other.FollowRedirects != nil {
		result.FollowRedirects = other.FollowRedirects
	}
	if other.Verbose != nil {
		result.Verbose = other.Verbose
	}
	if other.NoColor != nil {
		result.NoColor = other.NoColor
	}

	if other.Notify != nil {
		merged := NotifyConfig{}
		if result.Notify != nil {
			merged = *result.Notify
		}
		if other.Notify.SlackWebhook != "" {
			merged.SlackWebhook = other.Notify.SlackWebhook
		}
		if other.Notify.SlackChannel != "" {
			merged.SlackChannel = other.Notify.SlackChannel
		}
		if other.Notify.TeamsWebhook != "" {
			merged.TeamsWebhook = other.Notify.TeamsWebhook
		}
		result.Notify = &merged
	}

	if other.Serve != nil {
		merged := ServeConfig{}
		if result.Serve != nil {
			merged = *result.Serve
		}
		if other.Serve.Port > 0 {
			merged.Port = other.Serve.Port
		}
		if other.Serve.RateLimit > 0 {
			merged.RateLimit = other.Serve.RateLimit
		}
		if other.Serve.Burst > 0 {
			merged.Burst = other.Serve.Burst
		}
		if other.Serve.MaxPayloadSize > 0 {
			merged.MaxPayloadSize = other.Serve.MaxPayloadSize
		}
		result.Serve = &merged
	}

	return &result
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
