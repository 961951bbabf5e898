package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override [SpotifyConfig] values.
const (
	EnvClientID     = "SPOTIFY_CLIENT_ID"
	EnvClientSecret = "SPOTIFY_CLIENT_SECRET"
	EnvRefreshToken = "SPOTIFY_REFRESH_TOKEN"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	API         APIConfig         `toml:"api"`
	Database    DatabaseConfig    `toml:"database"`
	Watch       WatchConfig       `toml:"watch"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains the client registration and the long-lived refresh token.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RefreshToken string `toml:"refresh_token"`
}

// APIConfig describes the hosts and the bounded buffers used to talk to them.
type APIConfig struct {
	Host               string `toml:"host"`
	TokenURL           string `toml:"token_url"`
	TimeoutMS          int    `toml:"timeout_ms"`
	ResponseBufferSize int    `toml:"response_buffer_size"`
	HeaderBufferSize   int    `toml:"header_buffer_size"`
	Market             string `toml:"market"`
	// AuthStyle is where the refresh grant sends the client credentials: "params" (form body) or "header" (basic auth).
	AuthStyle string `toml:"auth_style"`
}

// Token endpoint client authentication styles.
const (
	AuthStyleParams = "params"
	AuthStyleHeader = "header"
)

// Timeout returns the per-call network timeout.
func (a APIConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutMS) * time.Millisecond
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// WatchConfig controls the polling watcher.
type WatchConfig struct {
	IntervalMS int     `toml:"interval_ms"`
	RateLimit  float64 `toml:"rate_limit"`
}

// Interval returns the polling interval.
func (w WatchConfig) Interval() time.Duration {
	return time.Duration(w.IntervalMS) * time.Millisecond
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML, replacing any existing file.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// LoadEnv loads .env files into the process environment. Missing files are ignored.
func LoadEnv(filenames ...string) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, name := range filenames {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		_ = godotenv.Load(name)
	}
}

// ApplyEnv overrides credentials with any SPOTIFY_* environment variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvClientID); v != "" {
		c.Credentials.Spotify.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Credentials.Spotify.ClientSecret = v
	}
	if v := os.Getenv(EnvRefreshToken); v != "" {
		c.Credentials.Spotify.RefreshToken = v
	}
}

// Validate checks that credentials are present and buffer sizes are usable.
func (c *Config) Validate() error {
	s := c.Credentials.Spotify
	switch {
	case s.ClientID == "":
		return fmt.Errorf("%w: client_id", ErrMissingCredentials)
	case s.ClientSecret == "":
		return fmt.Errorf("%w: client_secret", ErrMissingCredentials)
	case s.RefreshToken == "":
		return fmt.Errorf("%w: refresh_token", ErrMissingCredentials)
	}

	if c.API.ResponseBufferSize <= 0 {
		return fmt.Errorf("%w: api.response_buffer_size must be positive", ErrInvalidConfig)
	}
	if c.API.HeaderBufferSize <= 0 {
		return fmt.Errorf("%w: api.header_buffer_size must be positive", ErrInvalidConfig)
	}
	if c.API.TimeoutMS <= 0 {
		return fmt.Errorf("%w: api.timeout_ms must be positive", ErrInvalidConfig)
	}
	switch c.API.AuthStyle {
	case "", AuthStyleParams, AuthStyleHeader:
	default:
		return fmt.Errorf("%w: api.auth_style must be %q or %q", ErrInvalidConfig, AuthStyleParams, AuthStyleHeader)
	}
	if c.API.Host == "" || c.API.TokenURL == "" {
		return fmt.Errorf("%w: api.host and api.token_url are required", ErrInvalidConfig)
	}
	return nil
}
