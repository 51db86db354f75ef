package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	envAPIKey   = "YOUTUBE_API_KEY"
	envDatabase = "COURSETUBE_DB"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Import      ImportConfig      `toml:"import"`
	Log         LogConfig         `toml:"log"`
}

// LogConfig controls file logging for long-running commands. An empty File logs to stderr only.
type LogConfig struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	YouTube YouTubeConfig `toml:"youtube"`
}

// YouTubeConfig contains YouTube Data API credentials.
//
// The OAuth fields are only needed for private playlists and are filled in by the auth command.
type YouTubeConfig struct {
	APIKey       string    `toml:"api_key"`
	AccessToken  string    `toml:"access_token"`
	BaseURL      string    `toml:"base_url"`
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	RefreshToken string    `toml:"refresh_token"`
	TokenExpiry  time.Time `toml:"token_expiry"`
}

// Token returns the stored OAuth token, or nil when no access token has been saved.
func (y YouTubeConfig) Token() *oauth2.Token {
	if y.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  y.AccessToken,
		RefreshToken: y.RefreshToken,
		Expiry:       y.TokenExpiry,
		TokenType:    "Bearer",
	}
}

// CanRefresh reports whether the stored token can be renewed without user interaction.
func (y YouTubeConfig) CanRefresh() bool {
	return y.RefreshToken != "" && y.ClientID != "" && y.ClientSecret != ""
}

// Update stores tok. Google omits the refresh token on renewal, so an empty one keeps the stored value.
func (y *YouTubeConfig) Update(tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("%w: token has no access token", ErrInvalidArgument)
	}
	y.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		y.RefreshToken = tok.RefreshToken
	}
	y.TokenExpiry = tok.Expiry
	return nil
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port pair the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ImportConfig tunes playlist ingestion.
type ImportConfig struct {
	Concurrency       int     `toml:"concurrency"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overrides file values with process environment variables.
//
// YOUTUBE_API_KEY replaces the API key and COURSETUBE_DB replaces the database path.
func (c *Config) ApplyEnv() {
	if key := strings.TrimSpace(os.Getenv(envAPIKey)); key != "" {
		c.Credentials.YouTube.APIKey = key
	}
	if path := strings.TrimSpace(os.Getenv(envDatabase)); path != "" {
		c.Database.Path = path
	}
}

// SaveConfig writes config to path as TOML, replacing the file.
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

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
