package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	ApplyModeBatched = "batched"
	ApplyModeSingle  = "single"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Migration   MigrationConfig   `toml:"migration"`
	Matching    MatchingConfig    `toml:"matching"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials.
//
// Tokens are obtained outside of ytmigrate; the refresh token lets the client renew expired access tokens.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

// Map returns the credentials in the shape expected by services.NewSpotifyService.
func (s SpotifyConfig) Map() map[string]string {
	return map[string]string{
		"client_id":     s.ClientID,
		"client_secret": s.ClientSecret,
		"redirect_uri":  s.RedirectURI,
		"access_token":  s.AccessToken,
		"refresh_token": s.RefreshToken,
	}
}

// YouTubeConfig contains YouTube Music proxy settings.
type YouTubeConfig struct {
	ProxyURL       string  `toml:"proxy_url"`
	HeadersPath    string  `toml:"headers_path"`
	SearchRate     float64 `toml:"search_rate"`     // searches per second, 0 disables limiting
	TimeoutSeconds int     `toml:"timeout_seconds"` // per HTTP request
}

// Timeout returns the per-request timeout for proxy calls.
func (y YouTubeConfig) Timeout() time.Duration {
	return time.Duration(y.TimeoutSeconds) * time.Second
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// MigrationConfig holds destination playlist defaults and pacing for destination writes.
type MigrationConfig struct {
	PlaylistName        string `toml:"playlist_name"`
	PlaylistDescription string `toml:"playlist_description"`
	ApplyMode           string `toml:"apply_mode"`
	BatchSize           int    `toml:"batch_size"`
	BatchDelayMS        int    `toml:"batch_delay_ms"`
	ItemDelayMS         int    `toml:"item_delay_ms"`
	RecordHistory       bool   `toml:"record_history"`
}

// BatchDelay is the pause between two batched add calls.
func (m MigrationConfig) BatchDelay() time.Duration {
	return time.Duration(m.BatchDelayMS) * time.Millisecond
}

// ItemDelay is the pause after each single-item add call.
func (m MigrationConfig) ItemDelay() time.Duration {
	return time.Duration(m.ItemDelayMS) * time.Millisecond
}

// StageConfig holds the weights and acceptance threshold of a scored matching stage.
type StageConfig struct {
	TitleWeight    float64 `toml:"title_weight"`
	ArtistWeight   float64 `toml:"artist_weight"`
	DurationWeight float64 `toml:"duration_weight"`
	Threshold      float64 `toml:"threshold"`
}

// VideoConfig holds the video fallback duration tolerance in seconds.
type VideoConfig struct {
	DurationTolerance int `toml:"duration_tolerance"`
}

// MatchingConfig holds the per-stage matching policy.
type MatchingConfig struct {
	Strict  StageConfig `toml:"strict"`
	Relaxed StageConfig `toml:"relaxed"`
	Video   VideoConfig `toml:"video"`
}

// LoadConfig reads a TOML configuration file and overlays it onto [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
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

// Validate checks values that would make a migration run misbehave.
func (c *Config) Validate() error {
	switch c.Migration.ApplyMode {
	case ApplyModeBatched, ApplyModeSingle:
	default:
		return fmt.Errorf("%w: apply_mode must be %q or %q, got %q", ErrInvalidConfig, ApplyModeBatched, ApplyModeSingle, c.Migration.ApplyMode)
	}

	if c.Migration.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be positive, got %d", ErrInvalidConfig, c.Migration.BatchSize)
	}
	if c.Migration.BatchDelayMS < 0 || c.Migration.ItemDelayMS < 0 {
		return fmt.Errorf("%w: delays cannot be negative", ErrInvalidConfig)
	}

	for name, stage := range map[string]StageConfig{"strict": c.Matching.Strict, "relaxed": c.Matching.Relaxed} {
		for _, w := range []float64{stage.TitleWeight, stage.ArtistWeight, stage.DurationWeight} {
			if w < 0 || w > 1 {
				return fmt.Errorf("%w: matching.%s weights must be within [0, 1]", ErrInvalidConfig, name)
			}
		}
	}

	if c.Matching.Video.DurationTolerance < 0 {
		return fmt.Errorf("%w: matching.video.duration_tolerance cannot be negative", ErrInvalidConfig)
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
