package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. YAML keys follow the display
// module's option names so an existing module config can be reused.
type Config struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	// UpdateInterval is the poll cadence in minutes.
	UpdateInterval float64 `yaml:"updateInterval"`
	// PollSchedule overrides UpdateInterval with a cron spec, e.g. "@every 30s".
	PollSchedule string `yaml:"pollSchedule"`

	APIBase      string   `yaml:"apiBase"`
	APIPort      int      `yaml:"apiPort"`
	APIEndpoint  string   `yaml:"apiEndpoint"`
	APITimeoutMs int      `yaml:"apiTimeoutMs"`
	Exclude      []string `yaml:"exclude"`

	// Display options are passed through to the renderer untouched.
	ShowStoppedRoom  bool   `yaml:"showStoppedRoom"`
	ShowAlbumArt     bool   `yaml:"showAlbumArt"`
	AlbumArtLocation string `yaml:"albumArtLocation"`
	ShowRoomName     bool   `yaml:"showRoomName"`
	AnimationSpeed   int    `yaml:"animationSpeed"`
	Position         string `yaml:"position"`
	Language         string `yaml:"language"`

	// AuthSecret enables bearer-token auth on mutating routes when set.
	AuthSecret         string `yaml:"authSecret"`
	AuthTokenExpirySec int    `yaml:"authTokenExpirySec"`
}

// Default returns the module defaults.
func Default() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		LogLevel:           "info",
		UpdateInterval:     0.5,
		APIBase:            "http://localhost",
		APIPort:            5005,
		APIEndpoint:        "zones",
		APITimeoutMs:       5000,
		Exclude:            []string{},
		ShowStoppedRoom:    true,
		ShowAlbumArt:       true,
		AlbumArtLocation:   "right",
		ShowRoomName:       true,
		AnimationSpeed:     1000,
		Position:           "top_right",
		Language:           "en",
		AuthTokenExpirySec: 2592000,
	}
}

// Load reads configuration from defaults, an optional YAML file named by
// CONFIG_FILE (or path, when non-empty), a .env file, and environment variables,
// in increasing order of precedence.
func Load(path string) (Config, error) {
	// A missing .env file is normal in production.
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Host = envString("HOST", cfg.Host)
	cfg.Port = envString("PORT", cfg.Port)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.UpdateInterval = envFloat("UPDATE_INTERVAL", cfg.UpdateInterval)
	cfg.PollSchedule = envString("POLL_SCHEDULE", cfg.PollSchedule)
	cfg.APIBase = envString("API_BASE", cfg.APIBase)
	cfg.APIPort = envInt("API_PORT", cfg.APIPort)
	cfg.APIEndpoint = envString("API_ENDPOINT", cfg.APIEndpoint)
	cfg.APITimeoutMs = envInt("API_TIMEOUT_MS", cfg.APITimeoutMs)
	if excluded, ok := envCSV("EXCLUDE"); ok {
		cfg.Exclude = excluded
	}
	cfg.ShowStoppedRoom = envBool("SHOW_STOPPED_ROOM", cfg.ShowStoppedRoom)
	cfg.ShowAlbumArt = envBool("SHOW_ALBUM_ART", cfg.ShowAlbumArt)
	cfg.AlbumArtLocation = envString("ALBUM_ART_LOCATION", cfg.AlbumArtLocation)
	cfg.ShowRoomName = envBool("SHOW_ROOM_NAME", cfg.ShowRoomName)
	cfg.AnimationSpeed = envInt("ANIMATION_SPEED", cfg.AnimationSpeed)
	cfg.Position = envString("POSITION", cfg.Position)
	cfg.Language = envString("LANGUAGE", cfg.Language)
	cfg.AuthSecret = envString("AUTH_SECRET", cfg.AuthSecret)
	cfg.AuthTokenExpirySec = envInt("AUTH_TOKEN_EXPIRY", cfg.AuthTokenExpirySec)
}

// Validate rejects settings the poller or renderer cannot work with.
func (cfg Config) Validate() error {
	if cfg.PollSchedule == "" && cfg.UpdateInterval <= 0 {
		return errors.New("UPDATE_INTERVAL must be greater than 0")
	}
	if strings.TrimSpace(cfg.APIBase) == "" {
		return errors.New("API_BASE must not be empty")
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return fmt.Errorf("API_PORT out of range: %d", cfg.APIPort)
	}
	switch cfg.AlbumArtLocation {
	case "left", "right":
	default:
		return fmt.Errorf("ALBUM_ART_LOCATION must be left or right, got %q", cfg.AlbumArtLocation)
	}
	if cfg.AuthSecret != "" && len(strings.TrimSpace(cfg.AuthSecret)) < 32 {
		return errors.New("AUTH_SECRET must be at least 32 characters")
	}
	return nil
}

// PollInterval converts UpdateInterval minutes to a duration.
func (cfg Config) PollInterval() time.Duration {
	return time.Duration(cfg.UpdateInterval * float64(time.Minute))
}

// ZonesURL is apiBase:apiPort/apiEndpoint.
func (cfg Config) ZonesURL() string {
	return strings.TrimRight(cfg.APIBase, "/") + ":" + strconv.Itoa(cfg.APIPort) + "/" + strings.TrimLeft(cfg.APIEndpoint, "/")
}

// APITimeout is the per-request timeout for the zones API.
func (cfg Config) APITimeout() time.Duration {
	return time.Duration(cfg.APITimeoutMs) * time.Millisecond
}

func envString(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}

func envInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return strings.EqualFold(val, "true")
}

func envCSV(key string) ([]string, bool) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return nil, false
	}
	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		result = append(result, trimmed)
	}
	return result, true
}
