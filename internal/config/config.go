package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/viper"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// EnvPrefix prefixes environment overrides: MOMENTS_API_BASE_URL etc.
const EnvPrefix = "MOMENTS"

// Config is the persistent application configuration
type Config struct {
	API    APIConfig    `json:"api" mapstructure:"api"`
	Feed   FeedConfig   `json:"feed" mapstructure:"feed"`
	Input  InputConfig  `json:"input" mapstructure:"input"`
	UI     UIConfig     `json:"ui" mapstructure:"ui"`
	Server ServerConfig `json:"server" mapstructure:"server"`
	Store  StoreConfig  `json:"store" mapstructure:"store"`
	Log    LogConfig    `json:"log" mapstructure:"log"`
}

// APIConfig holds the feed service client settings
type APIConfig struct {
	BaseURL   string  `json:"base_url" mapstructure:"base_url"`
	TimeoutMs int     `json:"timeout_ms" mapstructure:"timeout_ms"`
	RateLimit float64 `json:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst     int     `json:"burst" mapstructure:"burst"`
}

// FeedConfig holds pagination settings
type FeedConfig struct {
	Targets           []string `json:"targets" mapstructure:"targets"` // "t" cycles through these
	PageSize          int      `json:"page_size" mapstructure:"page_size"`
	SubPageSize       int      `json:"sub_page_size" mapstructure:"sub_page_size"`
	PrefetchThreshold int      `json:"prefetch_threshold" mapstructure:"prefetch_threshold"`
}

// InputConfig holds gesture tuning
type InputConfig struct {
	WheelThreshold   float64 `json:"wheel_threshold" mapstructure:"wheel_threshold"`
	WheelNotchDelta  float64 `json:"wheel_notch_delta" mapstructure:"wheel_notch_delta"` // delta per terminal wheel event
	SmoothScrollMs   int     `json:"smooth_scroll_ms" mapstructure:"smooth_scroll_ms"`
	SwipeMinDistance float64 `json:"swipe_min_distance" mapstructure:"swipe_min_distance"`
	SwipeMinVelocity float64 `json:"swipe_min_velocity" mapstructure:"swipe_min_velocity"`
}

// UIConfig holds UI preferences
type UIConfig struct {
	Theme   string `json:"theme" mapstructure:"theme"`
	Animate bool   `json:"animate" mapstructure:"animate"` // spring-animate smooth scrolls
	Mouse   bool   `json:"mouse" mapstructure:"mouse"`
}

// ServerConfig holds fixture server settings
type ServerConfig struct {
	Addr      string `json:"addr" mapstructure:"addr"`
	LatencyMs int    `json:"latency_ms" mapstructure:"latency_ms"` // artificial delay per request
}

// StoreConfig holds the local database settings
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
	Seed int64  `json:"seed" mapstructure:"seed"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8787",
			TimeoutMs: 10000,
			RateLimit: 10,
			Burst:     4,
		},
		Feed: FeedConfig{
			Targets:           []string{"home"},
			PageSize:          16,
			SubPageSize:       8,
			PrefetchThreshold: 4,
		},
		Input: InputConfig{
			WheelThreshold:   400,
			WheelNotchDelta:  100,
			SmoothScrollMs:   400,
			SwipeMinDistance: 4,
			SwipeMinVelocity: 20,
		},
		UI: UIConfig{
			Theme:   "dark",
			Animate: true,
			Mouse:   true,
		},
		Server: ServerConfig{
			Addr: ":8787",
		},
		Store: StoreConfig{
			Path: filepath.Join(Dir(), "moments.db"),
			Seed: 7,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Dir returns the data directory, ~/.moments
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".moments")
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from path (ConfigPath if empty), layered over the
// defaults and under MOMENTS_* environment overrides. A missing file is not
// an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, DefaultConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// Every key needs a default for AutomaticEnv to see it during Unmarshal.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout_ms", d.API.TimeoutMs)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.burst", d.API.Burst)

	v.SetDefault("feed.targets", d.Feed.Targets)
	v.SetDefault("feed.page_size", d.Feed.PageSize)
	v.SetDefault("feed.sub_page_size", d.Feed.SubPageSize)
	v.SetDefault("feed.prefetch_threshold", d.Feed.PrefetchThreshold)

	v.SetDefault("input.wheel_threshold", d.Input.WheelThreshold)
	v.SetDefault("input.wheel_notch_delta", d.Input.WheelNotchDelta)
	v.SetDefault("input.smooth_scroll_ms", d.Input.SmoothScrollMs)
	v.SetDefault("input.swipe_min_distance", d.Input.SwipeMinDistance)
	v.SetDefault("input.swipe_min_velocity", d.Input.SwipeMinVelocity)

	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.animate", d.UI.Animate)
	v.SetDefault("ui.mouse", d.UI.Mouse)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.latency_ms", d.Server.LatencyMs)

	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.seed", d.Store.Seed)

	v.SetDefault("log.level", d.Log.Level)
}

// Save writes config to path (ConfigPath if empty)
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// NextTarget returns the configured target after current, wrapping around.
func (c *Config) NextTarget(current string) string {
	targets := c.Feed.Targets
	if len(targets) == 0 {
		return current
	}
	for i, t := range targets {
		if t == current {
			return targets[(i+1)%len(targets)]
		}
	}
	return targets[0]
}
