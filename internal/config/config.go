// Package config loads server and tool configuration with viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the root configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Replay     ReplayConfig     `mapstructure:"replay"`
	Match      MatchConfig      `mapstructure:"match"`
}

// ServerConfig configures the network listeners.
type ServerConfig struct {
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	GRPC      GRPCConfig      `mapstructure:"grpc"`
}

// WebSocketConfig configures the match hub.
type WebSocketConfig struct {
	Address      string        `mapstructure:"address"`
	Path         string        `mapstructure:"path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	RatePerSec   float64       `mapstructure:"rate_per_sec"`
	Burst        int           `mapstructure:"burst"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
}

// GRPCConfig configures the health endpoint.
type GRPCConfig struct {
	Address              string `mapstructure:"address"`
	MaxConcurrentStreams int    `mapstructure:"max_concurrent_streams"`
}

// LoggingConfig selects the zap level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DatabaseConfig selects where simulation reports and decks are stored.
type DatabaseConfig struct {
	Driver    string `mapstructure:"driver"` // postgres, sqlite or file
	DSN       string `mapstructure:"dsn"`
	ReportDir string `mapstructure:"report_dir"`
	MaxConns  int32  `mapstructure:"max_conns"`
}

// SimulationConfig holds defaults for tavernctl simulate.
type SimulationConfig struct {
	Games    int   `mapstructure:"games"`
	Workers  int   `mapstructure:"workers"`
	Seed     int64 `mapstructure:"seed"`
	MaxTurns int   `mapstructure:"max_turns"`
}

// ReplayConfig controls replay recording for served matches.
type ReplayConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Dir     string `mapstructure:"dir"`
}

// MatchConfig controls how long served matches stay in memory.
type MatchConfig struct {
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	FinishedTTL     time.Duration `mapstructure:"finished_ttl"`
	IdleTTL         time.Duration `mapstructure:"idle_ttl"`
}

// EnvPrefix is prepended to environment overrides, e.g. TAVERN_LOGGING_LEVEL.
const EnvPrefix = "TAVERN"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.websocket.address", ":8080")
	v.SetDefault("server.websocket.path", "/ws")
	v.SetDefault("server.websocket.read_limit", 4096)
	v.SetDefault("server.websocket.rate_per_sec", 10.0)
	v.SetDefault("server.websocket.burst", 20)
	v.SetDefault("server.websocket.write_timeout", 10*time.Second)
	v.SetDefault("server.websocket.ping_interval", 30*time.Second)
	v.SetDefault("server.grpc.address", ":9090")
	v.SetDefault("server.grpc.max_concurrent_streams", 100)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("database.driver", "file")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.report_dir", "reports")
	v.SetDefault("database.max_conns", 4)

	v.SetDefault("simulation.games", 100)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.max_turns", 30)

	v.SetDefault("replay.enabled", false)
	v.SetDefault("replay.dir", "replays")

	v.SetDefault("match.cleanup_interval", time.Minute)
	v.SetDefault("match.finished_ttl", 5*time.Minute)
	v.SetDefault("match.idle_ttl", 30*time.Minute)
}

// Load reads the YAML file at path. A missing file is not an error; defaults
// and TAVERN_* environment variables still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for driver %q", c.Database.Driver)
		}
	case "file":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.WebSocket.RatePerSec <= 0 || c.Server.WebSocket.Burst <= 0 {
		return errors.New("server.websocket rate and burst must be positive")
	}
	if c.Match.CleanupInterval <= 0 {
		return errors.New("match.cleanup_interval must be positive")
	}
	return nil
}
