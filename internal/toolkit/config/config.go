// Package config provides mcp-tools configuration management.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	appconfig "github.com/RobinCoderZhao/mcp-tools/pkg/config"
)

// FileName is the name of the config file looked up in the working and home directories.
const FileName = ".mcp-tools.yaml"

// Config is the main configuration for mcp-tools.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   struct {
		JWTSecret string `yaml:"jwt_secret" env:"MCP_TOOLS_JWT_SECRET"`
	} `yaml:"auth"`
	Limits LimitsConfig `yaml:"limits"`
	Usage  UsageConfig  `yaml:"usage"`
	Log    struct {
		Level string `yaml:"level" env:"MCP_TOOLS_LOG_LEVEL"` // debug, info, warn, error
	} `yaml:"log"`
}

// ServerConfig holds settings for the MCP server.
type ServerConfig struct {
	Name      string `yaml:"name"`
	Transport string `yaml:"transport" env:"MCP_TOOLS_TRANSPORT"` // "stdio" or "http"
	Addr      string `yaml:"addr" env:"MCP_TOOLS_ADDR"`
}

// LimitsConfig bounds tool input sizes. Zero disables a limit.
type LimitsConfig struct {
	MaxInputBytes int `yaml:"max_input_bytes"`
	MaxLines      int `yaml:"max_lines"`
}

// UsageConfig controls the tool call usage log.
type UsageConfig struct {
	Enabled   bool          `yaml:"enabled" env:"MCP_TOOLS_USAGE"`
	DBPath    string        `yaml:"db_path" env:"MCP_TOOLS_USAGE_DB"`
	Retention time.Duration `yaml:"retention"` // Calls older than this are pruned; 0 keeps everything
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	cfg := Config{
		Server: ServerConfig{
			Name:      "mcp-tools",
			Transport: "stdio",
			Addr:      ":8080",
		},
		Limits: LimitsConfig{
			MaxInputBytes: 1 << 20,
			MaxLines:      10000,
		},
		Usage: UsageConfig{
			DBPath:    "mcp-tools-usage.db",
			Retention: 30 * 24 * time.Hour,
		},
	}
	cfg.Log.Level = "info"
	return cfg
}

// Load loads configuration from the standard config file locations.
func Load() (Config, error) {
	cfg := DefaultConfig()

	// Check project-level config first
	if _, err := os.Stat(FileName); err == nil {
		if err := appconfig.Load(FileName, &cfg); err != nil {
			return cfg, err
		}
		return cfg, cfg.Validate()
	}

	// Then check home directory
	if home, err := os.UserHomeDir(); err == nil {
		if err := appconfig.LoadOrDefault(filepath.Join(home, FileName), &cfg); err != nil {
			return cfg, err
		}
	} else if err := appconfig.ApplyEnv(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// LoadFile loads configuration from an explicit path.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := appconfig.Load(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	switch c.Server.Transport {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid server.transport %q: want stdio or http", c.Server.Transport)
	}
	if c.Limits.MaxInputBytes < 0 || c.Limits.MaxLines < 0 {
		return fmt.Errorf("limits must not be negative")
	}
	if c.Usage.Retention < 0 {
		return fmt.Errorf("usage.retention must not be negative")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}
