package config

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	appdefaults "github.com/saker-ai/tauri-agent/config"

	"github.com/saker-ai/tauri-agent/internal/logger"
	"github.com/spf13/viper"
)

// BridgeConfig represents the host bridge listener config.
type BridgeConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// TimeoutConfig represents the correlation deadline config.
type TimeoutConfig struct {
	QueryMs int `mapstructure:"query_ms"`
	InputMs int `mapstructure:"input_ms"`
}

// ScreenshotConfig represents the capture pipeline config.
type ScreenshotConfig struct {
	Quality  int `mapstructure:"quality"`
	MaxWidth int `mapstructure:"max_width"`
	Workers  int `mapstructure:"workers"`
}

// ArchiveConfig represents the capture archive config.
type ArchiveConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Dir        string `mapstructure:"dir"`
	MaxEntries int    `mapstructure:"max_entries"`
}

// Config represents the agent config.
type Config struct {
	SocketPath      string           `mapstructure:"socket_path"`
	ApplicationName string           `mapstructure:"application_name"`
	Bridge          BridgeConfig     `mapstructure:"bridge"`
	Timeouts        TimeoutConfig    `mapstructure:"timeouts"`
	Screenshot      ScreenshotConfig `mapstructure:"screenshot"`
	Archive         ArchiveConfig    `mapstructure:"archive"`
	Log             logger.Config    `mapstructure:"log"`
}

// Load reads the config from embedded defaults, an optional agent.yaml in the
// working directory, and TAURI_MCP_* environment variables.
func Load() (Config, error) {
	v := newViper()
	v.SetConfigName("agent")
	v.AddConfigPath(".")

	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return finish(v)
}

// LoadConfig reads the config from an explicit file path. An empty path falls
// back to Load.
func LoadConfig(configPath string) (Config, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		return Load()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Config{}, err
	}

	v := newViper()
	v.SetConfigFile(absPath)
	if err := v.MergeInConfig(); err != nil {
		return Config{}, err
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewReader(appdefaults.Default)); err != nil {
		// The embedded defaults are compiled in; a parse failure is a build
		// defect, not a runtime condition.
		panic(fmt.Sprintf("parse embedded config: %v", err))
	}

	v.SetDefault("socket_path", "")
	v.SetDefault("application_name", "")
	v.SetDefault("bridge.host", "127.0.0.1")
	v.SetDefault("bridge.port", 8765)
	v.SetDefault("timeouts.query_ms", 5000)
	v.SetDefault("timeouts.input_ms", 30000)
	v.SetDefault("screenshot.quality", 85)
	v.SetDefault("screenshot.max_width", 1920)
	v.SetDefault("screenshot.workers", 2)
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.dir", "./data/captures")
	v.SetDefault("archive.max_entries", 50)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.stdout", true)
	v.SetDefault("log.file.enabled", true)
	v.SetDefault("log.file.path", "./data/logs")
	v.SetDefault("log.file.name", "tauri-agent.log")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 5)
	v.SetDefault("log.file.max_age_days", 30)
	v.SetDefault("log.file.compress", true)

	v.SetEnvPrefix("tauri_mcp")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func finish(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	sanitize(&cfg)
	return cfg, nil
}

func sanitize(cfg *Config) {
	if strings.TrimSpace(cfg.SocketPath) == "" {
		cfg.SocketPath = filepath.Join(os.TempDir(), "tauri-mcp.sock")
	}
	if cfg.Bridge.Host == "" {
		cfg.Bridge.Host = "127.0.0.1"
	}
	if cfg.Bridge.Port <= 0 {
		cfg.Bridge.Port = 8765
	}
	if cfg.Timeouts.QueryMs <= 0 {
		cfg.Timeouts.QueryMs = 5000
	}
	if cfg.Timeouts.InputMs <= 0 {
		cfg.Timeouts.InputMs = 30000
	}
	if cfg.Screenshot.Quality <= 0 {
		cfg.Screenshot.Quality = 85
	}
	if cfg.Screenshot.MaxWidth <= 0 {
		cfg.Screenshot.MaxWidth = 1920
	}
	if cfg.Screenshot.Workers <= 0 {
		cfg.Screenshot.Workers = 2
	}
	if strings.TrimSpace(cfg.Archive.Dir) == "" {
		cfg.Archive.Dir = "./data/captures"
	}
	if cfg.Archive.MaxEntries <= 0 {
		cfg.Archive.MaxEntries = 50
	}
}

// QueryTimeout returns the webview query deadline.
func (c Config) QueryTimeout() time.Duration {
	return time.Duration(c.Timeouts.QueryMs) * time.Millisecond
}

// InputTimeout returns the input simulation deadline.
func (c Config) InputTimeout() time.Duration {
	return time.Duration(c.Timeouts.InputMs) * time.Millisecond
}

// BridgeAddr returns the host:port the bridge HTTP server binds to.
func (c Config) BridgeAddr() string {
	return net.JoinHostPort(c.Bridge.Host, strconv.Itoa(c.Bridge.Port))
}
