package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/vscraper/vscraper-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	// Set up viper
	v := viper.New()
	v.SetConfigType("yaml")

	// If config path is provided, use it
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.vscraper")
		v.AddConfigPath("/etc/vscraper")
	}

	// Read environment variables
	v.SetEnvPrefix("VSCRAPER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Try to read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand environment variables in paths
	config = expandPaths(config)

	// Validate config
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.BaseDir = expandPath(config.Download.BaseDir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Download.DatabasePath = expandPath(config.Download.DatabasePath)
	config.Tools.BinDir = expandPath(config.Tools.BinDir)
	config.Tools.YtdlpPath = expandPath(config.Tools.YtdlpPath)
	config.Tools.FfmpegPath = expandPath(config.Tools.FfmpegPath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	// Expand environment variables
	path = os.ExpandEnv(path)

	// Expand home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.BaseDir == "" {
		return fmt.Errorf("download base directory not configured")
	}

	if config.Download.DatabasePath == "" {
		return fmt.Errorf("job database path not configured")
	}

	if config.Download.IdleTimeout < 0 {
		return fmt.Errorf("idle timeout cannot be negative")
	}

	if config.Tools.YtdlpPath == "" || config.Tools.FfmpegPath == "" {
		return fmt.Errorf("tool paths not configured")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file atomically: the record is
// written to a sibling temp file and renamed into place.
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	// Leaf keys are written explicitly so they match the mapstructure
	// tags LoadConfig reads them back with.
	v.Set("server.host", config.Server.Host)
	v.Set("server.port", config.Server.Port)
	v.Set("preferences.skip_homepage", config.Preferences.SkipHomepage)
	v.Set("download.base_dir", config.Download.BaseDir)
	v.Set("download.logs_dir", config.Download.LogsDir)
	v.Set("download.rate_limit", config.Download.RateLimit)
	v.Set("download.idle_timeout", config.Download.IdleTimeout.String())
	v.Set("download.database_path", config.Download.DatabasePath)
	v.Set("tools.bin_dir", config.Tools.BinDir)
	v.Set("tools.ytdlp_path", config.Tools.YtdlpPath)
	v.Set("tools.ffmpeg_path", config.Tools.FfmpegPath)
	v.Set("notification.enabled", config.Notification.Enabled)
	v.Set("notification.method", config.Notification.Method)
	v.Set("logging.level", config.Logging.Level)
	v.Set("logging.format", config.Logging.Format)
	v.Set("logging.output_path", config.Logging.OutputPath)

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Keep the yaml extension so viper can infer the format.
	ext := filepath.Ext(path)
	tmpPath := strings.TrimSuffix(path, ext) + ".tmp" + ext
	if err := v.WriteConfigAs(tmpPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	return nil
}
