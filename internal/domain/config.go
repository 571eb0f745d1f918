package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server" json:"server"`
	Preferences  Preferences        `mapstructure:"preferences" json:"preferences"`
	Download     DownloadConfig     `mapstructure:"download" json:"download"`
	Tools        ToolsConfig        `mapstructure:"tools" json:"tools"`
	Notification NotificationConfig `mapstructure:"notification" json:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging" json:"logging"`
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Preferences holds the small persisted user-preference record. The
// only field the UI owns is the home-page skip flag; it defaults to
// false (home page shown) when absent.
type Preferences struct {
	SkipHomepage bool `mapstructure:"skip_homepage" json:"skip_homepage"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	BaseDir      string        `mapstructure:"base_dir" json:"base_dir"`
	LogsDir      string        `mapstructure:"logs_dir" json:"logs_dir"`
	RateLimit    string        `mapstructure:"rate_limit" json:"rate_limit"`     // yt-dlp --limit-rate value, empty = unlimited
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" json:"idle_timeout"` // 0 disables the idle watchdog
	DatabasePath string        `mapstructure:"database_path" json:"database_path"`
}

// ToolsConfig contains the external tool locations
type ToolsConfig struct {
	BinDir     string `mapstructure:"bin_dir" json:"bin_dir"`
	YtdlpPath  string `mapstructure:"ytdlp_path" json:"ytdlp_path"`
	FfmpegPath string `mapstructure:"ffmpeg_path" json:"ffmpeg_path"`
}

// PathFor returns the configured path for a tool
func (t ToolsConfig) PathFor(tool Tool) string {
	switch tool {
	case ToolYtdlp:
		return t.YtdlpPath
	case ToolFfmpeg:
		return t.FfmpegPath
	}
	return ""
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Method  string `mapstructure:"method" json:"method"` // osascript, notify-send, etc.
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`             // debug, info, warn, error
	Format     string `mapstructure:"format" json:"format"`           // json, console
	OutputPath string `mapstructure:"output_path" json:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 8090,
		},
		Preferences: Preferences{
			SkipHomepage: false,
		},
		Download: DownloadConfig{
			BaseDir:      "$HOME/Downloads/vscraper",
			LogsDir:      "$HOME/Downloads/vscraper/logs",
			RateLimit:    "",
			IdleTimeout:  0,
			DatabasePath: "$HOME/Downloads/vscraper/jobs.db",
		},
		Tools: ToolsConfig{
			BinDir:     "$HOME/.local/share/vscraper/libs",
			YtdlpPath:  "$HOME/.local/share/vscraper/libs/yt-dlp",
			FfmpegPath: "$HOME/.local/share/vscraper/libs/ffmpeg",
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
