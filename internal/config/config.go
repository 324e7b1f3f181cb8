package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Instagram InstagramConfig `yaml:"instagram"`
	YouTube   YouTubeConfig   `yaml:"youtube"`
	Download  DownloadConfig  `yaml:"download"`
}

// TelegramConfig holds chat transport configuration.
type TelegramConfig struct {
	Token string `yaml:"token" envconfig:"TELEGRAM_TOKEN"`
	Debug bool   `yaml:"debug" envconfig:"TELEGRAM_DEBUG"`
}

// ServerConfig holds the operator HTTP API configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
}

// StorageConfig holds filesystem and database configuration.
type StorageConfig struct {
	MediaPath    string `yaml:"media_path" envconfig:"MEDIA_PATH"`
	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH"`
}

// AuthMode selects how the Instagram post endpoint is called.
type AuthMode string

const (
	// AuthAnonymous calls the post endpoint without a session.
	AuthAnonymous AuthMode = "anonymous"
	// AuthCookie logs in once, caches the cookie jar to disk and attaches
	// it to post fetches.
	AuthCookie AuthMode = "cookie"
)

// InstagramConfig holds Instagram fetcher configuration.
type InstagramConfig struct {
	Username     string   `yaml:"username" envconfig:"INSTAGRAM_USERNAME"`
	Password     string   `yaml:"password" envconfig:"INSTAGRAM_PASSWORD"`
	AuthMode     AuthMode `yaml:"auth_mode" envconfig:"INSTAGRAM_AUTH_MODE"`
	CookiePath   string   `yaml:"cookie_path" envconfig:"INSTAGRAM_COOKIE_PATH"`
	CookieSecret string   `yaml:"cookie_secret" envconfig:"INSTAGRAM_COOKIE_SECRET"`
	// LoginRetries caps retry-with-fresh-cookie attempts after a login
	// failure. 0 disables retries.
	LoginRetries int `yaml:"login_retries" envconfig:"INSTAGRAM_LOGIN_RETRIES"`
}

// YouTubeConfig holds external tool configuration.
type YouTubeConfig struct {
	BinPath string        `yaml:"bin_path" envconfig:"YTDLP_PATH"`
	Timeout time.Duration `yaml:"timeout" envconfig:"YTDLP_TIMEOUT"`
}

// DownloadConfig holds asset download configuration.
type DownloadConfig struct {
	Timeout       time.Duration `yaml:"timeout" envconfig:"DOWNLOAD_TIMEOUT"`
	RetryDelay    time.Duration `yaml:"retry_delay" envconfig:"DOWNLOAD_RETRY_DELAY"`
	MaxRetryDelay time.Duration `yaml:"max_retry_delay" envconfig:"DOWNLOAD_MAX_RETRY_DELAY"`
	UserAgent     string        `yaml:"user_agent" envconfig:"DOWNLOAD_USER_AGENT"`
}

// defaultConfig returns the baseline configuration. File and environment
// values overlay these, so defaults live here rather than in struct tags
// where envconfig would re-apply them on top of file values.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8764,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
		Storage: StorageConfig{
			MediaPath:    "media",
			DatabasePath: "linkgrab.db",
		},
		Instagram: InstagramConfig{
			AuthMode: AuthAnonymous,
		},
		YouTube: YouTubeConfig{
			BinPath: "yt-dlp",
			Timeout: 15 * time.Minute,
		},
		Download: DownloadConfig{
			Timeout:       5 * time.Minute,
			RetryDelay:    5 * time.Second,
			MaxRetryDelay: 60 * time.Second,
			UserAgent:     "Mozilla/5.0 (Macintosh; U; Intel Mac OS X 10_6_3; en-us; Silk/1.0.146.3-Gen4_12000410) AppleWebKit/533.16 (KHTML, like Gecko) Version/5.0 Safari/533.16 Silk-Accelerated=true",
		},
	}
}

// Load reads configuration in order of increasing precedence: built-in
// defaults, then the YAML file, then environment variables.
func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if c.Storage.MediaPath == "" {
		return fmt.Errorf("MEDIA_PATH is required")
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	switch c.Instagram.AuthMode {
	case AuthAnonymous:
	case AuthCookie:
		if c.Instagram.Username == "" || c.Instagram.Password == "" {
			return fmt.Errorf("INSTAGRAM_USERNAME and INSTAGRAM_PASSWORD are required in cookie auth mode")
		}
	default:
		return fmt.Errorf("INSTAGRAM_AUTH_MODE must be %q or %q", AuthAnonymous, AuthCookie)
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// InstagramDir returns the root directory for Instagram media.
func (c *StorageConfig) InstagramDir() string {
	return filepath.Join(c.MediaPath, "instagram")
}

// YouTubeDir returns the root directory for YouTube media.
func (c *StorageConfig) YouTubeDir() string {
	return filepath.Join(c.MediaPath, "youtube")
}
