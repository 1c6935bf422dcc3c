package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	Server      ServerConfig     `mapstructure:"server"`
	Messaging   MessagingConfig  `mapstructure:"messaging"`
	Attendance  AttendanceConfig `mapstructure:"attendance"`
	Credentials CredentialConfig `mapstructure:"credentials"`
	Portal      PortalConfig     `mapstructure:"portal"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Admin       AdminConfig      `mapstructure:"admin"`
	Logging     LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type MessagingConfig struct {
	APIURL        string        `mapstructure:"api_url"`
	ChannelSecret string        `mapstructure:"channel_secret"`
	ChannelToken  string        `mapstructure:"channel_token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	// SkipVerify disables webhook signature verification. Only honored
	// when environment is "development"; see signature.Verifier.
	SkipVerify bool `mapstructure:"skip_verify"`
}

type AttendanceConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type CredentialConfig struct {
	SigningSecret string        `mapstructure:"signing_secret"`
	TTL           time.Duration `mapstructure:"ttl"`
}

type PortalConfig struct {
	URL string `mapstructure:"url"`
}

type DatabaseConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type RedisConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	URL               string        `mapstructure:"url"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

type AdminConfig struct {
	Token string `mapstructure:"token"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ConnString builds a PostgreSQL connection string from the database config.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("environment", "production")
	v.SetDefault("server.port", 8085)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("messaging.api_url", "https://api.line.me")
	v.SetDefault("messaging.timeout", "10s")
	v.SetDefault("messaging.skip_verify", false)
	v.SetDefault("attendance.url", "http://localhost:4000")
	v.SetDefault("attendance.timeout", "10s")
	v.SetDefault("credentials.ttl", "1h")
	v.SetDefault("portal.url", "https://portal.pharmatch.example.com")
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "chatbot")
	v.SetDefault("database.database", "chatbot")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", "redis://localhost:6379")
	v.SetDefault("redis.rate_limit_requests", 600)
	v.SetDefault("redis.rate_limit_window", "1m")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/pharmatch/chatbot")
	}

	// Environment variables override
	v.SetEnvPrefix("CHATBOT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found; use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
