package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sevigo/hybrid-warden/internal/logger"
)

// Config holds the application's configuration values.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Slack    SlackConfig    `mapstructure:"slack"`
	Detector DetectorConfig `mapstructure:"detector"`
	Database DBConfig       `mapstructure:"database"`
	Logging  logger.Config  `mapstructure:"logging"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxWorkers   int           `mapstructure:"max_workers"`
	QueueSize    int           `mapstructure:"queue_size"`
	// MaxPayloadBytes bounds the webhook request body.
	MaxPayloadBytes int64 `mapstructure:"max_payload_bytes"`
}

type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	WebhookSecret  string `mapstructure:"webhook_secret"`
	// Token is a personal access token used by the CLI and when no App is configured.
	Token string `mapstructure:"token"`
}

// AppConfigured reports whether GitHub App credentials are present.
func (c GitHubConfig) AppConfigured() bool {
	return c.AppID > 0 && c.PrivateKeyPath != ""
}

type SlackConfig struct {
	// WebhookURL is a Slack incoming webhook. Empty disables notifications.
	WebhookURL string        `mapstructure:"webhook_url"`
	Channel    string        `mapstructure:"channel"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type DetectorConfig struct {
	ModelPath           string        `mapstructure:"model_path"`
	Threshold           float64       `mapstructure:"threshold"`
	Extensions          []string      `mapstructure:"extensions"`
	FileConcurrency     int           `mapstructure:"file_concurrency"`
	CollaboratorTimeout time.Duration `mapstructure:"collaborator_timeout"`
	RepoConfigPath      string        `mapstructure:"repo_config_path"`
}

// Matches reports whether filePath has one of the configured extensions.
func (c DetectorConfig) Matches(filePath string) bool {
	lower := strings.ToLower(filePath)
	for _, ext := range c.Extensions {
		if strings.HasSuffix(lower, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

type DBConfig struct {
	// Driver is "postgres" or "sqlite".
	Driver string `mapstructure:"driver"`
	// Path is the database file used by the sqlite driver.
	Path            string        `mapstructure:"path"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Enabled reports whether a database is configured. Without one, records go to the log.
func (c DBConfig) Enabled() bool {
	switch c.Driver {
	case DriverSQLite:
		return c.Path != ""
	default:
		return c.Host != ""
	}
}

// DSN returns the lib/pq connection string.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.Username, c.Password, c.Database, c.SSLMode)
}

// LoadConfig reads configuration from an optional config.yaml, a .env file and
// environment variables, sets sensible defaults and returns the result. Nested keys
// map to environment variables by replacing dots with underscores, e.g.
// GITHUB_WEBHOOK_SECRET or DETECTOR_MODEL_PATH.
func LoadConfig() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.hybrid-warden")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	applyDotEnv(v, ".env")

	return unmarshal(v)
}

// applyDotEnv copies values from a .env file for every known key. Real environment
// variables still take precedence.
func applyDotEnv(v *viper.Viper, path string) {
	envFile := viper.New()
	envFile.SetConfigFile(path)
	envFile.SetConfigType("env")
	if err := envFile.ReadInConfig(); err != nil {
		return
	}
	for _, key := range v.AllKeys() {
		name := strings.ReplaceAll(key, ".", "_")
		if !envFile.IsSet(name) {
			continue
		}
		if _, ok := os.LookupEnv(strings.ToUpper(name)); ok {
			continue
		}
		v.Set(key, envFile.Get(name))
	}
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.max_workers", 5)
	v.SetDefault("server.queue_size", 100)
	v.SetDefault("server.max_payload_bytes", int64(25<<20))

	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.private_key_path", "keys/hybrid-warden.private-key.pem")
	v.SetDefault("github.webhook_secret", "")
	v.SetDefault("github.token", "")

	v.SetDefault("slack.webhook_url", "")
	v.SetDefault("slack.channel", "")
	v.SetDefault("slack.timeout", 10*time.Second)
	v.SetDefault("slack.max_retries", 2)

	v.SetDefault("detector.model_path", "models/vuln_model.json")
	v.SetDefault("detector.threshold", 0.5)
	v.SetDefault("detector.extensions", []string{".py"})
	v.SetDefault("detector.file_concurrency", 4)
	v.SetDefault("detector.collaborator_timeout", 15*time.Second)
	v.SetDefault("detector.repo_config_path", ".hybrid-warden.yml")

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.path", "")
	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "warden")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "hybrid_warden")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.add_source", false)
}
