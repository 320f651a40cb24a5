package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	NATS     NATSConfig     `yaml:"nats"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Matcher  MatcherConfig  `yaml:"matcher"`
	SMS      SMSConfig      `yaml:"sms"`
	Intake   IntakeConfig   `yaml:"intake"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	MaxConns int    `yaml:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		d.User, d.Password, d.Host, d.Port, d.Name)
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// MatcherConfig points at the external face verification service.
type MatcherConfig struct {
	BaseURL        string        `yaml:"base_url"`
	CompareTimeout time.Duration `yaml:"compare_timeout"`
	VerifyTimeout  time.Duration `yaml:"verify_timeout"`
}

// SMSConfig holds provider credentials for resolution notifications.
// Leaving the account SID empty disables SMS delivery.
type SMSConfig struct {
	BaseURL       string `yaml:"base_url"`
	AccountSID    string `yaml:"account_sid"`
	AuthToken     string `yaml:"auth_token"`
	FromNumber    string `yaml:"from_number"`
	CountryPrefix string `yaml:"country_prefix"`
}

type IntakeConfig struct {
	MinImages int `yaml:"min_images"`
	MaxImages int `yaml:"max_images"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads config from YAML file and applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	setDefaults(cfg)

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.MaxConns == 0 {
		cfg.Database.MaxConns = 20
	}
	if cfg.Matcher.CompareTimeout == 0 {
		cfg.Matcher.CompareTimeout = 30 * time.Second
	}
	if cfg.Matcher.VerifyTimeout == 0 {
		cfg.Matcher.VerifyTimeout = 60 * time.Second
	}
	if cfg.SMS.BaseURL == "" {
		cfg.SMS.BaseURL = "https://api.twilio.com"
	}
	if cfg.SMS.CountryPrefix == "" {
		cfg.SMS.CountryPrefix = "+91"
	}
	if cfg.Intake.MinImages == 0 {
		cfg.Intake.MinImages = 3
	}
	if cfg.Intake.MaxImages == 0 {
		cfg.Intake.MaxImages = 7
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REUNITE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REUNITE_API_KEY"); v != "" {
		cfg.Server.APIKey = v
	}
	if v := os.Getenv("REUNITE_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REUNITE_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REUNITE_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REUNITE_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REUNITE_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REUNITE_NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("REUNITE_MINIO_ENDPOINT"); v != "" {
		cfg.MinIO.Endpoint = v
	}
	if v := os.Getenv("REUNITE_MINIO_ACCESS_KEY"); v != "" {
		cfg.MinIO.AccessKey = v
	}
	if v := os.Getenv("REUNITE_MINIO_SECRET_KEY"); v != "" {
		cfg.MinIO.SecretKey = v
	}
	if v := os.Getenv("REUNITE_MINIO_BUCKET"); v != "" {
		cfg.MinIO.Bucket = v
	}
	if v := os.Getenv("REUNITE_MATCHER_URL"); v != "" {
		cfg.Matcher.BaseURL = v
	}
	if v := os.Getenv("REUNITE_SMS_ACCOUNT_SID"); v != "" {
		cfg.SMS.AccountSID = v
	}
	if v := os.Getenv("REUNITE_SMS_AUTH_TOKEN"); v != "" {
		cfg.SMS.AuthToken = v
	}
	if v := os.Getenv("REUNITE_SMS_FROM_NUMBER"); v != "" {
		cfg.SMS.FromNumber = v
	}
}
