package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // json or console
		File   string `yaml:"file"`
	} `yaml:"log"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		TokenTTL  string `yaml:"tokenTTL"`
	} `yaml:"auth"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	RabbitMQ struct {
		URL   string `yaml:"url"`
		Queue string `yaml:"queue"`
	} `yaml:"rabbitmq"`
	Quiz struct {
		TTL string `yaml:"ttl"`
	} `yaml:"quiz"`
	Session struct {
		DefaultTimeLimit string `yaml:"defaultTimeLimit"`
		Retention        string `yaml:"retention"`
		PruneInterval    string `yaml:"pruneInterval"`
		RecorderQueue    int    `yaml:"recorderQueue"`
	} `yaml:"session"`
}

// MinJWTSecretLen is the shortest signing secret the server accepts.
const MinJWTSecretLen = 32

// JWTSecret returns the configured signing secret, rejecting empty or short ones.
func (c Config) JWTSecret() (string, error) {
	if len(c.Auth.JWTSecret) < MinJWTSecretLen {
		return "", fmt.Errorf("auth.jwtSecret is too short (%d chars), must be at least %d", len(c.Auth.JWTSecret), MinJWTSecretLen)
	}
	return c.Auth.JWTSecret, nil
}

// Load reads YAML config from path. A missing file yields the zero config so
// the service can run on defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or invalid.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
