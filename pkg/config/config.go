package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseBusyTimeout       time.Duration
	DatabaseMaxRetries        int
	DatabaseDebug             bool
	DatabaseFilePath          string
	Hostname                  string
	JWTSecret                 string
	MediaDir                  string
	ServerHost                string
	ServerPort                int
	SessionTTL                time.Duration
}

const (
	environmentENV = "ENVIRONMENT"
	configFileENV  = "CONFIG_FILE"
	envPrefix      = "OPENSHELF_"
)

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseMaxRetries:        3,
		Hostname:                  hostname,
		JWTSecret:                 "openshelf-dev-secret",
		MediaDir:                  "./media",
		ServerPort:                4280,
		SessionTTL:                14 * 24 * time.Hour,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	k := koanf.New(".")

	// Optional YAML config file layered over the environment defaults.
	if path := os.Getenv(configFileENV); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file: %s", path)
		}
	}

	// OPENSHELF_SERVER_PORT=8080 becomes server_port, winning over the file.
	err = k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	applyOverrides(cfg, k)

	return cfg, nil
}

func applyOverrides(cfg *Config, k *koanf.Koanf) {
	if k.Exists("database_file_path") {
		cfg.DatabaseFilePath = k.String("database_file_path")
	}
	if k.Exists("database_debug") {
		cfg.DatabaseDebug = k.Bool("database_debug")
	}
	if k.Exists("database_busy_timeout") {
		cfg.DatabaseBusyTimeout = k.Duration("database_busy_timeout")
	}
	if k.Exists("jwt_secret") {
		cfg.JWTSecret = k.String("jwt_secret")
	}
	if k.Exists("media_dir") {
		cfg.MediaDir = k.String("media_dir")
	}
	if k.Exists("server_host") {
		cfg.ServerHost = k.String("server_host")
	}
	if k.Exists("server_port") {
		cfg.ServerPort = k.Int("server_port")
	}
	if k.Exists("session_ttl") {
		cfg.SessionTTL = k.Duration("session_ttl")
	}
}
