package config

import (
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"drawpoker-server/internal/util"
)

// Config provides configuration for the draw-poker server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	}
	RecaptchaSecret string `yaml:"recaptchaSecret" envconfig:"recaptcha_secret"`
	RedisURL        string `yaml:"redisUrl" envconfig:"redis_url"`
	Log             struct {
		Level             string `yaml:"level" envconfig:"level"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	}

	// IdleTimeout is how long, in seconds, a hand may block its game before
	// the idle sweeper folds it through
	IdleTimeout int `yaml:"idleTimeout" envconfig:"idle_timeout"`

	// StartingBalance is the chip count granted on registration
	StartingBalance int `yaml:"startingBalance" envconfig:"starting_balance"`
}

var config Config

// DefaultConfig returns the configuration with default values
func DefaultConfig() Config {
	cfg := Config{
		PGDSN:           "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		MigrationsPath:  "./sql",
		RedisURL:        "redis://localhost:6379",
		IdleTimeout:     120,
		StartingBalance: 1000,
	}
	cfg.JWT.PublicKey = "public.pem"
	cfg.JWT.PrivateKey = "private.key"
	return cfg
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
func Load() error {
	configFile := util.Getenv("DP_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil {
		return err
	}
	defer file.Close()

	config = Config{}
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return err
	}

	if err := envconfig.Process("dp", &config); err != nil {
		return err
	}

	config.loaded = true
	return nil
}
