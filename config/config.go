// Package config loads runtime configuration from defaults, an optional
// config.yaml, and environment variables (highest precedence).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Email    EmailConfig    `mapstructure:"email"`
	Cycle    CycleConfig    `mapstructure:"cycle"`
	Ops      OpsConfig      `mapstructure:"ops"`
}

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type EmailConfig struct {
	// SendgridKey selects the transport: SendGrid when set, console otherwise.
	SendgridKey string `mapstructure:"sendgrid_key"`
	FromName    string `mapstructure:"from_name"`
	FromAddress string `mapstructure:"from_address"`
	SubjectTag  string `mapstructure:"subject_tag"`
}

type CycleConfig struct {
	// Hour is the local hour of day (0-23) the daily cycle fires at.
	Hour int `mapstructure:"hour"`
	// RunOnStart triggers one cycle immediately at process start.
	RunOnStart bool `mapstructure:"run_on_start"`
}

type OpsConfig struct {
	// Addr serves /healthz and /metrics.
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.url", "postgres://localhost:5432/trainflow?sslmode=disable")
	// Every key needs a default so Unmarshal also sees env-only values.
	v.SetDefault("email.sendgrid_key", "")
	v.SetDefault("email.from_name", "Trainflow")
	v.SetDefault("email.from_address", "noreply@localhost")
	v.SetDefault("email.subject_tag", "Trainflow")
	v.SetDefault("cycle.hour", 6)
	v.SetDefault("cycle.run_on_start", false)
	v.SetDefault("ops.addr", ":9090")
	v.SetDefault("ops.shutdown_timeout", 15*time.Second)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config: read config file: %w", err)
		}
	}

	v.SetEnvPrefix("TRAINFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}

	if cfg.Cycle.Hour < 0 || cfg.Cycle.Hour > 23 {
		return Config{}, fmt.Errorf("config: cycle hour %d out of range", cfg.Cycle.Hour)
	}
	return cfg, nil
}
