// Package config loads service configuration from an optional YAML file
// and PREPFORGE_* environment variables. LLM credentials keep their
// conventional names (GROQ_API_KEY and friends) and are resolved
// separately in the llm package.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/prepforge/prepforge/internal/jobs"
	"github.com/prepforge/prepforge/internal/llm"
)

// Config is the full service configuration.
type Config struct {
	Server   Server
	Database Database
	Jobs     jobs.Config
	LLM      llm.Config

	// LogLevel is a logrus level name (debug, info, warn, error).
	LogLevel string
}

// Server holds the HTTP listener settings.
type Server struct {
	Host string
	Port int

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration
}

// Database locates the job store. Persistence has exactly one knob.
type Database struct {
	Path string
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Load reads configuration. A missing config file is not an error:
// defaults plus environment variables are a complete configuration.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PREPFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("database.path", "prepforge.db")
	v.SetDefault("jobs.workers", 4)
	v.SetDefault("jobs.queue_size", 64)
	v.SetDefault("jobs.retention", "24h")
	v.SetDefault("jobs.sweep_interval", "1h")
	v.SetDefault("log.level", "info")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("prepforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/prepforge")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{
		Server: Server{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: Database{
			Path: v.GetString("database.path"),
		},
		Jobs: jobs.Config{
			Workers:       v.GetInt("jobs.workers"),
			QueueSize:     v.GetInt("jobs.queue_size"),
			Retention:     v.GetDuration("jobs.retention"),
			SweepInterval: v.GetDuration("jobs.sweep_interval"),
		},
		LLM:      llm.ConfigFromEnv(),
		LogLevel: v.GetString("log.level"),
	}, nil
}
