package app

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath string // hcl files
	Component  string // component to mount; empty means the first defined

	LogFormat string
	LogLevel  string
	// FrameInterval is the refresh interval of the host loop. Zero selects
	// manual frames, flushed by the caller.
	FrameInterval time.Duration
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}
	if cfg.FrameInterval < 0 {
		return nil, fmt.Errorf("frame interval must not be negative, got %s", cfg.FrameInterval)
	}
	switch cfg.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format '%s'", cfg.LogFormat)
	}
	switch cfg.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log level '%s'", cfg.LogLevel)
	}
	return &cfg, nil
}
