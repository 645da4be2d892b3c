// Package config loads engine settings from a TOML file layered over
// built-in defaults. A missing file is not an error path callers need to
// special-case; LoadOrDefault serves the defaults.
package config

import (
	"fmt"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Pools   PoolsConfig   `toml:"pools"`
	Logging LoggingConfig `toml:"logging"`
}

type EngineConfig struct {
	Threads       int     `toml:"threads"` // 0 means one per CPU
	Threading     bool    `toml:"threading"`
	FixedRate     float64 `toml:"fixed_rate"` // Hz
	MaxFixedSteps int     `toml:"max_fixed_steps"`
	QueueSize     int     `toml:"queue_size"`
}

type PoolsConfig struct {
	Transforms int `toml:"transforms"`
	Behaviors  int `toml:"behaviors"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads and parses the TOML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return defaults(), nil
	}
	return Load(path)
}

// WorkerThreads resolves the configured thread count, defaulting to the
// machine's CPU count.
func (c *Config) WorkerThreads() int {
	if c.Engine.Threads > 0 {
		return c.Engine.Threads
	}
	return runtime.NumCPU()
}

func (c *Config) validate() error {
	if c.Engine.Threads < 0 {
		return fmt.Errorf("engine.threads must be >= 0, got %d", c.Engine.Threads)
	}
	if c.Engine.FixedRate <= 0 {
		return fmt.Errorf("engine.fixed_rate must be > 0, got %v", c.Engine.FixedRate)
	}
	if c.Engine.MaxFixedSteps < 1 {
		return fmt.Errorf("engine.max_fixed_steps must be >= 1, got %d", c.Engine.MaxFixedSteps)
	}
	if c.Pools.Transforms < 0 || c.Pools.Behaviors < 0 {
		return fmt.Errorf("pool capacities must be >= 0")
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Engine: EngineConfig{
			Threads:       0,
			Threading:     true,
			FixedRate:     60,
			MaxFixedSteps: 8,
			QueueSize:     1024,
		},
		Pools: PoolsConfig{
			Transforms: 256,
			Behaviors:  256,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
