// Package config loads process settings from command-line flags, falling
// back to RANDCHESS_* environment variables and then to defaults.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const envPrefix = "RANDCHESS_"

type Config struct {
	Addr         string // listen address for the server
	AllowOrigins string // comma separated CORS origins
	DataDir      string // archive directory; empty disables archiving
	Seed         int64  // opponent seed; 0 picks one from the clock
	LogLevel     string
}

func Default() *Config {
	return &Config{
		Addr:         ":3000",
		AllowOrigins: "http://localhost:5173",
		LogLevel:     "info",
	}
}

// Load parses args (without the program name). lookup is consulted for
// settings not given as flags; pass os.LookupEnv in production.
func Load(name string, args []string, lookup func(string) (string, bool), stderr io.Writer) (*Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.AllowOrigins, "origins", cfg.AllowOrigins, "allowed CORS origins, comma separated")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory for the finished game archive (empty to disable)")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed for the opponent (0 = time based)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "trace, debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrInvalidConfig, fs.Args())
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromOS is Load with the real arguments and environment.
func FromOS() (*Config, error) {
	return Load(os.Args[0], os.Args[1:], os.LookupEnv, os.Stderr)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		return nil
	}
	if v, ok := lookup(envPrefix + "ADDR"); ok {
		c.Addr = v
	}
	if v, ok := lookup(envPrefix + "ORIGINS"); ok {
		c.AllowOrigins = v
	}
	if v, ok := lookup(envPrefix + "DATA"); ok {
		c.DataDir = v
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(envPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %sSEED=%q: %v", ErrInvalidConfig, envPrefix, v, err)
		}
		c.Seed = seed
	}
	return nil
}

// Level maps LogLevel onto the logger's levels.
func (c *Config) Level() (log.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "trace":
		return log.LevelTrace, nil
	case "debug":
		return log.LevelDebug, nil
	case "", "info":
		return log.LevelInfo, nil
	case "warn", "warning":
		return log.LevelWarn, nil
	case "error":
		return log.LevelError, nil
	}
	return log.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
}

// ResolveSeed returns Seed, or a clock based seed when Seed is zero. Call it
// once per process.
func (c *Config) ResolveSeed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
