// Package config loads application configuration from environment
// variables, after an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"
)

// Store drivers understood by STORE_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverMemory = "memory"
)

// Config holds the process-level settings.  Subsystems that can be
// switched off (rate limiting, caching, events) load their own structs.
type Config struct {
	Env         string // application environment (dev, test, prod)
	Port        string // HTTP port to listen on
	LogLevel    log.Lvl
	StoreDriver string // mysql or memory
	SeedFile    string // optional YAML seed applied at startup
	DBUser      string
	DBPass      string // empty allowed
	DBHost      string
	DBPort      string
	DBName      string
	DBMaxConns  int
}

// LoadEnvFile reads .env (or the given files) into the environment
// without overriding variables that are already set.  A missing file is
// not an error.
func LoadEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads the process configuration.  Missing required variables stop
// the process with a fatal log line; the DB_* variables are required only
// for the mysql driver.
func Load() Config {
	cfg := Config{
		Env:         getenv("APP_ENV", "dev"),
		Port:        must("APP_PORT"),
		LogLevel:    ParseLogLevel(getenv("LOG_LEVEL", "info")),
		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", DriverMySQL)),
		SeedFile:    os.Getenv("SEED_FILE"),
		DBPass:      os.Getenv("DB_PASS"),
		DBMaxConns:  envInt("DB_MAX_CONNS", 25),
	}
	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	case DriverMemory:
	default:
		log.Fatalf("invalid STORE_DRIVER %q (want mysql or memory)", cfg.StoreDriver)
	}
	return cfg
}

// ParseLogLevel maps LOG_LEVEL onto gommon levels; unknown values mean INFO.
func ParseLogLevel(s string) log.Lvl {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off", "none":
		return log.OFF
	}
	return log.INFO
}

// must retrieves a required environment variable or exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
