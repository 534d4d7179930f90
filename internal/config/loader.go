package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config captures configuration values for the tracker service.
type Config struct {
	HTTPPort  int    `toml:"http_port"`
	SQLiteDSN string `toml:"sqlite_dsn"`
}

// Load resolves configuration in order of increasing precedence: built-in
// defaults, an optional timetracker.toml file, then TRACKER_* environment
// variables. The file path defaults to ./timetracker.toml and may be relocated
// with TRACKER_CONFIG; a missing file is not an error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:  8080,
		SQLiteDSN: "file:timetracker.db",
	}

	path := strings.TrimSpace(os.Getenv("TRACKER_CONFIG"))
	if path == "" {
		path = "timetracker.toml"
	}
	if err := loadFile(&cfg, path); err != nil {
		return Config{}, err
	}

	invalid := make([]string, 0, 1)

	if portValue := strings.TrimSpace(os.Getenv("TRACKER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "TRACKER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("TRACKER_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	if cfg.HTTPPort <= 0 {
		return Config{}, fmt.Errorf("http_port must be positive")
	}
	if strings.TrimSpace(cfg.SQLiteDSN) == "" {
		return Config{}, fmt.Errorf("sqlite_dsn must not be empty")
	}

	return cfg, nil
}

func loadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}
