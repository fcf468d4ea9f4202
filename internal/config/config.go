// Package config loads server settings from the environment and an optional
// config file.
//
// Precedence, highest first: environment variables, the file named by
// CONFIG_FILE (any format viper understands: yaml, json, toml, ...), then the
// defaults below. File keys are the lower-case env names, e.g. jwt_secret.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// Storage drivers.
const (
	DriverJSONFile = "jsonfile"
	DriverSQLite   = "sqlite"
)

// Limits checked by Validate.
const (
	MinJWTSecretLength = 16
	MinBcryptCost      = 10
)

const (
	keyPort          = "port"
	keyJWTSecret     = "jwt_secret"
	keyStorageDriver = "storage_driver"
	keyDataDir       = "data_dir"
	keyDBPath        = "db_path"
	keyBcryptCost    = "bcrypt_cost"
	keyCORSOrigins   = "cors_origins"
	keyLogLevel      = "log_level"
	keyLogFormat     = "log_format"
	keyTemplateDir   = "template_dir"
	keyStaticDir     = "static_dir"
)

// Config holds everything the server needs to start.
type Config struct {
	Port          int
	JWTSecret     string
	StorageDriver string
	DataDir       string // jsonfile driver
	DBPath        string // sqlite driver
	BcryptCost    int
	CORSOrigins   []string
	LogLevel      string
	LogFormat     string // "text" or "json"
	TemplateDir   string
	StaticDir     string
}

// Load reads the configuration. It does not validate; call Validate before
// using the result.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault(keyPort, 3000)
	v.SetDefault(keyStorageDriver, DriverJSONFile)
	v.SetDefault(keyDataDir, "data")
	v.SetDefault(keyDBPath, "data/todo.db")
	v.SetDefault(keyBcryptCost, 12)
	v.SetDefault(keyCORSOrigins, "*")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetDefault(keyTemplateDir, "web/templates")
	v.SetDefault(keyStaticDir, "web/static")

	// Bind explicitly so keys without defaults (jwt_secret) resolve from env.
	for _, key := range []string{
		keyPort, keyJWTSecret, keyStorageDriver, keyDataDir, keyDBPath,
		keyBcryptCost, keyCORSOrigins, keyLogLevel, keyLogFormat,
		keyTemplateDir, keyStaticDir,
	} {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("config: binding %s: %w", key, err)
		}
	}

	if err := v.BindEnv("config_file", "CONFIG_FILE"); err != nil {
		return nil, fmt.Errorf("config: binding config_file: %w", err)
	}
	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	return &Config{
		Port:          v.GetInt(keyPort),
		JWTSecret:     v.GetString(keyJWTSecret),
		StorageDriver: strings.ToLower(strings.TrimSpace(v.GetString(keyStorageDriver))),
		DataDir:       v.GetString(keyDataDir),
		DBPath:        v.GetString(keyDBPath),
		BcryptCost:    v.GetInt(keyBcryptCost),
		CORSOrigins:   splitList(v.GetString(keyCORSOrigins)),
		LogLevel:      v.GetString(keyLogLevel),
		LogFormat:     strings.ToLower(v.GetString(keyLogFormat)),
		TemplateDir:   v.GetString(keyTemplateDir),
		StaticDir:     v.GetString(keyStaticDir),
	}, nil
}

// Validate reports every problem at once. The server refuses to start on
// any of them; in particular there is no fallback signing secret.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(c.JWTSecret) < MinJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", MinJWTSecretLength))
	}

	switch c.StorageDriver {
	case DriverJSONFile:
		if c.DataDir == "" {
			errs = append(errs, errors.New("DATA_DIR is required for the jsonfile driver"))
		}
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER %q unknown (want %s or %s)",
			c.StorageDriver, DriverJSONFile, DriverSQLite))
	}

	if c.BcryptCost < MinBcryptCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST %d outside [%d, %d]", c.BcryptCost, MinBcryptCost, bcrypt.MaxCost))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("LOG_FORMAT %q unknown (want text or json)", c.LogFormat))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SlogLevel parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL %q unknown", c.LogLevel)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
