package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSecret = "a-secret-of-sufficient-length"

// clearEnv unsets every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"PORT", "JWT_SECRET", "STORAGE_DRIVER", "DATA_DIR", "DB_PATH", "BCRYPT_COST",
		"CORS_ORIGINS", "LOG_LEVEL", "LOG_FORMAT", "TEMPLATE_DIR", "STATIC_DIR", "CONFIG_FILE",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, DriverJSONFile, cfg.StorageDriver)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.JWTSecret)

	// no secret, no start
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET is required")
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("JWT_SECRET", validSecret)
	t.Setenv("STORAGE_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("BCRYPT_COST", "11")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "JSON")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, validSecret, cfg.JWTSecret)
	assert.Equal(t, DriverSQLite, cfg.StorageDriver)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, 11, cfg.BcryptCost)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORSOrigins)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_ConfigFileWithEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "todo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"port: 4000",
		"jwt_secret: " + validSecret,
		"data_dir: /var/lib/todo",
	}, "\n")), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port, "env should win over file")
	assert.Equal(t, validSecret, cfg.JWTSecret)
	assert.Equal(t, "/var/lib/todo", cfg.DataDir)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Port:          3000,
			JWTSecret:     validSecret,
			StorageDriver: DriverJSONFile,
			DataDir:       "data",
			BcryptCost:    12,
			LogLevel:      "info",
			LogFormat:     "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"short secret", func(c *Config) { c.JWTSecret = "short" }, "at least 16"},
		{"bad port", func(c *Config) { c.Port = 0 }, "PORT"},
		{"unknown driver", func(c *Config) { c.StorageDriver = "postgres" }, "STORAGE_DRIVER"},
		{"sqlite without path", func(c *Config) { c.StorageDriver = DriverSQLite; c.DBPath = "" }, "DB_PATH"},
		{"cost too low", func(c *Config) { c.BcryptCost = 4 }, "BCRYPT_COST"},
		{"cost too high", func(c *Config) { c.BcryptCost = 32 }, "BCRYPT_COST"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Config{Port: -1, StorageDriver: "x", BcryptCost: 1, LogLevel: "info", LogFormat: "text"}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"PORT", "JWT_SECRET", "STORAGE_DRIVER", "BCRYPT_COST"} {
		assert.ErrorContains(t, err, want)
	}
}
