package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJSON = `{
	"server_address": ":3000",
	"log_level": "debug",
	"file_storage_path": "json_storage.json",
	"database_dsn": "json-dsn",
	"db_connection_timeout": "15s"
}`

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	file, err := os.CreateTemp("", "config*.json")
	require.NoError(t, err)
	_, err = file.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, file.Close())
	t.Cleanup(func() {
		err := os.Remove(file.Name())
		require.NoError(t, err)
	})
	return file.Name()
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.RunAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.DBFileName)
	assert.Equal(t, "", cfg.DatabaseDSN)
	assert.Equal(t, 10*time.Second, cfg.DBConnectionTimeout)
	assert.Equal(t, "cmd/tracker/migrations", cfg.MigrationsDir)
	assert.Equal(t, "web/static", cfg.StaticDir)
}

func TestConfigEnvOnly(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":7000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FILE_STORAGE_PATH", "env_storage.json")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "env_storage.json", cfg.DBFileName)
}

func TestConfigPriorityJSONOnly(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.RunAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json_storage.json", cfg.DBFileName)
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN)
	assert.Equal(t, 15*time.Second, cfg.DBConnectionTimeout)
}

func TestConfigPriorityJSONPlusEnv(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.RunAddr) // env overrides json
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigPriorityAllSources(t *testing.T) {
	jsonPath := writeTempJSON(t, testJSON)
	t.Setenv("CONFIG", jsonPath)
	t.Setenv("SERVER_ADDRESS", ":4000")

	originalArgs := os.Args
	t.Cleanup(func() { os.Args = originalArgs })
	os.Args = []string{
		"testbin",
		"-a", ":6000",
	}

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":6000", cfg.RunAddr) // CLI > ENV > JSON
	assert.Equal(t, "json-dsn", cfg.DatabaseDSN) // from JSON
}

func TestConfigRejectsUnknownLogLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")

	_, err := New(WithDisableFlagsParsing(true))
	assert.Error(t, err)
}
