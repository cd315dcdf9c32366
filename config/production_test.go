package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/natefinch/lumberjack.v2"
)

func validConfig(t *testing.T) *ProductionConfig {
	t.Helper()
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "0123456789abcdef0123456789abcdef")
	return FromEnv()
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg := validConfig(t)

	assert.Equal(t, PartitionBackendPostgres, cfg.Roster.PartitionBackend)
	assert.Equal(t, "calledCustomers", cfg.Roster.PartitionKey)
	assert.Equal(t, 52, cfg.Roster.RowHeight)
	assert.Equal(t, 520, cfg.Roster.ViewportHeight)
	assert.Equal(t, 2, cfg.Roster.Overscan)
	assert.Zero(t, cfg.Roster.CheckLatency)
	assert.Equal(t, 8080, cfg.Server.Port)
	require.NoError(t, ValidateProductionConfig(cfg))
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("ROSTER_PARTITION_BACKEND", "redis")
	t.Setenv("ROSTER_CHECK_LATENCY", "1500ms")
	t.Setenv("ROSTER_OVERSCAN", "5")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("ROSTER_ROW_HEIGHT", "not-a-number")

	cfg := validConfig(t)
	assert.Equal(t, PartitionBackendRedis, cfg.Roster.PartitionBackend)
	assert.Equal(t, 1500*time.Millisecond, cfg.Roster.CheckLatency)
	assert.Equal(t, 5, cfg.Roster.Overscan)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, 52, cfg.Roster.RowHeight, "unparsable values fall back to the default")
}

func TestValidateProductionConfig_CollectsAllViolations(t *testing.T) {
	cfg := validConfig(t)
	cfg.Database.Password = ""
	cfg.JWT.SecretKey = "short"
	cfg.Roster.PartitionBackend = "memcached"
	cfg.Roster.RowHeight = 0
	cfg.Roster.ExportTimezone = "Mars/Olympus"

	err := ValidateProductionConfig(cfg)
	require.Error(t, err)
	for _, want := range []string{
		"DB_PASSWORD is required",
		"JWT_SECRET_KEY must be at least 32 characters long",
		"ROSTER_PARTITION_BACKEND must be one of",
		"ROSTER_ROW_HEIGHT must be positive",
		"ROSTER_EXPORT_TIMEZONE is invalid",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateProductionConfig_RSAKeys(t *testing.T) {
	cfg := validConfig(t)
	cfg.JWT.UseRSAKeys = true
	cfg.JWT.SecretKey = ""

	err := ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_PUBLIC_KEY is required")

	cfg.JWT.PublicKey = "-----BEGIN PUBLIC KEY-----"
	assert.NoError(t, ValidateProductionConfig(cfg))
}

func TestValidateProductionConfig_RedisBackendNeedsCache(t *testing.T) {
	cfg := validConfig(t)
	cfg.Roster.PartitionBackend = PartitionBackendRedis
	cfg.Cache.Enabled = false

	err := ValidateProductionConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires CACHE_ENABLED")
}

func TestRosterConfig_ExportLocation(t *testing.T) {
	loc, err := RosterConfig{}.ExportLocation()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = RosterConfig{ExportTimezone: "America/New_York"}.ExportLocation()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nROSTER_TEST_PLAIN=plain\nROSTER_TEST_QUOTED=\"quoted value\"\nROSTER_TEST_KEEP=from-file\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("ROSTER_TEST_KEEP", "from-env")
	t.Setenv("ROSTER_TEST_PLAIN", "")
	t.Setenv("ROSTER_TEST_QUOTED", "")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "plain", os.Getenv("ROSTER_TEST_PLAIN"))
	assert.Equal(t, "quoted value", os.Getenv("ROSTER_TEST_QUOTED"))
	assert.Equal(t, "from-env", os.Getenv("ROSTER_TEST_KEEP"))

	assert.NoError(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoggingConfig_Writers(t *testing.T) {
	stdout, closeFn := LoggingConfig{Output: "stdout"}.LogWriter()
	assert.Equal(t, os.Stdout, stdout)
	assert.NoError(t, closeFn())

	path := filepath.Join(t.TempDir(), "app.log")
	cfg := LoggingConfig{Output: "file", FilePath: path, MaxSize: 1}
	w, closeFn := cfg.LogWriter()
	rotator, ok := w.(*lumberjack.Logger)
	require.True(t, ok)
	assert.Equal(t, path, rotator.Filename)

	logger, closeLogger := cfg.NewLogger("roster ")
	logger.Print("started")
	require.NoError(t, closeLogger())
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "roster ")
	assert.Contains(t, string(data), "started")
}
