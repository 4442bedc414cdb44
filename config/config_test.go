package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Load()
	cfg.Directory.Backend = DirectoryBackendPostgres
	cfg.Directory.DatabaseURL = "postgres://localhost/authgate"
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Service.Port)
	assert.Equal(t, "login_credential", cfg.Directory.SheetName)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, time.Hour, cfg.SessionTTL())
	assert.Equal(t, 6*time.Hour, cfg.AssetCacheTTL())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SESSION_TTL_SECONDS", "120")
	t.Setenv("SESSION_BACKEND", "redis")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("TRACING_SAMPLE_RATE", "0.25")

	cfg := Load()

	assert.Equal(t, 2*time.Minute, cfg.SessionTTL())
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRate)
}

func TestValidateBackendRequirements(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	sheets := cfg
	sheets.Directory.Backend = DirectoryBackendSheets
	sheets.Directory.SheetID = ""
	assert.ErrorContains(t, sheets.Validate(), "SHEET_ID")

	pg := cfg
	pg.Directory.DatabaseURL = ""
	assert.ErrorContains(t, pg.Validate(), "DATABASE_URL")

	unknown := cfg
	unknown.Directory.Backend = "ldap"
	assert.ErrorContains(t, unknown.Validate(), "DIRECTORY_BACKEND")

	badSession := cfg
	badSession.Session.Backend = "memcached"
	assert.ErrorContains(t, badSession.Validate(), "SESSION_BACKEND")
}

func TestValidateTTLsAndAssets(t *testing.T) {
	cfg := validConfig()

	badTTL := cfg
	badTTL.Session.TTLSeconds = 0
	assert.ErrorContains(t, badTTL.Validate(), "SESSION_TTL_SECONDS")

	logo := cfg
	logo.Assets.LogoFileID = "logo-1"
	assert.ErrorContains(t, logo.Validate(), "MINIO_ENDPOINT")

	logo.Assets.MinioEndpoint = "localhost:9000"
	logo.Assets.MinioAccessKey = "ak"
	logo.Assets.MinioSecretKey = "sk"
	logo.Assets.MinioBucket = "assets"
	assert.NoError(t, logo.Validate())

	badRate := cfg
	badRate.Tracing.SampleRate = 1.5
	assert.ErrorContains(t, badRate.Validate(), "TRACING_SAMPLE_RATE")
}
