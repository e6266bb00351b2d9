package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("DATABASE_URL", "postgres://localhost/ordertrack?sslmode=disable")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 6, cfg.MinPasswordLength)
	assert.Equal(t, 20, cfg.DefaultPageSize)
	assert.Equal(t, 100, cfg.MaxPageSize)
	assert.Equal(t, 1.0, cfg.TraceSampleRatio)
	assert.False(t, cfg.SecureCookies())
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", "")

	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestProductionRequiresSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("ENVIRONMENT", EnvProduction)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "JWT_SECRET is required in production")

	t.Setenv("JWT_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.SecureCookies())
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SERVER_PORT", "eighty")

	_, err := Load()
	assert.ErrorContains(t, err, "invalid SERVER_PORT")
}

func TestBcryptCostBounds(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BCRYPT_COST", "99")

	_, err := Load()
	assert.ErrorContains(t, err, "BCRYPT_COST")
}

func TestLoadReadsEnvFile(t *testing.T) {
	setBaseEnv(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CORS_ALLOWED_ORIGINS=https://a.example, https://b.example\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// godotenv never overrides a variable that exists, even when empty
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	require.NoError(t, os.Unsetenv("CORS_ALLOWED_ORIGINS"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestTraceSampleRatioBounds(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TRACE_SAMPLE_RATIO", "1.5")

	_, err := Load()
	assert.ErrorContains(t, err, "TRACE_SAMPLE_RATIO")

	t.Setenv("TRACE_SAMPLE_RATIO", "0.25")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.TraceSampleRatio)
}

func TestInMemoryStoreIsDevelopmentOnly(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DATABASE_URL", MemoryDatabaseURL)

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.InMemory())

	t.Setenv("ENVIRONMENT", EnvProduction)
	t.Setenv("JWT_SECRET", "s3cret")
	_, err = Load()
	assert.Error(t, err)
}

func TestBootstrapAdminNeedsBothValues(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BOOTSTRAP_ADMIN_EMAIL", "root@example.com")

	_, err := Load()
	assert.ErrorContains(t, err, "BOOTSTRAP_ADMIN")
}
