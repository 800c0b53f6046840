package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredSecrets(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-for-tests")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-for-tests")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredSecrets(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "15m0s", cfg.JWTAccessExpiry.String())
	assert.Equal(t, "168h0m0s", cfg.JWTRefreshExpiry.String())
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
}

func TestLoad_MissingAccessSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "")
	t.Setenv("JWT_REFRESH_SECRET", "refresh-secret-for-tests")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_ACCESS_SECRET")
}

func TestLoad_MissingRefreshSecret(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "access-secret-for-tests")
	t.Setenv("JWT_REFRESH_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")
}

func TestLoad_IdenticalSecretsRejected(t *testing.T) {
	t.Setenv("JWT_ACCESS_SECRET", "same-secret-on-both-sides")
	t.Setenv("JWT_REFRESH_SECRET", "same-secret-on-both-sides")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoad_ProductionRequiresLongSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("JWT_ACCESS_SECRET", "short")
	t.Setenv("JWT_REFRESH_SECRET", "a-sufficiently-long-refresh-secret-value")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least 32 characters")
}

func TestLoad_InvalidPort(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("HTTP_PORT", "70000")

	_, err := Load()
	require.Error(t, err)
}

func TestPostgresConfig(t *testing.T) {
	setRequiredSecrets(t)
	t.Setenv("POSTGRES_HOST", "db.internal")
	t.Setenv("POSTGRES_DB", "catalog")

	cfg, err := Load()
	require.NoError(t, err)

	pg := cfg.Postgres()
	assert.Equal(t, "db.internal", pg.Host)
	assert.Equal(t, "catalog", pg.Database)
	assert.Contains(t, pg.DSN(), "host=db.internal")
	assert.Contains(t, pg.DSN(), "dbname=catalog")
}
