package config

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSecrets map[string]string

func (f fakeSecrets) GetSecretOrEnv(_ context.Context, secretName, _ string) (string, error) {
	if v, ok := f[secretName]; ok {
		return v, nil
	}
	return "", errors.New("not found")
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir from Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3001, cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Storage.Mode)
	assert.False(t, cfg.Auth.Enabled)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenTTLDuration())
	assert.Equal(t, "0 0 2 * * *", cfg.Jobs.FinancialResync)
	assert.Equal(t, 72*time.Hour, cfg.Jobs.StaleAfter())
	assert.Contains(t, cfg.RateLimit.WhitelistPaths, "/health")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "jobdesk", SSLMode: "require"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=jobdesk sslmode=require", d.ConnectionString())
}

func TestApplySecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Database.Host = "localhost"
	cfg.Auth.Enabled = true

	err := ApplySecrets(context.Background(), cfg, fakeSecrets{
		"JOBDESK-DB-PASSWORD": "vault-pass",
		"JOBDESK-JWT-SECRET":  "vault-jwt",
	})
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "vault-pass", cfg.Database.Password)
	assert.Equal(t, "vault-jwt", cfg.Auth.JWTSecret)
}

func TestApplySecrets_RequiresJWTSecretWhenAuthEnabled(t *testing.T) {
	cfg := &Config{}
	cfg.Auth.Enabled = true

	err := ApplySecrets(context.Background(), cfg, fakeSecrets{})
	assert.Error(t, err)
}
