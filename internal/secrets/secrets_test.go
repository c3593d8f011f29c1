package secrets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memoryReader map[string]string

func (m memoryReader) GetSecret(_ context.Context, name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", assert.AnError
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceVault, ResolveSource(SourceVault, "development"))
}

func TestProvider_EnvironmentSource(t *testing.T) {
	t.Setenv("JOBDESK_TEST_SECRET", "s3cret")

	p, err := NewProvider(&ProviderConfig{Source: SourceEnvironment}, zap.NewNop())
	require.NoError(t, err)

	value, err := p.GetSecret(context.Background(), "JOBDESK_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = p.GetSecret(context.Background(), "JOBDESK_MISSING_SECRET")
	assert.Error(t, err)
	assert.False(t, p.IsVaultEnabled())
}

func TestProvider_GetSecretOrEnvPrefersEnvironment(t *testing.T) {
	p := &Provider{source: SourceVault, vault: memoryReader{"DB-PASSWORD": "from-vault"}, logger: zap.NewNop()}

	value, err := p.GetSecretOrEnv(context.Background(), "DB-PASSWORD", "JOBDESK_DB_PASSWORD_OVERRIDE")
	require.NoError(t, err)
	assert.Equal(t, "from-vault", value)

	t.Setenv("JOBDESK_DB_PASSWORD_OVERRIDE", "from-env")
	value, err = p.GetSecretOrEnv(context.Background(), "DB-PASSWORD", "JOBDESK_DB_PASSWORD_OVERRIDE")
	require.NoError(t, err)
	assert.Equal(t, "from-env", value)
}

func TestNewProvider_VaultRequiresName(t *testing.T) {
	_, err := NewProvider(&ProviderConfig{Source: SourceVault}, zap.NewNop())
	assert.Error(t, err)
}

func TestSecretCache_Expires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := newSecretCache()
	c.now = func() time.Time { return now }

	c.put("a", "1", time.Minute)
	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.get("a")
	assert.False(t, ok)

	var nilCache *secretCache
	_, ok = nilCache.get("a")
	assert.False(t, ok)
}
