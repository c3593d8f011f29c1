package secrets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
	"go.uber.org/zap"
)

// VaultClient wraps the Azure Key Vault client with a small TTL cache
type VaultClient struct {
	client   *azsecrets.Client
	logger   *zap.Logger
	cache    *secretCache
	cacheTTL time.Duration
}

// VaultConfig holds configuration for the vault client
type VaultConfig struct {
	VaultName    string
	CacheEnabled bool
	CacheTTL     time.Duration
}

type cachedSecret struct {
	value     string
	expiresAt time.Time
}

type secretCache struct {
	mu      sync.Mutex
	entries map[string]cachedSecret
	now     func() time.Time
}

func newSecretCache() *secretCache {
	return &secretCache{entries: make(map[string]cachedSecret), now: time.Now}
}

func (c *secretCache) get(name string) (string, bool) {
	if c == nil {
		return "", false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[name]
	if !ok {
		return "", false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, name)
		return "", false
	}
	return entry.value, true
}

func (c *secretCache) put(name, value string, ttl time.Duration) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = cachedSecret{value: value, expiresAt: c.now().Add(ttl)}
}

// NewVaultClient creates a Key Vault client authenticated with
// DefaultAzureCredential (env vars, managed identity or az cli).
func NewVaultClient(cfg *VaultConfig, logger *zap.Logger) (*VaultClient, error) {
	if cfg.VaultName == "" {
		return nil, fmt.Errorf("vault name is required")
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		logger.Error("Failed to create Azure credential", zap.Error(err))
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	vaultURL := fmt.Sprintf("https://%s.vault.azure.net/", cfg.VaultName)
	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		logger.Error("Failed to create Key Vault client", zap.Error(err))
		return nil, fmt.Errorf("failed to create Key Vault client: %w", err)
	}

	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}

	vc := &VaultClient{client: client, logger: logger, cacheTTL: ttl}
	if cfg.CacheEnabled {
		vc.cache = newSecretCache()
	}

	logger.Info("Azure Key Vault client initialized", zap.String("vault_url", vaultURL))
	return vc, nil
}

// GetSecret retrieves a secret from Azure Key Vault
func (v *VaultClient) GetSecret(ctx context.Context, secretName string) (string, error) {
	if value, ok := v.cache.get(secretName); ok {
		return value, nil
	}

	resp, err := v.client.GetSecret(ctx, secretName, "", nil)
	if err != nil {
		v.logger.Error("Failed to get secret from Key Vault",
			zap.String("secret_name", secretName),
			zap.Error(err),
		)
		return "", fmt.Errorf("failed to get secret '%s': %w", secretName, err)
	}
	if resp.Value == nil {
		return "", fmt.Errorf("secret '%s' has no value", secretName)
	}

	v.cache.put(secretName, *resp.Value, v.cacheTTL)
	return *resp.Value, nil
}
