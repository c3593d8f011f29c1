package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/packline/jobdesk-api/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Metrics   MetricsConfig
	Jobs      JobsConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite"
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
}

// AuthConfig controls JWT issuing and verification
type AuthConfig struct {
	Enabled     bool
	JWTSecret   string
	TokenTTL    int // hours
	Issuer      string
	BcryptCost  int
	AdminRoles  []string
	PublicPaths []string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	WhitelistIPs          []string
	WhitelistPaths        []string
}

// RedisConfig configures the event publisher
type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
	PoolSize int
	Channel  string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// JobsConfig holds cron expressions (with seconds field) for background jobs
type JobsConfig struct {
	Enabled            bool
	FinancialResync    string
	StaleAssignments   string
	StaleAfterHours    int
	AuditRetention     string
	AuditRetentionDays int
	SchedulerTimeZone  string
	RunTimeoutSec      int
	ShutdownTimeoutSec int
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// TokenTTLDuration returns the JWT lifetime
func (a *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(a.TokenTTL) * time.Hour
}

// RunTimeout bounds a single job run
func (j *JobsConfig) RunTimeout() time.Duration {
	return time.Duration(j.RunTimeoutSec) * time.Second
}

// AuditRetentionWindow returns how long audit entries are kept. Zero keeps
// them forever.
func (j *JobsConfig) AuditRetentionWindow() time.Duration {
	return time.Duration(j.AuditRetentionDays) * 24 * time.Hour
}

// StaleAfter returns the age after which an in-progress assignment is reported
func (j *JobsConfig) StaleAfter() time.Duration {
	return time.Duration(j.StaleAfterHours) * time.Hour
}

// Load loads configuration from file and environment variables.
// Secrets are not resolved here; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and overlays secrets from the configured
// source. Key Vault is only consulted when USE_AZURE_KEY_VAULT=true and the
// environment is staging or production.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider: %w", err)
	}

	if err := ApplySecrets(ctx, cfg, provider); err != nil {
		return nil, err
	}

	logger.Info("Secrets loaded from vault successfully",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)
	return cfg, nil
}

// SecretGetter is the subset of secrets.Provider used to overlay configuration
type SecretGetter interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// ApplySecrets overlays database, JWT, redis and storage secrets onto cfg.
// Missing secrets leave the configured value untouched.
func ApplySecrets(ctx context.Context, cfg *Config, provider SecretGetter) error {
	overlay := []struct {
		secret string
		env    string
		target *string
	}{
		{"JOBDESK-DB-HOST", "DATABASE_HOST", &cfg.Database.Host},
		{"JOBDESK-DB-USER", "DATABASE_USER", &cfg.Database.User},
		{"JOBDESK-DB-PASSWORD", "DATABASE_PASSWORD", &cfg.Database.Password},
		{"JOBDESK-JWT-SECRET", "JWT_SECRET", &cfg.Auth.JWTSecret},
		{"JOBDESK-REDIS-PASSWORD", "REDIS_PASSWORD", &cfg.Redis.Password},
		{"storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING", &cfg.Storage.CloudConnectionString},
	}

	for _, o := range overlay {
		value, err := provider.GetSecretOrEnv(ctx, o.secret, o.env)
		if err != nil || value == "" {
			continue
		}
		*o.target = value
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required when auth is enabled")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Jobdesk API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 3001)

	// Database defaults
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "jobdesk")
	v.SetDefault("database.user", "jobdesk")
	v.SetDefault("database.password", "jobdesk")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "jobdesk.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)

	// Auth defaults; the legacy API was open, so verification is opt-in
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.tokenTTL", 168)
	v.SetDefault("auth.issuer", "jobdesk-api")
	v.SetDefault("auth.bcryptCost", 10)
	v.SetDefault("auth.adminRoles", []string{"admin"})
	v.SetDefault("auth.publicPaths", []string{"/api/auth/login"})

	// Secrets defaults
	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	// Storage defaults
	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "purchase-orders")
	v.SetDefault("storage.maxUploadSizeMB", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Server defaults
	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	// CORS defaults
	v.SetDefault("cors.allowedOrigins", []string{"http://localhost:5173"})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	// Security header defaults
	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	// Rate limiting defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 120)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 240)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready", "/metrics"})

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.channel", "jobdesk.events")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Background jobs defaults (cron with seconds field)
	v.SetDefault("jobs.enabled", true)
	v.SetDefault("jobs.financialResync", "0 0 2 * * *")
	v.SetDefault("jobs.staleAssignments", "0 0 7 * * *")
	v.SetDefault("jobs.staleAfterHours", 72)
	v.SetDefault("jobs.auditRetention", "0 30 3 * * *")
	v.SetDefault("jobs.auditRetentionDays", 365)
	v.SetDefault("jobs.schedulerTimeZone", "UTC")
	v.SetDefault("jobs.runTimeoutSec", 600)
	v.SetDefault("jobs.shutdownTimeoutSec", 30)
}
