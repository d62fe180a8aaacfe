package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates runtime configuration for the FileGate API.
type Config struct {
	Server      ServerConfig
	Postgres    PostgresConfig
	ObjectStore ObjectStoreConfig
	Identity    IdentityConfig
	Metrics     MetricsConfig
}

// ServerConfig parameterizes the HTTP server.
type ServerConfig struct {
	Host         string
	Port         int
	Prefix       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// StrictObjectKeys rejects metadata registrations for keys outside the
	// caller's namespace or for objects that were never uploaded.
	StrictObjectKeys bool
}

// Address returns the listen address in host:port form.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// PostgresConfig contains PostgreSQL connection details for the metadata store.
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the PostgreSQL DSN string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode)
}

// ObjectStoreConfig carries S3-compatible endpoint, credentials and bucket information.
type ObjectStoreConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
}

// IdentityConfig describes how bearer tokens issued by the identity provider are verified.
// At least one of HMACSecret or PublicKeyFile must be set.
type IdentityConfig struct {
	Issuer        string
	Audience      string
	HMACSecret    string
	PublicKeyFile string
}

// MetricsConfig groups observability settings.
type MetricsConfig struct {
	PrometheusPath string
}

// Load reads configuration values from environment variables, applying defaults.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host:             getString("FILEGATE_API_HOST", "0.0.0.0"),
			Port:             getInt("FILEGATE_API_PORT", getInt("PORT", 4000)),
			Prefix:           normalizePrefix(getString("FILEGATE_API_PREFIX", "/api")),
			ReadTimeout:      getDuration("FILEGATE_API_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     getDuration("FILEGATE_API_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:      getDuration("FILEGATE_API_IDLE_TIMEOUT", 60*time.Second),
			StrictObjectKeys: getBool("FILEGATE_STRICT_OBJECT_KEYS", false),
		},
		Postgres: PostgresConfig{
			Host:     getString("POSTGRES_HOST", "localhost"),
			Port:     getInt("POSTGRES_PORT", 5432),
			User:     getString("POSTGRES_USER", "filegate_app"),
			Password: getString("POSTGRES_PASSWORD", "change-me"),
			Database: getString("POSTGRES_DB", "filegate"),
			SSLMode:  strings.ToLower(getString("POSTGRES_SSL_MODE", "disable")),
		},
		ObjectStore: ObjectStoreConfig{
			Endpoint:        getString("OBJECT_STORE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getString("OBJECT_STORE_ACCESS_KEY", ""),
			SecretAccessKey: getString("OBJECT_STORE_SECRET_KEY", ""),
			Bucket:          getString("OBJECT_STORE_BUCKET", ""),
			UseSSL:          getBool("OBJECT_STORE_USE_SSL", false),
			Region:          getString("OBJECT_STORE_REGION", "us-east-1"),
		},
		Identity: IdentityConfig{
			Issuer:        getString("IDENTITY_ISSUER", ""),
			Audience:      getString("IDENTITY_AUDIENCE", ""),
			HMACSecret:    getString("IDENTITY_HMAC_SECRET", ""),
			PublicKeyFile: getString("IDENTITY_PUBLIC_KEY_FILE", ""),
		},
		Metrics: MetricsConfig{
			PrometheusPath: getString("FILEGATE_METRICS_PATH", "/metrics"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.ObjectStore.Bucket == "" {
		return fmt.Errorf("OBJECT_STORE_BUCKET is required")
	}
	if c.ObjectStore.AccessKeyID == "" || c.ObjectStore.SecretAccessKey == "" {
		return fmt.Errorf("object store credentials are required")
	}
	if c.Identity.HMACSecret == "" && c.Identity.PublicKeyFile == "" {
		return fmt.Errorf("one of IDENTITY_HMAC_SECRET or IDENTITY_PUBLIC_KEY_FILE is required")
	}
	return nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	prefix = strings.TrimRight(prefix, "/")
	if prefix == "" {
		return ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return prefix
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val, ok := os.LookupEnv(key); ok {
		val = strings.ToLower(strings.TrimSpace(val))
		switch val {
		case "1", "true", "t", "yes", "y":
			return true
		case "0", "false", "f", "no", "n":
			return false
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	return fallback
}
