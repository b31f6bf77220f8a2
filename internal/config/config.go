// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/kevin07696/borica-gateway/internal/adapters/borica"
	"github.com/kevin07696/borica-gateway/internal/adapters/keys"
	"github.com/kevin07696/borica-gateway/internal/adapters/ports"
	"github.com/kevin07696/borica-gateway/internal/domain"
	pkgerrors "github.com/kevin07696/borica-gateway/pkg/errors"
	"go.uber.org/zap"
)

// Key sources
const (
	KeySourceFile  = "file"
	KeySourceAWS   = "aws"
	KeySourceVault = "vault"
	KeySourceGCP   = "gcp"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Borica  BoricaConfig  `yaml:"borica"`
	Gateway GatewayConfig `yaml:"gateway"`
	Keys    KeysConfig    `yaml:"keys"`
	Logger  LoggerConfig  `yaml:"logger"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port            int           `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT" env-default:"9090"`
	RateLimit       int           `yaml:"rate_limit" env:"SERVER_RATE_LIMIT" env-default:"10"`
	RateBurst       int           `yaml:"rate_burst" env:"SERVER_RATE_BURST" env-default:"20"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// BoricaConfig holds the merchant's terminal identity and request defaults
type BoricaConfig struct {
	Environment  string `yaml:"environment" env:"BORICA_ENVIRONMENT" env-default:"sandbox"`
	Terminal     string `yaml:"terminal" env:"BORICA_TERMINAL"`
	Merchant     string `yaml:"merchant" env:"BORICA_MERCHANT"`
	MerchantName string `yaml:"merchant_name" env:"BORICA_MERCHANT_NAME"`
	MerchantURL  string `yaml:"merchant_url" env:"BORICA_MERCHANT_URL"`
	Email        string `yaml:"email" env:"BORICA_EMAIL"`
	BackRef      string `yaml:"backref" env:"BORICA_BACKREF"`
	MacVariant   string `yaml:"mac_variant" env:"BORICA_MAC_VARIANT" env-default:"extended"`
	Currency     string `yaml:"currency" env:"BORICA_CURRENCY" env-default:"BGN"`
	Country      string `yaml:"country" env:"BORICA_COUNTRY" env-default:"BG"`
	MerchantGMT  string `yaml:"merchant_gmt" env:"BORICA_MERCHANT_GMT" env-default:"+03"`
	Language     string `yaml:"language" env:"BORICA_LANGUAGE" env-default:"BG"`
}

// GatewayConfig holds transport settings for the e-Gateway client
type GatewayConfig struct {
	URL        string        `yaml:"url" env:"BORICA_GATEWAY_URL"`
	Timeout    time.Duration `yaml:"timeout" env:"BORICA_GATEWAY_TIMEOUT" env-default:"30s"`
	MaxRetries int           `yaml:"max_retries" env:"BORICA_GATEWAY_MAX_RETRIES" env-default:"3"`
	RateLimit  float64       `yaml:"rate_limit" env:"BORICA_GATEWAY_RATE_LIMIT" env-default:"10"`
	Burst      int           `yaml:"burst" env:"BORICA_GATEWAY_BURST" env-default:"5"`
}

// KeysConfig selects where key material is read from
type KeysConfig struct {
	Source             string        `yaml:"source" env:"KEY_SOURCE" env-default:"file"`
	BasePath           string        `yaml:"base_path" env:"KEY_BASE_PATH" env-default:"./secrets"`
	PrivateKeyPath     string        `yaml:"private_key_path" env:"PRIVATE_KEY_PATH"`
	Passphrase         string        `yaml:"passphrase" env:"PRIVATE_KEY_PASSPHRASE"`
	PassphrasePath     string        `yaml:"passphrase_path" env:"PRIVATE_KEY_PASSPHRASE_PATH"`
	CertificatePath    string        `yaml:"certificate_path" env:"CERTIFICATE_PATH"`
	CertificateVersion string        `yaml:"certificate_version" env:"CERTIFICATE_VERSION"`
	CacheTTL           time.Duration `yaml:"cache_ttl" env:"KEY_CACHE_TTL" env-default:"5m"`

	AWS struct {
		Region   string `yaml:"region" env:"AWS_REGION" env-default:"eu-central-1"`
		Profile  string `yaml:"profile" env:"AWS_PROFILE"`
		Endpoint string `yaml:"endpoint" env:"AWS_SECRETS_ENDPOINT"`
	} `yaml:"aws"`

	Vault struct {
		Address    string `yaml:"address" env:"VAULT_ADDR" env-default:"http://127.0.0.1:8200"`
		AuthMethod string `yaml:"auth_method" env:"VAULT_AUTH_METHOD" env-default:"token"`
		Token      string `yaml:"token" env:"VAULT_TOKEN"`
		RoleID     string `yaml:"role_id" env:"VAULT_ROLE_ID"`
		SecretID   string `yaml:"secret_id" env:"VAULT_SECRET_ID"`
		Namespace  string `yaml:"namespace" env:"VAULT_NAMESPACE"`
		MountPath  string `yaml:"mount_path" env:"VAULT_MOUNT_PATH" env-default:"secret"`
		KVVersion  string `yaml:"kv_version" env:"VAULT_KV_VERSION" env-default:"v2"`
	} `yaml:"vault"`

	GCP struct {
		ProjectID string `yaml:"project_id" env:"GCP_PROJECT_ID"`
	} `yaml:"gcp"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL" env-default:"info"` // debug, info, warn, error
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT" env-default:"false"`
}

// Load reads path (when non-empty) and applies environment overrides.
// Environment variables take precedence over YAML values.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, cfg)
	} else {
		err = cleanenv.ReadEnv(cfg)
	}
	if err != nil {
		desc, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("load config: %w; %s", err, desc)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings every deployment needs
func (c *Config) Validate() error {
	var errs pkgerrors.ValidationErrors

	if c.Borica.Terminal == "" {
		errs.Add("BORICA_TERMINAL", "terminal is required")
	} else if len(c.Borica.Terminal) != 8 {
		errs.Add("BORICA_TERMINAL", "terminal must be 8 characters")
	}
	if c.Borica.Merchant == "" {
		errs.Add("BORICA_MERCHANT", "merchant is required")
	}
	if _, err := domain.ParseMacVariant(c.Borica.MacVariant); err != nil {
		errs.Add("BORICA_MAC_VARIANT", err.Error())
	}

	switch c.Keys.Source {
	case KeySourceFile, KeySourceAWS:
	case KeySourceVault:
		if c.Keys.Vault.AuthMethod == "approle" && (c.Keys.Vault.RoleID == "" || c.Keys.Vault.SecretID == "") {
			errs.Add("VAULT_ROLE_ID", "approle auth requires role and secret ids")
		}
	case KeySourceGCP:
		if c.Keys.GCP.ProjectID == "" {
			errs.Add("GCP_PROJECT_ID", "gcp key source requires a project id")
		}
	default:
		errs.Add("KEY_SOURCE", "must be one of file, aws, vault, gcp")
	}
	if c.Keys.PrivateKeyPath == "" && c.Keys.CertificatePath == "" {
		errs.Add("PRIVATE_KEY_PATH", "a private key or certificate path is required")
	}

	return errs.Err()
}

// Variant returns the configured MAC variant; Validate guarantees it parses
func (c *Config) Variant() domain.MacVariant {
	v, _ := domain.ParseMacVariant(c.Borica.MacVariant)
	return v
}

// GatewayClientConfig converts the gateway settings into client configuration
func (c *Config) GatewayClientConfig() *borica.GatewayConfig {
	gc := borica.DefaultGatewayConfig(strings.ToLower(c.Borica.Environment))
	if c.Gateway.URL != "" {
		gc.URL = c.Gateway.URL
	}
	gc.Timeout = c.Gateway.Timeout
	gc.MaxRetries = c.Gateway.MaxRetries
	gc.RateLimit = c.Gateway.RateLimit
	gc.Burst = c.Gateway.Burst
	gc.Variant = c.Variant()
	return gc
}

// KeyPaths returns the secret locations of the terminal's key material
func (c *Config) KeyPaths() keys.KeyPaths {
	return keys.KeyPaths{
		PrivateKey:         c.Keys.PrivateKeyPath,
		Passphrase:         c.Keys.Passphrase,
		PassphrasePath:     c.Keys.PassphrasePath,
		Certificate:        c.Keys.CertificatePath,
		CertificateVersion: c.Keys.CertificateVersion,
	}
}

// NewRequest returns a request of type t carrying the terminal identity and defaults
func (c *Config) NewRequest(t domain.TransactionType) *borica.TransactionRequest {
	req := borica.NewRequest(t)
	req.Terminal = c.Borica.Terminal
	req.Merchant = c.Borica.Merchant
	req.MerchantName = c.Borica.MerchantName
	req.MerchantURL = c.Borica.MerchantURL
	req.Email = c.Borica.Email
	req.BackRef = c.Borica.BackRef
	req.Currency = c.Borica.Currency
	req.Country = c.Borica.Country
	req.MerchantTimezone = c.Borica.MerchantGMT
	req.Language = c.Borica.Language
	return req
}

// SecretReader builds the key material source selected by Keys.Source
func (c *Config) SecretReader(ctx context.Context, logger *zap.Logger) (ports.SecretReader, error) {
	switch c.Keys.Source {
	case KeySourceAWS:
		awsCfg := keys.DefaultAWSSecretsManagerConfig(c.Keys.AWS.Region)
		awsCfg.Profile = c.Keys.AWS.Profile
		awsCfg.Endpoint = c.Keys.AWS.Endpoint
		awsCfg.CacheTTL = c.Keys.CacheTTL
		return keys.NewAWSSecretsManagerSource(ctx, awsCfg, logger)
	case KeySourceVault:
		vaultCfg := keys.DefaultVaultConfig(c.Keys.Vault.Address)
		vaultCfg.AuthMethod = c.Keys.Vault.AuthMethod
		vaultCfg.Token = c.Keys.Vault.Token
		vaultCfg.RoleID = c.Keys.Vault.RoleID
		vaultCfg.SecretID = c.Keys.Vault.SecretID
		vaultCfg.Namespace = c.Keys.Vault.Namespace
		vaultCfg.MountPath = c.Keys.Vault.MountPath
		vaultCfg.KVVersion = c.Keys.Vault.KVVersion
		vaultCfg.CacheTTL = c.Keys.CacheTTL
		return keys.NewVaultSource(ctx, vaultCfg, logger)
	case KeySourceGCP:
		gcpCfg := keys.DefaultGCPSecretManagerConfig(c.Keys.GCP.ProjectID)
		gcpCfg.CacheTTL = c.Keys.CacheTTL
		return keys.NewGCPSecretManagerSource(ctx, gcpCfg, logger)
	default:
		return keys.NewFileSource(c.Keys.BasePath, logger), nil
	}
}

// NewLogger builds a zap logger for the configured level
func (c *LoggerConfig) NewLogger() (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if c.Development {
		zapCfg = zap.NewDevelopmentConfig()
	}
	level, err := zap.ParseAtomicLevel(c.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	zapCfg.Level = level
	return zapCfg.Build()
}
