package keys

import (
	"context"
	"fmt"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/kevin07696/borica-gateway/internal/adapters/ports"
	"go.uber.org/zap"
)

// GCPSecretManagerConfig contains configuration for the GCP Secret Manager source
type GCPSecretManagerConfig struct {
	ProjectID string
	CacheTTL  time.Duration
}

// DefaultGCPSecretManagerConfig returns default configuration
func DefaultGCPSecretManagerConfig(projectID string) *GCPSecretManagerConfig {
	return &GCPSecretManagerConfig{
		ProjectID: projectID,
		CacheTTL:  5 * time.Minute,
	}
}

// SecretVersionAccessor is the subset of the Secret Manager client used here
type SecretVersionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
}

type gcpSource struct {
	client    SecretVersionAccessor
	projectID string
	logger    *zap.Logger
	cache     *secretCache
}

// NewGCPSecretManagerSource creates a source using application default credentials
func NewGCPSecretManagerSource(ctx context.Context, cfg *GCPSecretManagerConfig, logger *zap.Logger) (ports.SecretReader, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("GCP project ID is required")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP Secret Manager client: %w", err)
	}

	logger.Info("GCP Secret Manager key source initialized",
		zap.String("project_id", cfg.ProjectID),
		zap.Duration("cache_ttl", cfg.CacheTTL),
	)
	return NewGCPSecretManagerSourceWithClient(client, cfg, logger), nil
}

// NewGCPSecretManagerSourceWithClient wraps an existing client
func NewGCPSecretManagerSourceWithClient(client SecretVersionAccessor, cfg *GCPSecretManagerConfig, logger *zap.Logger) ports.SecretReader {
	return &gcpSource{
		client:    client,
		projectID: cfg.ProjectID,
		logger:    logger,
		cache:     newSecretCache(true, cfg.CacheTTL),
	}
}

// GetSecret reads the latest version of a secret.
// Path "borica/V1800001/cert" maps to secret id "borica-V1800001-cert".
func (g *gcpSource) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	if cached := g.cache.get(path); cached != nil {
		g.logger.Debug("Secret retrieved from cache", zap.String("path", path))
		return cached, nil
	}

	secret, err := g.access(ctx, path, "latest")
	if err != nil {
		return nil, err
	}
	g.cache.set(path, secret)
	return secret, nil
}

// GetSecretVersion reads a pinned version, bypassing the cache
func (g *gcpSource) GetSecretVersion(ctx context.Context, path string, version string) (*ports.Secret, error) {
	return g.access(ctx, path, version)
}

func (g *gcpSource) access(ctx context.Context, path, version string) (*ports.Secret, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/%s", g.projectID, secretID(path), version)

	result, err := g.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		g.logger.Error("Failed to access GCP secret",
			zap.String("path", path),
			zap.String("secret_name", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to access GCP secret %s: %w", path, err)
	}

	resolved := version
	if n := result.GetName(); n != "" {
		resolved = n[strings.LastIndex(n, "/")+1:]
	}

	return &ports.Secret{
		Value:   string(result.GetPayload().GetData()),
		Version: resolved,
		Metadata: map[string]string{
			"gcp_project_id": g.projectID,
			"gcp_secret":     secretID(path),
		},
	}, nil
}

// secretID maps a slash path onto the flat GCP secret id namespace
func secretID(path string) string {
	return strings.ReplaceAll(strings.Trim(path, "/"), "/", "-")
}
