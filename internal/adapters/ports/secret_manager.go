package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g. a PEM document)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretReader retrieves key material from a secret store.
// Backends: local filesystem, AWS Secrets Manager, HashiCorp Vault, GCP Secret Manager.
// Implementations cache values with a TTL.
type SecretReader interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - File: "{base_path}/merchant.key" or an absolute path
	//   - AWS: "borica/{terminal}/private-key"
	//   - Vault: "secret/data/borica/{terminal}"
	//   - GCP: "borica/{terminal}/cert", stored as secret id "borica-{terminal}-cert"
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// GetSecretVersion retrieves a specific version of a secret.
	// Used while the bank rotates its gateway certificate.
	GetSecretVersion(ctx context.Context, path string, version string) (*Secret, error)
}
