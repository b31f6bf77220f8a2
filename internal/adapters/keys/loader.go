package keys

import (
	"context"
	"fmt"
	"strings"

	"github.com/kevin07696/borica-gateway/internal/adapters/ports"
	"github.com/kevin07696/borica-gateway/pkg/crypto"
)

// KeyPaths names the secrets that make up a terminal's key material.
// Empty paths are skipped, so a verify-only deployment can omit the private key.
type KeyPaths struct {
	PrivateKey string
	// Passphrase is used as-is; PassphrasePath, when set, takes precedence
	Passphrase     string
	PassphrasePath string
	Certificate    string
	// CertificateVersion pins a certificate version during rotation
	CertificateVersion string
}

// LoadKeyMaterial reads the configured secrets from reader
func LoadKeyMaterial(ctx context.Context, reader ports.SecretReader, paths KeyPaths) (crypto.KeyMaterial, error) {
	var material crypto.KeyMaterial

	if paths.PrivateKey != "" {
		secret, err := reader.GetSecret(ctx, paths.PrivateKey)
		if err != nil {
			return crypto.KeyMaterial{}, fmt.Errorf("failed to load private key: %w", err)
		}
		material.PrivateKeyPEM = []byte(secret.Value)
	}

	material.Passphrase = paths.Passphrase
	if paths.PassphrasePath != "" {
		secret, err := reader.GetSecret(ctx, paths.PassphrasePath)
		if err != nil {
			return crypto.KeyMaterial{}, fmt.Errorf("failed to load private key passphrase: %w", err)
		}
		material.Passphrase = strings.TrimRight(secret.Value, "\r\n")
	}

	if paths.Certificate != "" {
		var (
			secret *ports.Secret
			err    error
		)
		if paths.CertificateVersion != "" {
			secret, err = reader.GetSecretVersion(ctx, paths.Certificate, paths.CertificateVersion)
		} else {
			secret, err = reader.GetSecret(ctx, paths.Certificate)
		}
		if err != nil {
			return crypto.KeyMaterial{}, fmt.Errorf("failed to load certificate: %w", err)
		}
		material.CertificatePEM = []byte(secret.Value)
	}

	return material, nil
}

// LoadSignatureEngine loads key material and builds an engine from it
func LoadSignatureEngine(ctx context.Context, reader ports.SecretReader, paths KeyPaths) (*crypto.SignatureEngine, error) {
	material, err := LoadKeyMaterial(ctx, reader, paths)
	if err != nil {
		return nil, err
	}
	return crypto.NewSignatureEngine(material)
}
