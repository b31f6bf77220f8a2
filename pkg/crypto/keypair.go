package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

// KeyPair represents a generated RSA keypair with a self-signed certificate.
type KeyPair struct {
	PrivateKeyPEM  string
	PublicKeyPEM   string
	CertificatePEM string
	Fingerprint    string
}

// GenerateTestKeyPair generates an RSA keypair of the given size together with a
// self-signed certificate. Used by tests and by the CLI keygen action; real
// gateway certificates are issued by the bank.
func GenerateTestKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	// Encode private key to PKCS#1 PEM format
	privateKeyPEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  pemTypeRSAPrivateKey,
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	}))

	publicKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}
	publicKeyPEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  pemTypePublicKey,
		Bytes: publicKeyBytes,
	}))

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: "borica-test-terminal", Country: []string{"BG"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}
	certificatePEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  pemTypeCertificate,
		Bytes: certDER,
	}))

	return &KeyPair{
		PrivateKeyPEM:  privateKeyPEM,
		PublicKeyPEM:   publicKeyPEM,
		CertificatePEM: certificatePEM,
		Fingerprint:    fingerprintOf(publicKeyBytes),
	}, nil
}

// ComputeFingerprint computes the SHA-256 fingerprint of the public key held in
// a PEM block (PUBLIC KEY, RSA PUBLIC KEY or CERTIFICATE).
func ComputeFingerprint(publicPEM string) (string, error) {
	pub, err := ParsePublicKey([]byte(publicPEM))
	if err != nil {
		return "", err
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return fingerprintOf(der), nil
}

func fingerprintOf(pkixDER []byte) string {
	hash := sha256.Sum256(pkixDER)
	return hex.EncodeToString(hash[:])
}
