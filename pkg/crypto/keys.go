package crypto

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"

	"github.com/youmark/pkcs8"
)

const (
	pemTypeRSAPrivateKey       = "RSA PRIVATE KEY"
	pemTypePrivateKey          = "PRIVATE KEY"
	pemTypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	pemTypePublicKey           = "PUBLIC KEY"
	pemTypeRSAPublicKey        = "RSA PUBLIC KEY"
	pemTypeCertificate         = "CERTIFICATE"
)

var (
	// ErrNoPEMBlock is returned when the input holds no PEM data at all
	ErrNoPEMBlock = errors.New("failed to parse PEM block")
	// ErrNotRSA is returned for keys of any other algorithm
	ErrNotRSA = errors.New("not an RSA key")
)

// ParsePrivateKey parses a PEM-encoded RSA private key.
//
// Supported encodings: PKCS#1 ("RSA PRIVATE KEY"), PKCS#8 ("PRIVATE KEY"),
// encrypted PKCS#8 ("ENCRYPTED PRIVATE KEY") and legacy OpenSSL encrypted
// PKCS#1 (Proc-Type: 4,ENCRYPTED). The passphrase is ignored for unencrypted keys.
func ParsePrivateKey(privateKeyPEM []byte, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(privateKeyPEM)
	if block == nil {
		return nil, ErrNoPEMBlock
	}

	switch block.Type {
	case pemTypeEncryptedPrivateKey:
		if passphrase == "" {
			return nil, fmt.Errorf("encrypted private key requires a passphrase")
		}
		key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt private key: %w", err)
		}
		return key, nil

	case pemTypePrivateKey:
		key, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return key, nil

	case pemTypeRSAPrivateKey:
		der := block.Bytes
		//nolint:staticcheck // legacy OpenSSL encrypted keys are still issued by merchants
		if x509.IsEncryptedPEMBlock(block) {
			if passphrase == "" {
				return nil, fmt.Errorf("encrypted private key requires a passphrase")
			}
			//nolint:staticcheck
			decrypted, err := x509.DecryptPEMBlock(block, []byte(passphrase))
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt private key: %w", err)
			}
			der = decrypted
		}
		key, err := x509.ParsePKCS1PrivateKey(der)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		return key, nil

	default:
		return nil, fmt.Errorf("unsupported private key PEM type %q", block.Type)
	}
}

// ParsePublicKey extracts an RSA public key from a PEM-encoded X.509
// certificate, a PKIX public key or a PKCS#1 public key.
func ParsePublicKey(publicPEM []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(publicPEM)
	if block == nil {
		return nil, ErrNoPEMBlock
	}

	var pub interface{}
	switch block.Type {
	case pemTypeCertificate:
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		pub = cert.PublicKey
	case pemTypePublicKey:
		parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		pub = parsed
	case pemTypeRSAPublicKey:
		parsed, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse public key: %w", err)
		}
		pub = parsed
	default:
		return nil, fmt.Errorf("unsupported public key PEM type %q", block.Type)
	}

	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, ErrNotRSA
	}
	return rsaPub, nil
}

// EncryptPrivateKeyPKCS8 re-encodes key as an encrypted PKCS#8 PEM block
func EncryptPrivateKeyPKCS8(key *rsa.PrivateKey, passphrase string) ([]byte, error) {
	der, err := pkcs8.ConvertPrivateKeyToPKCS8(key, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt private key: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypeEncryptedPrivateKey, Bytes: der}), nil
}
