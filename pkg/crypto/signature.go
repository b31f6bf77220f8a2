package crypto

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSigning marks failures on the signing side: missing or unparsable
	// private key, or a failure of the signing primitive.
	ErrSigning = errors.New("signing failed")
	// ErrKey marks a missing or unparsable public key / certificate.
	ErrKey = errors.New("public key unavailable")
)

// KeyMaterial is the raw key input of a SignatureEngine. Either part may be
// empty: a merchant that only verifies callbacks needs no private key.
type KeyMaterial struct {
	PrivateKeyPEM  []byte
	Passphrase     string
	CertificatePEM []byte
}

// SignatureEngine signs canonical messages with the merchant private key and
// verifies gateway messages against the gateway certificate.
// It is immutable after construction and safe for concurrent use.
type SignatureEngine struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// NewSignatureEngine parses the supplied key material once.
// A bad private key yields an error wrapping ErrSigning, a bad certificate one
// wrapping ErrKey. Absent parts are allowed and only fail when used.
func NewSignatureEngine(material KeyMaterial) (*SignatureEngine, error) {
	engine := &SignatureEngine{}

	if len(material.PrivateKeyPEM) > 0 {
		key, err := ParsePrivateKey(material.PrivateKeyPEM, material.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSigning, err)
		}
		engine.privateKey = key
	}

	if len(material.CertificatePEM) > 0 {
		pub, err := ParsePublicKey(material.CertificatePEM)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrKey, err)
		}
		engine.publicKey = pub
	}

	return engine, nil
}

// CanSign reports whether a private key is loaded
func (e *SignatureEngine) CanSign() bool { return e.privateKey != nil }

// CanVerify reports whether a public key is loaded
func (e *SignatureEngine) CanVerify() bool { return e.publicKey != nil }

// Sign returns the RSA PKCS#1 v1.5 SHA-256 signature of message as uppercase hex.
// Signing is deterministic for a fixed key and message.
func (e *SignatureEngine) Sign(message []byte) (string, error) {
	if e.privateKey == nil {
		return "", fmt.Errorf("%w: no private key configured", ErrSigning)
	}

	digest := sha256.Sum256(message)
	sig, err := rsa.SignPKCS1v15(rand.Reader, e.privateKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSigning, err)
	}
	return strings.ToUpper(hex.EncodeToString(sig)), nil
}

// Verify checks a hex signature (any case) over message.
// A mismatch or undecodable hex is reported as (false, nil); an error wrapping
// ErrKey is returned only when no public key is held.
func (e *SignatureEngine) Verify(message []byte, hexSignature string) (bool, error) {
	if e.publicKey == nil {
		return false, fmt.Errorf("%w: no certificate configured", ErrKey)
	}

	sig, err := hex.DecodeString(hexSignature)
	if err != nil || len(sig) == 0 {
		return false, nil
	}

	digest := sha256.Sum256(message)
	if err := rsa.VerifyPKCS1v15(e.publicKey, crypto.SHA256, digest[:], sig); err != nil {
		return false, nil
	}
	return true, nil
}

// PublicKeyFingerprint returns the SHA-256 fingerprint of the loaded public key,
// or "" when none is loaded.
func (e *SignatureEngine) PublicKeyFingerprint() string {
	if e.publicKey == nil {
		return ""
	}
	der, err := x509.MarshalPKIXPublicKey(e.publicKey)
	if err != nil {
		return ""
	}
	return fingerprintOf(der)
}
