package security

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"os"
	"strings"
)

// ErrInvalidKey is returned when PEM or key type is invalid.
var ErrInvalidKey = errors.New("invalid key")

// LoadPEM reads content from path if s does not look like inline PEM; otherwise returns s as bytes.
func LoadPEM(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrInvalidKey
	}
	if strings.HasPrefix(s, "-----BEGIN") {
		return []byte(s), nil
	}
	return os.ReadFile(s)
}

func decodeBlock(s, wantType string) ([]byte, error) {
	pemBytes, err := LoadPEM(s)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil || block.Type != wantType {
		return nil, ErrInvalidKey
	}
	return block.Bytes, nil
}

// ParsePrivateKey parses a PKCS#8 PEM private key. s may be inline PEM or a
// file path. Only RSA and ECDSA keys are accepted; session tokens are signed
// RS256 or ES256 and nothing else.
func ParsePrivateKey(s string) (crypto.Signer, error) {
	der, err := decodeBlock(s, "PRIVATE KEY")
	if err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, err
	}
	switch k := key.(type) {
	case *rsa.PrivateKey:
		return k, nil
	case *ecdsa.PrivateKey:
		return k, nil
	default:
		return nil, ErrInvalidKey
	}
}

// ParsePublicKey parses a PKIX PEM public key (RSA or ECDSA). s may be inline
// PEM or a file path.
func ParsePublicKey(s string) (crypto.PublicKey, error) {
	der, err := decodeBlock(s, "PUBLIC KEY")
	if err != nil {
		return nil, err
	}
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, err
	}
	if KeyAlg(pub) == "" {
		return nil, ErrInvalidKey
	}
	return pub, nil
}

// KeyAlg returns the JWT signing algorithm for pub: "RS256" for RSA,
// "ES256" for ECDSA P-256, empty for anything else.
func KeyAlg(pub crypto.PublicKey) string {
	switch k := pub.(type) {
	case *rsa.PublicKey:
		return "RS256"
	case *ecdsa.PublicKey:
		if k.Curve == elliptic.P256() {
			return "ES256"
		}
		return ""
	default:
		return ""
	}
}
