package keys

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// CheckPair verifies that publicKey is the Curve25519 public key of privateKey.
func CheckPair(privateKey, publicKey string) error {
	priv, err := decodeKey(privateKey)
	if err != nil {
		return fmt.Errorf("private key: %w", err)
	}
	pub, err := decodeKey(publicKey)
	if err != nil {
		return fmt.Errorf("public key: %w", err)
	}
	derived, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if !bytes.Equal(derived, pub) {
		return ErrKeyMismatch
	}
	return nil
}

func decodeKey(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(b) != curve25519.ScalarSize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKey, len(b), curve25519.ScalarSize)
	}
	return b, nil
}

// CheckPSK verifies that psk is a base64 encoded 32 byte key.
func CheckPSK(psk string) error {
	if _, err := decodeKey(psk); err != nil {
		return fmt.Errorf("preshared key: %w", err)
	}
	return nil
}
