// Package keys produces WireGuard key material: private keys, their public
// counterparts and pre-shared keys.
package keys

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrProviderUnavailable = errors.New("key provider unavailable")
	ErrInvalidKey          = errors.New("invalid key")
	ErrKeyMismatch         = errors.New("public key does not match private key")
)

const (
	KindWG     = "wg"
	KindNative = "native"

	DefaultWGPath = "wg"
)

// Provider generates key material. Every call may block and may fail; a
// failure is terminal for the operation that asked for the key.
type Provider interface {
	NewPrivateKey(ctx context.Context) (string, error)
	PublicKey(ctx context.Context, privateKey string) (string, error)
	NewPresharedKey(ctx context.Context) (string, error)
}

// New returns the provider registered under kind. wgPath is only used by
// the "wg" provider.
func New(kind, wgPath string) (Provider, error) {
	switch kind {
	case "", KindWG:
		return NewExec(wgPath), nil
	case KindNative:
		return Native{}, nil
	default:
		return nil, fmt.Errorf("unsupported key provider: %s", kind)
	}
}
