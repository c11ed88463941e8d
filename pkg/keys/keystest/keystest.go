// Package keystest provides a deterministic keys.Provider for tests.
package keystest

import (
	"context"
	"fmt"

	"wgadmin/pkg/keys"
)

var _ keys.Provider = &Provider{}

// Provider hands out numbered keys. The public key of "priv-N" is "pub(priv-N)".
type Provider struct {
	// Err, when set, is returned by every call.
	Err error

	Private, Public, PSK int
}

func (p *Provider) NewPrivateKey(context.Context) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	p.Private++
	return fmt.Sprintf("priv-%d", p.Private), nil
}

func (p *Provider) PublicKey(_ context.Context, privateKey string) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	p.Public++
	return PublicOf(privateKey), nil
}

func (p *Provider) NewPresharedKey(context.Context) (string, error) {
	if p.Err != nil {
		return "", p.Err
	}
	p.PSK++
	return fmt.Sprintf("psk-%d", p.PSK), nil
}

// PublicOf is the public key Provider derives for privateKey.
func PublicOf(privateKey string) string {
	return "pub(" + privateKey + ")"
}

// Unavailable behaves like a missing wg binary.
func Unavailable() *Provider {
	return &Provider{Err: fmt.Errorf("%w: wg: executable file not found in $PATH", keys.ErrProviderUnavailable)}
}
