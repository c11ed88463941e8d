package keys

import (
	"context"
	"fmt"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"
)

// Native generates keys in-process with wgtypes. It never fails for lack of
// an external tool.
type Native struct{}

func (Native) NewPrivateKey(context.Context) (string, error) {
	priv, err := wgtypes.GeneratePrivateKey()
	if err != nil {
		return "", fmt.Errorf("generate private key: %w", err)
	}
	return priv.String(), nil
}

func (Native) PublicKey(_ context.Context, privateKey string) (string, error) {
	priv, err := wgtypes.ParseKey(privateKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return priv.PublicKey().String(), nil
}

func (Native) NewPresharedKey(context.Context) (string, error) {
	psk, err := wgtypes.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("generate preshared key: %w", err)
	}
	return psk.String(), nil
}
