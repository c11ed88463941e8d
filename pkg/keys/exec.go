package keys

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Exec shells out to the wg(8) tool.
type Exec struct {
	Path string
}

func NewExec(path string) *Exec {
	if path == "" {
		path = DefaultWGPath
	}
	return &Exec{Path: path}
}

func (e *Exec) NewPrivateKey(ctx context.Context) (string, error) {
	return e.run(ctx, "", "genkey")
}

func (e *Exec) PublicKey(ctx context.Context, privateKey string) (string, error) {
	if strings.TrimSpace(privateKey) == "" {
		return "", fmt.Errorf("%w: empty private key", ErrInvalidKey)
	}
	return e.run(ctx, privateKey+"\n", "pubkey")
}

func (e *Exec) NewPresharedKey(ctx context.Context) (string, error) {
	return e.run(ctx, "", "genpsk")
}

func (e *Exec) run(ctx context.Context, stdin string, arg string) (string, error) {
	path := e.Path
	if path == "" {
		path = DefaultWGPath
	}
	cmd := exec.CommandContext(ctx, path, arg)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s %s: %v: %s", ErrProviderUnavailable, path, arg, err, msg)
		}
		return "", fmt.Errorf("%w: %s %s: %v", ErrProviderUnavailable, path, arg, err)
	}
	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("%w: %s %s: empty output", ErrProviderUnavailable, path, arg)
	}
	return out, nil
}
