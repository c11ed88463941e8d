package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"wgadmin/pkg/model"
)

// ErrNotFound is returned by Load when no document is stored under a name.
// It is fs.ErrNotExist so backends reading files need no translation.
var ErrNotFound = fs.ErrNotExist

// DocumentStore persists serialized network documents by name.
// Writes replace the whole document; the last writer wins.
type DocumentStore interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Exists(ctx context.Context, name string) (bool, error)
	Close() error
}

// LoadNetwork reads and decodes the network stored under name.
func LoadNetwork(ctx context.Context, s DocumentStore, name string) (*model.Network, error) {
	data, err := s.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	n, err := model.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return n, nil
}

// SaveNetwork encodes n and stores it under name.
func SaveNetwork(ctx context.Context, s DocumentStore, name string, n *model.Network) error {
	data, err := model.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := s.Save(ctx, name, data); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
