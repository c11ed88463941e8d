// Package consul stores network documents in the Consul KV store.
package consul

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	consulapi "github.com/hashicorp/consul/api"
)

// DefaultPrefix is the KV folder documents live under.
const DefaultPrefix = "wgadmin/networks/"

// Store is a Consul-backed document store.
type Store struct {
	cli    *consulapi.Client
	prefix string
}

// NewStore connects to the agent at addr (consul defaults when empty).
func NewStore(addr, prefix string) (*Store, error) {
	cfg := consulapi.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	cli, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Store{cli: cli, prefix: prefix}, nil
}

func (s *Store) key(name string) string {
	return s.prefix + name
}

func (s *Store) Load(ctx context.Context, name string) ([]byte, error) {
	kv, _, err := s.cli.KV().Get(s.key(name), (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if kv == nil {
		return nil, fmt.Errorf("%s: %w", s.key(name), fs.ErrNotExist)
	}
	return kv.Value, nil
}

func (s *Store) Save(ctx context.Context, name string, data []byte) error {
	_, err := s.cli.KV().Put(&consulapi.KVPair{Key: s.key(name), Value: data}, (&consulapi.WriteOptions{}).WithContext(ctx))
	return err
}

func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	kv, _, err := s.cli.KV().Get(s.key(name), (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return false, err
	}
	return kv != nil, nil
}

// Names lists the documents under the prefix, sorted.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	keys, _, err := s.cli.KV().Keys(s.prefix, "", (&consulapi.QueryOptions{}).WithContext(ctx))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if name := strings.TrimPrefix(k, s.prefix); name != "" {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Client exposes the underlying Consul client.
func (s *Store) Client() *consulapi.Client {
	return s.cli
}

func (s *Store) Close() error { return nil }
