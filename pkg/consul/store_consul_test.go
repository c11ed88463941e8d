package consul

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewStorePrefix(t *testing.T) {
	s, err := NewStore("127.0.0.1:8500", "custom")
	require.NoError(t, err)
	require.Equal(t, "custom/wg0", s.key("wg0"))

	s, err = NewStore("", "")
	require.NoError(t, err)
	require.Equal(t, DefaultPrefix+"wg0", s.key("wg0"))
}

func TestStore(t *testing.T) {
	addr := os.Getenv("WGADMIN_TEST_CONSUL_ADDR")
	if addr == "" {
		t.Skip("WGADMIN_TEST_CONSUL_ADDR not set")
	}
	ctx := context.Background()
	prefix := fmt.Sprintf("wgadmin-test/%d/", time.Now().UnixNano())
	s, err := NewStore(addr, prefix)
	require.NoError(t, err)
	defer func() {
		_, _ = s.Client().KV().DeleteTree(prefix, nil)
	}()

	_, err = s.Load(ctx, "wg0")
	require.ErrorIs(t, err, fs.ErrNotExist)

	require.NoError(t, s.Save(ctx, "wg0", []byte("{}")))
	ok, err := s.Exists(ctx, "wg0")
	require.NoError(t, err)
	require.True(t, ok)

	data, err := s.Load(ctx, "wg0")
	require.NoError(t, err)
	require.Equal(t, "{}", string(data))

	names, err := s.Names(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"wg0"}, names)
}
