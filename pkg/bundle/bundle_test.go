package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"wgadmin/pkg/keys/keystest"
	"wgadmin/pkg/model"
)

func testNetwork(t *testing.T) *model.Network {
	ctx := context.Background()
	kp := &keystest.Provider{}
	n := model.New(model.DefaultSettings())
	for _, name := range []string{"b", "a"} {
		_, err := n.AddPeer(ctx, kp, model.PeerOptions{Name: name})
		require.NoError(t, err)
	}
	_, err := n.AddConnection(ctx, kp, "a", "b", "", false)
	require.NoError(t, err)
	return n
}

func TestRenderAll(t *testing.T) {
	files, err := RenderAll(testNetwork(t), "wg0")
	require.NoError(t, err)
	var names []string
	for _, f := range files {
		names = append(names, f.Name)
		require.Equal(t, os.FileMode(0o600), f.Mode)
	}
	require.Equal(t, []string{
		"wg0/b/wg0.conf", "wg0/b/wg0.nmconnection",
		"wg0/a/wg0.conf", "wg0/a/wg0.nmconnection",
	}, names)
	require.Contains(t, string(files[0].Data), "PublicKey = pub(priv-2)")
}

func TestWriteDir(t *testing.T) {
	root := t.TempDir()
	files, err := RenderAll(testNetwork(t), "wg0")
	require.NoError(t, err)
	written, err := WriteDir(root, files)
	require.NoError(t, err)
	require.Len(t, written, 4)

	data, err := os.ReadFile(filepath.Join(root, "wg0", "a", "wg0.conf"))
	require.NoError(t, err)
	require.Contains(t, string(data), "PrivateKey = priv-2")

	_, err = WriteDir(root, []File{{Name: "../escape", Data: []byte("x")}})
	require.Error(t, err)
}

func TestBuildDeterministic(t *testing.T) {
	files := []File{
		{Name: "z/conf", Data: []byte("zzz")},
		{Name: "a/conf", Data: []byte("aaa"), Mode: 0o600},
	}
	data1, sum1, err := Build(files)
	require.NoError(t, err)
	data2, sum2, err := Build([]File{files[1], files[0]})
	require.NoError(t, err)
	require.Equal(t, data1, data2)
	require.Equal(t, sum1, sum2)
	require.Len(t, sum1, 64)

	gz, err := gzip.NewReader(bytes.NewReader(data1))
	require.NoError(t, err)
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names = append(names, hdr.Name)
		if hdr.Name == "a/conf" {
			require.Equal(t, int64(0o600), hdr.Mode)
		}
	}
	require.Equal(t, []string{"a/conf", "z/conf"}, names)
}

func TestBuildRejectsAbsolute(t *testing.T) {
	_, _, err := Build([]File{{Name: "/etc/passwd"}})
	require.Error(t, err)
}
