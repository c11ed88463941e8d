// Package bundle renders the configs of every peer in a network and packs
// them into a directory tree or a reproducible tar.gz.
package bundle

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"wgadmin/pkg/model"
	"wgadmin/pkg/wireguard"
)

// File is one rendered artifact. Name is slash separated and relative.
type File struct {
	Name string
	Data []byte
	Mode os.FileMode
}

// RenderAll renders every format for every peer as <stem>/<peer>/<stem><ext>.
// Configs carry private keys and are 0600.
func RenderAll(n *model.Network, stem string) ([]File, error) {
	var files []File
	for _, p := range n.Peers() {
		view, err := n.View(p.Name)
		if err != nil {
			return nil, err
		}
		for _, f := range wireguard.Formats {
			out, err := wireguard.Render(f, view)
			if err != nil {
				return nil, fmt.Errorf("render %s for %q: %w", f, p.Name, err)
			}
			files = append(files, File{
				Name: path.Join(stem, p.Name, stem+f.Extension()),
				Data: []byte(out),
				Mode: 0o600,
			})
		}
	}
	return files, nil
}

// WriteDir writes files below root, creating directories as needed.
// It returns the paths written.
func WriteDir(root string, files []File) ([]string, error) {
	written := make([]string, 0, len(files))
	for _, f := range files {
		name, err := cleanName(f.Name)
		if err != nil {
			return written, err
		}
		p := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return written, fmt.Errorf("mkdir output: %w", err)
		}
		if err := os.WriteFile(p, f.Data, modeOf(f)); err != nil {
			return written, fmt.Errorf("write %s: %w", p, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// Build packs files into a tar.gz with sorted entries and zeroed timestamps,
// so equal inputs give byte-identical archives. It returns the archive and
// its sha256 in hex.
func Build(files []File) ([]byte, string, error) {
	sorted := make([]File, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.ModTime = time.Unix(0, 0)
	tw := tar.NewWriter(gz)

	for _, f := range sorted {
		name, err := cleanName(f.Name)
		if err != nil {
			_ = tw.Close()
			_ = gz.Close()
			return nil, "", err
		}
		hdr := &tar.Header{
			Name:    name,
			Mode:    int64(modeOf(f)),
			Size:    int64(len(f.Data)),
			ModTime: time.Unix(0, 0),
		}
		if err := tw.WriteHeader(hdr); err != nil {
			_ = tw.Close()
			_ = gz.Close()
			return nil, "", err
		}
		if _, err := tw.Write(f.Data); err != nil {
			_ = tw.Close()
			_ = gz.Close()
			return nil, "", err
		}
	}
	if err := tw.Close(); err != nil {
		return nil, "", err
	}
	if err := gz.Close(); err != nil {
		return nil, "", err
	}

	sum := sha256.Sum256(buf.Bytes())
	return buf.Bytes(), hex.EncodeToString(sum[:]), nil
}

// cleanName rejects absolute names and names escaping the bundle root.
func cleanName(name string) (string, error) {
	clean := path.Clean(filepath.ToSlash(name))
	if clean == "." || strings.HasPrefix(clean, "/") || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("bundle: bad file name %q", name)
	}
	return clean, nil
}

func modeOf(f File) os.FileMode {
	if f.Mode == 0 {
		return 0o644
	}
	return f.Mode
}
