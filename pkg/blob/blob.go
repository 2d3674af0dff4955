// Package blob abstracts where uploaded media bytes live. Callers hand over a
// path hint and a reader and get back a retrievable URL.
package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded bytes and returns a URL they can be fetched from.
type Store interface {
	Put(ctx context.Context, pathHint string, r io.Reader, contentType string) (string, error)
}

// LocalStore writes uploads under a directory served by the HTTP server at
// baseURL (e.g. /uploads/).
type LocalStore struct {
	Dir     string
	BaseURL string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %v", err)
	}
	return &LocalStore{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Put stores the bytes on disk under a collision-free name derived from the
// path hint.
func (s *LocalStore) Put(_ context.Context, pathHint string, r io.Reader, _ string) (string, error) {
	name := uuid.NewString() + "-" + sanitize(filepath.Base(pathHint))
	dst := filepath.Join(s.Dir, name)

	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %v", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write upload: %v", err)
	}
	return s.BaseURL + "/" + name, nil
}

func sanitize(name string) string {
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "file"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
