// Package blob stores uploaded documents and certificates. Tasks reference
// blobs by URL only; the lifecycle never reads file contents.
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

const urlPrefix = "/files/"

// Store persists opaque document blobs.
type Store interface {
	// Save writes the blob and returns its URL.
	Save(ctx context.Context, filename string, r io.Reader) (string, error)
	// Open reads a blob back by the URL Save returned.
	Open(ctx context.Context, url string) (io.ReadCloser, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, url string) error
}

// LocalStore keeps blobs on the local filesystem under a single directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	ext := filepath.Ext(filename)
	name := uuid.New().String() + ext
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create blob: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write blob: %w", err)
	}
	return urlPrefix + name, nil
}

func (s *LocalStore) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	name, ok := strings.CutPrefix(url, urlPrefix)
	if !ok {
		return nil, fmt.Errorf("not a blob URL: %s", url)
	}
	// Reject anything that would escape the blob directory.
	if name != filepath.Base(name) {
		return nil, fmt.Errorf("invalid blob name: %s", name)
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, urlPrefix)
	if !ok {
		return fmt.Errorf("not a blob URL: %s", url)
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("invalid blob name: %s", name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}
