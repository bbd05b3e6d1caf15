package localstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nasermirzaei89/murmur/contents"
)

type InvalidKeyError struct {
	Key string
}

func (err InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid object key %q", err.Key)
}

// Store keeps objects as files below a directory.
type Store struct {
	dir       string
	publicURL string
}

var _ contents.ImageStore = (*Store)(nil)

func New(dir, publicURL string) (*Store, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Store{
		dir:       dir,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (store *Store) path(key string) (string, error) {
	if !filepath.IsLocal(key) {
		return "", &InvalidKeyError{Key: key}
	}

	return filepath.Join(store.dir, filepath.FromSlash(key)), nil
}

func (store *Store) Put(ctx context.Context, key string, r io.Reader, size int64, _ string) (string, error) {
	p, err := store.path(key)
	if err != nil {
		return "", err
	}

	err = os.MkdirAll(filepath.Dir(p), 0o755)
	if err != nil {
		return "", fmt.Errorf("failed to create object directory: %w", err)
	}

	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("failed to create object file: %w", err)
	}

	defer func() {
		err := f.Close()
		if err != nil {
			slog.ErrorContext(ctx, "failed to close object file", "key", key, "error", err)
		}
	}()

	written, err := io.Copy(f, io.LimitReader(r, size))
	if err != nil {
		return "", fmt.Errorf("failed to write object file: %w", err)
	}

	if written != size {
		return "", fmt.Errorf("short object write: wrote %d of %d bytes", written, size)
	}

	return store.publicURL + "/" + key, nil
}

func (store *Store) Delete(_ context.Context, key string) error {
	p, err := store.path(key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove object file: %w", err)
	}

	return nil
}

// Handler serves stored objects. Mount it with http.StripPrefix.
func (store *Store) Handler() http.Handler {
	return http.FileServerFS(noDirFS{os.DirFS(store.dir)})
}

type noDirFS struct {
	fs.FS
}

func (nd noDirFS) Open(name string) (fs.File, error) {
	f, err := nd.FS.Open(name)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	if info.IsDir() {
		_ = f.Close()

		return nil, fs.ErrNotExist
	}

	return f, nil
}
