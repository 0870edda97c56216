package out

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"libtrack/internal/modules/backup/domain"
	backupout "libtrack/internal/modules/backup/port/out"
	apperrors "libtrack/internal/platform/errors"
)

// FSBlobStore maps keys onto files below root.
type FSBlobStore struct {
	root string
}

func NewFSBlobStore(root string) (backupout.BlobStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}
	return &FSBlobStore{root: root}, nil
}

func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (s *FSBlobStore) Put(_ context.Context, key string, r io.Reader, _ string) (domain.Object, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return domain.Object{}, err
	}
	path := filepath.Join(s.root, filepath.FromSlash(clean))
	if _, err := os.Stat(path); err == nil {
		return domain.Object{}, fmt.Errorf("%w: %s", domain.ErrExists, key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return domain.Object{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return domain.Object{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return domain.Object{}, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return domain.Object{}, err
	}
	if err := tmp.Close(); err != nil {
		return domain.Object{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return domain.Object{}, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return domain.Object{}, err
	}
	return domain.Object{Key: clean, Size: info.Size(), LastModified: info.ModTime().UTC()}, nil
}

func (s *FSBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	clean, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrNotFound, key)
		}
		return nil, err
	}
	return f, nil
}

func (s *FSBlobStore) List(_ context.Context, prefix string) ([]domain.Object, error) {
	var objects []domain.Object
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, domain.Object{Key: key, Size: info.Size(), LastModified: info.ModTime().UTC()})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	return objects, nil
}
