package out

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"libtrack/internal/modules/notify/domain"
	notifyout "libtrack/internal/modules/notify/port/out"

	"gopkg.in/yaml.v3"
)

type manifestFile struct {
	Plugins []domain.Manifest `yaml:"plugins"`
}

// FileManifestStore reads plugin manifests from a YAML file. Relative binary
// paths resolve against the file's directory.
type FileManifestStore struct {
	path string
}

func NewFileManifestStore(path string) notifyout.ManifestStore {
	return &FileManifestStore{path: path}
}

func (s *FileManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read plugin manifest store: %w", err)
	}
	var doc manifestFile
	decoder := yaml.NewDecoder(bytes.NewReader(b))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode plugin manifests: %w", err)
	}
	base := filepath.Dir(s.path)
	manifests := doc.Plugins
	if manifests == nil {
		manifests = []domain.Manifest{}
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(base, manifests[i].Binary))
		}
	}
	return manifests, nil
}
