package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"libtrack/internal/platform/slug"
)

const (
	// KeyPrefix namespaces backups inside a shared bucket or directory.
	KeyPrefix     = "backups/"
	SchemaVersion = 1
	ContentType   = "application/json"

	keyTimeLayout = "20060102T150405Z"
)

var ErrExists = errors.New("backup already exists")

// Object is one stored blob.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// NewKey names a backup after its UTC creation time and a slugged label.
func NewKey(createdAt time.Time, label string) string {
	name := createdAt.UTC().Format(keyTimeLayout)
	if strings.TrimSpace(label) != "" {
		name += "-" + slug.Make(label)
	}
	return KeyPrefix + name + ".json"
}

// ValidateKey rejects keys outside the backup namespace.
func ValidateKey(key string) error {
	if !strings.HasPrefix(key, KeyPrefix) || !strings.HasSuffix(key, ".json") {
		return fmt.Errorf("not a backup key: %q", key)
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("invalid backup key: %q", key)
	}
	return nil
}
