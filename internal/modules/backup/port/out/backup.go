package out

import (
	"context"
	"io"

	"libtrack/internal/modules/backup/domain"
	librarydto "libtrack/internal/modules/library/dto"
)

// BlobStore is a flat key/value object store. Put never overwrites.
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (domain.Object, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]domain.Object, error)
}

type SnapshotSource interface {
	Snapshot(ctx context.Context) (librarydto.SnapshotOutput, error)
}
