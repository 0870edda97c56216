package out

import (
	"context"

	backupout "libtrack/internal/modules/backup/port/out"
	librarydto "libtrack/internal/modules/library/dto"
	libraryin "libtrack/internal/modules/library/port/in"
)

type LibrarySnapshotSource struct {
	library libraryin.Usecase
}

func NewLibrarySnapshotSource(library libraryin.Usecase) backupout.SnapshotSource {
	return &LibrarySnapshotSource{library: library}
}

func (s *LibrarySnapshotSource) Snapshot(ctx context.Context) (librarydto.SnapshotOutput, error) {
	return s.library.Export(ctx)
}
