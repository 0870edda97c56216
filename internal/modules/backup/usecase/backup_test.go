package usecase_test

import (
	"context"
	"testing"
	"time"

	backupout "libtrack/internal/modules/backup/adapter/out"
	"libtrack/internal/modules/backup/dto"
	"libtrack/internal/modules/backup/service"
	"libtrack/internal/modules/backup/usecase"
	libraryout "libtrack/internal/modules/library/adapter/out"
	"libtrack/internal/modules/library/domain"
	libraryservice "libtrack/internal/modules/library/service"
	libraryusecase "libtrack/internal/modules/library/usecase"
	"libtrack/internal/platform/clock"
	"libtrack/internal/platform/id"
	"libtrack/internal/platform/logging"
)

func TestBackupOfSeededLibrary(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store := libraryservice.NewEntityStore(libraryout.NewMemoryGateway(domain.Dataset{}))
	librarySvc := libraryservice.NewLibraryService(clock.Fixed{At: now}, id.UUID{}, store, nil, logging.Discard())
	if err := librarySvc.Load(ctx); err != nil {
		t.Fatalf("load library: %v", err)
	}
	library := libraryusecase.NewInteractor(librarySvc, domain.DefaultDueDays)
	if _, err := library.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	blobs, err := backupout.NewFSBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	uc := usecase.NewInteractor(service.NewBackupService(clock.Fixed{At: now}, backupout.NewLibrarySnapshotSource(library), blobs, logging.Discard()))

	created, err := uc.Create(ctx, dto.CreateInput{Label: "demo"})
	if err != nil {
		t.Fatalf("create backup: %v", err)
	}
	detail, err := uc.Inspect(ctx, created.Key)
	if err != nil {
		t.Fatalf("inspect backup: %v", err)
	}
	if detail.Categories != 3 || detail.Books != 4 || detail.Members != 3 || detail.Loans != 1 {
		t.Fatalf("unexpected backup contents: %+v", detail)
	}
	list, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 || list[0].Key != created.Key {
		t.Fatalf("unexpected listing: %+v", list)
	}
}
