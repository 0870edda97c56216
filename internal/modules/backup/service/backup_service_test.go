package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	backupout "libtrack/internal/modules/backup/adapter/out"
	"libtrack/internal/modules/backup/domain"
	"libtrack/internal/modules/backup/dto"
	"libtrack/internal/modules/backup/service"
	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/platform/clock"
	apperrors "libtrack/internal/platform/errors"
	"libtrack/internal/platform/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	snapshot librarydto.SnapshotOutput
	err      error
}

func (f fakeSource) Snapshot(context.Context) (librarydto.SnapshotOutput, error) {
	return f.snapshot, f.err
}

func sampleSnapshot() librarydto.SnapshotOutput {
	joined := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	due := joined.AddDate(0, 0, 14)
	return librarydto.SnapshotOutput{
		Categories: []librarydto.CategoryRecord{{ID: "c1", Name: "Fantasy"}},
		Books: []librarydto.BookRecord{
			{ID: "b1", Title: "The Witcher", Author: "Andrzej Sapkowski", CategoryID: "c1", AddedAt: joined},
			{ID: "b2", Title: "It", Author: "Stephen King", AddedAt: joined, IsAvailable: true},
		},
		Members: []librarydto.MemberRecord{{ID: "m1", Name: "Derrick M.", Email: "derrick@example.com", JoinedAt: joined}},
		Loans:   []librarydto.LoanRecord{{ID: "l1", BookID: "b1", MemberID: "m1", BorrowedAt: joined, DueAt: &due}},
	}
}

func newService(t *testing.T, now time.Time, source fakeSource) *service.BackupService {
	t.Helper()
	store, err := backupout.NewFSBlobStore(t.TempDir())
	require.NoError(t, err)
	return service.NewBackupService(clock.Fixed{At: now}, source, store, logging.Discard())
}

func Test_Create_WritesTimestampedDocument(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := newService(t, now, fakeSource{snapshot: sampleSnapshot()})
	ctx := context.Background()

	out, err := svc.Create(ctx, dto.CreateInput{Label: "Before import"})
	require.NoError(t, err)
	assert.Equal(t, "backups/20240501T120000Z-before-import.json", out.Key)
	assert.Positive(t, out.Size)

	detail, err := svc.Inspect(ctx, out.Key)
	require.NoError(t, err)
	assert.Equal(t, domain.SchemaVersion, detail.SchemaVersion)
	assert.Equal(t, "Before import", detail.Label)
	assert.True(t, detail.CreatedAt.Equal(now))
	assert.Equal(t, 1, detail.Categories)
	assert.Equal(t, 2, detail.Books)
	assert.Equal(t, 1, detail.Members)
	assert.Equal(t, 1, detail.Loans)
}

func Test_Create_SameSecondAndLabel_Conflicts(t *testing.T) {
	t.Parallel()
	svc := newService(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), fakeSource{snapshot: sampleSnapshot()})
	_, err := svc.Create(context.Background(), dto.CreateInput{Label: "nightly"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), dto.CreateInput{Label: "nightly"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExists)
	assert.ErrorIs(t, err, apperrors.ErrStorageFailure)
}

func Test_Create_SourceFailure(t *testing.T) {
	t.Parallel()
	svc := newService(t, time.Now(), fakeSource{err: errors.New("boom")})
	_, err := svc.Create(context.Background(), dto.CreateInput{})
	require.Error(t, err)
}

func Test_List_NewestFirst(t *testing.T) {
	t.Parallel()
	store, err := backupout.NewFSBlobStore(t.TempDir())
	require.NoError(t, err)
	source := fakeSource{snapshot: sampleSnapshot()}
	ctx := context.Background()

	for _, at := range []time.Time{
		time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	} {
		svc := service.NewBackupService(clock.Fixed{At: at}, source, store, logging.Discard())
		_, err := svc.Create(ctx, dto.CreateInput{})
		require.NoError(t, err)
	}

	svc := service.NewBackupService(clock.SystemClock{}, source, store, logging.Discard())
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "backups/20240601T120000Z.json", list[0].Key)
	assert.Equal(t, "backups/20240501T120000Z.json", list[1].Key)
}

func Test_Inspect_RejectsForeignKeys(t *testing.T) {
	t.Parallel()
	svc := newService(t, time.Now(), fakeSource{})
	_, err := svc.Inspect(context.Background(), "secrets.txt")
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = svc.Inspect(context.Background(), "backups/nope.json")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
