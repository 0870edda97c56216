package service

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"libtrack/internal/modules/backup/domain"
	"libtrack/internal/modules/backup/dto"
	backupout "libtrack/internal/modules/backup/port/out"
	librarydto "libtrack/internal/modules/library/dto"
	"libtrack/internal/platform/clock"
	apperrors "libtrack/internal/platform/errors"

	clog "github.com/charmbracelet/log"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// document is the on-disk backup format.
type document struct {
	SchemaVersion int                       `json:"schema_version"`
	Label         string                    `json:"label,omitempty"`
	CreatedAt     time.Time                 `json:"created_at"`
	Library       librarydto.SnapshotOutput `json:"library"`
}

type BackupService struct {
	clock  clock.Clock
	source backupout.SnapshotSource
	store  backupout.BlobStore
	logger *clog.Logger
}

func NewBackupService(clock clock.Clock, source backupout.SnapshotSource, store backupout.BlobStore, logger *clog.Logger) *BackupService {
	return &BackupService{clock: clock, source: source, store: store, logger: logger}
}

func (s *BackupService) Create(ctx context.Context, input dto.CreateInput) (dto.BackupOutput, error) {
	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		return dto.BackupOutput{}, fmt.Errorf("read library snapshot: %w", err)
	}
	now := s.clock.Now().UTC()
	doc := document{
		SchemaVersion: domain.SchemaVersion,
		Label:         strings.TrimSpace(input.Label),
		CreatedAt:     now,
		Library:       snapshot,
	}
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return dto.BackupOutput{}, fmt.Errorf("encode backup: %w", err)
	}
	key := domain.NewKey(now, doc.Label)
	obj, err := s.store.Put(ctx, key, bytes.NewReader(payload), domain.ContentType)
	if err != nil {
		return dto.BackupOutput{}, fmt.Errorf("%w: write backup %s: %w", apperrors.ErrStorageFailure, key, err)
	}
	s.logger.Info("backup written", "key", obj.Key, "bytes", obj.Size)
	return toOutput(obj), nil
}

// List returns backups newest first.
func (s *BackupService) List(ctx context.Context) ([]dto.BackupOutput, error) {
	objects, err := s.store.List(ctx, domain.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: list backups: %w", apperrors.ErrStorageFailure, err)
	}
	out := make([]dto.BackupOutput, 0, len(objects))
	for _, obj := range objects {
		if domain.ValidateKey(obj.Key) != nil {
			continue
		}
		out = append(out, toOutput(obj))
	}
	// keys start with the creation timestamp
	slices.SortFunc(out, func(a, b dto.BackupOutput) int {
		return strings.Compare(b.Key, a.Key)
	})
	return out, nil
}

func (s *BackupService) Inspect(ctx context.Context, key string) (dto.BackupDetail, error) {
	if err := domain.ValidateKey(key); err != nil {
		return dto.BackupDetail{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
	}
	rc, err := s.store.Get(ctx, key)
	if err != nil {
		return dto.BackupDetail{}, err
	}
	defer rc.Close()

	var doc document
	if err := json.NewDecoder(rc).Decode(&doc); err != nil {
		return dto.BackupDetail{}, fmt.Errorf("decode backup %s: %w", key, err)
	}
	if doc.SchemaVersion > domain.SchemaVersion {
		return dto.BackupDetail{}, fmt.Errorf("%w: backup schema version %d is newer than supported %d", apperrors.ErrUnsupported, doc.SchemaVersion, domain.SchemaVersion)
	}
	return dto.BackupDetail{
		Key:           key,
		SchemaVersion: doc.SchemaVersion,
		Label:         doc.Label,
		CreatedAt:     doc.CreatedAt,
		Categories:    len(doc.Library.Categories),
		Books:         len(doc.Library.Books),
		Members:       len(doc.Library.Members),
		Loans:         len(doc.Library.Loans),
	}, nil
}

func toOutput(obj domain.Object) dto.BackupOutput {
	return dto.BackupOutput{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified}
}
