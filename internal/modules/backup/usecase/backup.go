package usecase

import (
	"context"

	"libtrack/internal/modules/backup/dto"
	backupin "libtrack/internal/modules/backup/port/in"
	"libtrack/internal/modules/backup/service"
)

type Interactor struct {
	svc *service.BackupService
}

func NewInteractor(svc *service.BackupService) backupin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Create(ctx context.Context, input dto.CreateInput) (dto.BackupOutput, error) {
	return i.svc.Create(ctx, input)
}

func (i *Interactor) List(ctx context.Context) ([]dto.BackupOutput, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Inspect(ctx context.Context, key string) (dto.BackupDetail, error) {
	return i.svc.Inspect(ctx, key)
}
