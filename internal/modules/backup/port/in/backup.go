package in

import (
	"context"

	"libtrack/internal/modules/backup/dto"
)

type Usecase interface {
	Create(ctx context.Context, input dto.CreateInput) (dto.BackupOutput, error)
	List(ctx context.Context) ([]dto.BackupOutput, error)
	Inspect(ctx context.Context, key string) (dto.BackupDetail, error)
}
