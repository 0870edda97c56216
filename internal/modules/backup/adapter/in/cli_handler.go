package in

import (
	"context"

	"libtrack/internal/modules/backup/dto"
	backupin "libtrack/internal/modules/backup/port/in"
)

type CLIHandler struct {
	usecase backupin.Usecase
}

func NewCLIHandler(usecase backupin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Create(ctx context.Context, label string) (dto.BackupOutput, error) {
	return h.usecase.Create(ctx, dto.CreateInput{Label: label})
}

func (h CLIHandler) List(ctx context.Context) ([]dto.BackupOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Inspect(ctx context.Context, key string) (dto.BackupDetail, error) {
	return h.usecase.Inspect(ctx, key)
}
