package in

import (
	"context"

	"libtrack/internal/modules/notify/dto"
	notifyin "libtrack/internal/modules/notify/port/in"
)

type CLIHandler struct {
	usecase notifyin.Usecase
}

func NewCLIHandler(usecase notifyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Remind(ctx context.Context, pluginName string, dryRun bool) (dto.DispatchOutput, error) {
	return h.usecase.Dispatch(ctx, dto.DispatchInput{PluginName: pluginName, DryRun: dryRun})
}
