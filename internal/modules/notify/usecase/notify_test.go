package usecase_test

import (
	"context"
	"testing"

	"libtrack/internal/modules/notify/domain"
	"libtrack/internal/modules/notify/service"
	"libtrack/internal/modules/notify/usecase"
	"libtrack/internal/platform/logging"
)

type emptyStore struct{}

func (emptyStore) Load(context.Context) ([]domain.Manifest, error) { return nil, nil }

type noLoans struct{}

func (noLoans) OverdueReminders(context.Context) ([]domain.Reminder, error) { return nil, nil }

func TestInteractorListsNoPlugins(t *testing.T) {
	t.Parallel()
	uc := usecase.NewInteractor(service.NewReminderService(emptyStore{}, nil, noLoans{}, logging.Discard()))
	plugins, err := uc.List(context.Background())
	if err != nil {
		t.Fatalf("list plugins: %v", err)
	}
	if len(plugins) != 0 {
		t.Fatalf("expected no plugins, got %d", len(plugins))
	}
	results, err := uc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no doctor results, got %d", len(results))
	}
}
