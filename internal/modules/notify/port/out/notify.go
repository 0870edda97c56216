package out

import (
	"context"

	"libtrack/internal/modules/notify/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	SendReminders(ctx context.Context, manifest domain.Manifest, reminders []domain.Reminder) (domain.Delivery, error)
}

// LoanSource yields one reminder per overdue loan whose member still exists.
type LoanSource interface {
	OverdueReminders(ctx context.Context) ([]domain.Reminder, error)
}
