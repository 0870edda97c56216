package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"libtrack/internal/modules/notify/domain"
	"libtrack/internal/modules/notify/dto"
	"libtrack/internal/modules/notify/service"
	"libtrack/internal/platform/logging"
)

type fakeStore struct {
	manifests []domain.Manifest
}

func (s fakeStore) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, nil
}

type fakeHost struct {
	lifecycleErr error
	sent         [][]domain.Reminder
	delivery     domain.Delivery
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error { return h.lifecycleErr }

func (h *fakeHost) GetMetadata(context.Context, domain.Manifest) (domain.Metadata, error) {
	return domain.Metadata{Name: "mailer", Version: "1"}, nil
}

func (h *fakeHost) SendReminders(_ context.Context, _ domain.Manifest, reminders []domain.Reminder) (domain.Delivery, error) {
	h.sent = append(h.sent, reminders)
	return h.delivery, nil
}

type fakeLoans struct {
	reminders []domain.Reminder
}

func (l fakeLoans) OverdueReminders(context.Context) ([]domain.Reminder, error) {
	return l.reminders, nil
}

func writeBinary(t *testing.T, payload string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mailer")
	if err := os.WriteFile(path, []byte(payload), 0o755); err != nil {
		t.Fatalf("write plugin binary: %v", err)
	}
	hash := sha256.Sum256([]byte(payload))
	return path, hex.EncodeToString(hash[:])
}

func manifestFor(binary, checksum string) domain.Manifest {
	return domain.Manifest{
		Name:         "mailer",
		Version:      "1.0.0",
		Binary:       binary,
		SHA256:       checksum,
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityRemind},
	}
}

func overdue() []domain.Reminder {
	due := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []domain.Reminder{
		{LoanID: "l1", BookTitle: "It", MemberName: "Noah D.", MemberEmail: "noah@example.com", DueAt: due, DaysOverdue: 3},
		{LoanID: "l2", BookTitle: "The Witcher", MemberName: "Derrick M.", DueAt: due, DaysOverdue: 3},
	}
}

func TestDispatchSendsOverdueReminders(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "plugin")
	host := &fakeHost{delivery: domain.Delivery{Delivered: 1, Failures: []domain.Failure{{LoanID: "l2", Reason: "member has no email"}}}}
	svc := service.NewReminderService(fakeStore{manifests: []domain.Manifest{manifestFor(bin, sum)}}, host, fakeLoans{reminders: overdue()}, logging.Discard())

	out, err := svc.Dispatch(context.Background(), dto.DispatchInput{PluginName: "mailer"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(host.sent) != 1 || len(host.sent[0]) != 2 {
		t.Fatalf("expected one batch of 2 reminders, got %+v", host.sent)
	}
	if out.Delivered != 1 || len(out.Failures) != 1 || out.Failures[0].LoanID != "l2" {
		t.Fatalf("unexpected dispatch output: %+v", out)
	}
	if len(out.Reminders) != 2 || out.Reminders[0].MemberEmail != "noah@example.com" {
		t.Fatalf("unexpected reminders: %+v", out.Reminders)
	}
}

func TestDispatchDryRunDoesNotStartPlugin(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "plugin")
	host := &fakeHost{lifecycleErr: errors.New("must not be called")}
	svc := service.NewReminderService(fakeStore{manifests: []domain.Manifest{manifestFor(bin, sum)}}, host, fakeLoans{reminders: overdue()}, logging.Discard())

	out, err := svc.Dispatch(context.Background(), dto.DispatchInput{PluginName: "mailer", DryRun: true})
	if err != nil {
		t.Fatalf("dry run: %v", err)
	}
	if !out.DryRun || len(out.Reminders) != 2 || out.Delivered != 0 {
		t.Fatalf("unexpected dry run output: %+v", out)
	}
	if len(host.sent) != 0 {
		t.Fatalf("dry run must not send")
	}
}

func TestDispatchWithoutOverdueLoansSkipsSend(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "plugin")
	host := &fakeHost{}
	svc := service.NewReminderService(fakeStore{manifests: []domain.Manifest{manifestFor(bin, sum)}}, host, fakeLoans{}, logging.Discard())
	out, err := svc.Dispatch(context.Background(), dto.DispatchInput{PluginName: "mailer"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(out.Reminders) != 0 || len(host.sent) != 0 {
		t.Fatalf("expected nothing sent, got %+v", host.sent)
	}
}

func TestDispatchRejectsUnrunnablePlugins(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "plugin")
	cases := []struct {
		name   string
		plugin string
		mutate func(*domain.Manifest)
		want   error
	}{
		{name: "unknown", plugin: "nope", mutate: func(*domain.Manifest) {}, want: domain.ErrPluginNotFound},
		{name: "disabled", plugin: "mailer", mutate: func(m *domain.Manifest) { m.Enabled = false }, want: domain.ErrPluginDisabled},
		{name: "checksum", plugin: "mailer", mutate: func(m *domain.Manifest) { m.SHA256 = strings.Repeat("0", 64) }, want: domain.ErrChecksumMismatch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			manifest := manifestFor(bin, sum)
			tc.mutate(&manifest)
			host := &fakeHost{}
			svc := service.NewReminderService(fakeStore{manifests: []domain.Manifest{manifest}}, host, fakeLoans{reminders: overdue()}, logging.Discard())
			_, err := svc.Dispatch(context.Background(), dto.DispatchInput{PluginName: tc.plugin})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(host.sent) != 0 {
				t.Fatalf("nothing should be sent")
			}
		})
	}
}

func TestDispatchPropagatesLifecycleTimeout(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "plugin")
	host := &fakeHost{lifecycleErr: context.DeadlineExceeded}
	svc := service.NewReminderService(fakeStore{manifests: []domain.Manifest{manifestFor(bin, sum)}}, host, fakeLoans{reminders: overdue()}, logging.Discard())
	_, err := svc.Dispatch(context.Background(), dto.DispatchInput{PluginName: "mailer"})
	if !errors.Is(err, domain.ErrPluginTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestListRejectsDuplicateNames(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "plugin")
	m := manifestFor(bin, sum)
	svc := service.NewReminderService(fakeStore{manifests: []domain.Manifest{m, m}}, nil, fakeLoans{}, logging.Discard())
	if _, err := svc.List(context.Background()); err == nil {
		t.Fatalf("expected duplicate plugin error")
	}
}

func TestDoctorReportsEachPlugin(t *testing.T) {
	t.Parallel()
	bin, sum := writeBinary(t, "plugin")
	healthy := manifestFor(bin, sum)
	mismatch := manifestFor(bin, strings.Repeat("0", 64))
	mismatch.Name = "stale"
	missing := manifestFor(filepath.Join(t.TempDir(), "absent"), sum)
	missing.Name = "missing"
	invalid := domain.Manifest{Name: "broken"}

	svc := service.NewReminderService(fakeStore{manifests: []domain.Manifest{healthy, mismatch, missing, invalid}}, &fakeHost{}, fakeLoans{}, logging.Discard())
	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected four results, got %d", len(results))
	}
	if !results[0].LifecycleOK || !results[0].ChecksumValid || results[0].Error != "" {
		t.Fatalf("expected healthy plugin, got %+v", results[0])
	}
	if results[1].ChecksumValid || results[1].Error != "checksum mismatch" {
		t.Fatalf("expected checksum mismatch, got %+v", results[1])
	}
	if results[2].BinaryReachable {
		t.Fatalf("expected unreachable binary, got %+v", results[2])
	}
	if results[3].Error == "" {
		t.Fatalf("expected validation error for broken manifest")
	}
}
