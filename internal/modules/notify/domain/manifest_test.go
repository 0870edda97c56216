package domain_test

import (
	"strings"
	"testing"
	"time"

	"libtrack/internal/modules/notify/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:         "mailer",
		Version:      "1",
		Binary:       "/tmp/mailer",
		SHA256:       strings.Repeat("a", 64),
		Enabled:      true,
		Capabilities: []domain.Capability{domain.CapabilityRemind},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name      string
		mutate    func(*domain.Manifest)
		shouldErr bool
	}{
		{name: "valid", mutate: func(*domain.Manifest) {}},
		{name: "missing name", mutate: func(m *domain.Manifest) { m.Name = "" }, shouldErr: true},
		{name: "missing version", mutate: func(m *domain.Manifest) { m.Version = "" }, shouldErr: true},
		{name: "missing binary", mutate: func(m *domain.Manifest) { m.Binary = "" }, shouldErr: true},
		{name: "uppercase sha", mutate: func(m *domain.Manifest) { m.SHA256 = strings.Repeat("A", 64) }, shouldErr: true},
		{name: "no capabilities", mutate: func(m *domain.Manifest) { m.Capabilities = nil }, shouldErr: true},
		{name: "unknown capability", mutate: func(m *domain.Manifest) { m.Capabilities = []domain.Capability{"command"} }, shouldErr: true},
		{name: "duplicate capability", mutate: func(m *domain.Manifest) {
			m.Capabilities = []domain.Capability{domain.CapabilityRemind, domain.CapabilityRemind}
		}, shouldErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			manifest := validManifest()
			tc.mutate(&manifest)
			err := manifest.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
		})
	}
}

func TestManifestHasCapability(t *testing.T) {
	t.Parallel()
	manifest := validManifest()
	if !manifest.HasCapability(domain.CapabilityRemind) {
		t.Fatalf("expected remind capability")
	}
	manifest.Capabilities = nil
	if manifest.HasCapability(domain.CapabilityRemind) {
		t.Fatalf("expected capability to be missing")
	}
}

func TestReminderValidate(t *testing.T) {
	t.Parallel()
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ok := domain.Reminder{LoanID: "l1", DueAt: due, DaysOverdue: 2}
	if err := ok.Validate(); err != nil {
		t.Fatalf("validate reminder: %v", err)
	}
	for name, r := range map[string]domain.Reminder{
		"missing loan": {DueAt: due, DaysOverdue: 2},
		"missing due":  {LoanID: "l1", DaysOverdue: 2},
		"not overdue":  {LoanID: "l1", DueAt: due},
	} {
		if err := r.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
