package domain_test

import (
	"testing"
	"time"

	"libtrack/internal/modules/backup/domain"
)

func TestNewKey(t *testing.T) {
	t.Parallel()
	at := time.Date(2024, 5, 1, 9, 30, 5, 0, time.FixedZone("CEST", 2*60*60))
	cases := map[string]string{
		"":               "backups/20240501T073005Z.json",
		"Before Import!": "backups/20240501T073005Z-before-import.json",
		"Été":            "backups/20240501T073005Z-ete.json",
	}
	for label, want := range cases {
		if got := domain.NewKey(at, label); got != want {
			t.Fatalf("NewKey(%q) = %s, want %s", label, got, want)
		}
		if err := domain.ValidateKey(want); err != nil {
			t.Fatalf("validate %s: %v", want, err)
		}
	}
}

func TestValidateKeyRejectsForeignKeys(t *testing.T) {
	t.Parallel()
	for _, key := range []string{"notes.json", "backups/x.yaml", "backups/../secret.json"} {
		if err := domain.ValidateKey(key); err == nil {
			t.Fatalf("expected %q to be rejected", key)
		}
	}
}
