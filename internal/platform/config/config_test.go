package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"libtrack/internal/platform/config"
)

func TestNewDerivesPaths(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.Storage.Driver != config.DriverSQLite {
		t.Fatalf("expected sqlite driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != filepath.Join(dir, ".libtrack", "libtrack.db") {
		t.Fatalf("unexpected dsn %q", cfg.Storage.DSN)
	}
	if cfg.Loans.DefaultDueDays != 14 {
		t.Fatalf("expected 14 default due days, got %d", cfg.Loans.DefaultDueDays)
	}
	if _, err := config.New(""); err == nil {
		t.Fatalf("empty data dir should fail")
	}
}

func TestLoadReadsFileAndFlags(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	raw := "storage:\n  driver: file\nloans:\n  default_due_days: 21\nlog:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "libtrack.yaml"), []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("log-level", "warn", "")
	if err := flags.Parse([]string{"--log-level", "error"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := config.Load(dir, "", flags)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Storage.Driver != config.DriverFile {
		t.Fatalf("expected file driver, got %q", cfg.Storage.Driver)
	}
	if cfg.Storage.DSN != filepath.Join(dir, ".libtrack", "library.yaml") {
		t.Fatalf("unexpected dsn %q", cfg.Storage.DSN)
	}
	if cfg.Loans.DefaultDueDays != 21 {
		t.Fatalf("expected 21 due days, got %d", cfg.Loans.DefaultDueDays)
	}
	if cfg.Log.Level != "error" {
		t.Fatalf("flag should win over file, got %q", cfg.Log.Level)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LIBTRACK_LOANS_DEFAULT_DUE_DAYS", "30")
	t.Setenv("LIBTRACK_STORAGE_DRIVER", "memory")

	cfg, err := config.Load(dir, "", nil)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Loans.DefaultDueDays != 30 || cfg.Storage.Driver != config.DriverMemory {
		t.Fatalf("environment not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	base, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	badDriver := base
	badDriver.Storage.Driver = "mongo"
	if err := badDriver.Validate(); err == nil {
		t.Fatalf("unknown driver should fail")
	}
	noDSN := base
	noDSN.Storage = config.StorageConfig{Driver: config.DriverPostgres}
	if err := noDSN.Validate(); err == nil {
		t.Fatalf("postgres without dsn should fail")
	}
	zeroDays := base
	zeroDays.Loans.DefaultDueDays = 0
	if err := zeroDays.Validate(); err == nil {
		t.Fatalf("zero due days should fail")
	}
	noBucket := base
	noBucket.Backup.Driver = config.BackupS3
	if err := noBucket.Validate(); err == nil {
		t.Fatalf("s3 backups without bucket should fail")
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	cfg.Loans.DefaultDueDays = 7
	cfg.Backup.S3.Bucket = "shelf-backups"
	path := filepath.Join(dir, "libtrack.yaml")
	if err := config.WriteFile(path, cfg); err != nil {
		t.Fatalf("write config: %v", err)
	}

	loaded, err := config.Load(dir, path, nil)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if loaded.Loans.DefaultDueDays != 7 || loaded.Backup.S3.Bucket != "shelf-backups" {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}
