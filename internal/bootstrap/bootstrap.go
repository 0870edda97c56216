package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	clog "github.com/charmbracelet/log"

	backupinadapter "libtrack/internal/modules/backup/adapter/in"
	backupoutadapter "libtrack/internal/modules/backup/adapter/out"
	backupout "libtrack/internal/modules/backup/port/out"
	backupservice "libtrack/internal/modules/backup/service"
	backupusecase "libtrack/internal/modules/backup/usecase"
	libraryinadapter "libtrack/internal/modules/library/adapter/in"
	libraryoutadapter "libtrack/internal/modules/library/adapter/out"
	librarydomain "libtrack/internal/modules/library/domain"
	librarydto "libtrack/internal/modules/library/dto"
	libraryout "libtrack/internal/modules/library/port/out"
	libraryservice "libtrack/internal/modules/library/service"
	libraryusecase "libtrack/internal/modules/library/usecase"
	notifyinadapter "libtrack/internal/modules/notify/adapter/in"
	notifyoutadapter "libtrack/internal/modules/notify/adapter/out"
	notifyservice "libtrack/internal/modules/notify/service"
	notifyusecase "libtrack/internal/modules/notify/usecase"
	"libtrack/internal/platform/clock"
	"libtrack/internal/platform/config"
	"libtrack/internal/platform/id"
	"libtrack/internal/platform/logging"
	uiapp "libtrack/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     *clog.Logger
	LibraryCLI libraryinadapter.CLIHandler
	NotifyCLI  notifyinadapter.CLIHandler
	BackupCLI  backupinadapter.CLIHandler

	gateway libraryout.Gateway
}

// New wires every module against cfg. Logs and plugin output go to logOutput.
func New(ctx context.Context, cfg config.Config, logOutput io.Writer) (*App, error) {
	logger, err := logging.New(logOutput, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	clk := clock.SystemClock{}

	gateway, err := openGateway(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	store := libraryservice.NewEntityStore(gateway)
	librarySvc := libraryservice.NewLibraryService(
		clk,
		id.UUID{},
		store,
		libraryoutadapter.NewPDFMetadataReader(),
		logger.WithPrefix("library"),
	)
	if err := librarySvc.Load(ctx); err != nil {
		_ = gateway.Close()
		return nil, err
	}
	libraryUC := libraryusecase.NewInteractor(librarySvc, cfg.Loans.DefaultDueDays)

	notifyUC := notifyusecase.NewInteractor(notifyservice.NewReminderService(
		notifyoutadapter.NewFileManifestStore(cfg.Plugins.Manifest),
		notifyoutadapter.NewGRPCHost(logOutput),
		notifyoutadapter.NewLibraryLoanSource(libraryUC),
		logger.WithPrefix("notify"),
	))

	blobs, err := openBlobStore(ctx, cfg)
	if err != nil {
		_ = gateway.Close()
		return nil, err
	}
	backupUC := backupusecase.NewInteractor(backupservice.NewBackupService(
		clk,
		backupoutadapter.NewLibrarySnapshotSource(libraryUC),
		blobs,
		logger.WithPrefix("backup"),
	))

	return &App{
		Config:     cfg,
		Logger:     logger,
		LibraryCLI: libraryinadapter.NewCLIHandler(libraryUC),
		NotifyCLI:  notifyinadapter.NewCLIHandler(notifyUC),
		BackupCLI:  backupinadapter.NewCLIHandler(backupUC),
		gateway:    gateway,
	}, nil
}

func (a *App) Close() error {
	return a.gateway.Close()
}

func openGateway(ctx context.Context, cfg config.Config, logger *clog.Logger) (libraryout.Gateway, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite, config.DriverPostgres, config.DriverMySQL:
		gateway, err := libraryoutadapter.NewSQLGateway(ctx, cfg.Storage.Driver, cfg.Storage.DSN, logger.WithPrefix("sql"))
		if err != nil {
			return nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Driver, err)
		}
		return gateway, nil
	case config.DriverFile:
		return libraryoutadapter.NewFileGateway(cfg.Storage.DSN)
	case config.DriverMemory:
		return libraryoutadapter.NewMemoryGateway(librarydomain.Dataset{}), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func openBlobStore(ctx context.Context, cfg config.Config) (backupout.BlobStore, error) {
	switch cfg.Backup.Driver {
	case config.BackupS3:
		return backupoutadapter.NewS3BlobStore(ctx, backupoutadapter.S3Config{
			Bucket:    cfg.Backup.S3.Bucket,
			Region:    cfg.Backup.S3.Region,
			Endpoint:  cfg.Backup.S3.Endpoint,
			Prefix:    cfg.Backup.S3.Prefix,
			PathStyle: cfg.Backup.S3.PathStyle,
		})
	default:
		return backupoutadapter.NewFSBlobStore(cfg.Backup.Dir)
	}
}

// OpenLogFile opens the configured log file for appending. The TUI owns the
// terminal, so its logs cannot go to stderr.
func OpenLogFile(cfg config.Config) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func RunTUI(app *App) error {
	library := app.LibraryCLI
	model := uiapp.NewModel(library, library.Usecase().DefaultDueDays())
	program := tea.NewProgram(model, tea.WithAltScreen())
	unsubscribe := library.Usecase().Subscribe(func(ev librarydto.ChangeEvent) {
		program.Send(uiapp.LibraryChangedMsg{Stats: ev.Stats})
	})
	defer unsubscribe()
	_, err := program.Run()
	return err
}
