package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"libtrack/internal/modules/notify/domain"
	"libtrack/internal/modules/notify/dto"
	notifyout "libtrack/internal/modules/notify/port/out"

	clog "github.com/charmbracelet/log"
)

type ReminderService struct {
	store  notifyout.ManifestStore
	host   notifyout.Host
	loans  notifyout.LoanSource
	logger *clog.Logger
}

func NewReminderService(store notifyout.ManifestStore, host notifyout.Host, loans notifyout.LoanSource, logger *clog.Logger) *ReminderService {
	return &ReminderService{store: store, host: host, loans: loans, logger: logger}
}

func (s *ReminderService) List(ctx context.Context) ([]dto.PluginInfo, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PluginInfo, 0, len(manifests))
	for _, m := range manifests {
		caps := make([]string, 0, len(m.Capabilities))
		for _, c := range m.Capabilities {
			caps = append(caps, string(c))
		}
		out = append(out, dto.PluginInfo{Name: m.Name, Version: m.Version, Enabled: m.Enabled, Binary: m.Binary, Capabilities: caps})
	}
	return out, nil
}

// Doctor reports per-plugin health without failing on a single bad manifest.
func (s *ReminderService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		if !result.ChecksumValid {
			result.Error = "checksum mismatch"
			results = append(results, result)
			continue
		}
		if m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Dispatch sends one reminder per overdue loan to the named plugin.
func (s *ReminderService) Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error) {
	manifest, err := s.getRunnableManifest(ctx, input.PluginName, !input.DryRun)
	if err != nil {
		return dto.DispatchOutput{}, err
	}
	reminders, err := s.loans.OverdueReminders(ctx)
	if err != nil {
		return dto.DispatchOutput{}, fmt.Errorf("collect overdue loans: %w", err)
	}
	for _, r := range reminders {
		if err := r.Validate(); err != nil {
			return dto.DispatchOutput{}, err
		}
	}

	out := dto.DispatchOutput{PluginName: manifest.Name, DryRun: input.DryRun, Reminders: toReminderOutputs(reminders)}
	if input.DryRun || len(reminders) == 0 {
		s.logger.Info("reminders prepared", "plugin", manifest.Name, "count", len(reminders), "dry_run", input.DryRun)
		return out, nil
	}

	delivery, err := s.host.SendReminders(ctx, manifest, reminders)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return dto.DispatchOutput{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return dto.DispatchOutput{}, err
	}
	out.Delivered = delivery.Delivered
	for _, failure := range delivery.Failures {
		out.Failures = append(out.Failures, dto.FailureOutput{LoanID: failure.LoanID, Reason: failure.Reason})
		s.logger.Warn("reminder not delivered", "plugin", manifest.Name, "loan", failure.LoanID, "reason", failure.Reason)
	}
	s.logger.Info("reminders sent", "plugin", manifest.Name, "delivered", delivery.Delivered, "failed", len(delivery.Failures))
	return out, nil
}

func (s *ReminderService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	seenNames := map[string]struct{}{}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seenNames[manifest.Name]; ok {
			return nil, fmt.Errorf("duplicate plugin name: %s", manifest.Name)
		}
		seenNames[manifest.Name] = struct{}{}
	}
	return manifests, nil
}

func (s *ReminderService) getRunnableManifest(ctx context.Context, pluginName string, probe bool) (domain.Manifest, error) {
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	var manifest domain.Manifest
	found := false
	for _, item := range manifests {
		if item.Name == pluginName {
			manifest = item
			found = true
			break
		}
	}
	if !found {
		return domain.Manifest{}, fmt.Errorf("%w: %q", domain.ErrPluginNotFound, pluginName)
	}
	if !manifest.Enabled {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPluginDisabled, pluginName)
	}
	if !manifest.HasCapability(domain.CapabilityRemind) {
		return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrCapabilityMissing, domain.CapabilityRemind)
	}
	if err := checksumMatches(manifest.Binary, manifest.SHA256); err != nil {
		return domain.Manifest{}, err
	}
	if probe && s.host != nil {
		if err := s.host.CheckLifecycle(ctx, manifest); err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
				return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, pluginName)
			}
			return domain.Manifest{}, err
		}
	}
	return manifest, nil
}

func toReminderOutputs(reminders []domain.Reminder) []dto.ReminderOutput {
	out := make([]dto.ReminderOutput, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, dto.ReminderOutput{
			LoanID:      r.LoanID,
			BookTitle:   r.BookTitle,
			MemberName:  r.MemberName,
			MemberEmail: r.MemberEmail,
			DueAt:       r.DueAt,
			DaysOverdue: r.DaysOverdue,
		})
	}
	return out
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plugin binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	if hex.EncodeToString(hash[:]) != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
