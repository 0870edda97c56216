package out

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	notifyrpc "libtrack/internal/modules/notify/adapter/out/rpc"
	"libtrack/internal/modules/notify/domain"
	notifyout "libtrack/internal/modules/notify/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
	// sendTimeout is the budget for a whole batch of reminders.
	sendTimeout = 30 * time.Second
)

type GRPCHost struct {
	logOutput io.Writer
}

// NewGRPCHost returns a host that launches plugin binaries on demand. Plugin
// stderr and go-plugin chatter go to logOutput; nil discards them.
func NewGRPCHost(logOutput io.Writer) notifyout.Host {
	if logOutput == nil {
		logOutput = io.Discard
	}
	return &GRPCHost{logOutput: logOutput}
}

func (h *GRPCHost) CheckLifecycle(ctx context.Context, manifest domain.Manifest) error {
	_, err := h.GetMetadata(ctx, manifest)
	return err
}

func (h *GRPCHost) GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Metadata{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, defaultCallTimeout)
	defer cancel()

	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return domain.Metadata{}, fmt.Errorf("get metadata: %w", err)
	}
	capabilities := make([]domain.Capability, 0, len(meta.Capabilities))
	for _, capability := range meta.Capabilities {
		capabilities = append(capabilities, domain.Capability(capability))
	}
	return domain.Metadata{Name: meta.Name, Version: meta.Version, Capabilities: capabilities}, nil
}

func (h *GRPCHost) SendReminders(ctx context.Context, manifest domain.Manifest, reminders []domain.Reminder) (domain.Delivery, error) {
	client, closeFn, err := h.connect(manifest)
	if err != nil {
		return domain.Delivery{}, err
	}
	defer closeFn()

	callCtx, cancel := h.callContext(ctx, sendTimeout)
	defer cancel()

	request := &notifyrpc.SendRemindersRequest{Reminders: make([]notifyrpc.Reminder, 0, len(reminders))}
	for _, r := range reminders {
		request.Reminders = append(request.Reminders, notifyrpc.Reminder{
			LoanID:      r.LoanID,
			BookTitle:   r.BookTitle,
			MemberName:  r.MemberName,
			MemberEmail: r.MemberEmail,
			DueAt:       r.DueAt,
			DaysOverdue: int32(r.DaysOverdue),
		})
	}
	response, err := client.SendReminders(callCtx, request)
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded {
			return domain.Delivery{}, fmt.Errorf("%w: %s", domain.ErrPluginTimeout, manifest.Name)
		}
		return domain.Delivery{}, fmt.Errorf("send reminders: %w", err)
	}
	delivery := domain.Delivery{Delivered: int(response.Delivered)}
	for _, f := range response.Failures {
		delivery.Failures = append(delivery.Failures, domain.Failure{LoanID: f.LoanID, Reason: f.Reason})
	}
	return delivery, nil
}

func (h *GRPCHost) connect(manifest domain.Manifest) (notifyrpc.ReminderPluginClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  notifyrpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          notifyrpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     defaultStartTimeout,
		Stderr:           h.logOutput,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "plugin." + manifest.Name,
			Output: h.logOutput,
			Level:  hclog.Warn,
		}),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start plugin %s: %w", manifest.Name, err)
	}
	raw, err := rpcClient.Dispense(notifyrpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense plugin %s: %w", manifest.Name, err)
	}
	typed, ok := raw.(notifyrpc.ReminderPluginClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("plugin %s: rpc client type mismatch", manifest.Name)
	}
	return typed, closeFn, nil
}

func (h *GRPCHost) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
