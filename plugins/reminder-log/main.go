// Command reminder-log is a reminder plugin that appends one line per overdue
// loan to the file named by LIBTRACK_REMINDER_LOG (stderr when unset).
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	notifyrpc "libtrack/internal/modules/notify/adapter/out/rpc"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

const logEnv = "LIBTRACK_REMINDER_LOG"

type server struct {
	mu     sync.Mutex
	logger hclog.Logger
}

func (s *server) GetMetadata(_ context.Context, _ *notifyrpc.Empty) (*notifyrpc.Metadata, error) {
	return &notifyrpc.Metadata{
		Name:         "reminder-log",
		Version:      "1.0.0",
		Capabilities: []string{"remind"},
	}, nil
}

func (s *server) SendReminders(_ context.Context, in *notifyrpc.SendRemindersRequest) (*notifyrpc.SendRemindersResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, closeFn, err := openLog()
	if err != nil {
		return nil, err
	}
	defer closeFn()

	response := &notifyrpc.SendRemindersResponse{}
	for _, r := range in.Reminders {
		if strings.TrimSpace(r.MemberEmail) == "" {
			response.Failures = append(response.Failures, notifyrpc.Failure{LoanID: r.LoanID, Reason: "member has no email"})
			continue
		}
		line := fmt.Sprintf("%s\t%s <%s>\t%q\tdue %s\t%d day(s) overdue\n",
			r.LoanID, r.MemberName, r.MemberEmail, r.BookTitle, r.DueAt.Format("2006-01-02"), r.DaysOverdue)
		if _, err := io.WriteString(out, line); err != nil {
			response.Failures = append(response.Failures, notifyrpc.Failure{LoanID: r.LoanID, Reason: err.Error()})
			continue
		}
		response.Delivered++
	}
	s.logger.Info("reminders written", "delivered", response.Delivered, "failed", len(response.Failures))
	return response, nil
}

func openLog() (io.Writer, func(), error) {
	path := os.Getenv(logEnv)
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open reminder log: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "reminder-log",
		Output:     os.Stderr,
		Level:      hclog.Info,
		JSONFormat: true,
	})
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: notifyrpc.HandshakeConfig,
		Plugins:         notifyrpc.PluginMap(&server{logger: logger}),
		GRPCServer:      plugin.DefaultGRPCServer,
		Logger:          logger,
	})
}
