package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-plugin"
	jsoniter "github.com/json-iterator/go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey        = "reminder"
	serviceName         = "libtrack.reminder.v1.ReminderPlugin"
	jsonCodecName       = "json"
	methodGetMetadata   = "/" + serviceName + "/GetMetadata"
	methodSendReminders = "/" + serviceName + "/SendReminders"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "LIBTRACK_PLUGIN",
	MagicCookieValue: "libtrack-reminder",
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type Reminder struct {
	LoanID      string    `json:"loan_id"`
	BookTitle   string    `json:"book_title"`
	MemberName  string    `json:"member_name"`
	MemberEmail string    `json:"member_email"`
	DueAt       time.Time `json:"due_at"`
	DaysOverdue int32     `json:"days_overdue"`
}

type SendRemindersRequest struct {
	Reminders []Reminder `json:"reminders"`
}

type Failure struct {
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

type SendRemindersResponse struct {
	Delivered int32     `json:"delivered"`
	Failures  []Failure `json:"failures"`
}

type ReminderPluginServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	SendReminders(ctx context.Context, in *SendRemindersRequest) (*SendRemindersResponse, error)
}

type ReminderPluginClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	SendReminders(ctx context.Context, in *SendRemindersRequest) (*SendRemindersResponse, error)
}

type reminderPluginClient struct {
	conn *grpc.ClientConn
}

func NewReminderPluginClient(conn *grpc.ClientConn) ReminderPluginClient {
	return &reminderPluginClient{conn: conn}
}

func (c *reminderPluginClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *reminderPluginClient) SendReminders(ctx context.Context, in *SendRemindersRequest) (*SendRemindersResponse, error) {
	out := &SendRemindersResponse{}
	if err := c.conn.Invoke(ctx, methodSendReminders, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func RegisterReminderPluginServer(server grpc.ServiceRegistrar, impl ReminderPluginServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*ReminderPluginServer)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "GetMetadata",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &Empty{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.GetMetadata(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodGetMetadata}
					handler := func(ctx context.Context, req any) (any, error) {
						empty, ok := req.(*Empty)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.GetMetadata(ctx, empty)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
			{
				MethodName: "SendReminders",
				Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
					in := &SendRemindersRequest{}
					if err := dec(in); err != nil {
						return nil, err
					}
					if interceptor == nil {
						return impl.SendReminders(ctx, in)
					}
					info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSendReminders}
					handler := func(ctx context.Context, req any) (any, error) {
						batch, ok := req.(*SendRemindersRequest)
						if !ok {
							return nil, fmt.Errorf("invalid request type")
						}
						return impl.SendReminders(ctx, batch)
					}
					return interceptor(ctx, in, info, handler)
				},
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "reminder-rpc-v1",
	}, impl)
}

// GRPCPlugin serves or dispenses the reminder service over go-plugin.
type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl ReminderPluginServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterReminderPluginServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewReminderPluginClient(conn), nil
}

func PluginMap(impl ReminderPluginServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
