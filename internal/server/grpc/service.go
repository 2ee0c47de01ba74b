package grpc

import (
	"context"
	"time"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
	"google.golang.org/grpc"
)

const serviceName = "rosterhub.v1.Roster"

type HeartbeatRequest struct{}

type HeartbeatResponse struct {
	Success  bool      `json:"success"`
	LastSeen time.Time `json:"last_seen"`
}

type ListMembersRequest struct{}

type ListMembersResponse struct {
	Members []models.MemberView `json:"members"`
}

type SendMessageRequest struct {
	To      models.Party `json:"to"`
	Content string       `json:"content"`
}

type SendMessageResponse struct {
	Message models.Message `json:"message"`
}

type FetchThreadRequest struct {
	TargetID models.Party `json:"targetId"`
}

type FetchThreadResponse struct {
	Messages []models.ThreadMessage `json:"messages"`
}

// RosterServer is the server side of rosterhub.v1.Roster.
type RosterServer interface {
	Heartbeat(context.Context, *HeartbeatRequest) (*HeartbeatResponse, error)
	ListMembers(context.Context, *ListMembersRequest) (*ListMembersResponse, error)
	SendMessage(context.Context, *SendMessageRequest) (*SendMessageResponse, error)
	FetchThread(context.Context, *FetchThreadRequest) (*FetchThreadResponse, error)
}

func fullMethod(name string) string { return "/" + serviceName + "/" + name }

func unary[Req, Resp any](name string, call func(RosterServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(RosterServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(RosterServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// RosterServiceDesc describes rosterhub.v1.Roster for grpc.Server.RegisterService.
var RosterServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*RosterServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("Heartbeat", RosterServer.Heartbeat),
		unary("ListMembers", RosterServer.ListMembers),
		unary("SendMessage", RosterServer.SendMessage),
		unary("FetchThread", RosterServer.FetchThread),
	},
	Streams: []grpc.StreamDesc{},
}

// RosterClient calls rosterhub.v1.Roster using the JSON codec.
type RosterClient struct {
	cc grpc.ClientConnInterface
}

func NewRosterClient(cc grpc.ClientConnInterface) *RosterClient {
	return &RosterClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, name string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(name), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *RosterClient) Heartbeat(ctx context.Context, in *HeartbeatRequest, opts ...grpc.CallOption) (*HeartbeatResponse, error) {
	return invoke[HeartbeatResponse](ctx, c.cc, "Heartbeat", in, opts)
}

func (c *RosterClient) ListMembers(ctx context.Context, in *ListMembersRequest, opts ...grpc.CallOption) (*ListMembersResponse, error) {
	return invoke[ListMembersResponse](ctx, c.cc, "ListMembers", in, opts)
}

func (c *RosterClient) SendMessage(ctx context.Context, in *SendMessageRequest, opts ...grpc.CallOption) (*SendMessageResponse, error) {
	return invoke[SendMessageResponse](ctx, c.cc, "SendMessage", in, opts)
}

func (c *RosterClient) FetchThread(ctx context.Context, in *FetchThreadRequest, opts ...grpc.CallOption) (*FetchThreadResponse, error) {
	return invoke[FetchThreadResponse](ctx, c.cc, "FetchThread", in, opts)
}
