package grpc

import (
	"context"

	"github.com/ISTE-SCTCE/Admin/internal/server/auth"
)

func callerFrom(ctx context.Context) *auth.Identity {
	id, ok := auth.FromContext(ctx)
	if !ok {
		return nil
	}
	return &id
}

func (s *GRPCServer) Heartbeat(ctx context.Context, _ *HeartbeatRequest) (*HeartbeatResponse, error) {
	at, err := s.presence.RecordHeartbeat(ctx, callerFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &HeartbeatResponse{Success: true, LastSeen: at}, nil
}

func (s *GRPCServer) ListMembers(ctx context.Context, _ *ListMembersRequest) (*ListMembersResponse, error) {
	members, err := s.directory.List(ctx, callerFrom(ctx))
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &ListMembersResponse{Members: members}, nil
}

func (s *GRPCServer) SendMessage(ctx context.Context, req *SendMessageRequest) (*SendMessageResponse, error) {
	msg, err := s.messages.Send(ctx, callerFrom(ctx), req.To, req.Content)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &SendMessageResponse{Message: *msg}, nil
}

func (s *GRPCServer) FetchThread(ctx context.Context, req *FetchThreadRequest) (*FetchThreadResponse, error) {
	thread, err := s.messages.FetchThread(ctx, callerFrom(ctx), req.TargetID)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return &FetchThreadResponse{Messages: thread}, nil
}
